package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/you/storefront/domain"
)

func testOrder(userID, payment, status string, total int64, at time.Time) *domain.Order {
	return &domain.Order{
		UserID: userID,
		Items: []domain.OrderItem{
			{ProductID: "prod_nespresso", Name: "Nespresso Vertuo Next", Price: 119000, Quantity: 1},
		},
		Shipping: domain.ShippingAddress{
			FullName: "Awa Diop", Phone: "+221 77 123 45 67", Address: "Rue 10", City: "Dakar", Region: "Dakar",
		},
		PaymentMethod: "wave",
		PaymentStatus: payment,
		OrderStatus:   status,
		Subtotal:      total - 2500,
		ShippingCost:  2500,
		Total:         total,
		CreatedAt:     at,
	}
}

func TestNewOrderID(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)
	for i := 0; i < 20; i++ {
		if id := NewOrderID(); !re.MatchString(id) {
			t.Fatalf("unexpected order id %q", id)
		}
	}
}

func TestOrderRepositoryImpl_CreateAndFind(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	order := testOrder("user_1", "pending", "pending", 121500, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderID == "" {
		t.Fatal("expected an order id")
	}

	found, err := repo.FindByID(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(order, found); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if _, err := repo.FindByID(ctx, "ORD-MISSING"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepositoryImpl_GuestOrder(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()

	guest := testOrder("", "pending", "pending", 10000, time.Now().UTC())
	if err := repo.Create(ctx, guest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, _ := repo.FindByID(ctx, guest.OrderID)
	if found.UserID != "" {
		t.Errorf("expected guest order, got user %q", found.UserID)
	}
	list, _ := repo.ListByUser(ctx, "")
	if len(list) != 0 {
		t.Errorf("guest orders must not be listed, got %d", len(list))
	}
}

func TestOrderRepositoryImpl_ListByUser(t *testing.T) {
	repo := NewOrderRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	older := testOrder("user_1", "pending", "pending", 1000, base)
	newer := testOrder("user_1", "pending", "pending", 2000, base.Add(time.Hour))
	other := testOrder("user_2", "pending", "pending", 3000, base.Add(2*time.Hour))
	for _, o := range []*domain.Order{older, newer, other} {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	if list[0].OrderID != newer.OrderID || list[1].OrderID != older.OrderID {
		t.Errorf("expected newest first, got %s then %s", list[0].OrderID, list[1].OrderID)
	}
}

func TestOrderRepositoryImpl_Stats(t *testing.T) {
	tests := []struct {
		name            string
		orders          []*domain.Order
		expectedTotal   int64
		expectedPending int64
		expectedRevenue int64
	}{
		{name: "no orders"},
		{
			name: "revenue counts paid orders only",
			orders: []*domain.Order{
				testOrder("user_1", "paid", "delivered", 100000, time.Now()),
				testOrder("user_1", "paid", "pending", 50000, time.Now()),
				testOrder("user_2", "pending", "pending", 70000, time.Now()),
				testOrder("", "failed", "cancelled", 9000, time.Now()),
			},
			expectedTotal:   4,
			expectedPending: 2,
			expectedRevenue: 150000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewOrderRepository(setupTestDB(t))
			ctx := context.Background()
			for _, o := range tt.orders {
				if err := repo.Create(ctx, o); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			total, pending, revenue, err := repo.Stats(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != tt.expectedTotal || pending != tt.expectedPending || revenue != tt.expectedRevenue {
				t.Errorf("expected %d/%d/%d, got %d/%d/%d",
					tt.expectedTotal, tt.expectedPending, tt.expectedRevenue, total, pending, revenue)
			}
		})
	}
}
