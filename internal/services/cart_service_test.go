package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/mocks"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ProductID: "prod_a", Name: "A", Price: 1000, Stock: 5, Images: []string{"a.jpg", "a2.jpg"}},
		{ProductID: "prod_b", Name: "B", Price: 250, Stock: 2},
	}
}

func createCartServiceForTest(t *testing.T) (*CartServiceImpl, *mocks.MockCartRepository) {
	t.Helper()
	carts := mocks.NewMockCartRepository()
	return NewCartService(carts, mocks.NewMockProductRepository(testProducts()...), nil), carts
}

func TestCartServiceImpl_Get(t *testing.T) {
	svc, carts := createCartServiceForTest(t)
	ctx := context.Background()
	carts.Save(ctx, "user_1", []domain.StoredCartItem{
		{ProductID: "prod_b", Quantity: 2},
		{ProductID: "prod_gone", Quantity: 1},
		{ProductID: "prod_a", Quantity: 3},
	})

	cart, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &domain.Cart{
		Items: []domain.CartLine{
			{ProductID: "prod_b", Name: "B", Price: 250, Quantity: 2, Stock: 2},
			{ProductID: "prod_a", Name: "A", Price: 1000, Quantity: 3, Image: "a.jpg", Stock: 5},
		},
		Total: 3500,
	}
	if diff := cmp.Diff(want, cart); diff != "" {
		t.Errorf("cart mismatch (-want +got):\n%s", diff)
	}

	empty, err := svc.Get(ctx, "")
	if err != nil || empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("expected empty non-nil cart for no owner, got %+v (%v)", empty, err)
	}
}

func TestCartServiceImpl_Add(t *testing.T) {
	tests := []struct {
		name          string
		existing      []domain.StoredCartItem
		productID     string
		quantity      int
		expectedError error
		expectedItems []domain.StoredCartItem
	}{
		{
			name:          "new line",
			productID:     "prod_a",
			quantity:      2,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 2}},
		},
		{
			name:          "quantities are summed",
			existing:      []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 2}},
			productID:     "prod_a",
			quantity:      3,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 5}},
		},
		{
			name:          "sum beyond stock",
			existing:      []domain.StoredCartItem{{ProductID: "prod_b", Quantity: 2}},
			productID:     "prod_b",
			quantity:      1,
			expectedError: domain.ErrInsufficientStock,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_b", Quantity: 2}},
		},
		{
			name:          "unknown product",
			productID:     "prod_x",
			quantity:      1,
			expectedError: domain.ErrProductNotFound,
		},
		{
			name:          "zero quantity",
			productID:     "prod_a",
			quantity:      0,
			expectedError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, carts := createCartServiceForTest(t)
			ctx := context.Background()
			if tt.existing != nil {
				carts.Save(ctx, "cart_guest", tt.existing)
			}

			err := svc.Add(ctx, "cart_guest", tt.productID, tt.quantity)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			items, _ := carts.Items(ctx, "cart_guest")
			if diff := cmp.Diff(tt.expectedItems, items); diff != "" {
				t.Errorf("stored items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCartServiceImpl_UpdateRemoveClear(t *testing.T) {
	tests := []struct {
		name          string
		op            func(svc *CartServiceImpl) error
		expectedError error
		expectedItems []domain.StoredCartItem
	}{
		{
			name:          "update sets quantity",
			op:            func(svc *CartServiceImpl) error { return svc.Update(context.Background(), "user_1", "prod_a", 4) },
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 4}, {ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "update to zero removes",
			op:            func(svc *CartServiceImpl) error { return svc.Update(context.Background(), "user_1", "prod_a", 0) },
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "update beyond stock",
			op:            func(svc *CartServiceImpl) error { return svc.Update(context.Background(), "user_1", "prod_b", 3) },
			expectedError: domain.ErrInsufficientStock,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 1}, {ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "update missing line",
			op:            func(svc *CartServiceImpl) error { return svc.Update(context.Background(), "user_1", "prod_x", 1) },
			expectedError: domain.ErrCartItemNotFound,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 1}, {ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "update without cart",
			op:            func(svc *CartServiceImpl) error { return svc.Update(context.Background(), "user_2", "prod_a", 1) },
			expectedError: domain.ErrCartNotFound,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 1}, {ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "remove line",
			op:            func(svc *CartServiceImpl) error { return svc.Remove(context.Background(), "user_1", "prod_a") },
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_b", Quantity: 1}},
		},
		{
			name:          "remove missing line",
			op:            func(svc *CartServiceImpl) error { return svc.Remove(context.Background(), "user_1", "prod_x") },
			expectedError: domain.ErrCartItemNotFound,
			expectedItems: []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 1}, {ProductID: "prod_b", Quantity: 1}},
		},
		{
			name: "clear twice",
			op: func(svc *CartServiceImpl) error {
				if err := svc.Clear(context.Background(), "user_1"); err != nil {
					return err
				}
				return svc.Clear(context.Background(), "user_1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, carts := createCartServiceForTest(t)
			ctx := context.Background()
			carts.Save(ctx, "user_1", []domain.StoredCartItem{{ProductID: "prod_a", Quantity: 1}, {ProductID: "prod_b", Quantity: 1}})

			err := tt.op(svc)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			items, _ := carts.Items(ctx, "user_1")
			if diff := cmp.Diff(tt.expectedItems, items); diff != "" {
				t.Errorf("stored items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
