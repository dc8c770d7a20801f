package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/you/storefront/domain"
)

// MockOrderRepository implements domain.OrderRepository over a map
type MockOrderRepository struct {
	CreateFunc func(ctx context.Context, order *domain.Order) error
	StatsFunc  func(ctx context.Context) (int64, int64, int64, error)

	mu     sync.Mutex
	orders map[string]domain.Order
	seq    int
}

// NewMockOrderRepository creates an empty MockOrderRepository
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]domain.Order)}
}

// Create stores the order, assigning ORD-0001 style ids
func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.OrderID == "" {
		m.seq++
		order.OrderID = fmt.Sprintf("ORD-%04d", m.seq)
	}
	m.orders[order.OrderID] = *order
	return nil
}

// FindByID finds an order by ID
func (m *MockOrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first
func (m *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID && userID != "" {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Stats counts orders and sums paid revenue
func (m *MockOrderRepository) Stats(ctx context.Context) (total, pending, revenue int64, err error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		total++
		if o.OrderStatus == "pending" {
			pending++
		}
		if o.PaymentStatus == "paid" {
			revenue += o.Total
		}
	}
	return total, pending, revenue, nil
}

// Compile-time interface compliance verification
var _ domain.OrderRepository = (*MockOrderRepository)(nil)
