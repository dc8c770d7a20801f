package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/you/storefront/domain"
)

// MockProductRepository implements domain.ProductRepository over a map
type MockProductRepository struct {
	ListFunc        func(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error)
	FindByIDFunc    func(ctx context.Context, id string) (*domain.Product, error)
	AdjustStockFunc func(ctx context.Context, id string, delta int) error

	mu       sync.Mutex
	products map[string]domain.Product
}

// NewMockProductRepository creates a repository holding products
func NewMockProductRepository(products ...domain.Product) *MockProductRepository {
	m := &MockProductRepository{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ProductID] = p
	}
	return m
}

// List returns products ordered by id, filtered by category
func (m *MockProductRepository) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// FindByID finds a product by ID
func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

// Upsert stores p
func (m *MockProductRepository) Upsert(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ProductID] = *p
	return nil
}

// AdjustStock adds delta to the product's stock
func (m *MockProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	if m.AdjustStockFunc != nil {
		return m.AdjustStockFunc(ctx, id, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	p.Stock += delta
	m.products[id] = p
	return nil
}

// Count returns the number of products
func (m *MockProductRepository) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

// Compile-time interface compliance verification
var _ domain.ProductRepository = (*MockProductRepository)(nil)
