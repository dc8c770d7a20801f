package mocks

import (
	"context"
	"sync"

	"github.com/you/storefront/domain"
)

// MockCartRepository implements domain.CartRepository over a map
type MockCartRepository struct {
	ItemsFunc  func(ctx context.Context, owner string) ([]domain.StoredCartItem, error)
	SaveFunc   func(ctx context.Context, owner string, items []domain.StoredCartItem) error
	ModifyFunc func(ctx context.Context, owner string, fn func([]domain.StoredCartItem) ([]domain.StoredCartItem, error)) error
	DeleteFunc func(ctx context.Context, owner string) error

	mu    sync.Mutex
	carts map[string][]domain.StoredCartItem
}

// NewMockCartRepository creates an empty MockCartRepository
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[string][]domain.StoredCartItem)}
}

// Items returns the owner's stored lines
func (m *MockCartRepository) Items(ctx context.Context, owner string) ([]domain.StoredCartItem, error) {
	if m.ItemsFunc != nil {
		return m.ItemsFunc(ctx, owner)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StoredCartItem(nil), m.carts[owner]...), nil
}

// Save replaces the owner's lines
func (m *MockCartRepository) Save(ctx context.Context, owner string, items []domain.StoredCartItem) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, owner, items)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[owner] = append([]domain.StoredCartItem(nil), items...)
	return nil
}

// Modify applies fn to the owner's lines under the mock's lock
func (m *MockCartRepository) Modify(ctx context.Context, owner string, fn func([]domain.StoredCartItem) ([]domain.StoredCartItem, error)) error {
	if m.ModifyFunc != nil {
		return m.ModifyFunc(ctx, owner, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(append([]domain.StoredCartItem(nil), m.carts[owner]...))
	if err != nil {
		return err
	}
	if len(next) == 0 {
		delete(m.carts, owner)
		return nil
	}
	m.carts[owner] = append([]domain.StoredCartItem(nil), next...)
	return nil
}

// Delete drops the owner's cart
func (m *MockCartRepository) Delete(ctx context.Context, owner string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, owner)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner)
	return nil
}

// Compile-time interface compliance verification
var _ domain.CartRepository = (*MockCartRepository)(nil)
