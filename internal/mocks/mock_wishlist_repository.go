package mocks

import (
	"context"
	"time"

	"github.com/you/storefront/domain"
)

// MockWishlistRepository implements domain.WishlistRepository interface for testing
type MockWishlistRepository struct {
	AddFunc    func(ctx context.Context, userID, productID string, at time.Time) error
	RemoveFunc func(ctx context.Context, userID, productID string) error
	ListFunc   func(ctx context.Context, userID string) ([]domain.WishlistLine, error)
}

// NewMockWishlistRepository creates a new MockWishlistRepository with default behaviors
func NewMockWishlistRepository() *MockWishlistRepository {
	return &MockWishlistRepository{}
}

// Add saves a product
func (m *MockWishlistRepository) Add(ctx context.Context, userID, productID string, at time.Time) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, productID, at)
	}
	// Default behavior: success
	return nil
}

// Remove drops a product
func (m *MockWishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, productID)
	}
	// Default behavior: success
	return nil
}

// List returns the saved lines
func (m *MockWishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistLine, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	// Default behavior: empty
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.WishlistRepository = (*MockWishlistRepository)(nil)
