package services

import (
	"context"
	"time"

	"github.com/you/storefront/domain"
)

// WishlistServiceImpl keeps saved products per user
type WishlistServiceImpl struct {
	wishlists domain.WishlistRepository
	products  domain.ProductRepository
	now       func() time.Time
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(wishlists domain.WishlistRepository, products domain.ProductRepository) *WishlistServiceImpl {
	return &WishlistServiceImpl{wishlists: wishlists, products: products, now: time.Now}
}

// Get returns the user's wishlist with current product details
func (s *WishlistServiceImpl) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	lines, err := s.wishlists.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.WishlistLine{}
	}
	return &domain.Wishlist{Items: lines}, nil
}

// Add saves a product. Saving it twice is a no-op.
func (s *WishlistServiceImpl) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.wishlists.Add(ctx, userID, productID, s.now().UTC())
}

// Remove drops a product. Removing an absent product is a no-op.
func (s *WishlistServiceImpl) Remove(ctx context.Context, userID, productID string) error {
	return s.wishlists.Remove(ctx, userID, productID)
}
