package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// CartServiceImpl implements domain.CartService. Quantities for a product
// already in the cart are summed, and a line never exceeds the stock.
type CartServiceImpl struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts domain.CartRepository, products domain.ProductRepository, logger *zap.Logger) *CartServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartServiceImpl{carts: carts, products: products, logger: logger}
}

// Get implements domain.CartService. Lines whose product is gone are skipped.
func (s *CartServiceImpl) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	cart := &domain.Cart{Items: []domain.CartLine{}}
	if owner == "" {
		return cart, nil
	}
	stored, err := s.carts.Items(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	for _, item := range stored {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Debug("dropping cart line for missing product", zap.String("product_id", item.ProductID))
			continue
		}
		if err != nil {
			return nil, err
		}
		line := domain.CartLine{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  item.Quantity,
			Stock:     p.Stock,
		}
		if len(p.Images) > 0 {
			line.Image = p.Images[0]
		}
		cart.Items = append(cart.Items, line)
		cart.Total += p.Price * int64(item.Quantity)
	}
	return cart, nil
}

// Add implements domain.CartService
func (s *CartServiceImpl) Add(ctx context.Context, owner, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	return s.carts.Modify(ctx, owner, func(items []domain.StoredCartItem) ([]domain.StoredCartItem, error) {
		idx := indexOf(items, productID)
		want := quantity
		if idx >= 0 {
			want += items[idx].Quantity
		}
		if p.Stock < want {
			return nil, domain.ErrInsufficientStock
		}
		if idx >= 0 {
			items[idx].Quantity = want
			return items, nil
		}
		return append(items, domain.StoredCartItem{ProductID: productID, Quantity: quantity}), nil
	})
}

// Update implements domain.CartService. A quantity of zero or less removes
// the line.
func (s *CartServiceImpl) Update(ctx context.Context, owner, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, owner, productID)
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		return err
	}

	return s.carts.Modify(ctx, owner, func(items []domain.StoredCartItem) ([]domain.StoredCartItem, error) {
		idx, err := lineIndex(items, productID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrProductNotFound
		}
		if p.Stock < quantity {
			return nil, domain.ErrInsufficientStock
		}
		items[idx].Quantity = quantity
		return items, nil
	})
}

// Remove implements domain.CartService
func (s *CartServiceImpl) Remove(ctx context.Context, owner, productID string) error {
	return s.carts.Modify(ctx, owner, func(items []domain.StoredCartItem) ([]domain.StoredCartItem, error) {
		idx, err := lineIndex(items, productID)
		if err != nil {
			return nil, err
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
}

// Clear implements domain.CartService. Clearing an empty cart is fine.
func (s *CartServiceImpl) Clear(ctx context.Context, owner string) error {
	if owner == "" {
		return nil
	}
	return s.carts.Delete(ctx, owner)
}

// lineIndex finds productID's line, telling an empty cart from a missing line
func lineIndex(items []domain.StoredCartItem, productID string) (int, error) {
	if len(items) == 0 {
		return -1, domain.ErrCartNotFound
	}
	idx := indexOf(items, productID)
	if idx < 0 {
		return -1, domain.ErrCartItemNotFound
	}
	return idx, nil
}

func indexOf(items []domain.StoredCartItem, productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

var _ domain.CartService = (*CartServiceImpl)(nil)
