package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// Order and payment status values
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// OrderServiceImpl places and reads orders, and builds the admin summary
type OrderServiceImpl struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	users    domain.UserRepository
	carts    domain.CartRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	users domain.UserRepository,
	carts domain.CartRepository,
	logger *zap.Logger,
) *OrderServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderServiceImpl{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		logger:   logger,
		now:      time.Now,
	}
}

func validateOrder(req domain.OrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order has no items", domain.ErrValidation)
	}
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity < 1 {
			return fmt.Errorf("%w: invalid order line %q", domain.ErrValidation, item.ProductID)
		}
	}
	sh := req.Shipping
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", sh.FullName}, {"phone", sh.Phone}, {"address", sh.Address}, {"city", sh.City},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if req.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}
	return nil
}

// Place records an order. userID is empty for guests. Stock is taken for
// every line or for none, and the cart at cartOwner is deleted afterwards.
func (s *OrderServiceImpl) Place(ctx context.Context, userID, cartOwner string, req domain.OrderRequest) (*domain.Order, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	taken := make([]domain.OrderItem, 0, len(req.Items))
	rollback := func() {
		for _, item := range taken {
			if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				s.logger.Error("failed to restore stock", zap.String("product_id", item.ProductID), zap.Error(err))
			}
		}
	}
	for _, item := range req.Items {
		if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			rollback()
			return nil, err
		}
		taken = append(taken, item)
	}

	order := &domain.Order{
		UserID:        userID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: StatusPending,
		OrderStatus:   StatusPending,
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		Total:         req.Total,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		rollback()
		return nil, err
	}

	if cartOwner != "" {
		if err := s.carts.Delete(ctx, cartOwner); err != nil {
			s.logger.Warn("failed to delete cart after order", zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.Bool("guest", userID == ""),
		zap.Int64("total", order.Total))
	return order, nil
}

// List returns the user's orders, newest first
func (s *OrderServiceImpl) List(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Get returns one order. Customers only see their own orders; guest orders
// are visible to admins only.
func (s *OrderServiceImpl) Get(ctx context.Context, orderID string, viewer *domain.UserProfile) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if viewer.IsAdmin() || (viewer != nil && order.UserID == viewer.ID) {
		return order, nil
	}
	return nil, domain.ErrForbidden
}

// Stats builds the admin dashboard summary
func (s *OrderServiceImpl) Stats(ctx context.Context) (*domain.AdminStats, error) {
	total, pending, revenue, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &domain.AdminStats{
		TotalOrders:   total,
		PendingOrders: pending,
		TotalProducts: products,
		TotalUsers:    users,
		TotalRevenue:  revenue,
	}, nil
}

// IsStockError reports whether err means a line could not be fulfilled
func IsStockError(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound)
}
