package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// Shipping rates in FCFA
const (
	ShippingDakar     int64 = 2500
	ShippingElsewhere int64 = 3500
	DefaultPayment          = "wave"
	dakarRegion             = "Dakar"
)

// PaymentMethods accepted at checkout
var PaymentMethods = []string{"wave", "orange_money", "card", "cash"}

// ShippingCost is the delivery fee for region
func ShippingCost(region string) int64 {
	if strings.EqualFold(strings.TrimSpace(region), dakarRegion) {
		return ShippingDakar
	}
	return ShippingElsewhere
}

// Checkout places orders from the confirmed cart
type Checkout struct {
	api    API
	cart   *Cart
	events domain.EventSink
	logger *zap.Logger

	submitting atomic.Bool
}

// NewCheckout creates a Checkout over cart
func NewCheckout(api API, cart *Cart, events domain.EventSink, logger *zap.Logger) *Checkout {
	return &Checkout{api: api, cart: cart, events: events, logger: logger}
}

// Submitting reports whether an order is being placed
func (c *Checkout) Submitting() bool {
	return c.submitting.Load()
}

// PlaceOrder submits the cart's last confirmed state as an order, then
// empties the cart. A second call while one is in flight is refused.
func (c *Checkout) PlaceOrder(ctx context.Context, req domain.CheckoutRequest) (*domain.Order, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		return nil, domain.ErrCheckoutInProgress
	}
	defer c.submitting.Store(false)

	if req.PaymentMethod == "" {
		req.PaymentMethod = DefaultPayment
	}
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	order, err := c.buildOrder(req)
	if err != nil {
		return nil, err
	}

	var placed domain.Order
	if err := c.api.Post(ctx, "/orders", order, &placed); err != nil {
		c.publish(ctx, domain.NewEvent(domain.OrderPlaceFailureEvent).WithError(err).WithCount(len(order.Items)))
		return nil, err
	}

	c.logger.Info("order placed", zap.String("order_id", placed.OrderID), zap.Int64("total", placed.Total))
	c.publish(ctx, domain.NewEvent(domain.OrderPlacedEvent).
		WithCount(len(placed.Items)).
		WithMetadata("order_id", placed.OrderID).
		WithMetadata("total", placed.Total))

	if err := c.cart.Clear(ctx); err != nil {
		c.logger.Warn("could not clear cart after order", zap.Error(err))
	}
	return &placed, nil
}

func (c *Checkout) buildOrder(req domain.CheckoutRequest) (*domain.OrderRequest, error) {
	cart := c.cart.Snapshot()
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, l := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Image:     l.Image,
		})
	}
	shipping := ShippingCost(req.Shipping.Region)
	return &domain.OrderRequest{
		Items:         items,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      cart.Total,
		ShippingCost:  shipping,
		Total:         cart.Total + shipping,
	}, nil
}

// Orders lists the signed-in user's orders, newest first
func (c *Checkout) Orders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.api.Get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one order
func (c *Checkout) Order(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	if err := c.api.Get(ctx, "/orders/"+orderID, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Checkout) publish(ctx context.Context, event *domain.Event) {
	if c.events != nil {
		c.events.Publish(ctx, event.WithResource("order"))
	}
}

func validateCheckout(req domain.CheckoutRequest) error {
	s := req.Shipping
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"full_name", s.FullName},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"region", s.Region},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	for _, m := range PaymentMethods {
		if m == req.PaymentMethod {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, req.PaymentMethod)
}
