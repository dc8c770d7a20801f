package storefront

import (
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// CartResource is the remote cart. Guests have a cart too, tracked by the
// server through the cart session header.
var CartResource = Resource{
	Name:        "cart",
	List:        "/cart",
	Add:         "/cart/add",
	Update:      "/cart/update",
	Remove:      "/cart/remove",
	Clear:       "/cart/clear",
	OpensDrawer: true,
}

// Cart is the local mirror of the remote cart
type Cart struct {
	*Collection[domain.CartLine]
}

// NewCart creates an empty cart mirror
func NewCart(api API, auth Authenticator, events domain.EventSink, logger *zap.Logger) *Cart {
	return &Cart{Collection: NewCollection[domain.CartLine](CartResource, api, auth, events, logger)}
}

// Snapshot returns the last confirmed cart
func (c *Cart) Snapshot() domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartLine, len(c.items))
	copy(items, c.items)
	return domain.Cart{Items: items, Total: c.total}
}

// Count is the number of units in the cart, derived from the lines
func (c *Cart) Count() int {
	return c.Snapshot().Count()
}

var _ domain.CartManager = (*Cart)(nil)
