package storefront

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// WishlistResource is the remote wishlist. It belongs to a signed-in user.
var WishlistResource = Resource{
	Name:         "wishlist",
	List:         "/wishlist",
	Add:          "/wishlist/add",
	Remove:       "/wishlist/remove",
	AddByPath:    true,
	RequiresAuth: true,
}

// Wishlist is the local mirror of the remote wishlist
type Wishlist struct {
	*Collection[domain.WishlistLine]
}

// NewWishlist creates an empty wishlist mirror
func NewWishlist(api API, auth Authenticator, events domain.EventSink, logger *zap.Logger) *Wishlist {
	return &Wishlist{Collection: NewCollection[domain.WishlistLine](WishlistResource, api, auth, events, logger)}
}

// Add saves productID. Adding a saved product is a no-op on the server.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	return w.Collection.Add(ctx, productID, 1)
}

// Toggle saves productID, or drops it when it is already saved
func (w *Wishlist) Toggle(ctx context.Context, productID string) error {
	if w.Contains(productID) {
		return w.Remove(ctx, productID)
	}
	return w.Add(ctx, productID)
}

// Snapshot returns the last confirmed wishlist
func (w *Wishlist) Snapshot() domain.Wishlist {
	return domain.Wishlist{Items: w.Items()}
}

var _ domain.WishlistManager = (*Wishlist)(nil)
