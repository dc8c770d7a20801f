// Package storefront holds the client-side state managers: the auth session,
// the remote cart and wishlist mirrors, and the catalog, checkout and admin
// readers built on top of them.
package storefront

import (
	"context"

	"github.com/you/storefront/internal/apiclient"
)

// API is the subset of the HTTP facade the managers depend on
type API interface {
	Get(ctx context.Context, path string, out any, opts ...apiclient.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
	Put(ctx context.Context, path string, body, out any, opts ...apiclient.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...apiclient.RequestOption) error
}

// Authenticator reports the current identity
type Authenticator interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

var _ API = (*apiclient.Client)(nil)
