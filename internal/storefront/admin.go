package storefront

import (
	"context"
	"fmt"

	"github.com/you/storefront/domain"
)

// Admin reads the dashboard figures
type Admin struct {
	api  API
	auth Authenticator
}

// NewAdmin creates an Admin reader
func NewAdmin(api API, auth Authenticator) *Admin {
	return &Admin{api: api, auth: auth}
}

// Stats returns the dashboard summary. Non-admins are refused locally.
func (a *Admin) Stats(ctx context.Context) (*domain.AdminStats, error) {
	if !a.auth.IsAdmin() {
		return nil, fmt.Errorf("admin stats: %w", domain.ErrForbidden)
	}
	var stats domain.AdminStats
	if err := a.api.Get(ctx, "/admin/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
