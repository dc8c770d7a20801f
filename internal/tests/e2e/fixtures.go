package e2e

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/app"
	"github.com/you/storefront/internal/infrastructure/repositories"
)

// Seeded catalog entries the tests rely on
const (
	productPhone   = "prod_iphone15pro"
	productAirpods = "prod_airpods_pro"
	productTV      = "prod_samsung_tv"
)

var emailSeq atomic.Int64

func generateTestEmail() string {
	return fmt.Sprintf("client%d@e2e.lumina.sn", emailSeq.Add(1))
}

// registerCustomer signs up a fresh customer on shop
func registerCustomer(t *testing.T, shop *app.Container) *domain.UserProfile {
	t.Helper()
	user, err := shop.Session.Register(context.Background(), domain.RegisterRequest{
		Name:     "Client Test",
		Email:    generateTestEmail(),
		Password: "motdepasse",
		Phone:    "+221 77 555 00 00",
	})
	require.NoError(t, err)
	return user
}

// loginAdmin signs in with the seeded admin account
func loginAdmin(t *testing.T, shop *app.Container) *domain.UserProfile {
	t.Helper()
	user, err := shop.Session.Login(context.Background(), repositories.SeedAdminEmail, repositories.SeedAdminPassword)
	require.NoError(t, err)
	return user
}

func dakarShipping() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		Shipping: domain.ShippingAddress{
			FullName: "Awa Diop",
			Phone:    "+221 77 123 45 67",
			Address:  "12 rue Carnot",
			City:     "Dakar",
			Region:   "Dakar",
		},
		PaymentMethod: "wave",
	}
}
