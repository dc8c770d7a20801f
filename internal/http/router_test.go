package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/http/handlers"
	"github.com/you/storefront/internal/http/middleware"
	"github.com/you/storefront/internal/mocks"
	"github.com/you/storefront/internal/services"
)

// tokenAuth accepts "<role>-token"
type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, token string) (*domain.UserProfile, *domain.TokenClaims, error) {
	role, ok := strings.CutSuffix(token, "-token")
	if !ok {
		return nil, nil, domain.ErrTokenInvalid
	}
	return &domain.UserProfile{ID: "user_" + role, Role: domain.Role(role)},
		&domain.TokenClaims{UserID: "user_" + role, Role: domain.Role(role), SessionID: "sess_" + role}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := mocks.NewMockProductRepository(domain.Product{ProductID: "prod_a", Name: "A", Price: 500, Stock: 3})
	carts := mocks.NewMockCartRepository()
	users := mocks.NewMockUserRepository()
	orders := mocks.NewMockOrderRepository()
	logger := zap.NewNop()

	h := Handlers{
		Auth: handlers.NewAuthHandlers(services.NewAuthService(users, mocks.NewMockSessionRepository(),
			mocks.NewMockPasswordService(), mocks.NewMockTokenService(), logger), logger),
		Catalog:  handlers.NewCatalogHandlers(products, func() []domain.Category { return nil }, logger),
		Cart:     handlers.NewCartHandlers(services.NewCartService(carts, products, logger), logger),
		Wishlist: handlers.NewWishlistHandlers(services.NewWishlistService(mocks.NewMockWishlistRepository(), products), logger),
		Orders:   handlers.NewOrderHandlers(services.NewOrderService(orders, products, users, carts, logger), logger),
		Policies: handlers.NewPolicyHandlers(mocks.NewMockPolicyService(), logger),
	}
	return BuildRouter(h, middleware.NewAuthMW(tokenAuth{}), middleware.NewCasbinMW(mocks.NewMockPolicyService(), logger), logger)
}

func TestBuildRouter_Guards(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "catalog is public", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "guest cart", method: http.MethodGet, path: "/api/cart", expectedStatus: http.StatusOK},
		{name: "me requires auth", method: http.MethodGet, path: "/api/auth/me", expectedStatus: http.StatusUnauthorized},
		{name: "me with token", method: http.MethodGet, path: "/api/auth/me", token: "customer-token", expectedStatus: http.StatusOK},
		{name: "logout anonymous", method: http.MethodPost, path: "/api/auth/logout", expectedStatus: http.StatusOK},
		{name: "wishlist requires auth", method: http.MethodGet, path: "/api/wishlist", expectedStatus: http.StatusUnauthorized},
		{name: "wishlist with token", method: http.MethodGet, path: "/api/wishlist", token: "customer-token", expectedStatus: http.StatusOK},
		{name: "orders require auth", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusUnauthorized},
		{name: "admin anonymous", method: http.MethodGet, path: "/api/admin/stats", expectedStatus: http.StatusUnauthorized},
		{name: "admin as customer", method: http.MethodGet, path: "/api/admin/stats", token: "customer-token", expectedStatus: http.StatusForbidden},
		{name: "admin as admin", method: http.MethodGet, path: "/api/admin/stats", token: "admin-token", expectedStatus: http.StatusOK},
		{name: "unknown", method: http.MethodGet, path: "/api/nope", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBuildRouter_GuestCartSession(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/add", strings.NewReader(`{"product_id":"prod_a","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sid := w.Header().Get(middleware.CartSessionHeader)
	assert.True(t, strings.HasPrefix(sid, "cart_"))

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(middleware.CartSessionHeader, sid)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1000`)
}
