package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/http/middleware"
	"github.com/you/storefront/internal/mocks"
	"github.com/you/storefront/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedDetail string
	}{
		{name: "validation keeps message", err: fmt.Errorf("%w: invalid email", domain.ErrValidation), expectedStatus: http.StatusBadRequest, expectedDetail: "validation failed: invalid email"},
		{name: "duplicate email", err: domain.ErrUserAlreadyExists, expectedStatus: http.StatusConflict, expectedDetail: "Cet email est déjà utilisé"},
		{name: "bad credentials", err: domain.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized, expectedDetail: "Email ou mot de passe incorrect"},
		{name: "missing product", err: domain.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectedDetail: "Produit non trouvé"},
		{name: "stock", err: fmt.Errorf("prod_a: %w", domain.ErrInsufficientStock), expectedStatus: http.StatusBadRequest, expectedDetail: "Stock insuffisant"},
		{name: "cart line", err: domain.ErrCartItemNotFound, expectedStatus: http.StatusNotFound, expectedDetail: "Produit non trouvé dans le panier"},
		{name: "order", err: domain.ErrOrderNotFound, expectedStatus: http.StatusNotFound, expectedDetail: "Commande non trouvée"},
		{name: "forbidden", err: domain.ErrForbidden, expectedStatus: http.StatusForbidden, expectedDetail: "Accès refusé"},
		{name: "unexpected", err: errors.New("disk on fire"), expectedStatus: http.StatusInternalServerError, expectedDetail: "Erreur interne du serveur"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { respondError(c, zap.NewNop(), tt.err) })

			w := doJSON(r, http.MethodGet, "/x", "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedDetail, detailOf(t, w))
		})
	}
}

func TestAuthHandlers_Register(t *testing.T) {
	users := mocks.NewMockUserRepository()
	users.FindByEmailFunc = func(_ context.Context, email string) (*domain.Account, error) {
		if email == "taken@lumina.sn" {
			return &domain.Account{ID: "user_1", Email: email}, nil
		}
		return nil, domain.ErrUserNotFound
	}
	users.CreateFunc = func(_ context.Context, a *domain.Account) error {
		a.ID = "user_new"
		return nil
	}
	authSvc := services.NewAuthService(users, mocks.NewMockSessionRepository(),
		mocks.NewMockPasswordService(), mocks.NewMockTokenService(), nil)

	r := gin.New()
	h := NewAuthHandlers(authSvc, nil)
	r.POST("/register", h.Register)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "created", body: `{"name":"Awa","email":"awa@lumina.sn","password":"pw"}`, expectedStatus: http.StatusCreated},
		{name: "duplicate", body: `{"name":"Awa","email":"taken@lumina.sn","password":"pw"}`, expectedStatus: http.StatusConflict},
		{name: "missing password", body: `{"name":"Awa","email":"awa@lumina.sn"}`, expectedStatus: http.StatusBadRequest},
		{name: "bad email", body: `{"name":"Awa","email":"awa","password":"pw"}`, expectedStatus: http.StatusBadRequest},
		{name: "not json", body: `nope`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	w := doJSON(r, http.MethodPost, "/register", `{"name":"Awa","email":"Awa@Lumina.sn","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "user_new", result["user_id"])
	assert.Equal(t, "awa@lumina.sn", result["email"])
	assert.Equal(t, "customer", result["role"])
	assert.Contains(t, result["token"], "token|user_new|customer|sess_")
}

func TestAuthHandlers_LogoutAlwaysSucceeds(t *testing.T) {
	sessions := mocks.NewMockSessionRepository()
	sessions.DeleteFunc = func(context.Context, string) error { return errors.New("redis down") }
	authSvc := services.NewAuthService(mocks.NewMockUserRepository(), sessions,
		mocks.NewMockPasswordService(), mocks.NewMockTokenService(), nil)

	r := gin.New()
	h := NewAuthHandlers(authSvc, nil)
	r.POST("/logout", func(c *gin.Context) { c.Set(middleware.ContextSessionID, "sess_1") }, h.Logout)

	w := doJSON(r, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Déconnexion réussie")
}

func newCartRouter(owner string) (*gin.Engine, *mocks.MockCartRepository) {
	carts := mocks.NewMockCartRepository()
	products := mocks.NewMockProductRepository(
		domain.Product{ProductID: "prod_a", Name: "A", Price: 1000, Stock: 5},
	)
	h := NewCartHandlers(services.NewCartService(carts, products, nil), nil)

	r := gin.New()
	g := r.Group("/cart", func(c *gin.Context) { c.Set(middleware.ContextCartOwner, owner) })
	g.GET("", h.Get)
	g.POST("/add", h.Add)
	g.PUT("/update", h.Update)
	g.DELETE("/remove/:product_id", h.Remove)
	g.DELETE("/clear", h.Clear)
	return r, carts
}

func TestCartHandlers(t *testing.T) {
	r, carts := newCartRouter("cart_abc123456789")
	ctx := context.Background()

	w := doJSON(r, http.MethodPost, "/cart/add", `{"product_id":"prod_a"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Produit ajouté au panier")
	items, _ := carts.Items(ctx, "cart_abc123456789")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity, "quantity defaults to 1")

	w = doJSON(r, http.MethodPost, "/cart/add", `{"product_id":"prod_a","quantity":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Stock insuffisant", detailOf(t, w))

	w = doJSON(r, http.MethodPut, "/cart/update", `{"product_id":"prod_a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/cart/update", `{"product_id":"prod_a","quantity":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Panier mis à jour")

	w = doJSON(r, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cart domain.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(3000), cart.Total)

	w = doJSON(r, http.MethodDelete, "/cart/remove/prod_zz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/cart/remove/prod_a", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Produit retiré du panier")

	w = doJSON(r, http.MethodDelete, "/cart/clear", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Panier vidé")
}

func TestCatalogHandlers_Products(t *testing.T) {
	var seen domain.ProductQuery
	products := mocks.NewMockProductRepository()
	products.ListFunc = func(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
		seen = q
		return []domain.Product{}, nil
	}
	h := NewCatalogHandlers(products, func() []domain.Category {
		return []domain.Category{{ID: "electronique", Name: "Électronique"}}
	}, nil)

	r := gin.New()
	r.GET("/products", h.Products)
	r.GET("/products/:product_id", h.Product)
	r.GET("/categories", h.Categories)

	w := doJSON(r, http.MethodGet, "/products?category=mode&featured=true&limit=4&skip=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	assert.Equal(t, "mode", seen.Category)
	require.NotNil(t, seen.Featured)
	assert.True(t, *seen.Featured)
	assert.Nil(t, seen.IsNew)
	assert.Equal(t, 4, seen.Limit)
	assert.Equal(t, 2, seen.Skip)

	for _, bad := range []string{"featured=maybe", "limit=x", "skip=-1"} {
		w = doJSON(r, http.MethodGet, "/products?"+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w = doJSON(r, http.MethodGet, "/products/prod_none", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"electronique"`)
}

type fakeOrderService struct {
	placed []string
	err    error
}

func (f *fakeOrderService) Place(_ context.Context, userID, cartOwner string, _ domain.OrderRequest) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.placed = append(f.placed, userID+"|"+cartOwner)
	return &domain.Order{OrderID: "ORD-1234ABCD", UserID: userID, OrderStatus: "pending"}, nil
}

func (f *fakeOrderService) List(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (f *fakeOrderService) Get(_ context.Context, id string, _ *domain.UserProfile) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderService) Stats(context.Context) (*domain.AdminStats, error) {
	return &domain.AdminStats{TotalOrders: 3}, nil
}

func TestOrderHandlers(t *testing.T) {
	svc := &fakeOrderService{}
	h := NewOrderHandlers(svc, nil)

	r := gin.New()
	r.POST("/orders/guest", func(c *gin.Context) { c.Set(middleware.ContextCartOwner, "cart_guest") }, h.Create)
	r.POST("/orders/user", func(c *gin.Context) {
		c.Set(middleware.ContextUser, &domain.UserProfile{ID: "user_1"})
		c.Set(middleware.ContextCartOwner, "user_1")
	}, h.Create)
	r.GET("/orders/:order_id", h.Get)
	r.GET("/stats", h.Stats)

	w := doJSON(r, http.MethodPost, "/orders/guest", `{"payment_method":"wave"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ORD-1234ABCD")

	w = doJSON(r, http.MethodPost, "/orders/user", `{"payment_method":"wave"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"|cart_guest", "user_1|user_1"}, svc.placed)

	svc.err = fmt.Errorf("prod_a: %w", domain.ErrInsufficientStock)
	w = doJSON(r, http.MethodPost, "/orders/guest", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/orders/ORD-NOPE", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_orders":3`)
}

func TestPolicyHandlers(t *testing.T) {
	policies := mocks.NewMockPolicyService()
	var added []string
	policies.AddPolicyFunc = func(role, resource, action string) error {
		added = append(added, role+" "+resource+" "+action)
		return nil
	}
	h := NewPolicyHandlers(policies, nil)

	r := gin.New()
	r.GET("/policies", h.List)
	r.POST("/policies", h.Add)
	r.DELETE("/policies", h.Remove)

	w := doJSON(r, http.MethodGet, "/policies", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"policies"`)

	w = doJSON(r, http.MethodPost, "/policies", `{"role":"manager","resource":"/api/admin/stats","action":"GET"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"manager /api/admin/stats GET"}, added)

	w = doJSON(r, http.MethodDelete, "/policies", `{"role":"manager"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
