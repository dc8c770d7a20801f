package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/internal/http/handlers"
	"github.com/you/storefront/internal/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth     *handlers.AuthHandlers
	Catalog  *handlers.CatalogHandlers
	Cart     *handlers.CartHandlers
	Wishlist *handlers.WishlistHandlers
	Orders   *handlers.OrderHandlers
	Policies *handlers.PolicyHandlers
}

// BuildRouter mounts the storefront API under /api
func BuildRouter(h Handlers, authmw *middleware.AuthMW, cb *middleware.CasbinMW, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", authmw.Required(), h.Auth.Me)
	auth.POST("/logout", authmw.Optional(), h.Auth.Logout)

	api.GET("/products", h.Catalog.Products)
	api.GET("/products/:product_id", h.Catalog.Product)
	api.GET("/categories", h.Catalog.Categories)

	cart := api.Group("/cart").Use(authmw.Optional(), middleware.CartOwner())
	cart.GET("", h.Cart.Get)
	cart.POST("/add", h.Cart.Add)
	cart.PUT("/update", h.Cart.Update)
	cart.DELETE("/remove/:product_id", h.Cart.Remove)
	cart.DELETE("/clear", h.Cart.Clear)

	wishlist := api.Group("/wishlist").Use(authmw.Required())
	wishlist.GET("", h.Wishlist.Get)
	wishlist.POST("/add/:product_id", h.Wishlist.Add)
	wishlist.DELETE("/remove/:product_id", h.Wishlist.Remove)

	api.POST("/orders", authmw.Optional(), middleware.CartOwner(), h.Orders.Create)
	orders := api.Group("/orders").Use(authmw.Required())
	orders.GET("", h.Orders.List)
	orders.GET("/:order_id", h.Orders.Get)

	adm := api.Group("/admin").Use(authmw.Required(), cb.Enforce())
	adm.GET("/stats", h.Orders.Stats)
	adm.GET("/policies", h.Policies.List)
	adm.POST("/policies", h.Policies.Add)
	adm.DELETE("/policies", h.Policies.Remove)

	return r
}
