package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/http/middleware"
)

// CartHandlers serves the cart of the user or guest session
type CartHandlers struct {
	cartSvc domain.CartService
	logger  *zap.Logger
}

// NewCartHandlers creates new cart handlers
func NewCartHandlers(cartSvc domain.CartService, logger *zap.Logger) *CartHandlers {
	return &CartHandlers{cartSvc: cartSvc, logger: orNop(logger)}
}

// CartItemRequest is the body of add and update. Quantity defaults to 1 on add.
type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// Get returns the enriched cart
func (h *CartHandlers) Get(c *gin.Context) {
	cart, err := h.cartSvc.Get(c.Request.Context(), middleware.CartOwnerOf(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// Add puts a product in the cart
func (h *CartHandlers) Add(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.cartSvc.Add(c.Request.Context(), middleware.CartOwnerOf(c), req.ProductID, quantity); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté au panier"})
}

// Update sets a line's quantity; zero or less removes it
func (h *CartHandlers) Update(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "quantity requis"})
		return
	}

	if err := h.cartSvc.Update(c.Request.Context(), middleware.CartOwnerOf(c), req.ProductID, *req.Quantity); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier mis à jour"})
}

// Remove drops a line
func (h *CartHandlers) Remove(c *gin.Context) {
	if err := h.cartSvc.Remove(c.Request.Context(), middleware.CartOwnerOf(c), c.Param("product_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré du panier"})
}

// Clear empties the cart
func (h *CartHandlers) Clear(c *gin.Context) {
	if err := h.cartSvc.Clear(c.Request.Context(), middleware.CartOwnerOf(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
