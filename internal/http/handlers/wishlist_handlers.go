package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/http/middleware"
)

// WishlistService is the wishlist logic the handlers need
type WishlistService interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

// WishlistHandlers serves the signed-in user's wishlist
type WishlistHandlers struct {
	wishlistSvc WishlistService
	logger      *zap.Logger
}

// NewWishlistHandlers creates new wishlist handlers
func NewWishlistHandlers(wishlistSvc WishlistService, logger *zap.Logger) *WishlistHandlers {
	return &WishlistHandlers{wishlistSvc: wishlistSvc, logger: orNop(logger)}
}

// Get returns the wishlist
func (h *WishlistHandlers) Get(c *gin.Context) {
	w, err := h.wishlistSvc.Get(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// Add saves the product named in the path
func (h *WishlistHandlers) Add(c *gin.Context) {
	if err := h.wishlistSvc.Add(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("product_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ajouté aux favoris"})
}

// Remove drops the product named in the path
func (h *WishlistHandlers) Remove(c *gin.Context) {
	if err := h.wishlistSvc.Remove(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("product_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Retiré des favoris"})
}
