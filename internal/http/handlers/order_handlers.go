package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/http/middleware"
)

// OrderService is the order logic the handlers need
type OrderService interface {
	Place(ctx context.Context, userID, cartOwner string, req domain.OrderRequest) (*domain.Order, error)
	List(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, orderID string, viewer *domain.UserProfile) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.AdminStats, error)
}

// OrderHandlers serves checkout and order history
type OrderHandlers struct {
	orderSvc OrderService
	logger   *zap.Logger
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orderSvc OrderService, logger *zap.Logger) *OrderHandlers {
	return &OrderHandlers{orderSvc: orderSvc, logger: orNop(logger)}
}

// Create places an order for the caller, signed in or not
func (h *OrderHandlers) Create(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userID := ""
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}
	order, err := h.orderSvc.Place(c.Request.Context(), userID, middleware.CartOwnerOf(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// List returns the caller's orders, newest first
func (h *OrderHandlers) List(c *gin.Context) {
	orders, err := h.orderSvc.List(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get returns one of the caller's orders
func (h *OrderHandlers) Get(c *gin.Context) {
	order, err := h.orderSvc.Get(c.Request.Context(), c.Param("order_id"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Stats returns the admin dashboard summary
func (h *OrderHandlers) Stats(c *gin.Context) {
	stats, err := h.orderSvc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
