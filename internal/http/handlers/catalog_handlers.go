package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// CatalogHandlers serves products and categories
type CatalogHandlers struct {
	products   domain.ProductRepository
	categories func() []domain.Category
	logger     *zap.Logger
}

// NewCatalogHandlers creates new catalog handlers
func NewCatalogHandlers(products domain.ProductRepository, categories func() []domain.Category, logger *zap.Logger) *CatalogHandlers {
	return &CatalogHandlers{products: products, categories: categories, logger: orNop(logger)}
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// Products lists products filtered by category and flags
func (h *CatalogHandlers) Products(c *gin.Context) {
	q := domain.ProductQuery{Category: c.Query("category")}
	var err error
	if q.Featured, err = boolQuery(c, "featured"); err != nil {
		badRequest(c, err)
		return
	}
	if q.IsNew, err = boolQuery(c, "is_new"); err != nil {
		badRequest(c, err)
		return
	}
	if q.IsPromo, err = boolQuery(c, "is_promo"); err != nil {
		badRequest(c, err)
		return
	}
	if q.Limit, err = intQuery(c, "limit"); err != nil {
		badRequest(c, err)
		return
	}
	if q.Skip, err = intQuery(c, "skip"); err != nil || q.Skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "skip invalide"})
		return
	}

	products, err := h.products.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Product returns one product
func (h *CatalogHandlers) Product(c *gin.Context) {
	p, err := h.products.FindByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Categories returns the category list
func (h *CatalogHandlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.categories())
}
