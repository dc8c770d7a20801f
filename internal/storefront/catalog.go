package storefront

import (
	"context"
	"net/url"
	"strconv"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/apiclient"
)

// Catalog reads products and categories. It keeps no state.
type Catalog struct {
	api API
}

// NewCatalog creates a Catalog
func NewCatalog(api API) *Catalog {
	return &Catalog{api: api}
}

// Products lists products matching q
func (c *Catalog) Products(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.api.Get(ctx, "/products", &products, apiclient.Query(productValues(q))); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product
func (c *Catalog) Product(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	if err := c.api.Get(ctx, "/products/"+productID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories lists the catalog categories
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.api.Get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func productValues(q domain.ProductQuery) url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	setBool := func(key string, b *bool) {
		if b != nil {
			v.Set(key, strconv.FormatBool(*b))
		}
	}
	setBool("featured", q.Featured)
	setBool("is_new", q.IsNew)
	setBool("is_promo", q.IsPromo)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	return v
}
