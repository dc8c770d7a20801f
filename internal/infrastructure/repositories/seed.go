package repositories

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/you/storefront/domain"
)

//go:embed catalog.yml
var catalogYAML []byte

// Default admin account created by Seed
const (
	SeedAdminEmail    = "admin@lumina.sn"
	SeedAdminPassword = "admin123"
)

type seedProduct struct {
	ProductID        string            `yaml:"product_id"`
	Name             string            `yaml:"name"`
	Description      string            `yaml:"description"`
	ShortDescription string            `yaml:"short_description"`
	Price            int64             `yaml:"price"`
	OriginalPrice    *int64            `yaml:"original_price"`
	Category         string            `yaml:"category"`
	Subcategory      string            `yaml:"subcategory"`
	Images           []string          `yaml:"images"`
	Stock            int               `yaml:"stock"`
	Featured         bool              `yaml:"featured"`
	IsNew            bool              `yaml:"is_new"`
	IsPromo          bool              `yaml:"is_promo"`
	Specs            map[string]string `yaml:"specs"`
}

type seedCatalog struct {
	Categories []domain.Category `yaml:"categories"`
	Products   []seedProduct     `yaml:"products"`
}

var loadCatalog = sync.OnceValues(func() (*seedCatalog, error) {
	var c seedCatalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("could not parse embedded catalog: %w", err)
	}
	return &c, nil
})

// Categories returns the fixed category list
func Categories() []domain.Category {
	c, err := loadCatalog()
	if err != nil {
		return []domain.Category{}
	}
	out := make([]domain.Category, len(c.Categories))
	copy(out, c.Categories)
	return out
}

// SeedProducts returns the demo catalog. Creation times are spaced one
// second apart so listings keep file order.
func SeedProducts(base time.Time) ([]domain.Product, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(c.Products))
	for i, p := range c.Products {
		at := base.Add(time.Duration(i) * time.Second)
		desc := p.Description
		if desc == "" {
			desc = p.ShortDescription
		}
		out[i] = domain.Product{
			ProductID:        p.ProductID,
			Name:             p.Name,
			Description:      desc,
			ShortDescription: p.ShortDescription,
			Price:            p.Price,
			OriginalPrice:    p.OriginalPrice,
			Category:         p.Category,
			Subcategory:      p.Subcategory,
			Images:           p.Images,
			Stock:            p.Stock,
			Featured:         p.Featured,
			IsNew:            p.IsNew,
			IsPromo:          p.IsPromo,
			Specs:            p.Specs,
			CreatedAt:        at,
			UpdatedAt:        at,
		}
	}
	return out, nil
}

// Seed loads the demo catalog into an empty product table and creates the
// admin account when it is missing. It is safe to run on every start.
func Seed(ctx context.Context, users domain.UserRepository, products domain.ProductRepository, passwords domain.PasswordService, logger *zap.Logger) error {
	count, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count == 0 {
		catalog, err := SeedProducts(time.Now().UTC())
		if err != nil {
			return err
		}
		for i := range catalog {
			if err := products.Upsert(ctx, &catalog[i]); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", catalog[i].ProductID, err)
			}
		}
		logger.Info("catalog seeded", zap.Int("products", len(catalog)))
	}

	_, err = users.FindByEmail(ctx, SeedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	hash, err := passwords.Hash(SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &domain.Account{
		Name:         "Admin Lumina",
		Email:        SeedAdminEmail,
		Phone:        "+221 77 000 00 00",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Info("admin account created", zap.String("email", SeedAdminEmail))
	return nil
}
