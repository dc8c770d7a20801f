package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/storefront/domain"
)

// DefaultProductLimit caps listings that do not ask for a limit
const DefaultProductLimit = 50

// DBProduct is the catalog table
type DBProduct struct {
	ProductID        string            `gorm:"primaryKey;size:64"`
	Name             string            `gorm:"size:255"`
	Description      string            `gorm:"type:text"`
	ShortDescription string            `gorm:"size:512"`
	Price            int64
	OriginalPrice    *int64
	Category         string            `gorm:"index;size:64"`
	Subcategory      string            `gorm:"size:64"`
	Images           []string          `gorm:"serializer:json"`
	Stock            int
	Featured         bool              `gorm:"index"`
	IsNew            bool              `gorm:"index"`
	IsPromo          bool              `gorm:"index"`
	Specs            map[string]string `gorm:"serializer:json"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (DBProduct) TableName() string {
	return "products"
}

// ProductRepositoryImpl implements domain.ProductRepository using GORM
type ProductRepositoryImpl struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

// List implements domain.ProductRepository
func (r *ProductRepositoryImpl) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	tx := r.db.WithContext(ctx).Model(&DBProduct{}).Order("created_at, product_id")
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Featured != nil {
		tx = tx.Where("featured = ?", *q.Featured)
	}
	if q.IsNew != nil {
		tx = tx.Where("is_new = ?", *q.IsNew)
	}
	if q.IsPromo != nil {
		tx = tx.Where("is_promo = ?", *q.IsPromo)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	tx = tx.Limit(limit).Offset(q.Skip)

	var rows []DBProduct
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, productToDomain(&rows[i]))
	}
	return out, nil
}

// FindByID implements domain.ProductRepository
func (r *ProductRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var row DBProduct
	if err := r.db.WithContext(ctx).Where("product_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	p := productToDomain(&row)
	return &p, nil
}

// Upsert implements domain.ProductRepository
func (r *ProductRepositoryImpl) Upsert(ctx context.Context, p *domain.Product) error {
	row := productToDB(p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error
}

// AdjustStock implements domain.ProductRepository. Stock never goes negative.
func (r *ProductRepositoryImpl) AdjustStock(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).Model(&DBProduct{}).
		Where("product_id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// Count implements domain.ProductRepository
func (r *ProductRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&DBProduct{}).Count(&n).Error
	return n, err
}

func productToDomain(row *DBProduct) domain.Product {
	return domain.Product{
		ProductID:        row.ProductID,
		Name:             row.Name,
		Description:      row.Description,
		ShortDescription: row.ShortDescription,
		Price:            row.Price,
		OriginalPrice:    row.OriginalPrice,
		Category:         row.Category,
		Subcategory:      row.Subcategory,
		Images:           row.Images,
		Stock:            row.Stock,
		Featured:         row.Featured,
		IsNew:            row.IsNew,
		IsPromo:          row.IsPromo,
		Specs:            row.Specs,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func productToDB(p *domain.Product) *DBProduct {
	return &DBProduct{
		ProductID:        p.ProductID,
		Name:             p.Name,
		Description:      p.Description,
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
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
