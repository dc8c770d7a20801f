package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/storefront/domain"
)

// DBWishlistItem is one saved product
type DBWishlistItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"uniqueIndex:idx_wishlist_user_product;size:32"`
	ProductID string    `gorm:"uniqueIndex:idx_wishlist_user_product;size:64"`
	AddedAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBWishlistItem) TableName() string {
	return "wishlist_items"
}

// WishlistRepositoryImpl implements domain.WishlistRepository using GORM
type WishlistRepositoryImpl struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) domain.WishlistRepository {
	return &WishlistRepositoryImpl{db: db}
}

// Add implements domain.WishlistRepository. Adding a saved product keeps
// its original date.
func (r *WishlistRepositoryImpl) Add(ctx context.Context, userID, productID string, at time.Time) error {
	row := DBWishlistItem{UserID: userID, ProductID: productID, AddedAt: at.UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Remove implements domain.WishlistRepository
func (r *WishlistRepositoryImpl) Remove(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&DBWishlistItem{}).Error
}

// List implements domain.WishlistRepository. Lines carry the product's
// current name, price, image and stock; products that no longer exist are
// skipped.
func (r *WishlistRepositoryImpl) List(ctx context.Context, userID string) ([]domain.WishlistLine, error) {
	var rows []DBWishlistItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.WishlistLine{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ProductID
	}
	var products []DBProduct
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*DBProduct, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	out := make([]domain.WishlistLine, 0, len(rows))
	for _, row := range rows {
		p, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		out = append(out, domain.WishlistLine{
			ProductID: row.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     firstImage(p.Images),
			Stock:     p.Stock,
			AddedAt:   row.AddedAt,
		})
	}
	return out, nil
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
