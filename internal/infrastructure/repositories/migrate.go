package repositories

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the reference backend uses
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&DBUser{},
		&DBProduct{},
		&DBWishlistItem{},
		&DBOrder{},
	)
}
