package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientStorage is one origin-scoped key-value row
type ClientStorage struct {
	ID         uint   `gorm:"primaryKey"`
	Origin     string `gorm:"uniqueIndex:idx_client_storage_origin_key;size:255"`
	StorageKey string `gorm:"column:storage_key;uniqueIndex:idx_client_storage_origin_key;size:64"`
	Value      string `gorm:"type:text"`
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (ClientStorage) TableName() string {
	return "client_storage"
}

// SQLBackend stores values in a relational table through GORM
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend migrates the storage table and returns the backend
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&ClientStorage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate client_storage table: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

func (s *SQLBackend) Get(ctx context.Context, origin, key string) (string, error) {
	var row ClientStorage
	err := s.db.WithContext(ctx).
		Where("origin = ? AND storage_key = ?", origin, key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotStored
		}
		return "", err
	}
	return row.Value, nil
}

func (s *SQLBackend) Set(ctx context.Context, origin, key, value string) error {
	row := ClientStorage{Origin: origin, StorageKey: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origin"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLBackend) Delete(ctx context.Context, origin, key string) error {
	return s.db.WithContext(ctx).
		Where("origin = ? AND storage_key = ?", origin, key).
		Delete(&ClientStorage{}).Error
}
