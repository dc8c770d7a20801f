package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/storefront/domain"
)

// DBOrder is the orders table. Items and shipping are stored as JSON.
type DBOrder struct {
	OrderID       string                 `gorm:"primaryKey;size:32"`
	UserID        *string                `gorm:"index;size:32"`
	Items         []domain.OrderItem     `gorm:"serializer:json"`
	Shipping      domain.ShippingAddress `gorm:"serializer:json"`
	PaymentMethod string                 `gorm:"size:32"`
	PaymentStatus string                 `gorm:"index;size:32"`
	OrderStatus   string                 `gorm:"index;size:32"`
	Subtotal      int64
	ShippingCost  int64
	Total         int64
	CreatedAt     time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBOrder) TableName() string {
	return "orders"
}

// OrderRepositoryImpl implements domain.OrderRepository using GORM
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// NewOrderID returns a fresh order reference such as ORD-1A2B3C4D
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create implements domain.OrderRepository
func (r *OrderRepositoryImpl) Create(ctx context.Context, order *domain.Order) error {
	if order.OrderID == "" {
		order.OrderID = NewOrderID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	row := orderToDB(order)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByID implements domain.OrderRepository
func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var row DBOrder
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	o := orderToDomain(&row)
	return &o, nil
}

// ListByUser implements domain.OrderRepository, newest first
func (r *OrderRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var rows []DBOrder
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for i := range rows {
		out = append(out, orderToDomain(&rows[i]))
	}
	return out, nil
}

// Stats implements domain.OrderRepository. Revenue only counts paid orders.
func (r *OrderRepositoryImpl) Stats(ctx context.Context) (total, pending, revenue int64, err error) {
	db := r.db.WithContext(ctx).Model(&DBOrder{})
	if err = db.Count(&total).Error; err != nil {
		return
	}
	if err = r.db.WithContext(ctx).Model(&DBOrder{}).Where("order_status = ?", "pending").Count(&pending).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&DBOrder{}).
		Where("payment_status = ?", "paid").
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	return
}

func orderToDB(o *domain.Order) *DBOrder {
	row := &DBOrder{
		OrderID:       o.OrderID,
		Items:         o.Items,
		Shipping:      o.Shipping,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
	if o.UserID != "" {
		uid := o.UserID
		row.UserID = &uid
	}
	return row
}

func orderToDomain(row *DBOrder) domain.Order {
	o := domain.Order{
		OrderID:       row.OrderID,
		Items:         row.Items,
		Shipping:      row.Shipping,
		PaymentMethod: row.PaymentMethod,
		PaymentStatus: row.PaymentStatus,
		OrderStatus:   row.OrderStatus,
		Subtotal:      row.Subtotal,
		ShippingCost:  row.ShippingCost,
		Total:         row.Total,
		CreatedAt:     row.CreatedAt,
	}
	if row.UserID != nil {
		o.UserID = *row.UserID
	}
	return o
}
