package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shoparak/shop-backend/services/shop/models"
)

// ErrCouponExhausted aborts an order creation when the attached coupon's
// usage limit was consumed between quoting and committing.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

// OrderRepository defines order data access.
type OrderRepository interface {
	// CreateWithCoupon persists the order (items included) and, when
	// couponCode is non-empty, consumes one use of the coupon in the same
	// transaction. The whole write rolls back if the coupon is exhausted.
	CreateWithCoupon(ctx context.Context, order *models.Order, couponCode string) error
	FindAll(ctx context.Context, status string, limit int) ([]models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderNumber, status string) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateWithCoupon(ctx context.Context, order *models.Order, couponCode string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if couponCode != "" {
			// The guard re-checks the usage limit under the transaction, so
			// two concurrent submissions cannot oversubscribe a coupon.
			res := tx.Model(&models.Coupon{}).
				Where("LOWER(code) = ? AND is_active = ? AND (usage_limit = 0 OR used_count < usage_limit)",
					strings.ToLower(couponCode), true).
				UpdateColumn("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrCouponExhausted
			}
		}
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) FindAll(ctx context.Context, status string, limit int) ([]models.Order, error) {
	var orders []models.Order

	query := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderNumber, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
