package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscountType is how a coupon reduces the order total.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is a promotional code stored in Postgres. Amounts are integer
// tomans; a zero MaxDiscount means no cap, a zero UsageLimit means unlimited.
type Coupon struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code          string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	DiscountType  DiscountType   `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue int64          `gorm:"not null" json:"discount_value"`
	MinPurchase   int64          `gorm:"not null;default:0" json:"min_purchase"`
	MaxDiscount   int64          `gorm:"not null;default:0" json:"max_discount"`
	UsageLimit    int            `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount     int            `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     *time.Time     `json:"valid_from,omitempty"`
	ValidUntil    *time.Time     `json:"valid_until,omitempty"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// CreateCouponRequest is the admin payload for creating a coupon.
type CreateCouponRequest struct {
	Code          string       `json:"code" binding:"required,min=3,max=64"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue int64        `json:"discount_value" binding:"required,gt=0"`
	MinPurchase   int64        `json:"min_purchase" binding:"gte=0"`
	MaxDiscount   int64        `json:"max_discount" binding:"gte=0"`
	UsageLimit    int          `json:"usage_limit" binding:"gte=0"`
	ValidFrom     *time.Time   `json:"valid_from"`
	ValidUntil    *time.Time   `json:"valid_until"`
}

// ValidateCouponRequest is what the storefront sends to price a code against
// the current cart total.
type ValidateCouponRequest struct {
	Code   string `json:"code" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gte=0"`
}

// CouponQuote is the outcome of validating a code against an amount. When
// Valid is false, Message explains why in user-facing terms.
type CouponQuote struct {
	Valid          bool   `json:"valid"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
	Message        string `json:"message,omitempty"`
}

// CouponAppliedEvent is published (best-effort) when a coupon is consumed by
// an order.
type CouponAppliedEvent struct {
	EventType      string    `json:"event_type"`
	CouponCode     string    `json:"coupon_code"`
	DiscountAmount int64     `json:"discount_amount"`
	OrderNumber    string    `json:"order_number"`
	Timestamp      time.Time `json:"timestamp"`
}
