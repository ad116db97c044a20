package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses an admin can move an order through.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is one of the allowed statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a submitted order stored in Postgres. TotalAmount is the sum over
// items before discount; FinalAmount is what the customer pays.
type Order struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string         `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerName    string         `gorm:"not null" json:"customer_name"`
	CustomerEmail   string         `gorm:"not null" json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone,omitempty"`
	CustomerAddress string         `gorm:"not null" json:"customer_address"`
	PaymentMethod   string         `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	TotalAmount     int64          `gorm:"not null" json:"total_amount"`
	DiscountAmount  int64          `gorm:"not null;default:0" json:"discount_amount"`
	FinalAmount     int64          `gorm:"not null" json:"final_amount"`
	CouponCode      string         `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	Status          string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Items           []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one purchased line, copied from the submitted cart snapshot so
// later product edits never rewrite order history.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID   int64     `gorm:"not null" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Price       int64     `gorm:"not null" json:"price"`
}

// OrderItemRequest is one line of a submitted order.
type OrderItemRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Price       int64  `json:"price" binding:"gte=0"`
}

// CreateOrderRequest is the storefront checkout payload.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerEmail   string             `json:"customer_email" binding:"required,email"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address" binding:"required"`
	PaymentMethod   string             `json:"payment_method" binding:"omitempty,oneof=cash card transfer"`
	Notes           string             `json:"notes"`
	Items           []OrderItemRequest `json:"items" binding:"required,dive"`
	CouponCode      string             `json:"coupon_code"`
}

// OrderReceipt is returned to the storefront after a successful submission.
type OrderReceipt struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	TotalAmount    int64     `json:"total_amount"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalAmount    int64     `json:"final_amount"`
}

// OrderCreatedEvent is published to Kafka after an order is persisted.
type OrderCreatedEvent struct {
	Event         string             `json:"event"` // "order.created"
	OrderID       string             `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	FinalAmount   int64              `json:"final_amount"`
	Items         []OrderItemRequest `json:"items"`
	Timestamp     time.Time          `json:"timestamp"`
}
