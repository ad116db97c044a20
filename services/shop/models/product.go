package models

import "time"

// Product is a catalog entry stored in MongoDB. Ids are small integers
// allocated from a counters collection so storefront clients and order items
// can reference products without caring about ObjectIDs.
type Product struct {
	ID            int64     `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Price         int64     `bson:"price" json:"price"`
	Category      string    `bson:"category,omitempty" json:"category,omitempty"`
	ImageURL      string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	StockQuantity int       `bson:"stock_quantity" json:"stock_quantity"`
	IsAvailable   bool      `bson:"is_available" json:"is_available"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// CreateProductRequest is the admin payload for adding a product.
type CreateProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" binding:"required,gte=0"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	StockQuantity int    `json:"stock_quantity" binding:"gte=0"`
}

// UpdateProductRequest carries partial updates; nil fields are left alone.
type UpdateProductRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Price         *int64  `json:"price"`
	Category      *string `json:"category"`
	ImageURL      *string `json:"image_url"`
	StockQuantity *int    `json:"stock_quantity"`
	IsAvailable   *bool   `json:"is_available"`
}
