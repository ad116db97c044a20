// Package catalog is a read-only client for the shop's product listings.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shoparak/shop-backend/storefront/cart"
)

// Product is the catalog shape the storefront renders and the cart copies from.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         int64  `json:"price"`
	Category      string `json:"category,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	IsAvailable   bool   `json:"is_available"`
}

// CartProduct converts the catalog entry into the reference shape the cart
// store copies on Add.
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
	}
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Products lists available products, optionally filtered by category.
func (c *Client) Products(ctx context.Context, category string) ([]Product, error) {
	u := c.baseURL + "/products"
	if category != "" {
		u += "?category=" + url.QueryEscape(category)
	}

	var payload struct {
		Success  bool      `json:"success"`
		Message  string    `json:"message"`
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("product listing failed: %s", payload.Message)
	}
	return payload.Products, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var payload struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Product Product `json:"product"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("product fetch failed: %s", payload.Message)
	}
	return &payload.Product, nil
}

// Categories lists the distinct categories of available products.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var payload struct {
		Success    bool     `json:"success"`
		Message    string   `json:"message"`
		Categories []string `json:"categories"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/categories", &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("category listing failed: %s", payload.Message)
	}
	return payload.Categories, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("catalog returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
