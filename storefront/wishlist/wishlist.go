// Package wishlist keeps the customer's saved-for-later products, persisted
// the same way as the cart: one serialized value per key, written on every
// mutation, corrupted data normalized to empty.
package wishlist

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/storefront/cart"
)

// Item is one saved product. Quantity does not apply to wishlists.
type Item struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
}

type Store struct {
	mu      sync.Mutex
	storage cart.Storage
	items   []Item
	logger  *zap.Logger
}

func NewStore(storage cart.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, logger: logger}
}

// Load reads the persisted wishlist; anything unreadable yields an empty one.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil

	data, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.Warn("wishlist load failed, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("persisted wishlist is not valid JSON, starting empty", zap.Error(err))
		return
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Name == "" {
			s.logger.Warn("persisted wishlist has an invalid item, starting empty",
				zap.Int64("product_id", it.ProductID))
			return
		}
	}
	s.items = items
}

// Toggle adds the product when absent and removes it when present, returning
// whether the product is on the wishlist afterwards.
func (s *Store) Toggle(ctx context.Context, p cart.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false, s.persist(ctx)
		}
	}

	s.items = append(s.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageURL:  p.ImageURL,
	})
	return true, s.persist(ctx)
}

func (s *Store) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Items returns a snapshot copy in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.storage.Delete(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, data)
}
