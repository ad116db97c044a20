// Package cart holds the customer's pre-checkout selection and keeps it
// durably persisted: every mutation writes the whole cart back to storage
// before returning, so a reload never sees a half-applied operation.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Product is the catalog shape the cart copies from when a product is added.
type Product struct {
	ID        int64
	Name      string
	UnitPrice int64
	ImageURL  string
}

// Line is one product entry within a cart. The JSON keys are the persisted
// wire format; unknown keys in stored data are ignored on load.
type Line struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (l Line) valid() bool {
	return l.ProductID > 0 && l.Name != "" && l.UnitPrice >= 0 && l.Quantity >= 1
}

// Store owns the in-memory cart and is the sole writer of its persisted form.
// All operations are safe for concurrent use; mutations are serialized and
// persisted synchronously, so two rapid adds of the same product can never
// race into duplicate lines.
type Store struct {
	mu      sync.Mutex
	storage Storage
	lines   []Line
	logger  *zap.Logger
}

func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		storage: storage,
		logger:  logger,
	}
}

// Load reads the persisted cart. Absent, unreadable, or structurally invalid
// data yields an empty cart; corrupted data carries no recoverable meaning,
// so it is normalized rather than surfaced as an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil

	data, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn("persisted cart is not valid JSON, starting empty", zap.Error(err))
		return
	}
	for _, l := range lines {
		if !l.valid() {
			s.logger.Warn("persisted cart has an invalid line, starting empty",
				zap.Int64("product_id", l.ProductID))
			return
		}
	}
	s.lines = lines
}

// Add puts one unit of the product in the cart, merging into the existing
// line when the product is already present.
func (s *Store) Add(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity++
			return s.persist(ctx)
		}
	}

	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
	return s.persist(ctx)
}

// UpdateQuantity adds delta to the line's quantity, removing the line when
// the result drops to zero or below. Unknown product ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		s.lines[i].Quantity += delta
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
		return s.persist(ctx)
	}
	return nil
}

// Remove deletes the line for the product if present. Idempotent.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.storage.Delete(ctx)
}

// Total returns the sum of unit price times quantity over all lines.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, l := range s.lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// ItemCount returns the sum of quantities, not the number of lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// Lines returns a snapshot copy of the cart in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// persist serializes the whole cart and writes it as one value. Caller must
// hold the mutex.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.lines)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, data)
}
