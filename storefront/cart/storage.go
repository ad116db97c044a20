package cart

import (
	"context"
	"sync"
)

// Storage persists one cart as a single opaque value. Implementations must
// treat the value atomically: a Save either replaces the whole cart or leaves
// the previous value intact.
type Storage interface {
	// Load returns the persisted value, or (nil, nil) when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// MemoryStorage keeps the cart value in memory. Used by tests and by
// embedders that want a throwaway session cart.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make([]byte, len(data))
	copy(m.data, data)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
