package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *MemoryStorage) {
	storage := NewMemoryStorage()
	return NewStore(storage, nil), storage
}

func vase() Product {
	return Product{ID: 1, Name: "Vase", UnitPrice: 100000, ImageURL: "/img/vase.jpg"}
}

func TestAdd_FirstItem(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, vase()))

	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, int64(100000), s.Total())
}

func TestAdd_SameProductMergesLine(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, vase()))
	require.NoError(t, s.Add(ctx, vase()))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, s.ItemCount())
	assert.Equal(t, int64(200000), s.Total())
}

func TestAdd_NeverDuplicatesProductID(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	products := []Product{
		{ID: 1, Name: "Vase", UnitPrice: 100000},
		{ID: 2, Name: "Bowl", UnitPrice: 50000},
		{ID: 1, Name: "Vase", UnitPrice: 100000},
		{ID: 3, Name: "Plate", UnitPrice: 30000},
		{ID: 2, Name: "Bowl", UnitPrice: 50000},
	}
	for _, p := range products {
		require.NoError(t, s.Add(ctx, p))
	}
	require.NoError(t, s.UpdateQuantity(ctx, 3, 2))
	require.NoError(t, s.Remove(ctx, 2))
	require.NoError(t, s.Add(ctx, products[1]))

	seen := map[int64]bool{}
	for _, l := range s.Lines() {
		assert.False(t, seen[l.ProductID], "duplicate line for product %d", l.ProductID)
		seen[l.ProductID] = true
	}
}

func TestUpdateQuantity_RemovesLineAtZero(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, vase()))
	require.NoError(t, s.UpdateQuantity(ctx, 1, -1))

	assert.Empty(t, s.Lines())
	assert.Equal(t, int64(0), s.Total())
}

func TestUpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, vase()))
	require.NoError(t, s.UpdateQuantity(ctx, 999, 5))

	assert.Equal(t, 1, s.ItemCount())
}

func TestRemove_Idempotent(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, vase()))
	require.NoError(t, s.Remove(ctx, 1))
	after := s.Lines()

	require.NoError(t, s.Remove(ctx, 1))
	assert.Equal(t, after, s.Lines())
	assert.Equal(t, 0, s.ItemCount())
}

func TestTotal_EmptyCartIsZero(t *testing.T) {
	s, _ := newTestStore()
	assert.Equal(t, int64(0), s.Total())
}

func TestTotal_SumsAllLines(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Product{ID: 1, Name: "Vase", UnitPrice: 100000}))
	require.NoError(t, s.Add(ctx, Product{ID: 2, Name: "Bowl", UnitPrice: 50000}))
	require.NoError(t, s.UpdateQuantity(ctx, 2, 2))

	assert.Equal(t, int64(250000), s.Total())
}

func TestLoad_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	s := NewStore(storage, nil)
	require.NoError(t, s.Add(ctx, Product{ID: 1, Name: "Vase", UnitPrice: 100000}))
	require.NoError(t, s.Add(ctx, Product{ID: 2, Name: "Bowl", UnitPrice: 50000}))
	require.NoError(t, s.Add(ctx, Product{ID: 1, Name: "Vase", UnitPrice: 100000}))

	reloaded := NewStore(storage, nil)
	reloaded.Load(ctx)

	assert.Equal(t, s.Lines(), reloaded.Lines())
	assert.Equal(t, s.Total(), reloaded.Total())
}

func TestLoad_CorruptedDataYieldsEmptyCart(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, []byte("{not json")))

	s := NewStore(storage, nil)
	s.Load(ctx)

	assert.Empty(t, s.Lines())
	assert.Equal(t, int64(0), s.Total())
}

func TestLoad_MissingRequiredFieldYieldsEmptyCart(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	// quantity absent on the second line
	require.NoError(t, storage.Save(ctx, []byte(
		`[{"id":1,"name":"Vase","price":100000,"quantity":1},{"id":2,"price":50000}]`)))

	s := NewStore(storage, nil)
	s.Load(ctx)

	assert.Empty(t, s.Lines())
}

func TestLoad_IgnoresUnknownKeys(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, []byte(
		`[{"id":1,"name":"Vase","price":100000,"quantity":2,"color":"blue"}]`)))

	s := NewStore(storage, nil)
	s.Load(ctx)

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 2, s.ItemCount())
}

func TestLoad_AbsentValueYieldsEmptyCart(t *testing.T) {
	s, _ := newTestStore()
	s.Load(context.Background())
	assert.Empty(t, s.Lines())
}

func TestClear_EmptiesAndPersists(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	s := NewStore(storage, nil)
	require.NoError(t, s.Add(ctx, vase()))
	require.NoError(t, s.Clear(ctx))

	assert.Equal(t, 0, s.ItemCount())

	reloaded := NewStore(storage, nil)
	reloaded.Load(ctx)
	assert.Empty(t, reloaded.Lines())
}
