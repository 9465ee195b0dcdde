package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
)

type fakeCache struct {
	entries map[string]string
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	f.entries[key] = value.(string)
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.gets++
	return f.entries[key], nil
}

func (f *fakeCache) Key(operation, suffix string) string {
	return "test:" + operation + ":" + suffix
}

func TestCatalogListPopulatesAndServesCache(t *testing.T) {
	store := newFakeStore()
	store.products = []domain.Product{{ID: "prod_1", Name: "Kopi", Price: 85000}}
	c := newFakeCache()
	svc := NewCatalogService(store, c)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, c.sets)

	// Second call is served from the cache; mutate the store to prove it.
	store.products = nil
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCatalogListWithoutCache(t *testing.T) {
	store := newFakeStore()
	store.products = []domain.Product{{ID: "prod_1", Name: "Kopi", Price: 85000}}
	svc := NewCatalogService(store, nil)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
