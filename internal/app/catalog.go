package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/pkg/cache"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogService lists products for the storefront page. The catalog changes
// rarely and the listing is the hottest read, so it goes through redis with a
// short TTL. The cache is optional: a nil Cache means every call hits the DB.
type CatalogService struct {
	store ports.Store
	cache cache.Cache
}

func NewCatalogService(store ports.Store, c cache.Cache) *CatalogService {
	return &CatalogService{store: store, cache: c}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache == nil {
		return s.store.ListProducts(ctx)
	}

	key := s.cache.Key("products", "all")
	if cached, err := s.cache.Get(ctx, key); err != nil {
		// Cache trouble must not take the catalog down.
		slog.WarnContext(ctx, "catalog cache read failed", "error", err)
	} else if cached != "" {
		var products []domain.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			return products, nil
		}
		slog.WarnContext(ctx, "catalog cache entry corrupt, falling back to store")
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, key, string(data), catalogCacheTTL); err != nil {
			slog.WarnContext(ctx, "catalog cache write failed", "error", err)
		}
	}
	return products, nil
}
