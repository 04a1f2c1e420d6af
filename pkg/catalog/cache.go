package catalog

import (
	"context"
	"sync"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/jellydator/ttlcache/v3"
)

const cacheKey = "catalog"

// CachedSource memoizes a successful fetch for a TTL. Failures are never
// cached.
type CachedSource struct {
	source Source
	cache  *ttlcache.Cache[string, []cart.CatalogItem]
	mu     sync.Mutex
}

// Cached wraps source so repeated fetches within ttl reuse the last result.
func Cached(source Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		cache: ttlcache.New[string, []cart.CatalogItem](
			ttlcache.WithTTL[string, []cart.CatalogItem](ttl),
			ttlcache.WithDisableTouchOnHit[string, []cart.CatalogItem](),
		),
	}
}

// Fetch implements Source.
func (c *CachedSource) Fetch(ctx context.Context) ([]cart.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item := c.cache.Get(cacheKey); item != nil && !item.IsExpired() {
		return append([]cart.CatalogItem(nil), item.Value()...), nil
	}
	items, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, append([]cart.CatalogItem(nil), items...), ttlcache.DefaultTTL)
	return items, nil
}

// Invalidate drops the cached catalog.
func (c *CachedSource) Invalidate() {
	c.cache.Delete(cacheKey)
}
