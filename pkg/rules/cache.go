package rules

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultProgramTTL bounds how long compiled programs stay cached.
const DefaultProgramTTL = 10 * time.Minute

// TTLProgramCache is a ProgramCache that expires idle programs.
type TTLProgramCache struct {
	cache *ttlcache.Cache[string, any]
}

// NewTTLProgramCache builds a cache whose entries expire after ttl without
// access. A non-positive ttl uses DefaultProgramTTL.
func NewTTLProgramCache(ttl time.Duration) *TTLProgramCache {
	if ttl <= 0 {
		ttl = DefaultProgramTTL
	}
	return &TTLProgramCache{
		cache: ttlcache.New[string, any](ttlcache.WithTTL[string, any](ttl)),
	}
}

// Get implements ProgramCache.
func (c *TTLProgramCache) Get(key string) (any, bool) {
	item := c.cache.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Set implements ProgramCache.
func (c *TTLProgramCache) Set(key string, value any) {
	c.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Len returns the number of cached programs.
func (c *TTLProgramCache) Len() int {
	return c.cache.Len()
}
