package external

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/medreport-assistant-server/internal/domain"
)

// MemoryCache is the hot tier: a bounded in-process LRU in front of the
// durable file cache.
type MemoryCache struct {
	cache *lru.Cache
}

// NewMemoryCache creates an LRU cache holding at most maxItems entries.
func NewMemoryCache(maxItems int) (*MemoryCache, error) {
	cache, err := lru.New(maxItems)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache}, nil
}

// Get returns the cached result for key.
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.MedicalInfo, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	info, ok := v.(*domain.MedicalInfo)
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

// Set stores a result in the LRU.
func (c *MemoryCache) Set(ctx context.Context, key string, info *domain.MedicalInfo) error {
	cp := *info
	c.cache.Add(key, &cp)
	return nil
}

// Close purges the cache.
func (c *MemoryCache) Close() error {
	c.cache.Purge()
	return nil
}
