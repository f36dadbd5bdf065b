package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps embeddings in process memory with TTL eviction
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new in-memory embedding cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves an embedding from the cache
func (c *MemoryCache) Get(key string) ([]float32, bool) {
	if val, found := c.cache.Get(key); found {
		stored := val.([]float32)
		// Copy so callers cannot mutate the cached vector
		out := make([]float32, len(stored))
		copy(out, stored)
		return out, true
	}
	return nil, false
}

// Set stores an embedding with the given TTL
func (c *MemoryCache) Set(key string, embedding []float32, ttl time.Duration) error {
	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	c.cache.Set(key, stored, ttl)
	return nil
}

// Delete removes an embedding from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all cached embeddings
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
