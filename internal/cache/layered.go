package cache

import "time"

// LayeredCache stacks the memory cache over the disk cache: lookups hit
// memory first, disk hits are promoted back into memory
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered embedding cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves an embedding, checking memory first, then disk
func (c *LayeredCache) Get(key string) ([]float32, bool) {
	if vec, found := c.memory.Get(key); found {
		return vec, true
	}

	if vec, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, vec, 0)
		return vec, true
	}

	return nil, false
}

// Set stores an embedding in both layers
func (c *LayeredCache) Set(key string, embedding []float32, ttl time.Duration) error {
	if err := c.memory.Set(key, embedding, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, embedding, ttl)
}

// Delete removes an embedding from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	_ = c.disk.Delete(key)
	return nil
}

// Clear removes all embeddings from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
