package cache

import (
	"context"
	"sync"

	"github.com/neighbourhood/backend/internal/domain/geocoding"
)

// InMemoryCoordinateCache is the L1 tier of the coordinate cache. Entries
// are immutable once written, so there is no TTL or invalidation.
type InMemoryCoordinateCache struct {
	mu      sync.RWMutex
	entries map[string]*geocoding.CacheEntry
}

// NewInMemoryCoordinateCache creates an empty in-memory coordinate cache
func NewInMemoryCoordinateCache() *InMemoryCoordinateCache {
	return &InMemoryCoordinateCache{
		entries: make(map[string]*geocoding.CacheEntry),
	}
}

// Get returns the cached entry for a (location, parish) pair, or nil
func (c *InMemoryCoordinateCache) Get(_ context.Context, location, parish string) *geocoding.CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[coordinateKey(location, parish)]
}

// Set stores an entry unless the key is already present
func (c *InMemoryCoordinateCache) Set(_ context.Context, entry *geocoding.CacheEntry) {
	key := coordinateKey(entry.Location, entry.Parish)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = entry
	}
}

// Len returns the number of cached entries
func (c *InMemoryCoordinateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func coordinateKey(location, parish string) string {
	return location + "|" + parish
}
