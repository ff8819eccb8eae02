// Package geocoding holds the coordinate cache, the bounded-retry failure
// ledger and the external geocoder port.
package geocoding

import (
	"time"

	"github.com/neighbourhood/backend/internal/domain/geo"
)

// CacheEntry maps a (place, parish) pair to its resolved coordinates.
// Entries are written once on first successful resolution and never
// invalidated: the position of a physical site does not change.
type CacheEntry struct {
	Location    string
	Parish      string
	Coordinates geo.Coordinates
	CreatedAt   time.Time
}

// NewCacheEntry creates a cache entry for a successful resolution
func NewCacheEntry(location, parish string, coords geo.Coordinates) *CacheEntry {
	return &CacheEntry{
		Location:    location,
		Parish:      parish,
		Coordinates: coords,
		CreatedAt:   time.Now(),
	}
}
