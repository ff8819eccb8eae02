package geocoding

import (
	"context"

	"github.com/neighbourhood/backend/internal/domain/geo"
)

// Geocoder is the port to an external geocoding provider. It returns
// candidate coordinates ordered by relevance; the first result is
// authoritative. An empty slice with a nil error means the provider had
// no answer for the query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]geo.Coordinates, error)
}

// CacheRepository persists resolved (place, parish) coordinates
type CacheRepository interface {
	Find(ctx context.Context, location, parish string) (*CacheEntry, error)
	// SaveIfAbsent writes the entry unless one already exists for the
	// same (location, parish) key; an existing entry always wins.
	SaveIfAbsent(ctx context.Context, entry *CacheEntry) error
}

// FailureRepository persists the bounded-retry failure ledger
type FailureRepository interface {
	FindByATMID(ctx context.Context, atmID string) (*FailureEntry, error)
	FindRetryable(ctx context.Context) ([]FailureEntry, error)
	Save(ctx context.Context, entry *FailureEntry) error
	Delete(ctx context.Context, atmID string) error
}
