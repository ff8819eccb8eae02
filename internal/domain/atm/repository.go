package atm

import (
	"context"
	"time"
)

// Stats is an aggregate view of the mirrored fleet
type Stats struct {
	Total           int64
	Working         int64
	GeocodingFailed int64
	Parishes        int64
	LastUpdated     *time.Time
}

// Repository defines persistence operations for ATM records
type Repository interface {
	FindByID(ctx context.Context, id string) (*ATM, error)
	FindAll(ctx context.Context) ([]ATM, error)
	FindByParish(ctx context.Context, parish string) ([]ATM, error)
	Save(ctx context.Context, record *ATM) error
	Stats(ctx context.Context) (*Stats, error)
}

// UnitOfWork executes a batch of repository writes inside a single
// transaction. The ingestion cycle commits a whole snapshot atomically;
// a hard transactional error abandons the batch.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(repo Repository) error) error
}
