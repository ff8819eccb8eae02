// Package ingestion drives the periodic reconciliation of the provider
// snapshot into the local store.
package ingestion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appgeocoding "github.com/neighbourhood/backend/internal/application/geocoding"
	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/provider"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// providerTimeLayout is the timestamp format used by the status feed.
const providerTimeLayout = "2006-01-02 15:04:05"

// Reconciler normalizes one provider record and upserts it into the
// store. Coordinates are only re-resolved when absent or previously
// failed; a cached success is never re-queried.
type Reconciler struct {
	resolver *appgeocoding.Resolver
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a new Reconciler
func NewReconciler(resolver *appgeocoding.Resolver, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile merges one provider record into the store through repo,
// which is expected to be transaction-scoped by the caller.
func (r *Reconciler) Reconcile(ctx context.Context, repo atm.Repository, rec provider.Record) error {
	if rec.ATMID == "" {
		return shared.NewDomainError("MALFORMED_RECORD", "Provider record has no identifier")
	}

	timestamp, err := time.Parse(providerTimeLayout, rec.Timestamp)
	if err != nil {
		// An unparsable timestamp never rejects a record.
		timestamp = r.now()
	}

	existing, err := repo.FindByID(ctx, rec.ATMID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing == nil {
		return r.create(ctx, repo, rec, timestamp)
	}
	return r.update(ctx, repo, existing, rec, timestamp)
}

func (r *Reconciler) create(ctx context.Context, repo atm.Repository, rec provider.Record, timestamp time.Time) error {
	// Geocoding always uses the unprefixed place name.
	res := r.resolver.Resolve(ctx, rec.Location, rec.Parish, rec.ATMID)

	now := r.now()
	record := &atm.ATM{
		ID:               rec.ATMID,
		Location:         atm.PrefixLocation(rec.Location),
		Parish:           rec.Parish,
		DepositAvailable: rec.Deposit == "Y",
		Status:           atm.ParseStatus(rec.Status),
		LastUsed:         rec.LastUsed,
		Timestamp:        timestamp,
		Coordinates:      &res.Coordinates,
		GeocodingFailed:  res.Failed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	r.logger.Debug("Created ATM record", zap.String("atm_id", record.ID))
	return repo.Save(ctx, record)
}

func (r *Reconciler) update(ctx context.Context, repo atm.Repository, existing *atm.ATM, rec provider.Record, timestamp time.Time) error {
	existing.Location = atm.PrefixLocation(rec.Location)
	existing.Parish = rec.Parish
	existing.DepositAvailable = rec.Deposit == "Y"
	existing.Status = atm.ParseStatus(rec.Status)
	existing.LastUsed = rec.LastUsed
	existing.Timestamp = timestamp
	existing.UpdatedAt = r.now()

	if !existing.HasCoordinates() || existing.GeocodingFailed {
		res := r.resolver.Resolve(ctx, rec.Location, rec.Parish, rec.ATMID)
		existing.Coordinates = &res.Coordinates
		existing.GeocodingFailed = res.Failed
	}

	r.logger.Debug("Updated ATM record", zap.String("atm_id", existing.ID))
	return repo.Save(ctx, existing)
}
