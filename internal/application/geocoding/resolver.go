// Package geocoding implements coordinate resolution with a persistent
// cache and a bounded-retry failure ledger.
package geocoding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// country completes every geocoding query; the provider mirror only
// covers Jamaican machines.
const country = "Jamaica"

// Resolution is the outcome of resolving a (place, parish) pair. Failed
// means the coordinates are a parish-centroid fallback rather than a
// real geocode.
type Resolution struct {
	Coordinates geo.Coordinates
	Failed      bool
}

// Resolver resolves place names to coordinates. Cache hits never
// re-query the provider; misses are resolved once per in-flight key and
// failures land in the retry ledger with a degraded centroid result.
type Resolver struct {
	cache    geocoding.CacheRepository
	failures geocoding.FailureRepository
	geocoder geocoding.Geocoder
	logger   *zap.Logger

	inflight singleflight.Group
	sweeps   singleflight.Group
}

// NewResolver creates a new Resolver
func NewResolver(
	cache geocoding.CacheRepository,
	failures geocoding.FailureRepository,
	geocoder geocoding.Geocoder,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		cache:    cache,
		failures: failures,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Resolve maps a (place, parish) pair to coordinates. It never returns
// an error: a provider miss or outage degrades to the parish centroid
// and records a ledger entry for atmID.
func (r *Resolver) Resolve(ctx context.Context, location, parish, atmID string) Resolution {
	if entry, err := r.cache.Find(ctx, location, parish); err == nil && entry != nil {
		return Resolution{Coordinates: entry.Coordinates}
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("Coordinate cache lookup failed",
			zap.String("location", location),
			zap.String("parish", parish),
			zap.Error(err))
	}

	coords, geocodeErr := r.geocodeOnce(ctx, location, parish)
	if geocodeErr == nil {
		return Resolution{Coordinates: coords}
	}

	r.recordFailure(ctx, atmID, location, parish, geocodeErr.Error())

	centroid, matched := geocoding.ParishCentroid(parish)
	if !matched {
		r.logger.Warn("No centroid for parish, using default",
			zap.String("parish", parish),
			zap.String("default", geocoding.DefaultParish))
	}
	return Resolution{Coordinates: centroid, Failed: true}
}

// geocodeOnce queries the provider, deduplicating concurrent calls for
// the same (location, parish) key, and caches a successful result.
func (r *Resolver) geocodeOnce(ctx context.Context, location, parish string) (geo.Coordinates, error) {
	key := location + "|" + parish
	v, err, _ := r.inflight.Do(key, func() (interface{}, error) {
		query := fmt.Sprintf("%s, %s, %s", location, parish, country)
		results, err := r.geocoder.Geocode(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("geocoding %q: %w", query, err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("no geocoding results for %q", query)
		}

		coords := results[0]
		// Best effort: a pre-existing entry for the same key wins and a
		// write failure never fails the resolution.
		if err := r.cache.SaveIfAbsent(ctx, geocoding.NewCacheEntry(location, parish, coords)); err != nil {
			r.logger.Warn("Failed to cache coordinates",
				zap.String("location", location),
				zap.String("parish", parish),
				zap.Error(err))
		}
		return coords, nil
	})
	if err != nil {
		return geo.Coordinates{}, err
	}
	return v.(geo.Coordinates), nil
}

// recordFailure creates or increments the ledger entry for atmID.
func (r *Resolver) recordFailure(ctx context.Context, atmID, location, parish, errMsg string) {
	entry, err := r.failures.FindByATMID(ctx, atmID)
	switch {
	case err == nil && entry != nil:
		entry.MarkRetried(errMsg)
	case err == nil || errors.Is(err, shared.ErrNotFound):
		entry = geocoding.NewFailureEntry(atmID, location, parish, errMsg)
	default:
		r.logger.Error("Failure ledger lookup failed",
			zap.String("atm_id", atmID),
			zap.Error(err))
		return
	}

	if err := r.failures.Save(ctx, entry); err != nil {
		r.logger.Error("Failed to record geocoding failure",
			zap.String("atm_id", atmID),
			zap.Error(err))
		return
	}
	r.logger.Warn("Geocoding failed",
		zap.String("atm_id", atmID),
		zap.String("location", location),
		zap.String("parish", parish),
		zap.Int("retry_count", entry.RetryCount),
		zap.String("error", errMsg))
}

// SweepResult summarizes one retry sweep over the failure ledger
type SweepResult struct {
	Attempted int
	Recovered int
}

// RetrySweep re-resolves every ledger entry still inside the retry
// budget. Entries that succeed are removed; entries that fail keep their
// incremented count. Concurrent sweeps are single-flighted: a second
// caller joins the in-progress sweep instead of duplicating provider
// calls.
func (r *Resolver) RetrySweep(ctx context.Context) (SweepResult, error) {
	v, err, _ := r.sweeps.Do("sweep", func() (interface{}, error) {
		entries, err := r.failures.FindRetryable(ctx)
		if err != nil {
			return SweepResult{}, fmt.Errorf("loading retryable failures: %w", err)
		}

		result := SweepResult{Attempted: len(entries)}
		for i := range entries {
			entry := &entries[i]
			res := r.Resolve(ctx, entry.Location, entry.Parish, entry.ATMID)
			if res.Failed {
				continue
			}
			if err := r.failures.Delete(ctx, entry.ATMID); err != nil {
				r.logger.Warn("Failed to clear recovered ledger entry",
					zap.String("atm_id", entry.ATMID),
					zap.Error(err))
				continue
			}
			result.Recovered++
			r.logger.Info("Recovered geocoding on retry",
				zap.String("atm_id", entry.ATMID),
				zap.String("location", entry.Location))
		}
		return result, nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	return v.(SweepResult), nil
}
