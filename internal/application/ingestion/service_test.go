package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appgeocoding "github.com/neighbourhood/backend/internal/application/geocoding"
	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/domain/provider"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// memoryRepository is an in-memory atm.Repository for exercising the
// reconciliation flow without a database.
type memoryRepository struct {
	records map[string]atm.ATM
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]atm.ATM)}
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*atm.ATM, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]atm.ATM, error) {
	out := make([]atm.ATM, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryRepository) FindByParish(_ context.Context, parish string) ([]atm.ATM, error) {
	var out []atm.ATM
	for _, rec := range r.records {
		if rec.Parish == parish {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryRepository) Save(_ context.Context, record *atm.ATM) error {
	r.records[record.ID] = *record
	return nil
}

func (r *memoryRepository) Stats(_ context.Context) (*atm.Stats, error) {
	return &atm.Stats{Total: int64(len(r.records))}, nil
}

// memoryUnitOfWork hands the shared repository to the batch callback. A
// configured error simulates a failed commit.
type memoryUnitOfWork struct {
	repo      *memoryRepository
	commitErr error
}

func (u *memoryUnitOfWork) InTransaction(_ context.Context, fn func(repo atm.Repository) error) error {
	if err := fn(u.repo); err != nil {
		return err
	}
	return u.commitErr
}

type memoryCache struct {
	entries map[string]geocoding.CacheEntry
}

func cacheKey(location, parish string) string { return location + "|" + parish }

func (c *memoryCache) Find(_ context.Context, location, parish string) (*geocoding.CacheEntry, error) {
	entry, ok := c.entries[cacheKey(location, parish)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &entry, nil
}

func (c *memoryCache) SaveIfAbsent(_ context.Context, entry *geocoding.CacheEntry) error {
	key := cacheKey(entry.Location, entry.Parish)
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = *entry
	}
	return nil
}

type memoryFailures struct {
	entries map[string]geocoding.FailureEntry
}

func (f *memoryFailures) FindByATMID(_ context.Context, atmID string) (*geocoding.FailureEntry, error) {
	entry, ok := f.entries[atmID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &entry, nil
}

func (f *memoryFailures) FindRetryable(_ context.Context) ([]geocoding.FailureEntry, error) {
	var out []geocoding.FailureEntry
	for _, entry := range f.entries {
		if entry.Retryable() {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *memoryFailures) Save(_ context.Context, entry *geocoding.FailureEntry) error {
	f.entries[entry.ATMID] = *entry
	return nil
}

func (f *memoryFailures) Delete(_ context.Context, atmID string) error {
	delete(f.entries, atmID)
	return nil
}

// countingGeocoder returns a fixed coordinate and counts provider calls.
type countingGeocoder struct {
	calls  int
	coords geo.Coordinates
	fail   bool
}

func (g *countingGeocoder) Geocode(_ context.Context, _ string) ([]geo.Coordinates, error) {
	g.calls++
	if g.fail {
		return nil, nil
	}
	return []geo.Coordinates{g.coords}, nil
}

type stubProvider struct {
	records []provider.Record
	err     error
}

func (p *stubProvider) FetchSnapshot(_ context.Context) ([]provider.Record, error) {
	return p.records, p.err
}

type ingestionFixture struct {
	service  *Service
	repo     *memoryRepository
	uow      *memoryUnitOfWork
	geocoder *countingGeocoder
	failures *memoryFailures
}

func newIngestionFixture(t *testing.T, records []provider.Record) *ingestionFixture {
	t.Helper()
	coords, err := geo.NewCoordinates(18.0108, -76.7983)
	require.NoError(t, err)

	geocoder := &countingGeocoder{coords: coords}
	cache := &memoryCache{entries: make(map[string]geocoding.CacheEntry)}
	failures := &memoryFailures{entries: make(map[string]geocoding.FailureEntry)}
	resolver := appgeocoding.NewResolver(cache, failures, geocoder, zap.NewNop())
	reconciler := NewReconciler(resolver, zap.NewNop())
	repo := newMemoryRepository()
	uow := &memoryUnitOfWork{repo: repo}
	service := NewService(&stubProvider{records: records}, uow, reconciler, resolver, zap.NewNop())

	return &ingestionFixture{
		service:  service,
		repo:     repo,
		uow:      uow,
		geocoder: geocoder,
		failures: failures,
	}
}

func record(id, location string) provider.Record {
	return provider.Record{
		ATMID:     id,
		Location:  location,
		Parish:    "St Andrew",
		Deposit:   "Y",
		Status:    "WORKING",
		LastUsed:  "00:42:00",
		Timestamp: "2026-08-28 09:15:00",
	}
}

func TestProcessCreatesRecordsFromSnapshot(t *testing.T) {
	f := newIngestionFixture(t, nil)
	records := []provider.Record{record("sbj_hwt1", "Half Way Tree"), record("sbj_nk1", "New Kingston")}

	processed, skipped, err := f.service.Process(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 0, skipped)

	stored, err := f.repo.FindByID(context.Background(), "sbj_hwt1")
	require.NoError(t, err)
	assert.Equal(t, "sbj_Half Way Tree", stored.Location)
	assert.True(t, stored.DepositAvailable)
	assert.Equal(t, atm.StatusWorking, stored.Status)
	require.NotNil(t, stored.Coordinates)
	assert.InDelta(t, 18.0108, stored.Coordinates.Latitude, 1e-9)
	assert.False(t, stored.GeocodingFailed)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC), stored.Timestamp)
}

func TestProcessSkipsRecordWithoutIdentifier(t *testing.T) {
	f := newIngestionFixture(t, nil)
	records := []provider.Record{record("", "Ghost Plaza"), record("sbj_hwt1", "Half Way Tree")}

	processed, skipped, err := f.service.Process(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, skipped)
	assert.Len(t, f.repo.records, 1)
}

func TestProcessCommitErrorAbandonsBatch(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.uow.commitErr = errors.New("deadlock detected")

	processed, skipped, err := f.service.Process(context.Background(), []provider.Record{record("sbj_hwt1", "Half Way Tree")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "committing ingestion batch")
	assert.Equal(t, 0, processed)
	assert.Equal(t, 0, skipped)
}

func TestProcessReplayedSnapshotIsIdempotent(t *testing.T) {
	f := newIngestionFixture(t, nil)
	snapshot := []provider.Record{record("sbj_hwt1", "Half Way Tree"), record("sbj_nk1", "New Kingston")}

	_, _, err := f.service.Process(context.Background(), snapshot)
	require.NoError(t, err)
	first, err := f.repo.FindAll(context.Background())
	require.NoError(t, err)

	_, _, err = f.service.Process(context.Background(), snapshot)
	require.NoError(t, err)
	second, err := f.repo.FindAll(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for _, before := range first {
		after, err := f.repo.FindByID(context.Background(), before.ID)
		require.NoError(t, err)

		// Only the update timestamp may move on a replay.
		assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
		before.UpdatedAt = time.Time{}
		afterCopy := *after
		afterCopy.UpdatedAt = time.Time{}
		assert.Equal(t, before, afterCopy)
	}
}

func TestProcessUpdateDoesNotRegeocodeResolvedRecord(t *testing.T) {
	f := newIngestionFixture(t, nil)
	rec := record("sbj_hwt1", "Half Way Tree")

	_, _, err := f.service.Process(context.Background(), []provider.Record{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, f.geocoder.calls)

	rec.Status = "DOWN"
	_, _, err = f.service.Process(context.Background(), []provider.Record{rec})
	require.NoError(t, err)

	assert.Equal(t, 1, f.geocoder.calls)
	stored, err := f.repo.FindByID(context.Background(), "sbj_hwt1")
	require.NoError(t, err)
	assert.Equal(t, atm.StatusDown, stored.Status)
}

func TestProcessUpdateRetriesFailedGeocode(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.geocoder.fail = true
	rec := record("sbj_hwt1", "Half Way Tree")

	_, _, err := f.service.Process(context.Background(), []provider.Record{rec})
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), "sbj_hwt1")
	require.NoError(t, err)
	assert.True(t, stored.GeocodingFailed)
	centroid, _ := geocoding.ParishCentroid("St Andrew")
	assert.Equal(t, centroid, *stored.Coordinates)

	// The provider recovers: the next cycle resolves real coordinates.
	f.geocoder.fail = false
	_, _, err = f.service.Process(context.Background(), []provider.Record{rec})
	require.NoError(t, err)

	stored, err = f.repo.FindByID(context.Background(), "sbj_hwt1")
	require.NoError(t, err)
	assert.False(t, stored.GeocodingFailed)
	assert.InDelta(t, 18.0108, stored.Coordinates.Latitude, 1e-9)
}

func TestReconcileUnparsableTimestampUsesNow(t *testing.T) {
	f := newIngestionFixture(t, nil)
	rec := record("sbj_hwt1", "Half Way Tree")
	rec.Timestamp = "not-a-timestamp"

	before := time.Now()
	_, _, err := f.service.Process(context.Background(), []provider.Record{rec})
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), "sbj_hwt1")
	require.NoError(t, err)
	assert.False(t, stored.Timestamp.Before(before))
}

func TestRunCycleFetchFailureLeavesStoreUntouched(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.service.provider = &stubProvider{err: errors.New("upstream 503")}

	_, err := f.service.RunCycle(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching provider snapshot")
	assert.Empty(t, f.repo.records)
}

func TestRunCycleReportsCounts(t *testing.T) {
	records := []provider.Record{record("sbj_hwt1", "Half Way Tree"), record("", "Ghost Plaza")}
	f := newIngestionFixture(t, records)

	result, err := f.service.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Sweep.Attempted)
}
