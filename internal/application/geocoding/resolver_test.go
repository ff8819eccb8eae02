package geocoding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/geocoding"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

type mockCacheRepository struct {
	mock.Mock
}

func (m *mockCacheRepository) Find(ctx context.Context, location, parish string) (*geocoding.CacheEntry, error) {
	args := m.Called(ctx, location, parish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocoding.CacheEntry), args.Error(1)
}

func (m *mockCacheRepository) SaveIfAbsent(ctx context.Context, entry *geocoding.CacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type mockFailureRepository struct {
	mock.Mock
}

func (m *mockFailureRepository) FindByATMID(ctx context.Context, atmID string) (*geocoding.FailureEntry, error) {
	args := m.Called(ctx, atmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocoding.FailureEntry), args.Error(1)
}

func (m *mockFailureRepository) FindRetryable(ctx context.Context) ([]geocoding.FailureEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]geocoding.FailureEntry), args.Error(1)
}

func (m *mockFailureRepository) Save(ctx context.Context, entry *geocoding.FailureEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockFailureRepository) Delete(ctx context.Context, atmID string) error {
	return m.Called(ctx, atmID).Error(0)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, query string) ([]geo.Coordinates, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]geo.Coordinates), args.Error(1)
}

func mustCoords(t *testing.T, lat, lng float64) geo.Coordinates {
	t.Helper()
	c, err := geo.NewCoordinates(lat, lng)
	require.NoError(t, err)
	return c
}

func newTestResolver(cache *mockCacheRepository, failures *mockFailureRepository, geocoder *mockGeocoder) *Resolver {
	return NewResolver(cache, failures, geocoder, zap.NewNop())
}

func TestResolveCacheHitNeverQueriesProvider(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	cached := geocoding.NewCacheEntry("Half Way Tree", "St Andrew", mustCoords(t, 18.0108, -76.7983))
	cache.On("Find", mock.Anything, "Half Way Tree", "St Andrew").Return(cached, nil)

	r := newTestResolver(cache, failures, geocoder)
	res := r.Resolve(context.Background(), "Half Way Tree", "St Andrew", "sbj_hwt1")

	assert.False(t, res.Failed)
	assert.InDelta(t, 18.0108, res.Coordinates.Latitude, 1e-9)
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	failures.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestResolveMissGeocodesAndCaches(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	cache.On("Find", mock.Anything, "Half Way Tree", "St Andrew").Return(nil, shared.ErrNotFound)
	coords := mustCoords(t, 18.0108, -76.7983)
	geocoder.On("Geocode", mock.Anything, "Half Way Tree, St Andrew, Jamaica").
		Return([]geo.Coordinates{coords, mustCoords(t, 17.9, -76.5)}, nil)
	cache.On("SaveIfAbsent", mock.Anything, mock.MatchedBy(func(e *geocoding.CacheEntry) bool {
		return e.Location == "Half Way Tree" && e.Parish == "St Andrew"
	})).Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	res := r.Resolve(context.Background(), "Half Way Tree", "St Andrew", "sbj_hwt1")

	assert.False(t, res.Failed)
	// the first candidate is authoritative
	assert.InDelta(t, 18.0108, res.Coordinates.Latitude, 1e-9)
	cache.AssertExpectations(t)
	failures.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestResolveNoResultsFallsBackToCentroid(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	cache.On("Find", mock.Anything, "Unknown Plaza", "Clarendon").Return(nil, shared.ErrNotFound)
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return([]geo.Coordinates{}, nil)
	failures.On("FindByATMID", mock.Anything, "sbj_x1").Return(nil, shared.ErrNotFound)
	failures.On("Save", mock.Anything, mock.MatchedBy(func(e *geocoding.FailureEntry) bool {
		return e.ATMID == "sbj_x1" && e.RetryCount == 1
	})).Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	res := r.Resolve(context.Background(), "Unknown Plaza", "Clarendon", "sbj_x1")

	assert.True(t, res.Failed)
	centroid, ok := geocoding.ParishCentroid("Clarendon")
	require.True(t, ok)
	assert.Equal(t, centroid, res.Coordinates)
	failures.AssertExpectations(t)
}

func TestResolveRepeatFailureIncrementsLedger(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	cache.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, errors.New("upstream timeout"))

	existing := geocoding.NewFailureEntry("sbj_x1", "Unknown Plaza", "Clarendon", "no results")
	failures.On("FindByATMID", mock.Anything, "sbj_x1").Return(existing, nil)
	failures.On("Save", mock.Anything, mock.MatchedBy(func(e *geocoding.FailureEntry) bool {
		return e.ATMID == "sbj_x1" && e.RetryCount == 2
	})).Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	res := r.Resolve(context.Background(), "Unknown Plaza", "Clarendon", "sbj_x1")

	assert.True(t, res.Failed)
	failures.AssertExpectations(t)
}

func TestResolveUnknownParishUsesDefaultCentroid(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	cache.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return([]geo.Coordinates{}, nil)
	failures.On("FindByATMID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	failures.On("Save", mock.Anything, mock.Anything).Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	res := r.Resolve(context.Background(), "Somewhere", "Atlantis", "sbj_x2")

	assert.True(t, res.Failed)
	fallback, _ := geocoding.ParishCentroid(geocoding.DefaultParish)
	assert.Equal(t, fallback, res.Coordinates)
}

func TestRetrySweepRecoversAndClearsLedger(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	entry := geocoding.NewFailureEntry("sbj_x1", "Unknown Plaza", "Clarendon", "no results")
	failures.On("FindRetryable", mock.Anything).Return([]geocoding.FailureEntry{*entry}, nil)
	cache.On("Find", mock.Anything, "Unknown Plaza", "Clarendon").Return(nil, shared.ErrNotFound)
	geocoder.On("Geocode", mock.Anything, mock.Anything).
		Return([]geo.Coordinates{mustCoords(t, 17.96, -77.24)}, nil)
	cache.On("SaveIfAbsent", mock.Anything, mock.Anything).Return(nil)
	failures.On("Delete", mock.Anything, "sbj_x1").Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	result, err := r.RetrySweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Recovered)
	failures.AssertExpectations(t)
}

func TestRetrySweepKeepsFailingEntries(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	entry := geocoding.NewFailureEntry("sbj_x1", "Unknown Plaza", "Clarendon", "no results")
	failures.On("FindRetryable", mock.Anything).Return([]geocoding.FailureEntry{*entry}, nil)
	cache.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return([]geo.Coordinates{}, nil)
	failures.On("FindByATMID", mock.Anything, "sbj_x1").Return(entry, nil)
	failures.On("Save", mock.Anything, mock.Anything).Return(nil)

	r := newTestResolver(cache, failures, geocoder)
	result, err := r.RetrySweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 0, result.Recovered)
	failures.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRetrySweepLedgerErrorPropagates(t *testing.T) {
	cache := new(mockCacheRepository)
	failures := new(mockFailureRepository)
	geocoder := new(mockGeocoder)

	failures.On("FindRetryable", mock.Anything).Return(nil, errors.New("connection reset"))

	r := newTestResolver(cache, failures, geocoder)
	_, err := r.RetrySweep(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retryable failures")
}
