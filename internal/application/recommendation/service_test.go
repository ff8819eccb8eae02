package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/preference"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

type mockATMRepo struct {
	mock.Mock
}

func (m *mockATMRepo) FindByID(ctx context.Context, id string) (*atm.ATM, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*atm.ATM), args.Error(1)
}

func (m *mockATMRepo) FindAll(ctx context.Context) ([]atm.ATM, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]atm.ATM), args.Error(1)
}

func (m *mockATMRepo) FindByParish(ctx context.Context, parish string) ([]atm.ATM, error) {
	args := m.Called(ctx, parish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]atm.ATM), args.Error(1)
}

func (m *mockATMRepo) Save(ctx context.Context, record *atm.ATM) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockATMRepo) Stats(ctx context.Context) (*atm.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*atm.Stats), args.Error(1)
}

type mockPreferenceRepo struct {
	mock.Mock
}

func (m *mockPreferenceRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*preference.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.Preferences), args.Error(1)
}

func (m *mockPreferenceRepo) Save(ctx context.Context, prefs *preference.Preferences) error {
	return m.Called(ctx, prefs).Error(0)
}

func newRecommendService(atmRepo *mockATMRepo, prefRepo *mockPreferenceRepo) *Service {
	return NewService(atmRepo, prefRepo, NewScorerWithClock(fixedClock), zap.NewNop())
}

func TestRecommendExcludesUnusableCandidates(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()
	position := *testCoords(t, 18.0108, -76.7983)

	working := candidate(t, "NCB Half Way Tree", testCoords(t, 18.0108, -76.7983))
	down := candidate(t, "NCB Cross Roads", testCoords(t, 18.0050, -76.7900))
	down.Status = atm.StatusDown
	unresolved := candidate(t, "NCB Papine", nil)
	centroidOnly := candidate(t, "NCB Constant Spring", testCoords(t, 18.0280, -76.7970))
	centroidOnly.GeocodingFailed = true

	prefRepo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	atmRepo.On("FindAll", mock.Anything).
		Return([]atm.ATM{working, down, unresolved, centroidOnly}, nil)

	svc := newRecommendService(atmRepo, prefRepo)
	recs, err := svc.Recommend(context.Background(), userID, position, 0)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sbj_NCB Half Way Tree", recs[0].ATMID)
	assert.Equal(t, "National Commercial Bank", recs[0].ATMData.BankName)
}

func TestRecommendCapsSearchRadius(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()
	position := *testCoords(t, 18.0108, -76.7983)

	prefs := preference.Default(userID)
	prefs.MaxRadiusKm = 100

	near := candidate(t, "NCB Half Way Tree", testCoords(t, 18.0108, -76.7983))
	// Roughly 28 km north, inside the user's 100 km but past the 20 km cap.
	far := candidate(t, "NCB Port Maria", testCoords(t, 18.2608, -76.7983))

	prefRepo.On("FindByUserID", mock.Anything, userID).Return(prefs, nil)
	atmRepo.On("FindAll", mock.Anything).Return([]atm.ATM{near, far}, nil)

	svc := newRecommendService(atmRepo, prefRepo)
	recs, err := svc.Recommend(context.Background(), userID, position, 10)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sbj_NCB Half Way Tree", recs[0].ATMID)
}

func TestRecommendDefaultLimit(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()
	position := *testCoords(t, 18.0108, -76.7983)

	fleet := []atm.ATM{
		candidate(t, "NCB Half Way Tree", testCoords(t, 18.0108, -76.7983)),
		candidate(t, "NCB Cross Roads", testCoords(t, 18.0050, -76.7900)),
		candidate(t, "NCB Liguanea", testCoords(t, 18.0200, -76.7700)),
		candidate(t, "NCB Manor Park", testCoords(t, 18.0450, -76.7950)),
	}
	prefRepo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	atmRepo.On("FindAll", mock.Anything).Return(fleet, nil)

	svc := newRecommendService(atmRepo, prefRepo)
	recs, err := svc.Recommend(context.Background(), userID, position, 0)

	require.NoError(t, err)
	assert.Len(t, recs, DefaultLimit)
}

func TestRecommendPreferenceLookupErrorPropagates(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()

	prefRepo.On("FindByUserID", mock.Anything, userID).Return(nil, errors.New("connection refused"))

	svc := newRecommendService(atmRepo, prefRepo)
	_, err := svc.Recommend(context.Background(), userID, *testCoords(t, 18.0108, -76.7983), 0)

	require.Error(t, err)
	atmRepo.AssertNotCalled(t, "FindAll", mock.Anything)
}

func TestRecommendationPayloadShape(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()
	position := *testCoords(t, 18.0108, -76.7983)

	machine := candidate(t, "NCB Half Way Tree", testCoords(t, 18.0108, -76.7983))
	machine.UpdatedAt = time.Date(2026, 8, 28, 11, 30, 0, 0, time.UTC)

	prefRepo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	atmRepo.On("FindAll", mock.Anything).Return([]atm.ATM{machine}, nil)

	svc := newRecommendService(atmRepo, prefRepo)
	recs, err := svc.Recommend(context.Background(), userID, position, 1)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "NCB", rec.ATMData.Bank)
	assert.Equal(t, 100.0, rec.ATMData.WithdrawalFee)
	assert.Equal(t, 50.0, rec.ATMData.DepositFee)
	assert.Equal(t, "2026-08-28T11:30:00Z", rec.ATMData.LastUpdated)
	assert.NotEmpty(t, rec.Reasons)
	assert.InDelta(t, 0.0, rec.DistanceKm, 0.01)
}

func TestFilterForUserFallsBackToDefaults(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()

	fleet := filterFleet(t)
	prefRepo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	atmRepo.On("FindAll", mock.Anything).Return(fleet, nil)

	svc := newRecommendService(atmRepo, prefRepo)
	position := testCoords(t, 18.0108, -76.7983)
	subset, err := svc.FilterForUser(context.Background(), userID, position)

	require.NoError(t, err)
	assert.NotEmpty(t, subset)
}

func TestFilterForUserHonorsStoredPreferences(t *testing.T) {
	atmRepo := new(mockATMRepo)
	prefRepo := new(mockPreferenceRepo)
	userID := uuid.New()

	stored := preference.Default(userID)
	stored.PreferredBanks = preference.BankSet{"BNS"}
	stored.TransactionTypes = preference.TransactionTypes{preference.TransactionWithdrawal}

	prefRepo.On("FindByUserID", mock.Anything, userID).Return(stored, nil)
	atmRepo.On("FindAll", mock.Anything).Return(filterFleet(t), nil)

	svc := newRecommendService(atmRepo, prefRepo)
	position := testCoords(t, 18.0108, -76.7983)
	subset, err := svc.FilterForUser(context.Background(), userID, position)

	require.NoError(t, err)
	require.Len(t, subset, 1)
	assert.Equal(t, atm.BankBNS, subset[0].Bank())
}
