package recommendation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/geo"
	"github.com/neighbourhood/backend/internal/domain/preference"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// maxSearchRadiusKm caps the user radius during candidate prefetch.
const maxSearchRadiusKm = 20

// DefaultLimit is the number of recommendations returned when the
// caller does not ask for a specific k.
const DefaultLimit = 3

// Service produces ranked recommendations and preference-filtered
// candidate sets over the local mirror.
type Service struct {
	atmRepo  atm.Repository
	prefRepo preference.Repository
	scorer   *Scorer
	logger   *zap.Logger
}

// NewService creates a new recommendation Service
func NewService(atmRepo atm.Repository, prefRepo preference.Repository, scorer *Scorer, logger *zap.Logger) *Service {
	return &Service{
		atmRepo:  atmRepo,
		prefRepo: prefRepo,
		scorer:   scorer,
		logger:   logger,
	}
}

// preferencesFor loads the user's stored preferences, falling back to
// the permissive defaults when none were ever saved.
func (s *Service) preferencesFor(ctx context.Context, userID uuid.UUID) (*preference.Preferences, error) {
	prefs, err := s.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return preference.Default(userID), nil
	}
	if err != nil {
		return nil, err
	}
	prefs.Normalize()
	return prefs, nil
}

// Recommend returns the top-k machines for a user at the given
// position. Machines reported DOWN, missing coordinates or carrying
// only a centroid fallback are not candidates.
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID, position geo.Coordinates, limit int) ([]Recommendation, error) {
	prefs, err := s.preferencesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	all, err := s.atmRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	maxRadius := prefs.MaxRadiusKm
	if maxRadius > maxSearchRadiusKm {
		maxRadius = maxSearchRadiusKm
	}

	candidates := make([]atm.ATM, 0, len(all))
	for _, c := range all {
		if !c.HasCoordinates() || c.GeocodingFailed || c.Status == atm.StatusDown {
			continue
		}
		if position.DistanceKm(*c.Coordinates) > float64(maxRadius) {
			continue
		}
		candidates = append(candidates, c)
	}

	ranked := s.scorer.Rank(candidates, position, prefs, limit)
	out := make([]Recommendation, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, NewRecommendation(r))
	}

	s.logger.Info("Generated recommendations",
		zap.String("user_id", userID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(out)))
	return out, nil
}

// FilterForUser applies the cascading preference filter to the full
// candidate set. It never errors out of an over-specified preference:
// every tier miss falls through to a looser one.
func (s *Service) FilterForUser(ctx context.Context, userID uuid.UUID, position *geo.Coordinates) ([]atm.ATM, error) {
	prefs, err := s.preferencesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.atmRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	subset, tier := FilterWithTier(candidates, prefs, position)
	s.logger.Debug("Filtered candidates",
		zap.String("user_id", userID.String()),
		zap.String("tier", tier),
		zap.Int("in", len(candidates)),
		zap.Int("out", len(subset)))
	return subset, nil
}
