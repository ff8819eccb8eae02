// Package preference manages per-user recommendation preferences.
package preference

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/preference"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// Service handles preference reads and writes
type Service struct {
	prefRepo preference.Repository
	logger   *zap.Logger
}

// NewService creates a new preference Service
func NewService(prefRepo preference.Repository, logger *zap.Logger) *Service {
	return &Service{prefRepo: prefRepo, logger: logger}
}

// Get returns the user's preferences, falling back to the permissive
// defaults when none were ever saved. Absence is not an error.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*PreferencesResponse, error) {
	prefs, err := s.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return NewPreferencesResponse(preference.Default(userID)), nil
	}
	if err != nil {
		return nil, err
	}
	prefs.Normalize()
	return NewPreferencesResponse(prefs), nil
}

// Save creates the user's preferences on first write and updates them
// thereafter.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, req SavePreferencesRequest) (*PreferencesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prefs, err := s.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		prefs = preference.Default(userID)
	} else if err != nil {
		return nil, err
	}

	req.applyTo(prefs)
	prefs.Normalize()

	if err := s.prefRepo.Save(ctx, prefs); err != nil {
		return nil, err
	}

	s.logger.Info("Saved user preferences", zap.String("user_id", userID.String()))
	return NewPreferencesResponse(prefs), nil
}
