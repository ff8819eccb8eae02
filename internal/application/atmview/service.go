// Package atmview serves the read side of the ATM mirror: listing,
// per-parish queries and fleet statistics. It never writes; ingestion
// owns all mutation.
package atmview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/atm"
)

// Service exposes the mirror's read view
type Service struct {
	atmRepo atm.Repository
	logger  *zap.Logger
}

// NewService creates a new read-view Service
func NewService(atmRepo atm.Repository, logger *zap.Logger) *Service {
	return &Service{atmRepo: atmRepo, logger: logger}
}

// List returns every mirrored record, optionally restricted to one
// parish.
func (s *Service) List(ctx context.Context, parish string) ([]ATMResponse, error) {
	var (
		records []atm.ATM
		err     error
	)
	if parish != "" {
		records, err = s.atmRepo.FindByParish(ctx, parish)
	} else {
		records, err = s.atmRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]ATMResponse, 0, len(records))
	for i := range records {
		out = append(out, NewATMResponse(&records[i]))
	}
	return out, nil
}

// Stats returns aggregate fleet statistics
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	stats, err := s.atmRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		Total:           stats.Total,
		Working:         stats.Working,
		NotWorking:      stats.Total - stats.Working,
		GeocodingFailed: stats.GeocodingFailed,
		Parishes:        stats.Parishes,
	}
	if stats.LastUpdated != nil {
		resp.LastUpdated = stats.LastUpdated.Format(time.RFC3339)
	}
	return resp, nil
}
