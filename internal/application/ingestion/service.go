package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appgeocoding "github.com/neighbourhood/backend/internal/application/geocoding"
	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/provider"
)

// CycleResult summarizes one complete ingestion cycle
type CycleResult struct {
	Fetched   int
	Processed int
	Skipped   int
	Sweep     appgeocoding.SweepResult
}

// Service runs the three phases of an ingestion cycle: fetch the
// provider snapshot, reconcile every record inside one transaction,
// then sweep the geocoding failure ledger.
type Service struct {
	provider   provider.StatusProvider
	uow        atm.UnitOfWork
	reconciler *Reconciler
	resolver   *appgeocoding.Resolver
	logger     *zap.Logger
}

// NewService creates a new ingestion Service
func NewService(
	statusProvider provider.StatusProvider,
	uow atm.UnitOfWork,
	reconciler *Reconciler,
	resolver *appgeocoding.Resolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		provider:   statusProvider,
		uow:        uow,
		reconciler: reconciler,
		resolver:   resolver,
		logger:     logger,
	}
}

// Fetch retrieves the current provider snapshot. On any transport or
// HTTP failure the cycle is aborted and the previous local snapshot
// stays authoritative.
func (s *Service) Fetch(ctx context.Context) ([]provider.Record, error) {
	records, err := s.provider.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching provider snapshot: %w", err)
	}
	s.logger.Info("Fetched provider snapshot", zap.Int("records", len(records)))
	return records, nil
}

// Process reconciles every record of the snapshot and commits the whole
// batch as one transaction. Per-record failures are logged and skipped;
// only a hard transactional error abandons the batch.
func (s *Service) Process(ctx context.Context, records []provider.Record) (processed, skipped int, err error) {
	err = s.uow.InTransaction(ctx, func(repo atm.Repository) error {
		for _, rec := range records {
			if err := s.reconciler.Reconcile(ctx, repo, rec); err != nil {
				skipped++
				s.logger.Warn("Skipping malformed provider record",
					zap.String("atm_id", rec.ATMID),
					zap.Error(err))
				continue
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("committing ingestion batch: %w", err)
	}
	return processed, skipped, nil
}

// RetryFailed runs the geocoding retry sweep.
func (s *Service) RetryFailed(ctx context.Context) (appgeocoding.SweepResult, error) {
	return s.resolver.RetrySweep(ctx)
}

// RunCycle executes fetch, process and retry back to back. The caller
// is responsible for mutual exclusion between cycles.
func (s *Service) RunCycle(ctx context.Context) (*CycleResult, error) {
	records, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	processed, skipped, err := s.Process(ctx, records)
	if err != nil {
		return nil, err
	}

	sweep, err := s.RetryFailed(ctx)
	if err != nil {
		s.logger.Warn("Geocoding retry sweep failed", zap.Error(err))
	}

	result := &CycleResult{
		Fetched:   len(records),
		Processed: processed,
		Skipped:   skipped,
		Sweep:     sweep,
	}
	s.logger.Info("Ingestion cycle complete",
		zap.Int("fetched", result.Fetched),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("retries_attempted", sweep.Attempted),
		zap.Int("retries_recovered", sweep.Recovered))
	return result, nil
}
