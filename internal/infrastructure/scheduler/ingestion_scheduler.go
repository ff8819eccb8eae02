package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appgeocoding "github.com/neighbourhood/backend/internal/application/geocoding"
	"github.com/neighbourhood/backend/internal/domain/provider"
)

// State is the scheduler's observable phase
type State string

const (
	StateIdle       State = "IDLE"
	StateFetching   State = "FETCHING"
	StateProcessing State = "PROCESSING"
	StateRetrying   State = "RETRYING"
)

// CycleRunner is the ingestion service surface the scheduler drives
type CycleRunner interface {
	Fetch(ctx context.Context) ([]provider.Record, error)
	Process(ctx context.Context, records []provider.Record) (processed, skipped int, err error)
	RetryFailed(ctx context.Context) (appgeocoding.SweepResult, error)
}

// Metrics receives per-cycle counters. The scheduler works without one.
type Metrics interface {
	RecordCycle(ctx context.Context, outcome string, elapsed time.Duration)
	RecordRecords(ctx context.Context, processed, skipped int)
}

// CycleStatus is a snapshot of the last completed cycle for monitoring
type CycleStatus struct {
	State        State      `json:"state"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	LastFetched  int        `json:"last_fetched"`
	LastSkipped  int        `json:"last_skipped"`
	CyclesRun    int64      `json:"cycles_run"`
	CyclesFailed int64      `json:"cycles_failed"`
}

// IngestionScheduler runs ingestion cycles on a fixed interval. Cycles
// never overlap: a tick or manual trigger that arrives while a cycle is
// in flight is skipped, not queued.
type IngestionScheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *zap.Logger
	metrics  Metrics

	mu        sync.Mutex
	state     State
	status    CycleStatus
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewIngestionScheduler creates a scheduler for the given cycle interval
func NewIngestionScheduler(runner CycleRunner, interval time.Duration, logger *zap.Logger) *IngestionScheduler {
	return &IngestionScheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		state:    StateIdle,
		status:   CycleStatus{State: StateIdle},
	}
}

// SetMetrics attaches a metrics sink. Call before Start.
func (s *IngestionScheduler) SetMetrics(m Metrics) {
	s.metrics = m
}

// Start launches the scheduler loop. The first cycle runs immediately.
func (s *IngestionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true

	// cancel must be set before the lock drops: a Stop racing Start
	// observes isRunning and dereferences it.
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)
	s.mu.Unlock()

	s.logger.Info("Ingestion scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the loop and waits for an in-flight cycle to finish
func (s *IngestionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Ingestion scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Ingestion scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a cycle immediately. Returns false when a cycle is
// already in flight.
func (s *IngestionScheduler) TriggerNow(ctx context.Context) bool {
	return s.runCycle(ctx)
}

// Status returns a snapshot of the scheduler's state and last cycle
func (s *IngestionScheduler) Status() CycleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.State = s.state
	return status
}

func (s *IngestionScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.runCycle(ctx) {
				s.logger.Warn("Skipping ingestion tick, previous cycle still running")
			}
		}
	}
}

// runCycle drives one cycle through its phases. Returns false if a cycle
// was already in flight.
func (s *IngestionScheduler) runCycle(ctx context.Context) bool {
	if !s.transition(StateIdle, StateFetching) {
		return false
	}
	defer s.setState(StateIdle)

	started := time.Now()
	records, err := s.runner.Fetch(ctx)
	if err != nil {
		s.recordFailure(started, err)
		s.recordCycleMetric(ctx, "fetch_failed", started)
		s.logger.Warn("Ingestion cycle aborted, keeping previous snapshot", zap.Error(err))
		return true
	}

	s.setState(StateProcessing)
	processed, skipped, err := s.runner.Process(ctx, records)
	if err != nil {
		s.recordFailure(started, err)
		s.recordCycleMetric(ctx, "process_failed", started)
		s.logger.Error("Ingestion batch abandoned", zap.Error(err))
		return true
	}

	s.setState(StateRetrying)
	sweep, err := s.runner.RetryFailed(ctx)
	if err != nil {
		s.logger.Warn("Geocoding retry sweep failed", zap.Error(err))
	}

	s.recordSuccess(started, len(records), skipped)
	s.recordCycleMetric(ctx, "success", started)
	if s.metrics != nil {
		s.metrics.RecordRecords(ctx, processed, skipped)
	}
	s.logger.Info("Scheduled ingestion cycle finished",
		zap.Int("fetched", len(records)),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("retries_recovered", sweep.Recovered),
		zap.Duration("elapsed", time.Since(started)))
	return true
}

func (s *IngestionScheduler) recordCycleMetric(ctx context.Context, outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordCycle(ctx, outcome, time.Since(started))
	}
}

// transition moves the state machine from one phase to another; it fails
// when the current phase is not the expected one
func (s *IngestionScheduler) transition(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *IngestionScheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *IngestionScheduler) recordSuccess(started time.Time, fetched, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRun = &started
	s.status.LastError = ""
	s.status.LastFetched = fetched
	s.status.LastSkipped = skipped
	s.status.CyclesRun++
}

func (s *IngestionScheduler) recordFailure(started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRun = &started
	s.status.LastError = err.Error()
	s.status.CyclesRun++
	s.status.CyclesFailed++
}
