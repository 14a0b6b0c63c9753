package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

const (
	defaultInterval    = 5 * time.Minute
	defaultPassTimeout = 2 * time.Minute
	defaultBatchSize   = 500
)

// ErrPassInProgress is returned by RunOnce while another pass of this process is running.
var ErrPassInProgress = errors.New("reconciliation pass already in progress")

type Reconciler interface {
	Reconcile(ctx context.Context, batchSize int) (reconcile.Result, error)
}

type Params struct {
	Logger      *slog.Logger
	Reconciler  Reconciler
	Tracker     *status.Tracker
	Metrics     *metrics.Reconcile
	Interval    time.Duration
	PassTimeout time.Duration
	BatchSize   int
}

// Scheduler runs reconciliation passes on a fixed cadence, one at a time.
type Scheduler struct {
	logger      *slog.Logger
	reconciler  Reconciler
	tracker     *status.Tracker
	metrics     *metrics.Reconcile
	interval    time.Duration
	passTimeout time.Duration
	batchSize   int

	running sync.Mutex
}

func New(p Params) (*Scheduler, error) {
	if p.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}

	s := &Scheduler{
		logger:      p.Logger,
		reconciler:  p.Reconciler,
		tracker:     p.Tracker,
		metrics:     p.Metrics,
		interval:    p.Interval,
		passTimeout: p.PassTimeout,
		batchSize:   p.BatchSize,
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.tracker == nil {
		s.tracker = status.NewTracker()
	}

	if s.interval <= 0 {
		s.interval = defaultInterval
	}

	if s.passTimeout <= 0 {
		s.passTimeout = defaultPassTimeout
	}

	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}

	return s, nil
}

// Run executes a pass immediately and then every interval until ctx is cancelled.
// Pass failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("reconcile scheduler started", "interval", s.interval, "batch_size", s.batchSize)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reconcile scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); errors.Is(err, ErrPassInProgress) {
		s.logger.Debug("previous pass still running, skipping tick")
	}
}

// RunOnce runs one pass now. The pass is detached from ctx cancellation so a shutdown
// lets it finish, bounded by the pass timeout.
func (s *Scheduler) RunOnce(ctx context.Context) (reconcile.Result, error) {
	if !s.running.TryLock() {
		return reconcile.Result{}, ErrPassInProgress
	}
	defer s.running.Unlock()

	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.passTimeout)
	defer cancel()

	done := s.tracker.Begin(status.StateReconciling)
	defer done()

	start := time.Now()
	result, err := s.safeReconcile(passCtx)
	took := time.Since(start)

	switch {
	case errors.Is(err, transaction.ErrPassLocked):
		s.logger.Info("reconcile pass skipped, another process holds the lock")
		s.metrics.ObservePass(took, 0, 0, metrics.OutcomeSkipped)

		return result, err
	case err != nil:
		s.logger.Error("reconcile pass failed", "error", err, "duration_ms", took.Milliseconds())
		s.metrics.ObservePass(took, result.Synced, result.Errors, metrics.OutcomeFailed)
	default:
		s.logger.Info("reconcile pass completed",
			"synced", result.Synced, "errors", result.Errors, "duration_ms", took.Milliseconds())
		s.metrics.ObservePass(took, result.Synced, result.Errors, metrics.OutcomeOK)
	}

	s.tracker.RecordPass(result.Synced, result.Errors, took, err)

	return result, err
}

func (s *Scheduler) safeReconcile(ctx context.Context) (result reconcile.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconcile pass panicked: %v", r)
		}
	}()

	return s.reconciler.Reconcile(ctx, s.batchSize)
}
