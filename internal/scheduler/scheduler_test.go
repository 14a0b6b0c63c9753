package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

type reconcilerFunc func(ctx context.Context, batchSize int) (reconcile.Result, error)

func (f reconcilerFunc) Reconcile(ctx context.Context, batchSize int) (reconcile.Result, error) {
	return f(ctx, batchSize)
}

func TestNew_RequiresReconciler(t *testing.T) {
	_, err := scheduler.New(scheduler.Params{})
	assert.Error(t, err)
}

func TestScheduler_Run_KeepsGoingAfterFailures(t *testing.T) {
	var calls atomic.Int32

	rec := reconcilerFunc(func(_ context.Context, batchSize int) (reconcile.Result, error) {
		assert.Equal(t, 25, batchSize)

		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return reconcile.Result{}, errors.New("redis down")
		}

		return reconcile.Result{Synced: 1}, nil
	})

	tracker := status.NewTracker()

	s, err := scheduler.New(scheduler.Params{
		Reconciler: rec,
		Tracker:    tracker,
		Interval:   5 * time.Millisecond,
		BatchSize:  25,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	snap := tracker.Snapshot()
	assert.GreaterOrEqual(t, snap.Passes, int64(4))
	assert.GreaterOrEqual(t, snap.Synced, int64(2))
}

func TestScheduler_RunOnce_NoOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	rec := reconcilerFunc(func(context.Context, int) (reconcile.Result, error) {
		close(started)
		<-release

		return reconcile.Result{Synced: 3}, nil
	})

	s, err := scheduler.New(scheduler.Params{Reconciler: rec})
	require.NoError(t, err)

	type outcome struct {
		res reconcile.Result
		err error
	}

	first := make(chan outcome, 1)

	go func() {
		res, err := s.RunOnce(context.Background())
		first <- outcome{res, err}
	}()

	<-started

	_, err = s.RunOnce(context.Background())
	assert.ErrorIs(t, err, scheduler.ErrPassInProgress)

	close(release)

	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, 3, got.res.Synced)
}

func TestScheduler_RunOnce_DetachedFromShutdown(t *testing.T) {
	rec := reconcilerFunc(func(ctx context.Context, _ int) (reconcile.Result, error) {
		if err := ctx.Err(); err != nil {
			return reconcile.Result{}, err
		}

		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)

		return reconcile.Result{Synced: 1}, nil
	})

	s, err := scheduler.New(scheduler.Params{Reconciler: rec})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced)
}

func TestScheduler_RunOnce_PassTimeout(t *testing.T) {
	rec := reconcilerFunc(func(ctx context.Context, _ int) (reconcile.Result, error) {
		<-ctx.Done()
		return reconcile.Result{}, ctx.Err()
	})

	s, err := scheduler.New(scheduler.Params{Reconciler: rec, PassTimeout: 10 * time.Millisecond})
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_RunOnce_LockedElsewhere(t *testing.T) {
	rec := reconcilerFunc(func(context.Context, int) (reconcile.Result, error) {
		return reconcile.Result{}, transaction.ErrPassLocked
	})

	reg := prometheus.NewRegistry()
	tracker := status.NewTracker()

	s, err := scheduler.New(scheduler.Params{
		Reconciler: rec,
		Tracker:    tracker,
		Metrics:    metrics.NewReconcile(reg),
	})
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	assert.ErrorIs(t, err, transaction.ErrPassLocked)

	assert.Zero(t, tracker.Snapshot().Passes)

	n, err := testutil.GatherAndCount(reg, "posrecon_reconcile_passes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
