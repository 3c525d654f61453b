package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/terra-clan/ats-engine/internal/metrics"
)

// DefaultSchedule runs the reconciliation every ten minutes
const DefaultSchedule = "@every 10m"

// Counter recomputes every job's candidate count from the stored candidates
// and reports how many jobs were corrected
type Counter interface {
	RecountAllCandidates(ctx context.Context) (int64, error)
}

// Reconciler periodically repairs drifted job candidate counters
type Reconciler struct {
	counter  Counter
	schedule string
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReconciler creates a reconciliation worker. An empty schedule falls
// back to DefaultSchedule.
func NewReconciler(counter Counter, schedule string) (*Reconciler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	r := &Reconciler{
		counter:  counter,
		schedule: schedule,
		cron:     cron.New(),
	}

	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	return r, nil
}

// Start runs one reconciliation immediately and then follows the schedule
// until ctx is cancelled or Stop is called
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	slog.Info("reconcile worker started", "schedule", r.schedule)

	go r.tick()
	r.cron.Start()

	go func() {
		<-r.context().Done()
		r.cron.Stop()
	}()
}

// Stop halts the schedule and waits for a running reconciliation to finish
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	<-r.cron.Stop().Done()
	slog.Info("reconcile worker stopped")
}

// RunOnce recounts all jobs and returns the number corrected
func (r *Reconciler) RunOnce(ctx context.Context) (int64, error) {
	slog.Debug("running reconcile cycle")

	changed, err := r.counter.RecountAllCandidates(ctx)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		metrics.ReconciledJobs.Add(float64(changed))
		slog.Info("candidate counts corrected", "jobs", changed)
	} else {
		slog.Debug("candidate counts consistent")
	}

	return changed, nil
}

func (r *Reconciler) tick() {
	ctx := r.context()
	if ctx.Err() != nil {
		return
	}

	if _, err := r.RunOnce(ctx); err != nil {
		slog.Error("failed to reconcile candidate counts", "error", err)
	}
}

func (r *Reconciler) context() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}
