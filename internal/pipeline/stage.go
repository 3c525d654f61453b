package pipeline

import (
	"log/slog"
	"time"

	"github.com/terra-clan/ats-engine/internal/metrics"
)

// Stage is a step of the candidate record builder
type Stage string

const (
	StageReceived           Stage = "received"
	StageExtractingIdentity Stage = "extracting_identity"
	StageCheckingDuplicate  Stage = "checking_duplicate"
	StageAnalyzing          Stage = "analyzing"
	StageNormalizing        Stage = "normalizing"
	StageAggregating        Stage = "aggregating"
	StagePersisting         Stage = "persisting"

	// Terminal states
	StageDone     Stage = "done"
	StageRejected Stage = "rejected"
	StageFailed   Stage = "failed"
)

// IsTerminal reports whether no stage follows s
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageRejected || s == StageFailed
}

// run tracks one resume through the stages, timing each of them
type run struct {
	jobID   string
	stage   Stage
	started time.Time
	now     func() time.Time
}

func newRun(jobID string, now func() time.Time) *run {
	r := &run{jobID: jobID, stage: StageReceived, started: now(), now: now}
	slog.Debug("pipeline stage", "job_id", jobID, "stage", r.stage)
	return r
}

func (r *run) enter(next Stage) {
	t := r.now()
	metrics.PipelineStageDuration.WithLabelValues(string(r.stage)).Observe(t.Sub(r.started).Seconds())

	r.stage = next
	r.started = t

	if next.IsTerminal() {
		metrics.PipelineResults.WithLabelValues(string(next)).Inc()
	}
	slog.Debug("pipeline stage", "job_id", r.jobID, "stage", next)
}
