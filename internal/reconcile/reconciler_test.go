package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ats-engine/internal/models"
	"github.com/terra-clan/ats-engine/internal/storage"
)

type countingCounter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCounter) RecountAllCandidates(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestRunOnce_CorrectsDrift(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()

	now := time.Now().UTC()
	require.NoError(t, repo.CreateJob(ctx, &models.Job{ID: "j1", Title: "A", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.CreateJob(ctx, &models.Job{ID: "j2", Title: "B", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.CreateCandidate(ctx, &models.Candidate{ID: "c1", JobID: "j1", Email: "a@x.io"}))

	// j1 missed its increment, j2 was incremented without a candidate
	require.NoError(t, repo.IncrementCandidateCount(ctx, "j2"))

	r, err := NewReconciler(repo, "")
	require.NoError(t, err)

	changed, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	j1, _ := repo.GetJob(ctx, "j1")
	j2, _ := repo.GetJob(ctx, "j2")
	assert.Equal(t, 1, j1.CandidateCount)
	assert.Equal(t, 0, j2.CandidateCount)

	changed, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestRunOnce_PropagatesError(t *testing.T) {
	r, err := NewReconciler(&countingCounter{err: errors.New("db down")}, "")
	require.NoError(t, err)

	_, err = r.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestNewReconciler_InvalidSchedule(t *testing.T) {
	_, err := NewReconciler(&countingCounter{}, "every sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reconcile schedule")
}

func TestStart_RunsImmediately(t *testing.T) {
	counter := &countingCounter{}
	r, err := NewReconciler(counter, "@every 1h")
	require.NoError(t, err)

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return counter.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}
