package storage

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ats-engine/internal/models"
)

func newJob(id string, created time.Time) *models.Job {
	return &models.Job{ID: id, Title: "Job " + id, PostedDate: models.DefaultPostedDate, CreatedAt: created, UpdatedAt: created}
}

func newCandidate(id, jobID, email string, score float64) *models.Candidate {
	now := time.Now().UTC()
	return &models.Candidate{
		ID: id, JobID: jobID, Name: id, Email: email, Score: score,
		Scores:     map[string]float64{"A": score},
		Highlights: []string{"h1"},
		CreatedAt:  now, UpdatedAt: now,
	}
}

func TestMemoryRepository_CandidateUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("c1", "j1", "a@example.com", 5)))

	err := repo.CreateCandidate(ctx, newCandidate("c2", "j1", "a@example.com", 6))
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("c3", "j2", "a@example.com", 6)), "same email on another job is allowed")

	found, err := repo.FindCandidateByEmail(ctx, "j1", " A@Example.com ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "c1", found.ID)
}

func TestMemoryRepository_ListCandidatesSortedByScore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("low", "j1", "low@example.com", 2)))
	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("high", "j1", "high@example.com", 9)))
	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("mid", "j1", "mid@example.com", 5)))
	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("other", "j2", "other@example.com", 10)))

	list, err := repo.ListCandidates(ctx, models.CandidateFilters{JobID: "j1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{list[0].ID, list[1].ID, list[2].ID})

	page, err := repo.ListCandidates(ctx, models.CandidateFilters{JobID: "j1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].ID)
}

func TestMemoryRepository_Counters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.CreateJob(ctx, newJob("j1", time.Now())))

	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		require.NoError(t, repo.CreateCandidate(ctx, newCandidate(email, "j1", email, float64(i))))
		require.NoError(t, repo.IncrementCandidateCount(ctx, "j1"))
	}

	job, _ := repo.GetJob(ctx, "j1")
	assert.Equal(t, 3, job.CandidateCount)

	require.NoError(t, repo.DeleteCandidate(ctx, "a@x.io"))
	count, err := repo.RecountCandidates(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Drift is corrected by the full reconciliation.
	require.NoError(t, repo.IncrementCandidateCount(ctx, "j1"))
	changed, err := repo.RecountAllCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	job, _ = repo.GetJob(ctx, "j1")
	assert.Equal(t, 2, job.CandidateCount)

	assert.ErrorIs(t, repo.IncrementCandidateCount(ctx, "missing"), ErrNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.CreateCandidate(ctx, newCandidate("c1", "j1", "a@x.io", 5)))

	c, _ := repo.GetCandidate(ctx, "c1")
	c.Scores["A"] = 0
	c.Highlights[0] = "changed"

	again, _ := repo.GetCandidate(ctx, "c1")
	assert.Equal(t, 5.0, again.Scores["A"])
	assert.Equal(t, "h1", again.Highlights[0])
}

func TestMemoryRepository_EmptyHighlightsStayEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	empty := newCandidate("c1", "j1", "a@example.com", 5)
	empty.Highlights = []string{}
	require.NoError(t, repo.CreateCandidate(ctx, empty))

	unset := newCandidate("c2", "j1", "b@example.com", 5)
	unset.Highlights = nil
	require.NoError(t, repo.CreateCandidate(ctx, unset))

	for _, id := range []string{"c1", "c2"} {
		got, err := repo.GetCandidate(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.Highlights, id)
		assert.Empty(t, got.Highlights, id)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"highlights":[]`, id)
	}
}

func TestMemoryRepository_UpsertCriteriaKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := &models.CriteriaSet{JobID: "j1", Criteria: []models.Criterion{{Name: "A", Weight: 100}}}
	require.NoError(t, repo.UpsertCriteria(ctx, first))

	second := &models.CriteriaSet{JobID: "j1", JobDescription: "new", Criteria: []models.Criterion{{Name: "B", Weight: 100}}}
	require.NoError(t, repo.UpsertCriteria(ctx, second))

	got, err := repo.GetCriteria(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.JobDescription)
	assert.Equal(t, "B", got.Criteria[0].Name)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
}

func TestMemoryRepository_ListJobsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Now()

	require.NoError(t, repo.CreateJob(ctx, newJob("old", base.Add(-time.Hour))))
	require.NoError(t, repo.CreateJob(ctx, newJob("new", base)))

	jobs, err := repo.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].ID)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql": {Data: []byte("CREATE INDEX x ON t (c);")},
		"001_init.sql":      {Data: []byte("CREATE TABLE t (c INT);")},
		"README.md":         {Data: []byte("docs")},
		"old/003_skip.sql":  {Data: []byte("SELECT 1;")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_add_index.sql"}, pending)

	pending, err = pendingMigrations(fsys, map[string]bool{"001_init.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_add_index.sql"}, pending)
}
