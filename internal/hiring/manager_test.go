package hiring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ats-engine/internal/models"
	"github.com/terra-clan/ats-engine/internal/storage"
)

func newTestManager(t *testing.T) (*StoreManager, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	return NewManager(repo), repo
}

func seedCandidate(t *testing.T, repo *storage.MemoryRepository, jobID, email string, score float64) *models.Candidate {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	c := &models.Candidate{
		ID: email, JobID: jobID, Name: email, Email: email, Score: score,
		Scores: map[string]float64{}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateCandidate(ctx, c))
	require.NoError(t, repo.IncrementCandidateCount(ctx, jobID))
	return c
}

func TestCreateJob(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "  Backend Engineer ", Description: "Go"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, models.DefaultPostedDate, job.PostedDate)
	assert.Zero(t, job.CandidateCount)

	got, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Title, got.Title)
}

func TestCreateJob_RequiresTitle(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.CreateJob(context.Background(), models.CreateJobRequest{Title: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")
}

func TestGetJob_NotFound(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdateJob(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "Designer"})
	require.NoError(t, err)

	desc := "Figma and prototyping"
	updated, err := m.UpdateJob(ctx, job.ID, models.UpdateJobRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Designer", updated.Title)
	assert.Equal(t, desc, updated.Description)

	empty := " "
	_, err = m.UpdateJob(ctx, job.ID, models.UpdateJobRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.UpdateJob(ctx, "missing", models.UpdateJobRequest{Description: &desc})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestDeleteJob_Cascades(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "Data Engineer"})
	require.NoError(t, err)
	other, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "Analyst"})
	require.NoError(t, err)

	seedCandidate(t, repo, job.ID, "a@x.io", 7)
	seedCandidate(t, repo, job.ID, "b@x.io", 6)
	seedCandidate(t, repo, other.ID, "c@x.io", 5)

	_, err = m.UpsertCriteria(ctx, models.UpsertCriteriaRequest{
		JobID:    job.ID,
		Criteria: []models.CriterionRequest{{Name: "SQL", Weight: 100}},
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteJob(ctx, job.ID))

	_, err = m.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	left, err := m.ListCandidates(ctx, models.CandidateFilters{JobID: job.ID})
	require.NoError(t, err)
	assert.Empty(t, left)

	kept, err := m.ListCandidates(ctx, models.CandidateFilters{JobID: other.ID})
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	cs, err := repo.GetCriteria(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, cs)

	assert.ErrorIs(t, m.DeleteJob(ctx, job.ID), ErrJobNotFound)
}

func TestGetCriteria_DefaultsWhenUnset(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "QA", Description: "Testing"})
	require.NoError(t, err)

	cs, err := m.GetCriteria(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, cs.IsDefault)
	assert.Equal(t, "Testing", cs.JobDescription)
	assert.Len(t, cs.Criteria, 5)
	assert.Equal(t, 100, cs.TotalWeight())

	_, err = m.GetCriteria(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.GetCriteria(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpsertCriteria(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "SRE"})
	require.NoError(t, err)

	saved, err := m.UpsertCriteria(ctx, models.UpsertCriteriaRequest{
		JobID:          job.ID,
		JobDescription: "Keeps things running",
		Criteria: []models.CriterionRequest{
			{ID: "k8s", Name: "Kubernetes", Weight: 60},
			{Name: "Linux", Weight: 30},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved.Criteria, 2)
	assert.Equal(t, "k8s", saved.Criteria[0].ID)
	assert.NotEmpty(t, saved.Criteria[1].ID)

	cs, err := m.GetCriteria(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, cs.IsDefault)
	assert.Equal(t, "Keeps things running", cs.JobDescription)
	assert.Equal(t, 90, cs.TotalWeight())
}

func TestUpsertCriteria_Validation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "SRE"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  models.UpsertCriteriaRequest
		want string
	}{
		{
			name: "missing job id",
			req:  models.UpsertCriteriaRequest{Criteria: []models.CriterionRequest{{Name: "A", Weight: 10}}},
			want: "jobId is required",
		},
		{
			name: "empty criteria",
			req:  models.UpsertCriteriaRequest{JobID: job.ID, Criteria: []models.CriterionRequest{}},
			want: "criteria must contain at least 1 item(s)",
		},
		{
			name: "weight out of range",
			req:  models.UpsertCriteriaRequest{JobID: job.ID, Criteria: []models.CriterionRequest{{Name: "A", Weight: 150}}},
			want: "criteria[0].weight must be at most 100",
		},
		{
			name: "duplicate names",
			req: models.UpsertCriteriaRequest{JobID: job.ID, Criteria: []models.CriterionRequest{
				{Name: "Go", Weight: 50}, {Name: "go", Weight: 50},
			}},
			want: "duplicate criterion name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.UpsertCriteria(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveCriteria_DescriptionFallback(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	titled, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "Only Title"})
	require.NoError(t, err)

	criteria, desc, err := m.ResolveCriteria(ctx, titled)
	require.NoError(t, err)
	assert.Len(t, criteria, 5)
	assert.Equal(t, "Only Title", desc)

	described, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "T", Description: "Job text"})
	require.NoError(t, err)
	_, desc, err = m.ResolveCriteria(ctx, described)
	require.NoError(t, err)
	assert.Equal(t, "Job text", desc)

	_, err = m.UpsertCriteria(ctx, models.UpsertCriteriaRequest{
		JobID:          described.ID,
		JobDescription: "Criteria text",
		Criteria:       []models.CriterionRequest{{Name: "A", Weight: 100}},
	})
	require.NoError(t, err)
	criteria, desc, err = m.ResolveCriteria(ctx, described)
	require.NoError(t, err)
	assert.Equal(t, "Criteria text", desc)
	require.Len(t, criteria, 1)
	assert.Equal(t, "A", criteria[0].Name)
}

func TestDeleteCandidate_Recounts(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "PM"})
	require.NoError(t, err)

	first := seedCandidate(t, repo, job.ID, "a@x.io", 8)
	seedCandidate(t, repo, job.ID, "b@x.io", 7)
	seedCandidate(t, repo, job.ID, "c@x.io", 6)

	got, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.CandidateCount)

	require.NoError(t, m.DeleteCandidate(ctx, first.ID))

	got, err = m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CandidateCount)

	assert.ErrorIs(t, m.DeleteCandidate(ctx, first.ID), ErrCandidateNotFound)
}

func TestUpdateCandidate(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "PM"})
	require.NoError(t, err)
	c := seedCandidate(t, repo, job.ID, "a@x.io", 8)
	seedCandidate(t, repo, job.ID, "b@x.io", 7)

	email := "  New@X.io "
	highlights := []string{"one", "", "two", "three", "four", "five", "six"}
	updated, err := m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{
		Email:      &email,
		Highlights: &highlights,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", updated.Email)
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, updated.Highlights)

	taken := "b@x.io"
	_, err = m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{Email: &taken})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateCandidate)

	var dup *DuplicateCandidateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, job.ID, dup.JobID)

	bad := 11.0
	_, err = m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{Score: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.UpdateCandidate(ctx, "missing", models.UpdateCandidateRequest{})
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestUpdateCandidate_TrimsBeforeValidating(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	job, err := m.CreateJob(ctx, models.CreateJobRequest{Title: "PM"})
	require.NoError(t, err)
	c := seedCandidate(t, repo, job.ID, "a@x.io", 8)

	name := "  Grace Hopper "
	email := "\tGrace@Navy.MIL  "
	phone := " +1 555 0100 "
	updated, err := m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{
		Name:  &name,
		Email: &email,
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", updated.Name)
	assert.Equal(t, "grace@navy.mil", updated.Email)
	assert.Equal(t, "+1 555 0100", updated.Phone)

	stored, err := m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@navy.mil", stored.Email)

	blank := "   "
	_, err = m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.UpdateCandidate(ctx, c.ID, models.UpdateCandidateRequest{Email: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err = m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", stored.Name)
}
