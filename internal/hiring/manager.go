// Package hiring manages jobs, their criteria sets and their candidates.
package hiring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/ats-engine/internal/models"
	"github.com/terra-clan/ats-engine/internal/scoring"
	"github.com/terra-clan/ats-engine/internal/storage"
)

// Manager defines the operations on jobs, criteria and candidates
type Manager interface {
	CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]*models.Job, error)
	UpdateJob(ctx context.Context, id string, req models.UpdateJobRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, id string) error

	GetCriteria(ctx context.Context, jobID string) (*models.CriteriaSet, error)
	UpsertCriteria(ctx context.Context, req models.UpsertCriteriaRequest) (*models.CriteriaSet, error)
	ResolveCriteria(ctx context.Context, job *models.Job) ([]models.Criterion, string, error)

	ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, id string, req models.UpdateCandidateRequest) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

// StoreManager implements Manager on top of a storage.Repository
type StoreManager struct {
	repo storage.Repository
}

// NewManager creates a new StoreManager
func NewManager(repo storage.Repository) *StoreManager {
	return &StoreManager{repo: repo}
}

// Ping checks the backing store
func (m *StoreManager) Ping(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// --- Jobs ---

// CreateJob creates a job with a zero candidate count
func (m *StoreManager) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		PostedDate:  req.PostedDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.PostedDate == "" {
		job.PostedDate = models.DefaultPostedDate
	}

	if err := m.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	slog.Info("job created", "job_id", job.ID, "title", job.Title)
	return job, nil
}

// GetJob returns a job or ErrJobNotFound
func (m *StoreManager) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := m.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns all jobs, newest first
func (m *StoreManager) ListJobs(ctx context.Context) ([]*models.Job, error) {
	return m.repo.ListJobs(ctx)
}

// UpdateJob applies the non-nil fields of req
func (m *StoreManager) UpdateJob(ctx context.Context, id string, req models.UpdateJobRequest) (*models.Job, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	job, err := m.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, NewValidationError("title is required")
		}
		job.Title = title
	}
	if req.Description != nil {
		job.Description = strings.TrimSpace(*req.Description)
	}
	if req.PostedDate != nil {
		job.PostedDate = *req.PostedDate
	}
	job.UpdatedAt = time.Now().UTC()

	if err := m.repo.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	return job, nil
}

// DeleteJob deletes a job together with its candidates and criteria set
func (m *StoreManager) DeleteJob(ctx context.Context, id string) error {
	if err := m.repo.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrJobNotFound
		}
		return err
	}

	deleted, err := m.repo.DeleteCandidatesByJob(ctx, id)
	if err != nil {
		return fmt.Errorf("job deleted but candidates were not: %w", err)
	}

	if err := m.repo.DeleteCriteria(ctx, id); err != nil {
		return fmt.Errorf("job deleted but criteria were not: %w", err)
	}

	slog.Info("job deleted", "job_id", id, "candidates_deleted", deleted)
	return nil
}

// --- Criteria ---

// GetCriteria returns the stored criteria set of a job, or the default set
// flagged with IsDefault when none is stored
func (m *StoreManager) GetCriteria(ctx context.Context, jobID string) (*models.CriteriaSet, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, NewValidationError("jobId is required")
	}

	job, err := m.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	cs, err := m.repo.GetCriteria(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if cs != nil {
		return cs, nil
	}

	return &models.CriteriaSet{
		JobID:          jobID,
		JobDescription: job.Description,
		Criteria:       scoring.DefaultCriteria(),
		IsDefault:      true,
	}, nil
}

// UpsertCriteria creates or replaces the criteria set of a job. Weights
// need not sum to 100; scoring normalizes against the actual total.
func (m *StoreManager) UpsertCriteria(ctx context.Context, req models.UpsertCriteriaRequest) (*models.CriteriaSet, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if _, err := m.GetJob(ctx, req.JobID); err != nil {
		return nil, err
	}

	cs := &models.CriteriaSet{
		JobID:          req.JobID,
		JobDescription: strings.TrimSpace(req.JobDescription),
		Criteria:       make([]models.Criterion, 0, len(req.Criteria)),
	}

	seen := make(map[string]bool, len(req.Criteria))
	for _, c := range req.Criteria {
		name := strings.TrimSpace(c.Name)
		key := strings.ToLower(name)
		if name == "" {
			return nil, NewValidationError("criterion name is required")
		}
		if seen[key] {
			return nil, NewValidationError("duplicate criterion name: %s", name)
		}
		seen[key] = true

		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		cs.Criteria = append(cs.Criteria, models.Criterion{ID: id, Name: name, Weight: c.Weight})
	}

	if total := cs.TotalWeight(); total != 100 {
		slog.Warn("criteria weights do not sum to 100", "job_id", cs.JobID, "total", total)
	}

	if err := m.repo.UpsertCriteria(ctx, cs); err != nil {
		return nil, err
	}

	slog.Info("criteria saved", "job_id", cs.JobID, "count", len(cs.Criteria))
	return cs, nil
}

// ResolveCriteria returns the criteria and job description used to score
// resumes for a job. The description falls back from the criteria set to
// the job description and finally to the job title.
func (m *StoreManager) ResolveCriteria(ctx context.Context, job *models.Job) ([]models.Criterion, string, error) {
	cs, err := m.repo.GetCriteria(ctx, job.ID)
	if err != nil {
		return nil, "", err
	}

	criteria := scoring.DefaultCriteria()
	description := ""
	if cs != nil {
		if len(cs.Criteria) > 0 {
			criteria = cs.Criteria
		}
		description = cs.JobDescription
	}

	switch {
	case strings.TrimSpace(description) != "":
	case strings.TrimSpace(job.Description) != "":
		description = job.Description
	default:
		description = job.Title
	}

	return criteria, description, nil
}

// --- Candidates ---

// ListCandidates returns candidates ordered by score, highest first
func (m *StoreManager) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	return m.repo.ListCandidates(ctx, filters)
}

// GetCandidate returns a candidate or ErrCandidateNotFound
func (m *StoreManager) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := m.repo.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCandidateNotFound
	}
	return c, nil
}

// UpdateCandidate applies the non-nil fields of req
func (m *StoreManager) UpdateCandidate(ctx context.Context, id string, req models.UpdateCandidateRequest) (*models.Candidate, error) {
	// Normalize before validating so padded input is judged by what gets stored
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		req.Email = &email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		req.Phone = &phone
	}

	if err := Validate(req); err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name == "" {
		return nil, NewValidationError("name is required")
	}
	if req.Email != nil && *req.Email == "" {
		return nil, NewValidationError("email is required")
	}

	c, err := m.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Score != nil {
		c.Score = scoring.Clamp(*req.Score)
	}
	if req.Summary != nil {
		c.Summary = *req.Summary
	}
	if req.Highlights != nil {
		c.Highlights = models.TrimHighlights(*req.Highlights)
	}
	if req.CVURL != nil {
		c.CVURL = *req.CVURL
	}
	if req.LinkedInURL != nil {
		c.LinkedInURL = *req.LinkedInURL
	}
	c.UpdatedAt = time.Now().UTC()

	if err := m.repo.UpdateCandidate(ctx, c); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrCandidateNotFound
		case errors.Is(err, storage.ErrDuplicate):
			return nil, &DuplicateCandidateError{Name: c.Name, Email: c.Email, JobID: c.JobID}
		}
		return nil, err
	}

	return c, nil
}

// DeleteCandidate deletes a candidate and recounts its job's candidates
func (m *StoreManager) DeleteCandidate(ctx context.Context, id string) error {
	c, err := m.GetCandidate(ctx, id)
	if err != nil {
		return err
	}

	if err := m.repo.DeleteCandidate(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCandidateNotFound
		}
		return err
	}

	count, err := m.repo.RecountCandidates(ctx, c.JobID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("deleted candidate belonged to a missing job", "candidate_id", id, "job_id", c.JobID)
			return nil
		}
		return fmt.Errorf("candidate deleted but recount failed: %w", err)
	}

	slog.Info("candidate deleted", "candidate_id", id, "job_id", c.JobID, "candidate_count", count)
	return nil
}
