package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/ats-engine/internal/models"
)

var (
	// ErrNotFound is returned by updates and deletes that match no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a candidate with the same email already exists for the job
	ErrDuplicate = errors.New("duplicate record")
)

// Repository defines the interface for ATS persistence.
// Getters return (nil, nil) when the record does not exist.
type Repository interface {
	// Jobs
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id string) error

	// Candidate counter
	IncrementCandidateCount(ctx context.Context, jobID string) error
	RecountCandidates(ctx context.Context, jobID string) (int, error)
	RecountAllCandidates(ctx context.Context) (int64, error)

	// Criteria
	GetCriteria(ctx context.Context, jobID string) (*models.CriteriaSet, error)
	UpsertCriteria(ctx context.Context, cs *models.CriteriaSet) error
	DeleteCriteria(ctx context.Context, jobID string) error

	// Candidates
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	FindCandidateByEmail(ctx context.Context, jobID, email string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error)
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	DeleteCandidate(ctx context.Context, id string) error
	DeleteCandidatesByJob(ctx context.Context, jobID string) (int64, error)

	// Reset removes every job, criteria set and candidate
	Reset(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
