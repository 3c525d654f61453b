package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/ats-engine/internal/models"
)

// MemoryRepository is an in-process Repository. It backs the service in
// tests and mirrors the Postgres semantics, including the (email, job)
// uniqueness rule.
type MemoryRepository struct {
	mu         sync.RWMutex
	jobs       map[string]*models.Job
	criteria   map[string]*models.CriteriaSet
	candidates map[string]*models.Candidate
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs:       make(map[string]*models.Job),
		criteria:   make(map[string]*models.CriteriaSet),
		candidates: make(map[string]*models.Candidate),
	}
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }
func (m *MemoryRepository) Close() error               { return nil }

func (m *MemoryRepository) CreateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("job %s: %w", job.ID, ErrDuplicate)
	}
	m.jobs[job.ID] = copyJob(job)
	return nil
}

func (m *MemoryRepository) GetJob(_ context.Context, id string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return copyJob(job), nil
}

func (m *MemoryRepository) ListJobs(context.Context) ([]*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, copyJob(job))
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (m *MemoryRepository) UpdateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.jobs[job.ID]
	if !ok {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	existing.Title = job.Title
	existing.Description = job.Description
	existing.PostedDate = job.PostedDate
	existing.UpdatedAt = job.UpdatedAt
	return nil
}

func (m *MemoryRepository) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	delete(m.jobs, id)
	return nil
}

func (m *MemoryRepository) IncrementCandidateCount(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	job.CandidateCount++
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) RecountCandidates(_ context.Context, jobID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return 0, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	job.CandidateCount = m.countLocked(jobID)
	return job.CandidateCount, nil
}

func (m *MemoryRepository) RecountAllCandidates(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed int64
	for id, job := range m.jobs {
		if actual := m.countLocked(id); actual != job.CandidateCount {
			job.CandidateCount = actual
			changed++
		}
	}
	return changed, nil
}

func (m *MemoryRepository) GetCriteria(_ context.Context, jobID string) (*models.CriteriaSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cs, ok := m.criteria[jobID]
	if !ok {
		return nil, nil
	}
	return copyCriteria(cs), nil
}

func (m *MemoryRepository) UpsertCriteria(_ context.Context, cs *models.CriteriaSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	stored := copyCriteria(cs)
	stored.UpdatedAt = now
	stored.CreatedAt = now
	if existing, ok := m.criteria[cs.JobID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	m.criteria[cs.JobID] = stored

	cs.CreatedAt = stored.CreatedAt
	cs.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryRepository) DeleteCriteria(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.criteria, jobID)
	return nil
}

func (m *MemoryRepository) CreateCandidate(_ context.Context, c *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findByEmailLocked(c.JobID, c.Email) != nil {
		return fmt.Errorf("candidate %s for job %s: %w", c.Email, c.JobID, ErrDuplicate)
	}
	m.candidates[c.ID] = copyCandidate(c)
	return nil
}

func (m *MemoryRepository) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	return copyCandidate(c), nil
}

func (m *MemoryRepository) FindCandidateByEmail(_ context.Context, jobID, email string) (*models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c := m.findByEmailLocked(jobID, models.NormalizeEmail(email)); c != nil {
		return copyCandidate(c), nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListCandidates(_ context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Candidate, 0)
	for _, c := range m.candidates {
		if filters.JobID != "" && c.JobID != filters.JobID {
			continue
		}
		out = append(out, copyCandidate(c))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return []*models.Candidate{}, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}

	return out, nil
}

func (m *MemoryRepository) UpdateCandidate(_ context.Context, c *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.candidates[c.ID]
	if !ok {
		return fmt.Errorf("candidate %s: %w", c.ID, ErrNotFound)
	}
	if other := m.findByEmailLocked(existing.JobID, c.Email); other != nil && other.ID != c.ID {
		return fmt.Errorf("candidate %s for job %s: %w", c.Email, existing.JobID, ErrDuplicate)
	}

	updated := copyCandidate(c)
	updated.JobID = existing.JobID
	updated.CreatedAt = existing.CreatedAt
	m.candidates[c.ID] = updated
	return nil
}

func (m *MemoryRepository) DeleteCandidate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.candidates[id]; !ok {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	delete(m.candidates, id)
	return nil
}

func (m *MemoryRepository) DeleteCandidatesByJob(_ context.Context, jobID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, c := range m.candidates {
		if c.JobID == jobID {
			delete(m.candidates, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryRepository) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = make(map[string]*models.Job)
	m.criteria = make(map[string]*models.CriteriaSet)
	m.candidates = make(map[string]*models.Candidate)
	return nil
}

func (m *MemoryRepository) countLocked(jobID string) int {
	n := 0
	for _, c := range m.candidates {
		if c.JobID == jobID {
			n++
		}
	}
	return n
}

func (m *MemoryRepository) findByEmailLocked(jobID, email string) *models.Candidate {
	for _, c := range m.candidates {
		if c.JobID == jobID && c.Email == email {
			return c
		}
	}
	return nil
}

func copyJob(j *models.Job) *models.Job {
	cp := *j
	return &cp
}

func copyCriteria(cs *models.CriteriaSet) *models.CriteriaSet {
	cp := *cs
	cp.Criteria = append([]models.Criterion(nil), cs.Criteria...)
	return &cp
}

func copyCandidate(c *models.Candidate) *models.Candidate {
	cp := *c
	// Never nil, matching the JSONB column which always holds an array
	cp.Highlights = make([]string, len(c.Highlights))
	copy(cp.Highlights, c.Highlights)
	cp.Scores = make(map[string]float64, len(c.Scores))
	for k, v := range c.Scores {
		cp.Scores[k] = v
	}
	return &cp
}
