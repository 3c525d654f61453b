package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/ats-engine/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
// The pool is created once and shared by every request for the life of the process.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}

	poolConfig.MinConns = 5
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}

	poolConfig.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the underlying pool, used by migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Jobs ---

const jobColumns = `id, title, description, candidate_count, posted_date, created_at, updated_at`

// CreateJob inserts a new job
func (r *PostgresRepository) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, title, description, candidate_count, posted_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		nullString(job.Description),
		job.CandidateCount,
		job.PostedDate,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by ID
func (r *PostgresRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// ListJobs returns all jobs, newest first
func (r *PostgresRepository) ListJobs(ctx context.Context) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJob updates the editable fields of a job
func (r *PostgresRepository) UpdateJob(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, description = $3, posted_date = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		nullString(job.Description),
		job.PostedDate,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}

	return nil
}

// DeleteJob deletes a job by ID. Candidates and criteria are removed by the caller.
func (r *PostgresRepository) DeleteJob(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}

	return nil
}

// IncrementCandidateCount atomically adds one to the job's candidate count
func (r *PostgresRepository) IncrementCandidateCount(ctx context.Context, jobID string) error {
	query := `UPDATE jobs SET candidate_count = candidate_count + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to increment candidate count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	return nil
}

// RecountCandidates sets the job's candidate count to the number of stored candidates
func (r *PostgresRepository) RecountCandidates(ctx context.Context, jobID string) (int, error) {
	query := `
		UPDATE jobs
		SET candidate_count = (SELECT COUNT(*) FROM candidates WHERE job_id = $1), updated_at = NOW()
		WHERE id = $1
		RETURNING candidate_count
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, jobID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to recount candidates: %w", err)
	}

	return count, nil
}

// RecountAllCandidates corrects every job whose stored count has drifted.
// It returns the number of jobs that were changed.
func (r *PostgresRepository) RecountAllCandidates(ctx context.Context) (int64, error) {
	query := `
		UPDATE jobs j
		SET candidate_count = c.actual, updated_at = NOW()
		FROM (
			SELECT j2.id, COUNT(c2.id) AS actual
			FROM jobs j2
			LEFT JOIN candidates c2 ON c2.job_id = j2.id
			GROUP BY j2.id
		) c
		WHERE j.id = c.id AND j.candidate_count <> c.actual
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile candidate counts: %w", err)
	}

	return result.RowsAffected(), nil
}

// --- Criteria ---

// GetCriteria returns the criteria set of a job
func (r *PostgresRepository) GetCriteria(ctx context.Context, jobID string) (*models.CriteriaSet, error) {
	query := `
		SELECT job_id, job_description, criteria, created_at, updated_at
		FROM criteria_sets
		WHERE job_id = $1
	`

	var cs models.CriteriaSet
	var criteriaJSON []byte

	err := r.pool.QueryRow(ctx, query, jobID).Scan(
		&cs.JobID,
		&cs.JobDescription,
		&criteriaJSON,
		&cs.CreatedAt,
		&cs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}

	if err := json.Unmarshal(criteriaJSON, &cs.Criteria); err != nil {
		return nil, fmt.Errorf("failed to unmarshal criteria: %w", err)
	}

	return &cs, nil
}

// UpsertCriteria creates the job's criteria set or replaces the existing one
func (r *PostgresRepository) UpsertCriteria(ctx context.Context, cs *models.CriteriaSet) error {
	criteriaJSON, err := json.Marshal(cs.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	query := `
		INSERT INTO criteria_sets (job_id, job_description, criteria, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (job_id) DO UPDATE
		SET job_description = EXCLUDED.job_description,
		    criteria = EXCLUDED.criteria,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err = r.pool.QueryRow(ctx, query, cs.JobID, cs.JobDescription, criteriaJSON, time.Now().UTC()).
		Scan(&cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert criteria: %w", err)
	}

	return nil
}

// DeleteCriteria removes the criteria set of a job, if any
func (r *PostgresRepository) DeleteCriteria(ctx context.Context, jobID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM criteria_sets WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to delete criteria: %w", err)
	}
	return nil
}

// --- Candidates ---

const candidateColumns = `id, job_id, name, email, phone, score, scores, summary, highlights, cv_url, linkedin_url, created_at, updated_at`

// CreateCandidate inserts a candidate. A second candidate with the same
// (email, job_id) fails with ErrDuplicate.
func (r *PostgresRepository) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	scoresJSON, highlightsJSON, err := marshalCandidateJSON(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.JobID,
		c.Name,
		c.Email,
		nullString(c.Phone),
		c.Score,
		scoresJSON,
		c.Summary,
		highlightsJSON,
		nullString(c.CVURL),
		nullString(c.LinkedInURL),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate %s for job %s: %w", c.Email, c.JobID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

// GetCandidate retrieves a candidate by ID
func (r *PostgresRepository) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`

	c, err := scanCandidate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	return c, nil
}

// FindCandidateByEmail looks up the candidate of a job by normalized email
func (r *PostgresRepository) FindCandidateByEmail(ctx context.Context, jobID, email string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE job_id = $1 AND email = $2`

	c, err := scanCandidate(r.pool.QueryRow(ctx, query, jobID, models.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}

	return c, nil
}

// ListCandidates returns candidates matching filters, highest score first
func (r *PostgresRepository) ListCandidates(ctx context.Context, filters models.CandidateFilters) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argNum)
		args = append(args, filters.JobID)
		argNum++
	}

	query += " ORDER BY score DESC, created_at ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*models.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}

// UpdateCandidate updates an existing candidate
func (r *PostgresRepository) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	scoresJSON, highlightsJSON, err := marshalCandidateJSON(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE candidates
		SET name = $2, email = $3, phone = $4, score = $5, scores = $6, summary = $7,
		    highlights = $8, cv_url = $9, linkedin_url = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		nullString(c.Phone),
		c.Score,
		scoresJSON,
		c.Summary,
		highlightsJSON,
		nullString(c.CVURL),
		nullString(c.LinkedInURL),
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate %s for job %s: %w", c.Email, c.JobID, ErrDuplicate)
		}
		return fmt.Errorf("failed to update candidate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate %s: %w", c.ID, ErrNotFound)
	}

	return nil
}

// DeleteCandidate deletes a candidate by ID
func (r *PostgresRepository) DeleteCandidate(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteCandidatesByJob removes every candidate of a job
func (r *PostgresRepository) DeleteCandidatesByJob(ctx context.Context, jobID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE job_id = $1`, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete candidates: %w", err)
	}
	return result.RowsAffected(), nil
}

// Reset removes all data in a single transaction
func (r *PostgresRepository) Reset(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"candidates", "criteria_sets", "jobs"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	return nil
}

// Helper functions

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	var description sql.NullString

	err := row.Scan(
		&job.ID,
		&job.Title,
		&description,
		&job.CandidateCount,
		&job.PostedDate,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Description = description.String
	return &job, nil
}

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	var phone, cvURL, linkedInURL sql.NullString
	var scoresJSON, highlightsJSON []byte

	err := row.Scan(
		&c.ID,
		&c.JobID,
		&c.Name,
		&c.Email,
		&phone,
		&c.Score,
		&scoresJSON,
		&c.Summary,
		&highlightsJSON,
		&cvURL,
		&linkedInURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Phone = phone.String
	c.CVURL = cvURL.String
	c.LinkedInURL = linkedInURL.String

	if err := json.Unmarshal(scoresJSON, &c.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(highlightsJSON, &c.Highlights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal highlights: %w", err)
	}

	return &c, nil
}

func marshalCandidateJSON(c *models.Candidate) ([]byte, []byte, error) {
	scores := c.Scores
	if scores == nil {
		scores = map[string]float64{}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal scores: %w", err)
	}

	highlights := c.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	highlightsJSON, err := json.Marshal(highlights)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal highlights: %w", err)
	}

	return scoresJSON, highlightsJSON, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
