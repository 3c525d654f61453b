package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/ats-engine/internal/models"
	"github.com/terra-clan/ats-engine/internal/scoring"
	"github.com/terra-clan/ats-engine/internal/storage"
)

// Summary reports what Apply inserted
type Summary struct {
	Jobs       int `json:"jobs"`
	Candidates int `json:"candidates"`
}

// Apply wipes the repository and inserts the fixtures. Job candidate counts
// are recomputed from the inserted candidates.
func Apply(ctx context.Context, repo storage.Repository, fixtures *Fixtures) (*Summary, error) {
	if err := repo.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear existing data: %w", err)
	}

	summary := &Summary{}
	base := time.Now().UTC()

	for i, jf := range fixtures.Jobs {
		// Earlier fixtures are newer so the file order is the list order.
		created := base.Add(-time.Duration(i) * time.Second)

		job := &models.Job{
			ID:          uuid.New().String(),
			Title:       strings.TrimSpace(jf.Title),
			Description: strings.TrimSpace(jf.Description),
			PostedDate:  jf.PostedDate,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if job.PostedDate == "" {
			job.PostedDate = models.DefaultPostedDate
		}
		if err := repo.CreateJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create job %q: %w", job.Title, err)
		}
		summary.Jobs++

		criteria := scoring.DefaultCriteria()
		if len(jf.Criteria) > 0 {
			criteria = make([]models.Criterion, 0, len(jf.Criteria))
			for _, c := range jf.Criteria {
				if c.ID == "" {
					c.ID = uuid.New().String()
				}
				criteria = append(criteria, c)
			}

			cs := &models.CriteriaSet{
				JobID:          job.ID,
				JobDescription: strings.TrimSpace(jf.JobDescription),
				Criteria:       criteria,
			}
			if err := repo.UpsertCriteria(ctx, cs); err != nil {
				return nil, fmt.Errorf("failed to save criteria for %q: %w", job.Title, err)
			}
		}

		for _, cf := range jf.Candidates {
			c := candidateFromFixture(job.ID, cf, criteria, created)
			if err := repo.CreateCandidate(ctx, c); err != nil {
				return nil, fmt.Errorf("failed to create candidate %s: %w", c.Email, err)
			}
			summary.Candidates++
		}
	}

	if _, err := repo.RecountAllCandidates(ctx); err != nil {
		return nil, fmt.Errorf("failed to recount candidates: %w", err)
	}

	slog.Info("database seeded", "jobs", summary.Jobs, "candidates", summary.Candidates)
	return summary, nil
}

func candidateFromFixture(jobID string, cf CandidateFixture, criteria []models.Criterion, created time.Time) *models.Candidate {
	raw := make(map[string]any, len(cf.Scores))
	for k, v := range cf.Scores {
		raw[k] = v
	}
	scores := scoring.Normalize(raw, criteria)

	score := scoring.WeightedScore(scores, criteria)
	if cf.Score != nil {
		score = *cf.Score
	}

	return &models.Candidate{
		ID:          uuid.New().String(),
		JobID:       jobID,
		Name:        strings.TrimSpace(cf.Name),
		Email:       models.NormalizeEmail(cf.Email),
		Phone:       strings.TrimSpace(cf.Phone),
		Score:       scoring.Clamp(score),
		Scores:      scores,
		Summary:     strings.TrimSpace(cf.Summary),
		Highlights:  models.TrimHighlights(cf.Highlights),
		CVURL:       cf.CVURL,
		LinkedInURL: cf.LinkedInURL,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}
