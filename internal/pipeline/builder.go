// Package pipeline turns resume text into a scored candidate record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/ats-engine/internal/ai"
	"github.com/terra-clan/ats-engine/internal/hiring"
	"github.com/terra-clan/ats-engine/internal/models"
	"github.com/terra-clan/ats-engine/internal/scoring"
	"github.com/terra-clan/ats-engine/internal/storage"
)

// Analyzer is the AI side of the pipeline. *ai.Requestor implements it.
type Analyzer interface {
	Configured() bool
	Analyze(ctx context.Context, resumeText, jobDescription string, criteria []models.Criterion) (*ai.Analysis, error)
	ExtractCandidateInfo(ctx context.Context, resumeText string) models.CandidateInfo
}

// Builder runs resumes through identity extraction, duplicate detection,
// analysis, scoring and persistence
type Builder struct {
	manager  hiring.Manager
	repo     storage.Repository
	analyzer Analyzer
	now      func() time.Time
}

// NewBuilder creates a new Builder
func NewBuilder(manager hiring.Manager, repo storage.Repository, analyzer Analyzer) *Builder {
	return &Builder{
		manager:  manager,
		repo:     repo,
		analyzer: analyzer,
		now:      time.Now,
	}
}

// Process analyzes req.ResumeText for req.JobID and stores the resulting
// candidate. A candidate whose email is already on file for the job is
// rejected with a *hiring.DuplicateCandidateError.
func (b *Builder) Process(ctx context.Context, req models.AnalyzeRequest) (*models.Candidate, error) {
	if err := hiring.Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, hiring.NewValidationError("resumeText is required")
	}

	if !b.analyzer.Configured() {
		return nil, ai.ErrNotConfigured
	}

	job, err := b.manager.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	r := newRun(job.ID, b.now)

	r.enter(StageExtractingIdentity)
	info := b.analyzer.ExtractCandidateInfo(ctx, req.ResumeText)
	info.Email = models.NormalizeEmail(info.Email)
	info.Name = strings.TrimSpace(info.Name)
	info.Phone = strings.TrimSpace(info.Phone)

	r.enter(StageCheckingDuplicate)
	existing, err := b.repo.FindCandidateByEmail(ctx, job.ID, info.Email)
	if err != nil {
		r.enter(StageFailed)
		return nil, fmt.Errorf("failed to check for duplicate candidate: %w", err)
	}
	if existing != nil {
		r.enter(StageRejected)
		slog.Info("duplicate candidate rejected", "job_id", job.ID, "candidate_id", existing.ID)
		return nil, &hiring.DuplicateCandidateError{Name: existing.Name, Email: existing.Email, JobID: job.ID}
	}

	criteria, description, err := b.manager.ResolveCriteria(ctx, job)
	if err != nil {
		r.enter(StageFailed)
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}

	r.enter(StageAnalyzing)
	analysis, err := b.analyzer.Analyze(ctx, req.ResumeText, description, criteria)
	if err != nil {
		r.enter(StageFailed)
		slog.Error("resume analysis failed", "job_id", job.ID, "error", err)
		return nil, err
	}

	r.enter(StageNormalizing)
	scores, missing := scoring.NormalizeWithReport(analysis.Scores, criteria)
	if len(missing) > 0 {
		slog.Warn("analysis omitted criteria, scored as 0", "job_id", job.ID, "criteria", missing)
	}

	r.enter(StageAggregating)
	score := roundScore(scoring.Clamp(scoring.WeightedScore(scores, criteria)))

	r.enter(StagePersisting)
	now := b.now().UTC()
	candidate := &models.Candidate{
		ID:         uuid.New().String(),
		JobID:      job.ID,
		Name:       info.Name,
		Email:      info.Email,
		Phone:      info.Phone,
		Score:      score,
		Scores:     scores,
		Summary:    strings.TrimSpace(analysis.Summary),
		Highlights: models.TrimHighlights(analysis.Highlights),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := b.repo.CreateCandidate(ctx, candidate); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			r.enter(StageRejected)
			return nil, &hiring.DuplicateCandidateError{Name: candidate.Name, Email: candidate.Email, JobID: job.ID}
		}
		r.enter(StageFailed)
		return nil, fmt.Errorf("failed to save candidate: %w", err)
	}

	if err := b.repo.IncrementCandidateCount(ctx, job.ID); err != nil {
		slog.Error("failed to increment candidate count, leaving it to the reconciler",
			"job_id", job.ID, "candidate_id", candidate.ID, "error", err)
	}

	r.enter(StageDone)
	slog.Info("candidate created",
		"job_id", job.ID,
		"candidate_id", candidate.ID,
		"score", candidate.Score,
	)

	return candidate, nil
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
