// Package ai talks to the generative text service: it builds the resume
// evaluation prompts, sends them, and parses the replies.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/terra-clan/ats-engine/internal/cache"
	"github.com/terra-clan/ats-engine/internal/metrics"
	"github.com/terra-clan/ats-engine/internal/models"
)

const (
	UnknownCandidateName = "Unknown Candidate"

	cacheNamespace = "analysis"
)

// Requestor runs resume analysis and identity extraction against a Generator
type Requestor struct {
	generator Generator
	cache     cache.Store
	modelName string
	timeout   time.Duration
	now       func() time.Time
}

// RequestorOption configures a Requestor
type RequestorOption func(*Requestor)

// WithCache enables caching of analysis results
func WithCache(store cache.Store) RequestorOption {
	return func(r *Requestor) {
		r.cache = store
	}
}

// WithTimeout caps each call to the generator
func WithTimeout(timeout time.Duration) RequestorOption {
	return func(r *Requestor) {
		r.timeout = timeout
	}
}

// WithModelName sets the model name used to namespace cache keys
func WithModelName(name string) RequestorOption {
	return func(r *Requestor) {
		r.modelName = name
	}
}

// NewRequestor creates a Requestor. A nil generator yields a Requestor that
// reports ErrNotConfigured on every analysis.
func NewRequestor(generator Generator, opts ...RequestorOption) *Requestor {
	r := &Requestor{
		generator: generator,
		modelName: DefaultModel,
		timeout:   60 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether a generator is available
func (r *Requestor) Configured() bool {
	return r != nil && r.generator != nil
}

// Analyze evaluates resumeText against the job description and criteria
func (r *Requestor) Analyze(ctx context.Context, resumeText, jobDescription string, criteria []models.Criterion) (*Analysis, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}

	prompt := BuildAnalysisPrompt(resumeText, jobDescription, criteria)
	key := cache.Key(cacheNamespace, r.modelName, prompt)

	if cached := r.cached(ctx, key); cached != nil {
		return cached, nil
	}

	text, err := r.generate(ctx, "analyze", prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		metrics.AIRequests.WithLabelValues("analyze_parse", outcome(err)).Inc()
		slog.Warn("failed to parse analysis response", "error", err, "response_bytes", len(text))
		return nil, err
	}

	r.store(ctx, key, analysis)

	return analysis, nil
}

// ExtractCandidateInfo extracts the candidate's contact details. It never
// fails: any error degrades to a placeholder identity so analysis can go on.
func (r *Requestor) ExtractCandidateInfo(ctx context.Context, resumeText string) models.CandidateInfo {
	placeholder := r.placeholderInfo()

	if !r.Configured() {
		return placeholder
	}

	text, err := r.generate(ctx, "extract_identity", BuildIdentityPrompt(resumeText))
	if err != nil {
		slog.Warn("candidate info extraction failed, using placeholder", "error", err)
		return placeholder
	}

	info, err := ParseCandidateInfo(text)
	if err != nil {
		slog.Warn("candidate info response unparseable, using placeholder", "error", err)
		return placeholder
	}

	if info.Name == "" {
		info.Name = placeholder.Name
	}
	if info.Email == "" {
		info.Email = placeholder.Email
	}

	return info
}

func (r *Requestor) generate(ctx context.Context, operation, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.generator.GenerateResponse(ctx, prompt)
	if err != nil {
		err = ClassifyError(err)
	}
	metrics.AIRequests.WithLabelValues(operation, outcome(err)).Inc()

	return text, err
}

func (r *Requestor) placeholderInfo() models.CandidateInfo {
	return models.CandidateInfo{
		Name:  UnknownCandidateName,
		Email: fmt.Sprintf("candidate_%d@example.com", r.now().UnixNano()),
	}
}

func (r *Requestor) cached(ctx context.Context, key string) *Analysis {
	if r.cache == nil {
		return nil
	}

	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("analysis cache read failed", "error", err)
		return nil
	}
	if !ok {
		metrics.AnalysisCache.WithLabelValues("miss").Inc()
		return nil
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		slog.Warn("discarding corrupt analysis cache entry", "error", err)
		return nil
	}

	metrics.AnalysisCache.WithLabelValues("hit").Inc()
	return &analysis
}

func (r *Requestor) store(ctx context.Context, key string, analysis *Analysis) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data); err != nil {
		slog.Warn("analysis cache write failed", "error", err)
	}
}
