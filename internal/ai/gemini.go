package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash"

// Generator produces a text completion for a prompt
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig holds Gemini client settings
type GeminiConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute float64
	RequestsPerDay    float64
	// MaxAttempts above 1 retries calls that failed with ErrServiceUnavailable
	MaxAttempts int
	RetryDelay  time.Duration
}

// GeminiClient implements Generator using the Gemini API
type GeminiClient struct {
	client            *genai.Client
	model             *genai.GenerativeModel
	modelName         string
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
	maxAttempts       int
	retryDelay        time.Duration
}

// NewGeminiClient creates a Gemini client configured for JSON responses
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	c := &GeminiClient{
		client:      client,
		model:       model,
		modelName:   cfg.Model,
		maxAttempts: max(cfg.MaxAttempts, 1),
		retryDelay:  cfg.RetryDelay,
	}
	if c.retryDelay <= 0 {
		c.retryDelay = 2 * time.Second
	}
	if cfg.RequestsPerMinute > 0 {
		c.minuteRateLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}
	if cfg.RequestsPerDay > 0 {
		c.dayRateLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerDay/86400), int(cfg.RequestsPerDay))
	}

	return c, nil
}

// ModelName returns the configured model name
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// GenerateResponse sends the prompt and returns the concatenated text parts
func (c *GeminiClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	var resp string
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(c.maxAttempts, c.retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			slog.Warn("gemini request failed, retrying", "attempt", i+1, "error", err)
		}
		resp, err = c.waitAndGenerate(ctx, prompt)
		retry := err != nil && ctx.Err() == nil && isUnavailable(err)
		return err, retry
	})

	return resp, err
}

func (c *GeminiClient) waitAndGenerate(ctx context.Context, prompt string) (string, error) {
	for _, limiter := range []*rate.Limiter{c.minuteRateLimiter, c.dayRateLimiter} {
		if limiter == nil {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	response, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: model returned no candidates", ErrServiceUnavailable)
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("%w: response has no text parts", ErrServiceUnavailable)
	}

	return b.String(), nil
}

// Close releases the underlying client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func isUnavailable(err error) bool {
	return errors.Is(ClassifyError(err), ErrServiceUnavailable)
}
