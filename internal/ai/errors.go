package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrServiceUnavailable = errors.New("AI service unavailable")
	ErrAuth               = errors.New("invalid AI service API key, check GEMINI_API_KEY")
	ErrRateLimited        = errors.New("AI service rate limit exceeded, please try again later")
	ErrMalformedResponse  = errors.New("malformed AI response")
	ErrNotConfigured      = errors.New("AI service not configured, set GEMINI_API_KEY")
)

var knownErrors = []error{
	ErrServiceUnavailable,
	ErrAuth,
	ErrRateLimited,
	ErrMalformedResponse,
	ErrNotConfigured,
}

// ClassifyError maps an error returned by the generative service onto one
// of the package sentinels. The original message is kept in the chain.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case codes.Unavailable, codes.Internal, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

// outcome returns a short label for metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuth):
		return "auth_error"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
