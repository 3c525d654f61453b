package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad credentials"), ErrAuth},
		{"grpc permission denied", status.Error(codes.PermissionDenied, "denied"), ErrAuth},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "slow down"), ErrRateLimited},
		{"grpc unavailable", status.Error(codes.Unavailable, "try later"), ErrServiceUnavailable},
		{"api key message", errors.New("googleapi: Error 400: API key not valid"), ErrAuth},
		{"quota message", errors.New("You exceeded your current quota"), ErrRateLimited},
		{"rate limit message", errors.New("rate limit reached"), ErrRateLimited},
		{"http 429", errors.New("googleapi: Error 429: Too Many Requests"), ErrRateLimited},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrServiceUnavailable},
		{"unknown", errors.New("connection reset by peer"), ErrServiceUnavailable},
		{"already classified", fmt.Errorf("%w: bad", ErrMalformedResponse), ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}

	assert.NoError(t, ClassifyError(nil))
}
