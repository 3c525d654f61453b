package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ats-engine/internal/cache"
	"github.com/terra-clan/ats-engine/internal/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

var testCriteria = []models.Criterion{{Name: "Skills", Weight: 70}, {Name: "Education", Weight: 30}}

func TestRequestor_Analyze(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "RESUME") && strings.Contains(p, "- Skills (70%)")
	})).Return(validReply, nil).Once()

	r := NewRequestor(gen)
	a, err := r.Analyze(context.Background(), "RESUME", "job", testCriteria)

	require.NoError(t, err)
	assert.Equal(t, 7.5, a.Score)
	gen.AssertExpectations(t)
}

func TestRequestor_Analyze_NotConfigured(t *testing.T) {
	r := NewRequestor(nil)

	_, err := r.Analyze(context.Background(), "resume", "job", testCriteria)

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, r.Configured())
}

func TestRequestor_Analyze_ClassifiesErrors(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.Anything).
		Return("", errors.New("Resource has been exhausted (e.g. check quota)")).Once()

	_, err := NewRequestor(gen).Analyze(context.Background(), "resume", "job", testCriteria)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, err.Error(), "check quota")
}

func TestRequestor_Analyze_Malformed(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.Anything).Return("sorry, no", nil).Once()

	_, err := NewRequestor(gen).Analyze(context.Background(), "resume", "job", testCriteria)

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRequestor_Analyze_UsesCache(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.Anything).Return(validReply, nil).Once()

	r := NewRequestor(gen, WithCache(cache.NewMemoryStore(time.Minute)))
	ctx := context.Background()

	first, err := r.Analyze(ctx, "resume", "job", testCriteria)
	require.NoError(t, err)
	second, err := r.Analyze(ctx, "resume", "job", testCriteria)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	gen.AssertNumberOfCalls(t, "GenerateResponse", 1)
}

func TestRequestor_Analyze_AppliesTimeout(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(validReply, nil).Once()

	_, err := NewRequestor(gen, WithTimeout(time.Second)).Analyze(context.Background(), "resume", "job", testCriteria)

	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestRequestor_ExtractCandidateInfo(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.Anything).
		Return(`{"name": "Jane Doe", "email": "JANE@Example.com ", "phone": "+1 555"}`, nil).Once()

	info := NewRequestor(gen).ExtractCandidateInfo(context.Background(), "resume")

	assert.Equal(t, models.CandidateInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "+1 555"}, info)
}

func TestRequestor_ExtractCandidateInfo_DegradesToPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"service error", "", errors.New("connection refused")},
		{"unparseable", "no idea", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			gen.On("GenerateResponse", mock.Anything, mock.Anything).Return(tt.reply, tt.err).Once()

			r := NewRequestor(gen)
			r.now = func() time.Time { return time.Unix(0, 42) }

			info := r.ExtractCandidateInfo(context.Background(), "resume")

			assert.Equal(t, UnknownCandidateName, info.Name)
			assert.Equal(t, "candidate_42@example.com", info.Email)
		})
	}
}

func TestRequestor_ExtractCandidateInfo_FillsMissingFields(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateResponse", mock.Anything, mock.Anything).Return(`{"name": "", "email": ""}`, nil).Once()

	info := NewRequestor(gen).ExtractCandidateInfo(context.Background(), "resume")

	assert.Equal(t, UnknownCandidateName, info.Name)
	assert.True(t, strings.HasPrefix(info.Email, "candidate_"))
	assert.True(t, strings.HasSuffix(info.Email, "@example.com"))
}
