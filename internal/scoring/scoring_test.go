package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ats-engine/internal/models"
)

func TestNormalize_MatchesKeysIgnoringCaseAndWhitespace(t *testing.T) {
	criteria := []models.Criterion{{Name: "Technical Skills", Weight: 50}, {Name: "Education", Weight: 50}}
	raw := map[string]any{
		" technical skills ": 8.0,
		"EDUCATION":          6.5,
	}

	scores := Normalize(raw, criteria)

	require.Len(t, scores, 2)
	assert.Equal(t, 8.0, scores["Technical Skills"])
	assert.Equal(t, 6.5, scores["Education"])
}

func TestNormalize_ClampsOutOfRange(t *testing.T) {
	criteria := []models.Criterion{{Name: "A", Weight: 50}, {Name: "B", Weight: 50}}

	scores := Normalize(map[string]any{"a": -5.0, "b": 15.0}, criteria)

	assert.Equal(t, 0.0, scores["A"])
	assert.Equal(t, 10.0, scores["B"])
}

func TestNormalize_MissingCriterionScoresZero(t *testing.T) {
	criteria := []models.Criterion{{Name: "A", Weight: 50}, {Name: "B", Weight: 50}}

	scores, missing := NormalizeWithReport(map[string]any{"A": 7.0}, criteria)

	assert.Equal(t, 7.0, scores["A"])
	v, ok := scores["B"]
	assert.True(t, ok, "every criterion must have an entry")
	assert.Equal(t, 0.0, v)
	assert.Equal(t, []string{"B"}, missing)
}

func TestNormalize_EmptyRawGivesAllZeros(t *testing.T) {
	criteria := DefaultCriteria()

	for _, raw := range []map[string]any{nil, {}} {
		scores := Normalize(raw, criteria)
		require.Len(t, scores, len(criteria))
		for name, v := range scores {
			assert.Equalf(t, 0.0, v, "criterion %q", name)
		}
		assert.Equal(t, 0.0, WeightedScore(scores, criteria))
	}
}

func TestNormalize_CoercesValues(t *testing.T) {
	criteria := []models.Criterion{
		{Name: "str", Weight: 1},
		{Name: "num", Weight: 1},
		{Name: "int", Weight: 1},
		{Name: "bad", Weight: 1},
		{Name: "obj", Weight: 1},
		{Name: "nan", Weight: 1},
	}
	raw := map[string]any{
		"str": " 7.5 ",
		"num": json.Number("4"),
		"int": 9,
		"bad": "excellent",
		"obj": map[string]any{"x": 1},
		"nan": math.NaN(),
	}

	scores := Normalize(raw, criteria)

	assert.Equal(t, 7.5, scores["str"])
	assert.Equal(t, 4.0, scores["num"])
	assert.Equal(t, 9.0, scores["int"])
	assert.Equal(t, 0.0, scores["bad"])
	assert.Equal(t, 0.0, scores["obj"])
	assert.Equal(t, 0.0, scores["nan"])
}

func TestNormalize_IgnoresExtraKeys(t *testing.T) {
	criteria := []models.Criterion{{Name: "A", Weight: 100}}

	scores := Normalize(map[string]any{"A": 3.0, "Unrequested": 9.0}, criteria)

	assert.Equal(t, map[string]float64{"A": 3.0}, scores)
}

func TestNormalize_CollidingKeysResolveDeterministically(t *testing.T) {
	exact := []models.Criterion{{Name: "Skills", Weight: 100}}
	loose := []models.Criterion{{Name: "skills", Weight: 100}}

	for i := 0; i < 100; i++ {
		got := Normalize(map[string]any{"Skills": 9, " skills ": 2}, exact)
		require.Equal(t, 9.0, got["Skills"], "declared name should win")

		got = Normalize(map[string]any{" skills ": 2, "SKILLS": 7}, loose)
		require.Equal(t, 7.0, got["skills"], "lexically last key should win")
	}
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		criteria []models.Criterion
		scores   map[string]float64
		want     float64
	}{
		{
			name:     "weights summing to 100",
			criteria: []models.Criterion{{Name: "A", Weight: 30}, {Name: "B", Weight: 70}},
			scores:   map[string]float64{"A": 10, "B": 0},
			want:     3.0,
		},
		{
			name:     "weights not summing to 100 are normalized",
			criteria: []models.Criterion{{Name: "A", Weight: 30}, {Name: "B", Weight: 30}},
			scores:   map[string]float64{"A": 10, "B": 0},
			want:     5.0,
		},
		{
			name:     "weights above 100 are normalized",
			criteria: []models.Criterion{{Name: "A", Weight: 100}, {Name: "B", Weight: 100}},
			scores:   map[string]float64{"A": 8, "B": 6},
			want:     7.0,
		},
		{
			name:     "all zero weights fall back to 100",
			criteria: []models.Criterion{{Name: "A", Weight: 0}},
			scores:   map[string]float64{"A": 10},
			want:     0,
		},
		{
			name:     "no criteria",
			criteria: nil,
			scores:   map[string]float64{},
			want:     0,
		},
		{
			name:     "default criteria with uniform score",
			criteria: DefaultCriteria(),
			scores: map[string]float64{
				"Technical Skills Match": 8,
				"Years of Experience":    8,
				"Education Background":   8,
				"Project Relevance":      8,
				"Communication Skills":   8,
			},
			want: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeightedScore(tt.scores, tt.criteria), 1e-9)
		})
	}
}

func TestDefaultCriteria(t *testing.T) {
	criteria := DefaultCriteria()

	require.Len(t, criteria, 5)
	total := 0
	for _, c := range criteria {
		total += c.Weight
	}
	assert.Equal(t, 100, total)

	criteria[0].Weight = 1
	assert.Equal(t, 30, DefaultCriteria()[0].Weight, "defaults must not be shared")
}
