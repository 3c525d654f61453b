// Package scoring turns raw AI criterion scores into canonical per-criterion
// scores and a single weighted total.
package scoring

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/terra-clan/ats-engine/internal/models"
)

const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Normalize maps raw AI scores onto the declared criteria names.
// Keys are matched after trimming and lower-casing. When several keys
// normalize to the same label, a key equal to the declared name wins,
// otherwise the lexically last key does. A criterion with no matching key
// scores 0, non-numeric values score 0, and every value is clamped into
// [MinScore, MaxScore].
func Normalize(raw map[string]any, criteria []models.Criterion) map[string]float64 {
	scores, _ := NormalizeWithReport(raw, criteria)
	return scores
}

// NormalizeWithReport is Normalize that also returns the names of criteria
// the raw scores did not cover.
func NormalizeWithReport(raw map[string]any, criteria []models.Criterion) (map[string]float64, []string) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lookup := make(map[string]any, len(raw))
	for _, k := range keys {
		lookup[normalizeKey(k)] = raw[k]
	}

	scores := make(map[string]float64, len(criteria))
	var missing []string

	for _, c := range criteria {
		v, ok := raw[c.Name]
		if !ok {
			v, ok = lookup[normalizeKey(c.Name)]
		}
		if !ok {
			missing = append(missing, c.Name)
			scores[c.Name] = MinScore
			continue
		}
		scores[c.Name] = Clamp(toFloat(v))
	}

	return scores, missing
}

// Clamp bounds a score to [MinScore, MaxScore]
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Min(MaxScore, math.Max(MinScore, v))
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
