package scoring

import (
	"github.com/samber/lo"

	"github.com/terra-clan/ats-engine/internal/models"
)

// fallbackTotalWeight is used when all weights are zero or no criteria exist
const fallbackTotalWeight = 100

// WeightedScore computes the overall score as the weighted average of the
// canonical scores. Weights are normalized against their actual sum, so a
// set that does not add up to 100 still yields a result on the 0-10 scale.
func WeightedScore(scores map[string]float64, criteria []models.Criterion) float64 {
	totalWeight := lo.SumBy(criteria, func(c models.Criterion) int {
		return max(c.Weight, 0)
	})
	if totalWeight == 0 {
		totalWeight = fallbackTotalWeight
	}

	var total float64
	for _, c := range criteria {
		w := max(c.Weight, 0)
		total += scores[c.Name] * float64(w) / float64(totalWeight)
	}

	return total
}
