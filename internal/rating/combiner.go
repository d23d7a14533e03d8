package rating

import (
	"fmt"
	"math"

	"github.com/vac-rating-engine/internal/domain"
)

// Combiner folds individual condition ratings into one combined disability
// percentage using the VAC combination formula.
type Combiner struct{}

// NewCombiner creates a combination calculator.
func NewCombiner() *Combiner {
	return &Combiner{}
}

// Combine merges the ratings of resolved conditions, in input order, into a
// combined rating with a step-by-step trace.
//
// For N>1 ratings each subsequent condition is rated against the residual,
// undamaged capacity of the person: c = c + r - (c*r/100). The result is
// monotonically non-decreasing and bounded by 100; the final clamp is a
// safety net, not a correctness requirement.
//
// preExisting flags that pre-existing conditions were supplied. The
// pre-existing-condition-table arithmetic itself is an unimplemented
// extension point: the flag is set and confidence is downgraded to medium.
func (c *Combiner) Combine(ratings []int, totalConditions int, preExisting bool) domain.CombinedRating {
	result := domain.CombinedRating{
		IndividualRatings: ratings,
		ValidConditions:   len(ratings),
		TotalConditions:   totalConditions,
	}

	switch len(ratings) {
	case 0:
		result.TotalRating = 0
		result.Method = domain.MethodNoValidConditions
		if totalConditions == 0 {
			result.Method = domain.MethodNoConditions
		}
		result.Confidence = domain.ConfidenceLow
		result.Steps = []string{"No conditions matched the Table of Disabilities: combined rating 0%"}
	case 1:
		result.TotalRating = ratings[0]
		result.Method = domain.MethodSingleCondition
		result.Confidence = domain.ConfidenceHigh
		result.Steps = []string{fmt.Sprintf("Single condition: %d%%", ratings[0])}
	default:
		combined := float64(ratings[0])
		steps := []string{fmt.Sprintf("Start with first rating: %d%%", ratings[0])}

		for i, rating := range ratings[1:] {
			previous := combined
			combined = combined + float64(rating) - (combined * float64(rating) / 100)
			steps = append(steps, fmt.Sprintf("Step %d: %.1f%% + %d%% - (%.1f%% x %d%% / 100) = %.1f%%",
				i+1, previous, rating, previous, rating, combined))
		}

		total := int(math.Round(combined))
		if total > maxRating {
			total = maxRating
		}
		steps = append(steps, fmt.Sprintf("Final combined rating: %d%%", total))

		result.TotalRating = total
		result.Method = domain.MethodVACFormula
		result.Confidence = domain.ConfidenceMedium
		result.Steps = steps
	}

	if preExisting {
		result.PCTApplied = true
		result.Confidence = domain.ConfidenceMedium
	}

	return result
}
