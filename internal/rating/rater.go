// Package rating implements the disability rating engine: per-condition
// rating, the VAC combined-rating formula, and full case assessment.
package rating

import (
	"fmt"
	"strings"

	"github.com/vac-rating-engine/internal/domain"
)

// severityBaseRatings maps a normalized severity label to its base rating
// percentage. This is the simplified severity policy; the full per-table
// arithmetic of the Table of Disabilities is out of scope.
var severityBaseRatings = map[domain.Severity]int{
	domain.SeverityMinimal:          5,
	domain.SeverityMild:             10,
	domain.SeverityModerate:         30,
	domain.SeverityModeratelySevere: 50,
	domain.SeveritySevere:           70,
	domain.SeverityVerySevere:       90,
	domain.SeverityTotal:            100,
}

const (
	// defaultBaseRating applies when the severity label is not recognized.
	defaultBaseRating = 20
	// symptomAdjustmentStep is the percentage added per documented symptom.
	symptomAdjustmentStep = 2
	// maxSymptomAdjustment caps the total symptom adjustment.
	maxSymptomAdjustment = 20
	// maxRating is the ceiling for any individual or combined rating.
	maxRating = 100
)

// Rater computes individual percentage ratings for resolved conditions.
type Rater struct{}

// NewRater creates a condition rater.
func NewRater() *Rater {
	return &Rater{}
}

// Rate produces the individual assessment for one claimed condition.
// A nil reference condition means resolution failed: the rating is 0, the
// rationale names the missing condition, and the base/adjustment breakdown
// is absent.
func (r *Rater) Rate(condition *domain.Condition, name string, severity domain.Severity, symptoms []string) domain.ConditionAssessment {
	if condition == nil {
		return domain.ConditionAssessment{
			Condition: name,
			Chapter:   "unknown",
			Resolved:  false,
			Rating:    0,
			Rationale: fmt.Sprintf("Condition '%s' not found in VAC ToD 2019", name),
		}
	}

	base, ok := severityBaseRatings[severity.Normalize()]
	if !ok {
		base = defaultBaseRating
	}

	adjustment := symptomAdjustmentStep * len(symptoms)
	if adjustment > maxSymptomAdjustment {
		adjustment = maxSymptomAdjustment
	}

	final := base + adjustment
	if final > maxRating {
		final = maxRating
	}

	return domain.ConditionAssessment{
		Condition:         name,
		ConditionID:       condition.ID,
		Chapter:           condition.Chapter,
		Resolved:          true,
		Rating:            final,
		BaseRating:        &base,
		SymptomAdjustment: &adjustment,
		Rationale: fmt.Sprintf("Base rating %d%% for %s severity, adjusted +%d%% for %d symptoms",
			base, severity.Normalize(), adjustment, len(symptoms)),
		SymptomsMatched: symptoms,
		CriteriaMet:     criteriaMet(condition, symptoms),
		Criteria:        condition.RatingCriteria,
	}
}

// criteriaMet determines which assessment criteria tags apply to a
// resolved condition.
func criteriaMet(condition *domain.Condition, symptoms []string) []string {
	met := []string{domain.CriterionConditionIdentified, domain.CriterionTodMatchFound}

	if len(symptoms) > 0 {
		met = append(met, domain.CriterionSymptomsDocumented)
	}

	if len(condition.Symptoms) > 0 && anySymptomMatches(symptoms, condition.Symptoms) {
		met = append(met, domain.CriterionSymptomsMatchTod)
	}

	return met
}

// anySymptomMatches reports whether any reported symptom is a
// case-insensitive substring match, in either direction, of any reference
// symptom.
func anySymptomMatches(reported, reference []string) bool {
	for _, symptom := range reported {
		lower := strings.ToLower(symptom)
		for _, ref := range reference {
			refLower := strings.ToLower(ref)
			if strings.Contains(refLower, lower) || strings.Contains(lower, refLower) {
				return true
			}
		}
	}
	return false
}
