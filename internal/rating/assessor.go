package rating

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

// ratingThresholdForLimitations is the individual rating at or above which
// a condition contributes functional limitations.
const ratingThresholdForLimitations = 50

// limitationCategories maps condition-name substrings to the functional
// limitations that category of condition causes. The first matching
// category applies.
var limitationCategories = []struct {
	terms       []string
	limitations []string
}{
	{
		terms:       []string{"mental", "ptsd", "anxiety", "depression"},
		limitations: []string{"concentration", "memory", "social_interaction", "decision_making"},
	},
	{
		terms:       []string{"back", "spine", "lumbar"},
		limitations: []string{"mobility", "lifting", "prolonged_sitting", "bending"},
	},
	{
		terms:       []string{"knee", "leg", "hip"},
		limitations: []string{"walking", "standing", "climbing", "running"},
	},
	{
		terms:       []string{"shoulder", "arm", "hand"},
		limitations: []string{"reaching", "grasping", "lifting", "fine_motor"},
	},
	{
		terms:       []string{"neck", "cervical"},
		limitations: []string{"neck_movement", "concentration", "headaches"},
	},
}

// qolBaseRecommendations is the fixed per-impact-level recommendation set.
var qolBaseRecommendations = map[domain.ImpactLevel][]string{
	domain.ImpactMild: {
		"Regular medical follow-up recommended",
		"Monitor condition progression",
		"Consider preventive care measures",
	},
	domain.ImpactModerate: {
		"Regular medical care and monitoring required",
		"Consider rehabilitation services",
		"Workplace accommodations may be beneficial",
		"Assess need for assistive devices",
	},
	domain.ImpactModerateToSevere: {
		"Comprehensive medical care required",
		"Rehabilitation and support services recommended",
		"Significant workplace accommodations needed",
		"Consider vocational retraining options",
		"Family support services may be helpful",
	},
	domain.ImpactSevere: {
		"Intensive medical care and support required",
		"Comprehensive rehabilitation program recommended",
		"Full disability accommodations needed",
		"Consider long-term care planning",
		"Family and caregiver support essential",
	},
}

// evidenceRecommendations is the fixed per-evidence-quality advisory set.
var evidenceRecommendations = map[domain.EvidenceQuality][]string{
	domain.EvidenceInsufficient: {
		"Obtain comprehensive medical documentation",
		"Request current medical examinations",
		"Gather service medical records",
	},
	domain.EvidenceLimited: {
		"Obtain additional supporting medical evidence",
		"Consider independent medical examination",
		"Document current symptom severity",
	},
	domain.EvidenceAdequate: {
		"Evidence supports assessment",
		"Consider periodic review",
	},
	domain.EvidenceComprehensive: {
		"Strong medical evidence foundation",
		"Evidence fully supports assessment",
	},
}

// Assessor orchestrates resolution, rating, combination, and the derived
// quality-of-life, evidence-adequacy, and recommendation outputs for a
// full case. It is stateless apart from its injected collaborators and is
// safe for concurrent use.
type Assessor struct {
	resolver domain.ConditionResolver
	rater    *Rater
	combiner *Combiner
	history  domain.AssessmentRepository
	logger   *logrus.Logger
}

// NewAssessor creates a case assessor. history may be nil when no
// assessment audit trail is configured.
func NewAssessor(resolver domain.ConditionResolver, history domain.AssessmentRepository, logger *logrus.Logger) *Assessor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Assessor{
		resolver: resolver,
		rater:    NewRater(),
		combiner: NewCombiner(),
		history:  history,
		logger:   logger,
	}
}

// AssessCase performs the comprehensive assessment of a veteran's case.
// Per-condition failures are folded into zero-rated "not found" entries;
// only invalid input or a structural failure of the case-level computation
// returns an error.
func (a *Assessor) AssessCase(ctx context.Context, input *domain.CaseInput) (result *domain.CaseAssessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("panic", r).Error("Case assessment failed")
			result = nil
			err = domain.NewAssessmentError(domain.ErrCodeAssessment,
				"case assessment failed", fmt.Sprint(r))
		}
	}()

	if input == nil {
		return nil, fmt.Errorf("%w: case input is nil", domain.ErrInvalidCase)
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCase, err)
	}

	assessments := make([]domain.ConditionAssessment, 0, len(input.Conditions))
	for _, condition := range input.Conditions {
		assessments = append(assessments, a.assessCondition(ctx, condition, input.MedicalEvidence))
	}

	combined := a.combiner.Combine(resolvedRatings(assessments), len(assessments), len(input.PreExisting) > 0)
	qol := a.qualityOfLife(assessments, combined.TotalRating)
	recommendations := a.overallRecommendations(assessments, combined.TotalRating)

	assessment := &domain.CaseAssessment{
		ID:              uuid.NewString(),
		CaseID:          input.CaseID,
		AssessedAt:      time.Now().UTC(),
		TotalRating:     combined.TotalRating,
		Conditions:      assessments,
		Combined:        combined,
		QualityOfLife:   qol,
		Recommendations: recommendations,
		TodVersion:      domain.TodVersion,
		Confidence:      combined.Confidence,
	}

	a.recordHistory(ctx, assessment)

	a.logger.WithFields(logrus.Fields{
		"case_id":      input.CaseID,
		"total_rating": combined.TotalRating,
		"conditions":   len(assessments),
		"method":       combined.Method,
	}).Info("Case assessed")

	return assessment, nil
}

// CalculateRating is the direct rating entry point: it resolves and rates
// the given conditions and combines them, without evidence evaluation or
// quality-of-life derivation.
func (a *Assessor) CalculateRating(ctx context.Context, conditions, preExisting []domain.CaseCondition) (*domain.CombinedRating, []domain.ConditionAssessment, error) {
	if len(conditions) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one condition is required", domain.ErrInvalidCase)
	}

	assessments := make([]domain.ConditionAssessment, 0, len(conditions))
	for _, condition := range conditions {
		assessments = append(assessments, a.assessCondition(ctx, condition, nil))
	}

	combined := a.combiner.Combine(resolvedRatings(assessments), len(assessments), len(preExisting) > 0)
	return &combined, assessments, nil
}

// assessCondition resolves and rates one claimed condition. Any failure,
// including a panic inside the matching or rating path, degrades to a
// zero-rated unresolved entry carrying the error text.
func (a *Assessor) assessCondition(ctx context.Context, condition domain.CaseCondition, evidence []domain.MedicalEvidence) (assessment domain.ConditionAssessment) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(logrus.Fields{
				"condition": condition.Name,
				"panic":     r,
			}).Error("Condition assessment failed")
			assessment = domain.ConditionAssessment{
				Condition: condition.Name,
				Chapter:   "unknown",
				Resolved:  false,
				Rating:    0,
				Rationale: fmt.Sprintf("Condition '%s' not found in VAC ToD 2019", condition.Name),
				Error:     fmt.Sprint(r),
			}
		}
	}()

	resolved, err := a.resolver.Resolve(ctx, condition.Name)
	if err != nil {
		a.logger.WithError(err).WithField("condition", condition.Name).Warn("Condition resolution failed")
		return domain.ConditionAssessment{
			Condition: condition.Name,
			Chapter:   "unknown",
			Resolved:  false,
			Rating:    0,
			Rationale: fmt.Sprintf("Condition '%s' not found in VAC ToD 2019", condition.Name),
			Error:     err.Error(),
		}
	}

	assessment = a.rater.Rate(resolved, condition.Name, condition.Severity, condition.Symptoms)
	if assessment.Resolved {
		assessment.EvidenceSupport = a.evaluateEvidence(condition.Name, evidence)
	}
	return assessment
}

// evaluateEvidence counts the evidence snippets whose content mentions the
// condition name and buckets the count into an adequacy judgment.
func (a *Assessor) evaluateEvidence(conditionName string, evidence []domain.MedicalEvidence) *domain.EvidenceSupport {
	name := strings.ToLower(conditionName)
	var sources []string
	for _, item := range evidence {
		if strings.Contains(strings.ToLower(item.Content), name) {
			sources = append(sources, item.Source)
		}
	}

	quality := domain.EvidenceQualityForCount(len(sources))
	return &domain.EvidenceSupport{
		EvidenceCount:     len(sources),
		RelevantSources:   sources,
		Quality:           quality,
		AdequateForRating: quality.AdequateForRating(),
		Recommendations:   evidenceRecommendations[quality],
	}
}

// qualityOfLife derives the quality-of-life impact judgment from the
// combined rating and the per-condition results.
func (a *Assessor) qualityOfLife(assessments []domain.ConditionAssessment, combinedTotal int) domain.QualityOfLife {
	impact := domain.ImpactLevelForRating(combinedTotal)
	limitations := functionalLimitations(assessments)

	recommendations := append([]string{}, qolBaseRecommendations[impact]...)
	if containsString(limitations, "mobility") {
		recommendations = append(recommendations, "Assess need for mobility aids and home modifications")
	}
	if containsString(limitations, "concentration") {
		recommendations = append(recommendations, "Consider mental health support services")
	}
	if len(limitations) > 3 {
		recommendations = append(recommendations, "Comprehensive occupational therapy assessment recommended")
	}

	resolvedCount := 0
	highRating := false
	mentalHealth := false
	for _, assessment := range assessments {
		if assessment.Resolved {
			resolvedCount++
		}
		if assessment.Rating >= ratingThresholdForLimitations {
			highRating = true
		}
		name := strings.ToLower(assessment.Condition)
		if strings.Contains(name, "mental") || strings.Contains(name, "ptsd") {
			mentalHealth = true
		}
	}

	return domain.QualityOfLife{
		ImpactLevel:           impact,
		TotalRating:           combinedTotal,
		ConditionCount:        resolvedCount,
		FunctionalLimitations: limitations,
		Recommendations:       recommendations,
		AssessmentFactors: domain.AssessmentFactors{
			MultipleConditions:    resolvedCount > 1,
			HighIndividualRatings: highRating,
			MentalHealthPresent:   mentalHealth,
		},
	}
}

// functionalLimitations collects the limitation tags contributed by
// resolved conditions individually rated at or above the threshold.
func functionalLimitations(assessments []domain.ConditionAssessment) []string {
	seen := make(map[string]struct{})
	for _, assessment := range assessments {
		if !assessment.Resolved || assessment.Rating < ratingThresholdForLimitations {
			continue
		}
		name := strings.ToLower(assessment.Condition)
		for _, category := range limitationCategories {
			if !containsAnyTerm(name, category.terms) {
				continue
			}
			for _, limitation := range category.limitations {
				seen[limitation] = struct{}{}
			}
			break
		}
	}

	limitations := make([]string, 0, len(seen))
	for limitation := range seen {
		limitations = append(limitations, limitation)
	}
	sort.Strings(limitations)
	return limitations
}

// overallRecommendations derives the case-level recommendation text from
// the combined rating and the per-condition outcomes.
func (a *Assessor) overallRecommendations(assessments []domain.ConditionAssessment, combinedTotal int) []string {
	var recommendations []string

	switch {
	case combinedTotal >= 70:
		recommendations = append(recommendations,
			"Veteran qualifies for significant VAC disability benefits",
			"Priority access to VAC programs and services recommended",
			"Comprehensive support services should be considered",
		)
	case combinedTotal >= 30:
		recommendations = append(recommendations,
			"Veteran qualifies for VAC disability compensation",
			"Rehabilitation services may be beneficial",
			"Regular medical follow-up recommended",
		)
	default:
		recommendations = append(recommendations,
			"Continue monitoring condition progression",
			"Document any symptom changes or deterioration",
			"Regular medical care recommended",
		)
	}

	lowEvidence := false
	for _, assessment := range assessments {
		if !assessment.Resolved {
			recommendations = append(recommendations,
				fmt.Sprintf("Obtain additional medical documentation for '%s'", assessment.Condition))
			continue
		}
		if support := assessment.EvidenceSupport; support != nil && !support.Quality.AdequateForRating() {
			lowEvidence = true
		}
	}

	if lowEvidence {
		recommendations = append(recommendations,
			"Consider obtaining additional medical evidence for more accurate assessment")
	}

	return recommendations
}

// recordHistory persists the finished assessment when a history store is
// configured. History failures are logged, never fatal.
func (a *Assessor) recordHistory(ctx context.Context, assessment *domain.CaseAssessment) {
	if a.history == nil {
		return
	}
	if err := a.history.Save(ctx, assessment); err != nil {
		a.logger.WithError(err).WithField("case_id", assessment.CaseID).Warn("Failed to record assessment history")
	}
}

func resolvedRatings(assessments []domain.ConditionAssessment) []int {
	var ratings []int
	for _, assessment := range assessments {
		if assessment.Resolved {
			ratings = append(ratings, assessment.Rating)
		}
	}
	return ratings
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func containsAnyTerm(name string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}
