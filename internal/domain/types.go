// Package domain contains core business entities and types for disability
// rating against the VAC Table of Disabilities 2019.
//
// Reference: Veterans Affairs Canada, Table of Disabilities (2019 edition).
package domain

import "strings"

// Severity represents the reported severity of a claimed condition.
// Labels are matched case-insensitively; unrecognized labels are allowed
// and fall through to the rater's default base rating.
type Severity string

const (
	SeverityMinimal          Severity = "minimal"
	SeverityMild             Severity = "mild"
	SeverityModerate         Severity = "moderate"
	SeverityModeratelySevere Severity = "moderately_severe"
	SeveritySevere           Severity = "severe"
	SeverityVerySevere       Severity = "very_severe"
	SeverityTotal            Severity = "total"
)

// Normalize returns the severity lower-cased and trimmed for policy lookup.
func (s Severity) Normalize() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// IsRecognized reports whether the severity maps to a defined base rating.
func (s Severity) IsRecognized() bool {
	switch s.Normalize() {
	case SeverityMinimal, SeverityMild, SeverityModerate, SeverityModeratelySevere,
		SeveritySevere, SeverityVerySevere, SeverityTotal:
		return true
	default:
		return false
	}
}

// ConfidenceLevel represents the confidence in an assessment result.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// IsValid validates the confidence level.
func (c ConfidenceLevel) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	default:
		return false
	}
}

// CombinationMethod identifies how a combined rating was produced.
type CombinationMethod string

const (
	MethodNoConditions      CombinationMethod = "no_conditions"
	MethodNoValidConditions CombinationMethod = "no_valid_conditions"
	MethodSingleCondition   CombinationMethod = "single_condition"
	MethodVACFormula        CombinationMethod = "vac_combination_formula"
)

// IsValid validates the combination method.
func (m CombinationMethod) IsValid() bool {
	switch m {
	case MethodNoConditions, MethodNoValidConditions, MethodSingleCondition, MethodVACFormula:
		return true
	default:
		return false
	}
}

// ImpactLevel represents the quality-of-life impact classification
// derived from the combined disability rating.
type ImpactLevel string

const (
	ImpactMild             ImpactLevel = "mild"
	ImpactModerate         ImpactLevel = "moderate"
	ImpactModerateToSevere ImpactLevel = "moderate_to_severe"
	ImpactSevere           ImpactLevel = "severe"
)

// IsValid validates the impact level.
func (i ImpactLevel) IsValid() bool {
	switch i {
	case ImpactMild, ImpactModerate, ImpactModerateToSevere, ImpactSevere:
		return true
	default:
		return false
	}
}

// ImpactLevelForRating maps a combined disability rating to its
// quality-of-life impact classification.
func ImpactLevelForRating(rating int) ImpactLevel {
	switch {
	case rating >= 75:
		return ImpactSevere
	case rating >= 50:
		return ImpactModerateToSevere
	case rating >= 25:
		return ImpactModerate
	default:
		return ImpactMild
	}
}

// EvidenceQuality represents how well supporting medical evidence
// corroborates a claimed condition.
type EvidenceQuality string

const (
	EvidenceInsufficient  EvidenceQuality = "insufficient"
	EvidenceLimited       EvidenceQuality = "limited"
	EvidenceAdequate      EvidenceQuality = "adequate"
	EvidenceComprehensive EvidenceQuality = "comprehensive"
)

// IsValid validates the evidence quality.
func (q EvidenceQuality) IsValid() bool {
	switch q {
	case EvidenceInsufficient, EvidenceLimited, EvidenceAdequate, EvidenceComprehensive:
		return true
	default:
		return false
	}
}

// AdequateForRating reports whether the evidence quality is strong enough
// to support a rating decision on its own.
func (q EvidenceQuality) AdequateForRating() bool {
	return q == EvidenceAdequate || q == EvidenceComprehensive
}

// EvidenceQualityForCount buckets a relevant-evidence count into a quality
// judgment: 0 insufficient, 1 limited, 2 adequate, 3 or more comprehensive.
func EvidenceQualityForCount(count int) EvidenceQuality {
	switch {
	case count >= 3:
		return EvidenceComprehensive
	case count == 2:
		return EvidenceAdequate
	case count == 1:
		return EvidenceLimited
	default:
		return EvidenceInsufficient
	}
}

// Assessment criteria tags attached to a resolved condition assessment.
const (
	CriterionConditionIdentified = "condition_identified"
	CriterionTodMatchFound       = "tod_match_found"
	CriterionSymptomsDocumented  = "symptoms_documented"
	CriterionSymptomsMatchTod    = "symptoms_match_tod"
)

// TodVersion identifies the reference dataset edition assessments cite.
const TodVersion = "VAC 2019"
