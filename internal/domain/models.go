package domain

import (
	"errors"
	"fmt"
	"time"
)

// PolicyData is an opaque nested policy payload carried by conditions and
// rating tables. The engine never computes over its full shape; it is
// preserved verbatim for citation and audit purposes.
type PolicyData map[string]any

// StringSlice extracts a list of strings stored under key, tolerating the
// []any shape produced by generic JSON/YAML decoding.
func (p PolicyData) StringSlice(key string) []string {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Chapter represents one chapter of the Table of Disabilities.
// Chapters are immutable after the reference store is loaded.
type Chapter struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Conditions  []string `json:"conditions"`
	Sections    []string `json:"sections"`
}

// ChapterSummary is a chapter together with the number of conditions the
// store currently holds for it.
type ChapterSummary struct {
	Chapter
	ConditionCount int `json:"condition_count"`
}

// Condition represents a single reference entry in the Table of
// Disabilities. Keywords and symptoms feed the fuzzy-search index.
type Condition struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Chapter         string     `json:"chapter"`
	Description     string     `json:"description"`
	Symptoms        []string   `json:"symptoms"`
	Keywords        []string   `json:"keywords"`
	RatingCriteria  PolicyData `json:"rating_criteria"`
	AssessmentNotes string     `json:"assessment_notes"`
	Tables          []string   `json:"tables,omitempty"`
}

// RatingTable represents one rating table of the Table of Disabilities.
// Its payload is opaque policy data (severity bands, points schedules).
type RatingTable struct {
	ID      string     `json:"id"`
	Chapter string     `json:"chapter"`
	Title   string     `json:"title"`
	Data    PolicyData `json:"data"`
}

// ConditionRatingInfo bundles a condition with its rating criteria and the
// rating tables those criteria reference.
type ConditionRatingInfo struct {
	Condition      *Condition     `json:"condition"`
	RatingCriteria PolicyData     `json:"rating_criteria"`
	Tables         []*RatingTable `json:"tables"`
}

// SearchResult is a condition matched by a free-text search together with
// its relevance score on a 0-100 scale.
type SearchResult struct {
	Condition      *Condition `json:"condition"`
	RelevanceScore int        `json:"relevance_score"`
}

// CaseCondition is a single claimed condition as supplied by the caller.
// Onset and service-connection metadata pass through unused by calculation.
type CaseCondition struct {
	Name              string   `json:"name"`
	Severity          Severity `json:"severity"`
	Symptoms          []string `json:"symptoms"`
	OnsetDate         string   `json:"onset_date,omitempty"`
	ServiceConnection string   `json:"service_connection,omitempty"`
}

// Validate ensures the claimed condition can enter the assessment pipeline.
func (c *CaseCondition) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("case condition validation: %w", errors.New("name is required"))
	}
	return nil
}

// MedicalEvidence is one supporting evidence snippet supplied with a case.
type MedicalEvidence struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// CaseInput is the full case submitted for assessment.
type CaseInput struct {
	CaseID          string            `json:"case_id,omitempty"`
	Conditions      []CaseCondition   `json:"conditions"`
	PreExisting     []CaseCondition   `json:"pre_existing,omitempty"`
	MedicalEvidence []MedicalEvidence `json:"medical_evidence,omitempty"`
}

// Validate ensures the case carries at least one assessable condition.
func (c *CaseInput) Validate() error {
	if len(c.Conditions) == 0 {
		return fmt.Errorf("case validation: %w", errors.New("at least one condition is required"))
	}
	for i := range c.Conditions {
		if err := c.Conditions[i].Validate(); err != nil {
			return fmt.Errorf("case validation: condition %d: %w", i, err)
		}
	}
	return nil
}

// EvidenceSupport summarizes how well the supplied medical evidence
// corroborates one claimed condition.
type EvidenceSupport struct {
	EvidenceCount     int             `json:"evidence_count"`
	RelevantSources   []string        `json:"relevant_sources"`
	Quality           EvidenceQuality `json:"quality_assessment"`
	AdequateForRating bool            `json:"adequacy_for_rating"`
	Recommendations   []string        `json:"recommendations"`
}

// ConditionAssessment is the per-condition output of the rating pipeline.
// BaseRating and SymptomAdjustment are present only when the condition
// resolved against the reference store.
type ConditionAssessment struct {
	Condition         string           `json:"condition"`
	ConditionID       string           `json:"tod_condition_id,omitempty"`
	Chapter           string           `json:"chapter"`
	Resolved          bool             `json:"tod_found"`
	Rating            int              `json:"rating"`
	BaseRating        *int             `json:"base_rating,omitempty"`
	SymptomAdjustment *int             `json:"symptom_adjustment,omitempty"`
	Rationale         string           `json:"rating_rationale"`
	SymptomsMatched   []string         `json:"symptoms_matched,omitempty"`
	CriteriaMet       []string         `json:"assessment_criteria_met,omitempty"`
	Criteria          PolicyData       `json:"tod_criteria,omitempty"`
	EvidenceSupport   *EvidenceSupport `json:"medical_evidence_support,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// CombinedRating is the result of folding individual ratings into one
// total disability percentage.
type CombinedRating struct {
	TotalRating       int               `json:"total_rating"`
	IndividualRatings []int             `json:"individual_ratings,omitempty"`
	Method            CombinationMethod `json:"method"`
	PCTApplied        bool              `json:"pct_applied"`
	Confidence        ConfidenceLevel   `json:"confidence"`
	ValidConditions   int               `json:"valid_conditions"`
	TotalConditions   int               `json:"total_conditions"`
	Steps             []string          `json:"combination_steps"`
}

// AssessmentFactors are coarse case-level observations recorded alongside
// the quality-of-life judgment.
type AssessmentFactors struct {
	MultipleConditions    bool `json:"multiple_conditions"`
	HighIndividualRatings bool `json:"high_individual_ratings"`
	MentalHealthPresent   bool `json:"mental_health_present"`
}

// QualityOfLife is the quality-of-life impact judgment for a case.
type QualityOfLife struct {
	ImpactLevel           ImpactLevel       `json:"impact_level"`
	TotalRating           int               `json:"total_rating"`
	ConditionCount        int               `json:"condition_count"`
	FunctionalLimitations []string          `json:"functional_limitations"`
	Recommendations       []string          `json:"recommendations"`
	AssessmentFactors     AssessmentFactors `json:"assessment_factors"`
}

// CaseAssessment is the complete structured output for one assessed case.
type CaseAssessment struct {
	ID              string                `json:"id"`
	CaseID          string                `json:"case_id,omitempty"`
	AssessedAt      time.Time             `json:"assessed_at"`
	TotalRating     int                   `json:"total_disability_rating"`
	Conditions      []ConditionAssessment `json:"individual_conditions"`
	Combined        CombinedRating        `json:"combined_rating_breakdown"`
	QualityOfLife   QualityOfLife         `json:"quality_of_life_impact"`
	Recommendations []string              `json:"recommendations"`
	TodVersion      string                `json:"tod_version"`
	Confidence      ConfidenceLevel       `json:"assessment_confidence"`
}

// StoreStats reports the size of the loaded reference dataset.
type StoreStats struct {
	TotalChapters     int `json:"total_chapters"`
	TotalConditions   int `json:"total_conditions"`
	TotalRatingTables int `json:"total_rating_tables"`
	SearchIndexSize   int `json:"search_index_size"`
}

// ValidationReport is the structural health check for the loaded dataset.
// Missing conditions or rating tables are warnings, not failures; only the
// absence of the chapters section invalidates the dataset.
type ValidationReport struct {
	Valid    bool       `json:"valid"`
	Errors   []string   `json:"errors"`
	Warnings []string   `json:"warnings"`
	Stats    StoreStats `json:"stats"`
}
