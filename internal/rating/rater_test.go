package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vac-rating-engine/internal/domain"
)

func refCondition() *domain.Condition {
	return &domain.Condition{
		ID:       "ptsd",
		Name:     "Post-Traumatic Stress Disorder",
		Chapter:  "ch21",
		Symptoms: []string{"nightmares", "hypervigilance", "flashbacks"},
		RatingCriteria: domain.PolicyData{
			"table": "ch21_table1",
		},
	}
}

func TestRate_SeverityBaseRatings(t *testing.T) {
	tests := []struct {
		severity domain.Severity
		want     int
	}{
		{"minimal", 5},
		{"mild", 10},
		{"moderate", 30},
		{"moderately_severe", 50},
		{"severe", 70},
		{"very_severe", 90},
		{"total", 100},
		{"Moderate", 30},
		{"  SEVERE  ", 70},
		{"unheard-of", 20},
		{"", 20},
	}

	r := NewRater()
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			got := r.Rate(refCondition(), "PTSD", tt.severity, nil)
			assert.Equal(t, tt.want, got.Rating)
			require.NotNil(t, got.BaseRating)
			assert.Equal(t, tt.want, *got.BaseRating)
		})
	}
}

func TestRate_SymptomAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		symptoms int
		want     int
	}{
		{"none", 0, 0},
		{"three", 3, 6},
		{"ten caps at twenty", 10, 20},
		{"fifteen still capped", 15, 20},
	}

	r := NewRater()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symptoms := make([]string, tt.symptoms)
			for i := range symptoms {
				symptoms[i] = "symptom"
			}
			got := r.Rate(refCondition(), "PTSD", "moderate", symptoms)
			require.NotNil(t, got.SymptomAdjustment)
			assert.Equal(t, tt.want, *got.SymptomAdjustment)
			assert.Equal(t, 30+tt.want, got.Rating)
		})
	}
}

func TestRate_ClampedAtHundred(t *testing.T) {
	r := NewRater()

	got := r.Rate(refCondition(), "PTSD", "total", []string{"a", "b", "c", "d", "e"})

	assert.Equal(t, 100, got.Rating)
}

func TestRate_UnresolvedCondition(t *testing.T) {
	r := NewRater()

	got := r.Rate(nil, "mystery ailment", "severe", []string{"pain"})

	assert.False(t, got.Resolved)
	assert.Equal(t, 0, got.Rating)
	assert.Equal(t, "unknown", got.Chapter)
	assert.Nil(t, got.BaseRating)
	assert.Nil(t, got.SymptomAdjustment)
	assert.Contains(t, got.Rationale, "mystery ailment")
	assert.Contains(t, got.Rationale, "not found")
}

func TestRate_CriteriaMet(t *testing.T) {
	r := NewRater()

	t.Run("no symptoms", func(t *testing.T) {
		got := r.Rate(refCondition(), "PTSD", "moderate", nil)
		assert.Equal(t, []string{
			domain.CriterionConditionIdentified,
			domain.CriterionTodMatchFound,
		}, got.CriteriaMet)
	})

	t.Run("symptoms documented but unmatched", func(t *testing.T) {
		got := r.Rate(refCondition(), "PTSD", "moderate", []string{"sore throat"})
		assert.Equal(t, []string{
			domain.CriterionConditionIdentified,
			domain.CriterionTodMatchFound,
			domain.CriterionSymptomsDocumented,
		}, got.CriteriaMet)
	})

	t.Run("symptoms match reference", func(t *testing.T) {
		got := r.Rate(refCondition(), "PTSD", "moderate", []string{"Nightmares"})
		assert.Contains(t, got.CriteriaMet, domain.CriterionSymptomsMatchTod)
	})

	t.Run("substring match in either direction", func(t *testing.T) {
		got := r.Rate(refCondition(), "PTSD", "moderate", []string{"frequent flashbacks at night"})
		assert.Contains(t, got.CriteriaMet, domain.CriterionSymptomsMatchTod)
	})
}

func TestRate_CarriesReferenceMetadata(t *testing.T) {
	r := NewRater()

	got := r.Rate(refCondition(), "PTSD", "severe", []string{"nightmares"})

	assert.True(t, got.Resolved)
	assert.Equal(t, "ptsd", got.ConditionID)
	assert.Equal(t, "ch21", got.Chapter)
	assert.Equal(t, []string{"nightmares"}, got.SymptomsMatched)
	assert.Equal(t, "ch21_table1", got.Criteria["table"])
	assert.Contains(t, got.Rationale, "Base rating 70% for severe severity")
}
