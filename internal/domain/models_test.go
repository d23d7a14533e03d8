package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDataStringSlice(t *testing.T) {
	tests := []struct {
		name     string
		data     PolicyData
		key      string
		expected []string
	}{
		{
			name:     "JSON decoded shape",
			data:     PolicyData{"tables": []any{"ch21_table1", "ch21_table2"}},
			key:      "tables",
			expected: []string{"ch21_table1", "ch21_table2"},
		},
		{
			name:     "Native string slice",
			data:     PolicyData{"tables": []string{"ch09_table1"}},
			key:      "tables",
			expected: []string{"ch09_table1"},
		},
		{
			name:     "Mixed entries keep strings only",
			data:     PolicyData{"tables": []any{"ch09_table1", 42, "ch09_table2"}},
			key:      "tables",
			expected: []string{"ch09_table1", "ch09_table2"},
		},
		{
			name:     "Missing key",
			data:     PolicyData{"bands": []any{"a"}},
			key:      "tables",
			expected: nil,
		},
		{
			name:     "Nil policy data",
			data:     nil,
			key:      "tables",
			expected: nil,
		},
		{
			name:     "Scalar value",
			data:     PolicyData{"tables": "ch21_table1"},
			key:      "tables",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.data.StringSlice(tt.key))
		})
	}
}

func TestCaseConditionValidate(t *testing.T) {
	valid := &CaseCondition{Name: "tinnitus", Severity: SeverityMild}
	require.NoError(t, valid.Validate())

	invalid := &CaseCondition{Severity: SeverityMild}
	assert.Error(t, invalid.Validate())
}

func TestCaseInputValidate(t *testing.T) {
	empty := &CaseInput{}
	assert.Error(t, empty.Validate())

	nameless := &CaseInput{Conditions: []CaseCondition{{Severity: SeverityMild}}}
	assert.Error(t, nameless.Validate())

	ok := &CaseInput{Conditions: []CaseCondition{{Name: "PTSD", Severity: SeverityModerate}}}
	assert.NoError(t, ok.Validate())
}
