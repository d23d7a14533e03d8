package store

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testLogger())
	require.NoError(t, s.LoadFile("testdata/tod_fixture.json"))
	return s
}

func TestLoadFile(t *testing.T) {
	s := newTestStore(t)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalChapters)
	assert.Equal(t, 7, stats.TotalConditions)
	assert.Equal(t, 5, stats.TotalRatingTables)
	assert.Equal(t, stats.TotalConditions, stats.SearchIndexSize)
}

func TestLoadFile_Missing(t *testing.T) {
	s := New(testLogger())

	err := s.LoadFile("testdata/does_not_exist.json")

	require.Error(t, err)
	// The store stays empty but usable.
	assert.Nil(t, s.FindCondition("tinnitus", 0))
	report := s.Validate()
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "no reference data loaded")
}

func TestLoadJSON_Malformed(t *testing.T) {
	s := New(testLogger())

	err := s.LoadJSON([]byte(`{"chapters": [not json`))

	require.Error(t, err)
	assert.Equal(t, 0, s.Stats().TotalConditions)
}

func TestLoadYAML(t *testing.T) {
	s := New(testLogger())

	err := s.LoadYAML([]byte(`
chapters:
  ch09:
    title: Hearing Loss and Ear Impairment
    conditions: [tinnitus]
conditions:
  tinnitus:
    name: Tinnitus
    chapter: ch09
    symptoms: [ringing in ears]
    keywords: [tinnitus]
`))

	require.NoError(t, err)
	assert.Equal(t, 1, s.Stats().TotalChapters)
	require.NotNil(t, s.FindCondition("tinnitus", 70))
}

func TestValidate(t *testing.T) {
	s := newTestStore(t)

	report := s.Validate()

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidate_MissingChapters(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(`{"conditions": {}}`)))

	report := s.Validate()

	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "missing required section: chapters")
}

func TestValidate_MissingConditionsIsWarningOnly(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.LoadJSON([]byte(`{"chapters": {"ch09": {"title": "Hearing"}}}`)))

	report := s.Validate()

	// Chapter-only datasets are a valid degraded deployment.
	assert.True(t, report.Valid)
	assert.Contains(t, report.Warnings, "no conditions section found - using chapter-based routing only")
	assert.Contains(t, report.Warnings, "no conditions found in data")
}

func TestGetCondition(t *testing.T) {
	s := newTestStore(t)

	condition, err := s.GetCondition("ptsd")
	require.NoError(t, err)
	assert.Equal(t, "Post-Traumatic Stress Disorder (PTSD)", condition.Name)
	assert.Equal(t, "ch21", condition.Chapter)
	assert.Equal(t, []string{"ch21_table1"}, condition.Tables)

	_, err = s.GetCondition("unknown")
	assert.Error(t, err)
}

func TestGetChapterConditions_SortedByName(t *testing.T) {
	s := newTestStore(t)

	conditions := s.GetChapterConditions("ch17")

	require.Len(t, conditions, 3)
	assert.Equal(t, "Lumbar Spine Strain", conditions[0].Name)
	assert.Equal(t, "Osteoarthritis of the Knee", conditions[1].Name)
	assert.Equal(t, "Shoulder Impingement Syndrome", conditions[2].Name)
}

func TestGetAllChapters(t *testing.T) {
	s := newTestStore(t)

	chapters := s.GetAllChapters()

	require.Len(t, chapters, 3)
	assert.Equal(t, "ch09", chapters[0].ID)
	assert.Equal(t, "ch17", chapters[1].ID)
	assert.Equal(t, "ch21", chapters[2].ID)
	assert.Equal(t, 2, chapters[0].ConditionCount)
	assert.Equal(t, 3, chapters[1].ConditionCount)
}

func TestGetRatingTable(t *testing.T) {
	s := newTestStore(t)

	table, err := s.GetRatingTable("ch21_table1")
	require.NoError(t, err)
	assert.Equal(t, "ch21", table.Chapter)
	assert.Equal(t, "Table 21.1 - Psychiatric Impairment", table.Title)
	assert.NotEmpty(t, table.Data["bands"])

	_, err = s.GetRatingTable("ch99_table1")
	assert.Error(t, err)
}

func TestGetConditionRatingInfo(t *testing.T) {
	s := newTestStore(t)

	info, err := s.GetConditionRatingInfo("lumbar_spine_strain")
	require.NoError(t, err)

	// ch17_table4 is referenced by the condition but absent from the
	// dataset; only resolvable tables are returned.
	require.Len(t, info.Tables, 1)
	assert.Equal(t, "ch17_table3", info.Tables[0].ID)
	assert.NotNil(t, info.RatingCriteria)
}
