// Package store loads and indexes the VAC Table of Disabilities reference
// dataset and exposes read-only lookup and fuzzy-search operations over it.
// The store is built once at startup and never mutated afterwards, so it can
// be shared across concurrent assessments without locking.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vac-rating-engine/internal/domain"
)

// Matching thresholds on the 0-100 similarity scale.
const (
	// DefaultMatchThreshold is the minimum similarity FindCondition accepts.
	DefaultMatchThreshold = 70
	// DefaultSearchLimit caps SearchConditions results when no limit is given.
	DefaultSearchLimit = 10
	// searchInclusionThreshold is the score a search hit must exceed.
	searchInclusionThreshold = 50
)

// searchEntry is the precomputed per-condition search material: the
// normalized primary name plus every normalized searchable term (name,
// description, keywords, symptoms). Built once at load time.
type searchEntry struct {
	condition   *domain.Condition
	primaryName string
	terms       []string
	nameLower   string
	descLower   string
	symptomsLow []string
}

// Store is the immutable reference store over chapters, conditions, and
// rating tables.
type Store struct {
	logger *logrus.Logger

	loaded            bool
	chaptersPresent   bool
	conditionsPresent bool
	tablesPresent     bool

	chapters     map[string]*domain.Chapter
	conditions   map[string]*domain.Condition
	ratingTables map[string]*domain.RatingTable

	index map[string]*searchEntry
	// order holds condition IDs sorted lexicographically; every scan walks
	// this slice so matching is deterministic and score ties resolve to the
	// smallest ID.
	order []string
}

// rawDataset mirrors the on-disk dataset document. chapters is the only
// required section; a nil map means the section was absent entirely.
type rawDataset struct {
	Chapters     map[string]rawChapter     `json:"chapters" yaml:"chapters"`
	Conditions   map[string]rawCondition   `json:"conditions" yaml:"conditions"`
	RatingTables map[string]map[string]any `json:"rating_tables" yaml:"rating_tables"`
}

type rawChapter struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Conditions  []string `json:"conditions" yaml:"conditions"`
	Sections    []string `json:"sections" yaml:"sections"`
}

type rawCondition struct {
	Name            string         `json:"name" yaml:"name"`
	Chapter         string         `json:"chapter" yaml:"chapter"`
	Description     string         `json:"description" yaml:"description"`
	Symptoms        []string       `json:"symptoms" yaml:"symptoms"`
	Keywords        []string       `json:"keywords" yaml:"keywords"`
	RatingCriteria  map[string]any `json:"rating_criteria" yaml:"rating_criteria"`
	AssessmentNotes string         `json:"assessment_notes" yaml:"assessment_notes"`
}

// New creates an empty store. An empty store is a valid degraded state:
// every lookup misses and Validate reports the missing sections.
func New(logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		logger:       logger,
		chapters:     make(map[string]*domain.Chapter),
		conditions:   make(map[string]*domain.Condition),
		ratingTables: make(map[string]*domain.RatingTable),
		index:        make(map[string]*searchEntry),
	}
}

// LoadFile loads the reference dataset from a JSON or YAML file, selected
// by extension. On any failure the error is logged and returned and the
// store stays empty rather than crashing the process.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Error("Reference dataset file not found")
		return fmt.Errorf("failed to read reference dataset: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return s.LoadYAML(data)
	default:
		return s.LoadJSON(data)
	}
}

// LoadJSON loads the reference dataset from raw JSON bytes.
func (s *Store) LoadJSON(data []byte) error {
	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.WithError(err).Error("Invalid JSON in reference dataset")
		return fmt.Errorf("failed to decode reference dataset: %w", err)
	}
	s.build(&raw)
	return nil
}

// LoadYAML loads the reference dataset from raw YAML bytes.
func (s *Store) LoadYAML(data []byte) error {
	var raw rawDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		s.logger.WithError(err).Error("Invalid YAML in reference dataset")
		return fmt.Errorf("failed to decode reference dataset: %w", err)
	}
	s.build(&raw)
	return nil
}

// build converts the raw document into indexed domain entities. It runs
// exactly once per load; the resulting maps are never mutated afterwards.
func (s *Store) build(raw *rawDataset) {
	s.loaded = true
	s.chaptersPresent = raw.Chapters != nil
	s.conditionsPresent = raw.Conditions != nil
	s.tablesPresent = raw.RatingTables != nil

	for id, rc := range raw.Chapters {
		s.chapters[id] = &domain.Chapter{
			ID:          id,
			Title:       rc.Title,
			Description: rc.Description,
			Conditions:  rc.Conditions,
			Sections:    rc.Sections,
		}
	}

	for id, rc := range raw.Conditions {
		criteria := domain.PolicyData(rc.RatingCriteria)
		s.conditions[id] = &domain.Condition{
			ID:              id,
			Name:            rc.Name,
			Chapter:         rc.Chapter,
			Description:     rc.Description,
			Symptoms:        rc.Symptoms,
			Keywords:        rc.Keywords,
			RatingCriteria:  criteria,
			AssessmentNotes: rc.AssessmentNotes,
			Tables:          criteria.StringSlice("tables"),
		}
	}

	for id, payload := range raw.RatingTables {
		data := domain.PolicyData(payload)
		table := &domain.RatingTable{ID: id, Data: data}
		if chapter, ok := payload["chapter"].(string); ok {
			table.Chapter = chapter
		}
		if title, ok := payload["title"].(string); ok {
			table.Title = title
		}
		s.ratingTables[id] = table
	}

	s.buildSearchIndex()

	s.logger.WithFields(logrus.Fields{
		"chapters":      len(s.chapters),
		"conditions":    len(s.conditions),
		"rating_tables": len(s.ratingTables),
	}).Info("Reference dataset indexed")
}

// buildSearchIndex precomputes normalized searchable terms per condition
// and the deterministic scan order.
func (s *Store) buildSearchIndex() {
	s.index = make(map[string]*searchEntry, len(s.conditions))
	s.order = make([]string, 0, len(s.conditions))

	for id, condition := range s.conditions {
		entry := &searchEntry{
			condition:   condition,
			primaryName: normalize(condition.Name),
			nameLower:   normalize(condition.Name),
			descLower:   normalize(condition.Description),
		}

		raw := make([]string, 0, 2+len(condition.Keywords)+len(condition.Symptoms))
		raw = append(raw, condition.Name, condition.Description)
		raw = append(raw, condition.Keywords...)
		raw = append(raw, condition.Symptoms...)
		for _, term := range raw {
			if t := normalize(term); t != "" {
				entry.terms = append(entry.terms, t)
			}
		}

		for _, symptom := range condition.Symptoms {
			entry.symptomsLow = append(entry.symptomsLow, normalize(symptom))
		}

		s.index[id] = entry
		s.order = append(s.order, id)
	}

	sort.Strings(s.order)
}

// Stats reports the size of the loaded dataset and its search index.
func (s *Store) Stats() domain.StoreStats {
	return domain.StoreStats{
		TotalChapters:     len(s.chapters),
		TotalConditions:   len(s.conditions),
		TotalRatingTables: len(s.ratingTables),
		SearchIndexSize:   len(s.index),
	}
}

// Validate performs the structural health check on the loaded dataset.
// Only a completely missing dataset or an absent chapters section is
// invalid; missing conditions or rating tables degrade functionality but
// remain warnings because some deployments route by chapter alone.
func (s *Store) Validate() domain.ValidationReport {
	report := domain.ValidationReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Stats:    s.Stats(),
	}

	if !s.loaded {
		report.Valid = false
		report.Errors = append(report.Errors, "no reference data loaded")
		return report
	}

	if !s.chaptersPresent {
		report.Valid = false
		report.Errors = append(report.Errors, "missing required section: chapters")
	}

	if !s.conditionsPresent {
		report.Warnings = append(report.Warnings, "no conditions section found - using chapter-based routing only")
	}

	if len(s.conditions) == 0 {
		report.Warnings = append(report.Warnings, "no conditions found in data")
	}

	if len(s.chapters) == 0 {
		report.Warnings = append(report.Warnings, "no chapters found in data")
	}

	return report
}

// normalize lower-cases and trims a term for index and query comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
