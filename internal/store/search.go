package store

import (
	"fmt"
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/sirupsen/logrus"

	"github.com/vac-rating-engine/internal/domain"
)

// FindCondition resolves a free-text condition name to the single
// best-matching reference condition, or nil when nothing reaches the
// threshold. An exact match against any indexed term wins immediately
// regardless of the threshold. Ties on the best fuzzy score resolve to the
// lexicographically smallest condition ID because the scan walks IDs in
// sorted order and only a strictly greater score replaces the leader.
//
// A threshold outside (0,100] falls back to DefaultMatchThreshold.
func (s *Store) FindCondition(name string, threshold int) *domain.Condition {
	if name == "" || len(s.index) == 0 {
		return nil
	}
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultMatchThreshold
	}

	query := normalize(name)
	var best *domain.Condition
	bestScore := 0

	for _, id := range s.order {
		entry := s.index[id]

		if score := fuzzy.Ratio(query, entry.primaryName); score > bestScore {
			bestScore = score
			best = entry.condition
		}

		for _, term := range entry.terms {
			if query == term {
				s.logger.WithFields(logrus.Fields{
					"query":     query,
					"condition": entry.condition.Name,
					"match":     "exact",
				}).Info("Found condition match")
				return entry.condition
			}

			score := maxScore(
				fuzzy.Ratio(query, term),
				fuzzy.PartialRatio(query, term),
				fuzzy.TokenSortRatio(query, term),
			)
			if score > bestScore {
				bestScore = score
				best = entry.condition
			}
		}
	}

	if bestScore >= threshold {
		s.logger.WithFields(logrus.Fields{
			"query":     query,
			"condition": best.Name,
			"score":     bestScore,
		}).Info("Found condition match")
		return best
	}

	s.logger.WithFields(logrus.Fields{
		"query":      query,
		"best_score": bestScore,
	}).Warn("No condition match found")
	return nil
}

// SearchConditions returns the conditions whose name, description, or any
// symptom partially matches the query above the inclusion threshold,
// optionally filtered to one chapter, sorted by relevance descending and
// truncated to limit. Equal scores keep the deterministic ID order.
func (s *Store) SearchConditions(query, chapter string, limit int) []domain.SearchResult {
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := normalize(query)
	var results []domain.SearchResult

	for _, id := range s.order {
		entry := s.index[id]
		if chapter != "" && entry.condition.Chapter != chapter {
			continue
		}

		relevance := maxScore(
			fuzzy.PartialRatio(q, entry.nameLower),
			fuzzy.PartialRatio(q, entry.descLower),
			0,
		)
		for _, symptom := range entry.symptomsLow {
			if symptom == "" {
				continue
			}
			if score := fuzzy.PartialRatio(q, symptom); score > relevance {
				relevance = score
			}
		}

		if relevance > searchInclusionThreshold {
			results = append(results, domain.SearchResult{
				Condition:      entry.condition,
				RelevanceScore: relevance,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// GetCondition returns the condition with the exact ID.
func (s *Store) GetCondition(id string) (*domain.Condition, error) {
	condition, ok := s.conditions[id]
	if !ok {
		return nil, fmt.Errorf("condition %q: %w", id, domain.ErrNotFound)
	}
	return condition, nil
}

// GetChapter returns the chapter with the exact ID.
func (s *Store) GetChapter(id string) (*domain.Chapter, error) {
	chapter, ok := s.chapters[id]
	if !ok {
		return nil, fmt.Errorf("chapter %q: %w", id, domain.ErrNotFound)
	}
	return chapter, nil
}

// GetChapterConditions returns every condition owned by a chapter, sorted
// alphabetically by name for determinism.
func (s *Store) GetChapterConditions(chapterID string) []*domain.Condition {
	var conditions []*domain.Condition
	for _, id := range s.order {
		if c := s.conditions[id]; c.Chapter == chapterID {
			conditions = append(conditions, c)
		}
	}
	sort.Slice(conditions, func(i, j int) bool {
		return conditions[i].Name < conditions[j].Name
	})
	return conditions
}

// GetAllChapters returns every chapter with its current condition count,
// sorted by chapter ID.
func (s *Store) GetAllChapters() []domain.ChapterSummary {
	summaries := make([]domain.ChapterSummary, 0, len(s.chapters))
	for _, chapter := range s.chapters {
		summaries = append(summaries, domain.ChapterSummary{
			Chapter:        *chapter,
			ConditionCount: len(s.GetChapterConditions(chapter.ID)),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// GetRatingTable returns the rating table with the exact ID.
func (s *Store) GetRatingTable(id string) (*domain.RatingTable, error) {
	table, ok := s.ratingTables[id]
	if !ok {
		return nil, fmt.Errorf("rating table %q: %w", id, domain.ErrNotFound)
	}
	return table, nil
}

// GetConditionRatingInfo bundles a condition with its rating criteria and
// whichever referenced rating tables the dataset actually contains.
func (s *Store) GetConditionRatingInfo(id string) (*domain.ConditionRatingInfo, error) {
	condition, err := s.GetCondition(id)
	if err != nil {
		return nil, err
	}

	info := &domain.ConditionRatingInfo{
		Condition:      condition,
		RatingCriteria: condition.RatingCriteria,
		Tables:         []*domain.RatingTable{},
	}
	for _, ref := range condition.Tables {
		if table, err := s.GetRatingTable(ref); err == nil {
			info.Tables = append(info.Tables, table)
		}
	}
	return info, nil
}

func maxScore(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
