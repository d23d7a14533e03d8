package domain

import "context"

// ConditionFinder resolves free-text condition names against the
// reference dataset and exposes read-only lookups over it.
type ConditionFinder interface {
	FindCondition(name string, threshold int) *Condition
	SearchConditions(query, chapter string, limit int) []SearchResult
	GetCondition(id string) (*Condition, error)
	GetChapter(id string) (*Chapter, error)
	GetChapterConditions(chapterID string) []*Condition
	GetAllChapters() []ChapterSummary
	GetRatingTable(id string) (*RatingTable, error)
	GetConditionRatingInfo(id string) (*ConditionRatingInfo, error)
	Stats() StoreStats
	Validate() ValidationReport
}

// ConditionResolver maps a free-text condition name to its best-matching
// reference entry, or nil when nothing clears the confidence threshold.
type ConditionResolver interface {
	Resolve(ctx context.Context, name string) (*Condition, error)
	ResolveWithThreshold(ctx context.Context, name string, threshold int) (*Condition, error)
}

// CaseAssessor orchestrates resolution, rating, and combination across a
// full case and derives quality-of-life and recommendation outputs.
type CaseAssessor interface {
	AssessCase(ctx context.Context, input *CaseInput) (*CaseAssessment, error)
	CalculateRating(ctx context.Context, conditions, preExisting []CaseCondition) (*CombinedRating, []ConditionAssessment, error)
}

// AssessmentRepository persists finished case assessments for audit.
type AssessmentRepository interface {
	Save(ctx context.Context, assessment *CaseAssessment) error
	GetByCase(ctx context.Context, caseID string) ([]*CaseAssessment, error)
	List(ctx context.Context, limit, offset int) ([]*CaseAssessment, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
