// Package history persists finished case assessments for audit and
// review. The default DSN is the in-memory SQLite database, so nothing
// survives process exit unless a file path is configured.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vac-rating-engine/internal/domain"
)

// MemoryDSN is the in-memory SQLite data source. The shared cache keeps a
// single database across the connections of one *sql.DB.
const MemoryDSN = "file::memory:?cache=shared"

// SQLiteStore implements domain.AssessmentRepository using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	dsn string
}

// NewSQLiteStore opens (and if needed creates) the assessment history
// database at dsn and ensures the schema exists. An empty dsn selects the
// in-memory database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" || dsn == ":memory:" {
		dsn = MemoryDSN
	}

	if fileBacked(dsn) {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL only makes sense for a file-backed database.
	if fileBacked(dsn) {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dsn: dsn}, nil
}

func fileBacked(dsn string) bool {
	return !strings.Contains(dsn, ":memory:")
}

// createSchema creates the assessments table and indexes. The full
// assessment document is stored as a JSON payload; the indexed columns
// exist for listing and filtering.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		case_id TEXT DEFAULT '',
		total_rating INTEGER NOT NULL,
		method TEXT NOT NULL,
		confidence TEXT NOT NULL,
		condition_count INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_case_id ON assessments(case_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAssessment reconstructs a CaseAssessment from its stored payload.
func scanAssessment(s scanner) (*domain.CaseAssessment, error) {
	var payload string
	var createdAt time.Time

	if err := s.Scan(&payload, &createdAt); err != nil {
		return nil, err
	}

	assessment := &domain.CaseAssessment{}
	if err := json.Unmarshal([]byte(payload), assessment); err != nil {
		return nil, fmt.Errorf("failed to decode assessment payload: %w", err)
	}
	return assessment, nil
}

// Save stores one finished case assessment.
func (s *SQLiteStore) Save(ctx context.Context, assessment *domain.CaseAssessment) error {
	if assessment == nil {
		return fmt.Errorf("assessment is nil")
	}

	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, case_id, total_rating, method, confidence,
			condition_count, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		assessment.ID,
		assessment.CaseID,
		assessment.TotalRating,
		string(assessment.Combined.Method),
		string(assessment.Confidence),
		len(assessment.Conditions),
		string(payload),
		assessment.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// GetByCase returns all stored assessments for one case, newest first.
func (s *SQLiteStore) GetByCase(ctx context.Context, caseID string) ([]*domain.CaseAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload, created_at
		FROM assessments
		WHERE case_id = ?
		ORDER BY created_at DESC
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

// List returns stored assessments with pagination, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*domain.CaseAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return collectAssessments(rows)
}

func collectAssessments(rows *sql.Rows) ([]*domain.CaseAssessment, error) {
	var result []*domain.CaseAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, assessment)
	}
	return result, rows.Err()
}

// Count returns the total number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// Delete removes one stored assessment by its ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = ?", id)
	return err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
