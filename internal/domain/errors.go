package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for reference-data and assessment integrity.
var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyQuery      = errors.New("query cannot be empty")
	ErrNoDataLoaded    = errors.New("no reference data loaded")
	ErrInvalidCase     = errors.New("invalid case input")
	ErrHistoryDisabled = errors.New("assessment history is not configured")
)

// Error codes for structured assessment failures.
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeDataLoad       = "DATA_LOAD_ERROR"
	ErrCodeAssessment     = "ASSESSMENT_ERROR"
	ErrCodeHistory        = "HISTORY_ERROR"
	ErrCodeInternalServer = "INTERNAL_ERROR"
)

// AssessmentError is a structured error raised by case-level failures.
// Per-condition failures never surface as errors; they are folded into a
// zero-rated assessment entry instead.
type AssessmentError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *AssessmentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAssessmentError creates a new AssessmentError with timestamp.
func NewAssessmentError(code, message, details string) *AssessmentError {
	return &AssessmentError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// ValidationError represents input validation errors.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}
