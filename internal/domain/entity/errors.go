package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates that a document yielded no extractable text
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed
// validation. Upload validation guarantees the offending staged file has already
// been deleted by the time a ValidationError reaches the caller.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExtractionError represents a format-specific text extraction failure.
// Format names the extraction strategy (pdf, docx, url, ...); Err carries the
// underlying cause. No partial text accompanies an ExtractionError.
type ExtractionError struct {
	Format string
	Err    error
}

// Error returns a formatted error message including the source format.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s content: %v", e.Format, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As matching.
func (e *ExtractionError) Unwrap() error { return e.Err }

// UnsupportedTypeError is returned when a material source carries a type tag
// that no extraction strategy handles. The message names the offending type so
// callers can surface it directly.
type UnsupportedTypeError struct {
	Type string
}

// Error returns a formatted error message naming the unsupported type.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported material type: %q", e.Type)
}

// ResponseParseError indicates that an LLM response could not be parsed into
// the expected JSON shape. Raw retains a bounded snippet of the offending
// response for diagnostics.
type ResponseParseError struct {
	Operation string
	Raw       string
	Err       error
}

// Error returns a formatted error message for the parse failure.
func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Operation, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As matching.
func (e *ResponseParseError) Unwrap() error { return e.Err }
