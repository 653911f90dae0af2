package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	ErrHeaderNotFound       = errors.New("header row not found")
	ErrRequiredFieldMissing = errors.New("required field missing")
	ErrTemplateNotFound     = errors.New("template sheet not found")
	ErrNoDataSheet          = errors.New("workbook has no sheets")
	ErrSaveFailed           = errors.New("save failed")
	ErrRunNotFound          = errors.New("run not found")
	ErrNoOutput             = errors.New("no output available")
	ErrNoFile               = errors.New("no file provided")
	ErrRunTimeout           = errors.New("run timed out")
)

// HeaderNotFoundError is returned when no row in the scan window contains a
// header keyword and no fallback row was supplied.
type HeaderNotFoundError struct {
	ScannedRows int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found in the first %d rows", e.ScannedRows)
}

func (e *HeaderNotFoundError) Is(target error) bool {
	return target == ErrHeaderNotFound
}

// RequiredFieldMissingError is returned when a required field matches no
// header label.
type RequiredFieldMissingError struct {
	Field SemanticField
	Tried []string
}

func (e *RequiredFieldMissingError) Error() string {
	return fmt.Sprintf("required field %q not found (possible names: %s)",
		e.Field, strings.Join(e.Tried, ", "))
}

func (e *RequiredFieldMissingError) Is(target error) bool {
	return target == ErrRequiredFieldMissing
}

// TemplateNotFoundError is returned when no sheet name contains the
// variant's template identifier.
type TemplateNotFoundError struct {
	Match string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template sheet with partial name %q not found", e.Match)
}

func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// SaveError wraps a failure to persist the finished document.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save the file: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool {
	return target == ErrSaveFailed
}

// RowProcessingError is a recoverable failure while projecting or emitting a
// single row. The row is logged and skipped; the run continues.
type RowProcessingError struct {
	Row        int // 1-based sheet row
	Identifier string
	Err        error
}

func (e *RowProcessingError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("row %d (identifier %s): %v", e.Row, e.Identifier, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowProcessingError) Unwrap() error { return e.Err }

// Warning reports an optional field that resolved to no column.
type Warning struct {
	Field SemanticField
	Tried []string
}

func (w Warning) String() string {
	return fmt.Sprintf("field %q not found in the input file (possible names: %s)",
		w.Field, strings.Join(w.Tried, ", "))
}
