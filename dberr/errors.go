// Package dberr provides standardized error types for the rawlite engine.
//
// Every failure produced by the engine wraps exactly one of the sentinel
// errors below, so callers can classify a failure with errors.Is without
// depending on message text.
package dberr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy
var (
	// ErrIO indicates the database file could not be opened or read.
	ErrIO = errors.New("i/o error")
	// ErrFormat indicates the file violates the SQLite on-disk format.
	ErrFormat = errors.New("malformed database file")
	// ErrOverflow indicates a payload spans overflow pages, which the
	// engine rejects rather than truncates.
	ErrOverflow = errors.New("overflow page chains not supported")
	// ErrSchema indicates a referenced table or index does not exist.
	ErrSchema = errors.New("schema object not found")
	// ErrParse indicates SQL text outside the supported grammar.
	ErrParse = errors.New("unsupported SQL")
	// ErrColumnNotFound indicates a referenced column is absent from the
	// resolved table schema.
	ErrColumnNotFound = errors.New("no such column")
)

// FormatError represents a file format violation with context
type FormatError struct {
	Page   uint32 // Page number where the violation was found (0 if not page-scoped)
	Detail string // Human-readable description
	Err    error  // Underlying error, if any
}

func (e *FormatError) Error() string {
	if e.Page != 0 {
		return fmt.Sprintf("malformed database file: page %d: %s", e.Page, e.Detail)
	}
	return fmt.Sprintf("malformed database file: %s", e.Detail)
}

func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFormat
}

// Formatf builds a FormatError with a formatted detail message.
func Formatf(page uint32, format string, args ...interface{}) error {
	return &FormatError{Page: page, Detail: fmt.Sprintf(format, args...)}
}

// IOError represents a failure to open or read the database file
type IOError struct {
	Path string // File path being accessed
	Op   string // Operation that failed ("open", "read")
	Err  error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("i/o error: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("i/o error: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return ErrIO
}

// SchemaError represents a missing table or index
type SchemaError struct {
	Kind string // "table" or "index"
	Name string // Object name as given by the caller
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no such %s: %s", e.Kind, e.Name)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// ParseError represents SQL text the restricted grammar rejects
type ParseError struct {
	SQL    string // Statement text as given
	Detail string // Why it was rejected
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unsupported SQL: %s", e.Detail)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ColumnError represents a reference to a column absent from a table's schema
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("no such column: %s.%s", e.Table, e.Column)
}

func (e *ColumnError) Unwrap() error {
	return ErrColumnNotFound
}

// IsFormat reports whether err is a format violation.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsOverflow reports whether err is an overflow-chain rejection.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}
