package icd10

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repository lookups when no record matches.
var ErrNotFound = errors.New("diagnosis record not found")

// ParseError indicates the uploaded document is not well-formed XML.
// Nothing is committed when it occurs.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed XML document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedRecordError indicates a diag element missing its mandatory
// name or desc child. Offset is the byte position of the element in the
// input stream. The whole batch is aborted.
type MalformedRecordError struct {
	Offset  int64
	Missing string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("diag element at byte offset %d is missing its %q child", e.Offset, e.Missing)
}

// ConflictError indicates a storage-level uniqueness violation during
// commit, typically a concurrent batch inserting the same composite key.
// The batch is rolled back and is safe to retry as a whole.
type ConflictError struct {
	Year int
	Type LibraryType
	Code string
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting insert for %d/%s/%s: %v", e.Year, e.Type, e.Code, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }
