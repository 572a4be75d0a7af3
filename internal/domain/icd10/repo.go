package icd10

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchQuery bounds a query over the record store. LibraryYear is always
// applied; the remaining fields are optional and AND-combined. Code and
// Description are substring-containment filters using the store's native
// collation (no case folding or normalization).
type SearchQuery struct {
	LibraryYear int
	LibraryType *LibraryType
	Code        string
	Description string
}

// Repository is the record store for diagnosis records.
type Repository interface {
	// GetByKey looks up a record by its composite natural key.
	// Returns ErrNotFound when no record matches.
	GetByKey(ctx context.Context, year int, typ LibraryType, code string) (*DiagnosisRecord, error)
	// Insert persists a new record. A uniqueness violation on the
	// composite key returns a *ConflictError.
	Insert(ctx context.Context, rec *DiagnosisRecord) error
	// UpdateDescription revises a record's description and update
	// provenance. The composite key is never touched.
	UpdateDescription(ctx context.Context, id uuid.UUID, description string, at time.Time, by uuid.UUID) error
	// Search returns all records matching q.
	Search(ctx context.Context, q SearchQuery) ([]*DiagnosisRecord, error)
	// InTx runs fn inside a single transaction; repository calls made
	// with the ctx passed to fn join that transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
