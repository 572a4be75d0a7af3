package icd10

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DiagnosisSource is a one-pass sequence of parsed diagnosis records.
// Next returns io.EOF when the sequence is exhausted. *Parser satisfies it.
type DiagnosisSource interface {
	Next() (*Diagnosis, error)
}

// Service reconciles uploaded code libraries against the record store and
// answers search queries.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new ICD-10 library service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Ingest reconciles every record from src against the store, all within
// one transaction. Per record: absent composite key inserts a new row;
// present key with a changed description updates it; present key with an
// identical description is left alone. Counter semantics are documented
// on IngestSummary.
//
// Any parser or storage error aborts the whole batch; nothing is
// committed and the returned summary is nil. A *ConflictError from a
// racing batch is safe to retry in full: the rerun degrades to
// skipped/updated outcomes.
func (s *Service) Ingest(ctx context.Context, src DiagnosisSource, year int, typ LibraryType, actorID uuid.UUID) (*IngestSummary, error) {
	if year < 1000 || year > 9999 {
		return nil, fmt.Errorf("library year must be a 4-digit year, got %d", year)
	}
	if actorID == uuid.Nil {
		return nil, fmt.Errorf("actor id is required")
	}

	// One timestamp for the whole batch so every row shares the same
	// logical as-of moment.
	batchTime := s.now().UTC()

	var summary IngestSummary
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		for {
			d, err := src.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			existing, err := s.repo.GetByKey(ctx, year, typ, d.Code)
			if errors.Is(err, ErrNotFound) {
				rec := &DiagnosisRecord{
					LibraryYear:          year,
					LibraryType:          typ,
					DiagnosisCode:        d.Code,
					DiagnosisDescription: d.Description,
					CreatedAt:            batchTime,
					CreatedBy:            actorID,
				}
				if err := s.repo.Insert(ctx, rec); err != nil {
					return err
				}
				summary.New++
				continue
			}
			if err != nil {
				return err
			}

			if existing.DiagnosisDescription != d.Description {
				if err := s.repo.UpdateDescription(ctx, existing.ID, d.Description, batchTime, actorID); err != nil {
					return err
				}
				summary.Updated++
			}
			// Skipped counts every pre-existing record, updated or not.
			summary.Skipped++
		}
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Search returns all records for the library year resolved from the date
// of service, optionally narrowed by code/description substrings and a
// library type. An empty result is not an error. Ordering is stable
// (by code) but not part of the contract.
func (s *Service) Search(ctx context.Context, serviceDate time.Time, code, description string, typ *LibraryType) ([]*DiagnosisRecord, error) {
	if serviceDate.IsZero() {
		return nil, fmt.Errorf("date of service is required")
	}
	q := SearchQuery{
		LibraryYear: ResolveLibraryYear(serviceDate),
		LibraryType: typ,
		Code:        code,
		Description: description,
	}
	return s.repo.Search(ctx, q)
}
