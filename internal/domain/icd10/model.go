package icd10

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LibraryType identifies the ICD-10 code-system variant a record belongs to.
type LibraryType string

const (
	// LibraryTypeCM is the ICD-10-CM diagnosis code set.
	LibraryTypeCM LibraryType = "CM"
	// LibraryTypePCS is the ICD-10-PCS procedure code set.
	LibraryTypePCS LibraryType = "PCS"
)

// ParseLibraryType validates a library type string (case-insensitive).
func ParseLibraryType(s string) (LibraryType, error) {
	switch LibraryType(strings.ToUpper(strings.TrimSpace(s))) {
	case LibraryTypeCM:
		return LibraryTypeCM, nil
	case LibraryTypePCS:
		return LibraryTypePCS, nil
	default:
		return "", fmt.Errorf("invalid library type %q (must be CM or PCS)", s)
	}
}

// DiagnosisRecord is one coded diagnosis entry valid for one annual library
// edition. The triple (library_year, library_type, diagnosis_code) is unique
// within the store and immutable once created; only the description and the
// update provenance fields change on re-ingestion.
type DiagnosisRecord struct {
	ID                   uuid.UUID   `db:"id" json:"-"`
	LibraryYear          int         `db:"library_year" json:"library_year"`
	LibraryType          LibraryType `db:"library_type" json:"library_type"`
	DiagnosisCode        string      `db:"diagnosis_code" json:"diagnosis_code"`
	DiagnosisDescription string      `db:"diagnosis_description" json:"diagnosis_description"`
	CreatedAt            time.Time   `db:"created_at" json:"-"`
	CreatedBy            uuid.UUID   `db:"created_by" json:"-"`
	UpdatedAt            *time.Time  `db:"updated_at" json:"-"`
	UpdatedBy            *uuid.UUID  `db:"updated_by" json:"-"`
}

// Diagnosis is a single code/description pair extracted from an uploaded
// XML document, before reconciliation.
type Diagnosis struct {
	Code        string
	Description string
}

// IngestSummary reports the outcome of one ingestion batch.
//
// Skipped counts every record that already existed before the batch,
// whether or not its description changed; Updated flags the subset whose
// description actually changed. The counters therefore overlap by one for
// each updated record. Callers rendering totals should not add them.
type IngestSummary struct {
	New     int `json:"new_records"`
	Updated int `json:"updated_records"`
	Skipped int `json:"skipped_records"`
}

// ResolveLibraryYear computes which annual code library applies to a date
// of service. CMS publishes the next year's edition on October 1st, so
// dates in Q4 resolve to the following year's library.
func ResolveLibraryYear(serviceDate time.Time) int {
	if serviceDate.Month() >= time.October {
		return serviceDate.Year() + 1
	}
	return serviceDate.Year()
}
