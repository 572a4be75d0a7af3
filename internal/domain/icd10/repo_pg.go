package icd10

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthtrio/codelib/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates a Postgres-backed record store.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordColumns = `id, library_year, library_type, diagnosis_code, diagnosis_description,
        created_at, created_by, updated_at, updated_by`

func scanRecord(row pgx.Row) (*DiagnosisRecord, error) {
	var rec DiagnosisRecord
	err := row.Scan(&rec.ID, &rec.LibraryYear, &rec.LibraryType, &rec.DiagnosisCode,
		&rec.DiagnosisDescription, &rec.CreatedAt, &rec.CreatedBy, &rec.UpdatedAt, &rec.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) GetByKey(ctx context.Context, year int, typ LibraryType, code string) (*DiagnosisRecord, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM icd10
		 WHERE library_year = $1 AND library_type = $2 AND diagnosis_code = $3`,
		year, typ, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("icd10 get by key: %w", err)
	}
	return rec, nil
}

func (r *repoPG) Insert(ctx context.Context, rec *DiagnosisRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO icd10 (id, library_year, library_type, diagnosis_code, diagnosis_description, created_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.LibraryYear, rec.LibraryType, rec.DiagnosisCode,
		rec.DiagnosisDescription, rec.CreatedAt, rec.CreatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &ConflictError{Year: rec.LibraryYear, Type: rec.LibraryType, Code: rec.DiagnosisCode, Err: err}
		}
		return fmt.Errorf("icd10 insert: %w", err)
	}
	return nil
}

func (r *repoPG) UpdateDescription(ctx context.Context, id uuid.UUID, description string, at time.Time, by uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE icd10 SET diagnosis_description = $2, updated_at = $3, updated_by = $4 WHERE id = $1`,
		id, description, at, by)
	if err != nil {
		return fmt.Errorf("icd10 update description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]*DiagnosisRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM icd10 WHERE library_year = $1`
	args := []interface{}{q.LibraryYear}

	if q.LibraryType != nil {
		args = append(args, *q.LibraryType)
		query += fmt.Sprintf(" AND library_type = $%d", len(args))
	}
	if q.Code != "" {
		args = append(args, q.Code)
		query += fmt.Sprintf(" AND diagnosis_code LIKE '%%' || $%d || '%%'", len(args))
	}
	if q.Description != "" {
		args = append(args, q.Description)
		query += fmt.Sprintf(" AND diagnosis_description LIKE '%%' || $%d || '%%'", len(args))
	}
	query += " ORDER BY diagnosis_code"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("icd10 search: %w", err)
	}
	defer rows.Close()

	var results []*DiagnosisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (r *repoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTx(ctx, r.pool, fn)
}
