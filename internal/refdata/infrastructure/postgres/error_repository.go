package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

const defaultErrorTable = "errores_i90"

// ErrorRecordRepository reads the known-errors table: (date, sheet) pairs
// marking workbook sheets as unusable.
type ErrorRecordRepository struct {
	db    *sql.DB
	table string
}

// ErrorRepositoryOption configures the repository.
type ErrorRepositoryOption func(*ErrorRecordRepository)

// WithErrorTable overrides the default table name.
func WithErrorTable(table string) ErrorRepositoryOption {
	return func(r *ErrorRecordRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewErrorRecordRepository creates a repository using the default table name.
func NewErrorRecordRepository(db *sql.DB, opts ...ErrorRepositoryOption) *ErrorRecordRepository {
	repo := &ErrorRecordRepository{db: db, table: defaultErrorTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListRange fetches error records for dates in [from, to).
func (r *ErrorRecordRepository) ListRange(ctx context.Context, from, to time.Time) ([]refdata.ErrorRecord, error) {
	query := fmt.Sprintf(`
SELECT fecha, tipo_error
FROM %s
WHERE fecha >= $1 AND fecha < $2
ORDER BY fecha, tipo_error`, r.table)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error repository: list: %w", err)
	}
	defer rows.Close()

	var records []refdata.ErrorRecord
	for rows.Next() {
		var rec refdata.ErrorRecord
		if err := rows.Scan(&rec.Date, &rec.SheetID); err != nil {
			return nil, fmt.Errorf("error repository: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error repository: rows: %w", err)
	}
	return records, nil
}
