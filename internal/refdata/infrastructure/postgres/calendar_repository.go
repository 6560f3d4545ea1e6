package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

const defaultTransitionTable = "cambios_hora"

// TransitionRepository reads the clock-change calendar: dates whose
// settlement grid is one hour shorter or longer than normal.
type TransitionRepository struct {
	db    *sql.DB
	table string
}

// TransitionRepositoryOption configures the repository.
type TransitionRepositoryOption func(*TransitionRepository)

// WithTransitionTable overrides the default table name.
func WithTransitionTable(table string) TransitionRepositoryOption {
	return func(r *TransitionRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewTransitionRepository creates a repository using the default table name.
func NewTransitionRepository(db *sql.DB, opts ...TransitionRepositoryOption) *TransitionRepository {
	repo := &TransitionRepository{db: db, table: defaultTransitionTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListRange fetches transition days for dates in [from, to).
func (r *TransitionRepository) ListRange(ctx context.Context, from, to time.Time) ([]refdata.TransitionDay, error) {
	query := fmt.Sprintf(`
SELECT fecha, tipo_cambio_hora
FROM %s
WHERE fecha >= $1 AND fecha < $2
ORDER BY fecha`, r.table)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("transition repository: list: %w", err)
	}
	defer rows.Close()

	var days []refdata.TransitionDay
	for rows.Next() {
		var td refdata.TransitionDay
		if err := rows.Scan(&td.Date, &td.HourOffset); err != nil {
			return nil, fmt.Errorf("transition repository: scan: %w", err)
		}
		days = append(days, td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transition repository: rows: %w", err)
	}
	return days, nil
}
