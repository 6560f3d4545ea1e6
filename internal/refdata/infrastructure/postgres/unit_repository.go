package postgres

import (
	"context"
	"database/sql"
	"fmt"

	refdata "i90-ingest/internal/refdata/domain"
)

const defaultUnitTable = "unidades_programacion"

// UnitRepository reads the programming-unit allow-list.
type UnitRepository struct {
	db    *sql.DB
	table string
}

// UnitRepositoryOption configures the repository.
type UnitRepositoryOption func(*UnitRepository)

// WithUnitTable overrides the default table name.
func WithUnitTable(table string) UnitRepositoryOption {
	return func(r *UnitRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewUnitRepository creates a repository using the default table name.
func NewUnitRepository(db *sql.DB, opts ...UnitRepositoryOption) *UnitRepository {
	repo := &UnitRepository{db: db, table: defaultUnitTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListEnabled fetches the enabled units as a code-to-id set.
func (r *UnitRepository) ListEnabled(ctx context.Context) (refdata.UnitSet, error) {
	query := fmt.Sprintf(`
SELECT id, unidad
FROM %s
WHERE activa`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unit repository: list: %w", err)
	}
	defer rows.Close()

	units := make(refdata.UnitSet)
	for rows.Next() {
		var (
			id   int
			code string
		)
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("unit repository: scan: %w", err)
		}
		units[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unit repository: rows: %w", err)
	}
	return units, nil
}
