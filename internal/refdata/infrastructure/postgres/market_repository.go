package postgres

import (
	"context"
	"database/sql"
	"fmt"

	refdata "i90-ingest/internal/refdata/domain"
)

const defaultMarketTable = "mercados"

// MarketRepository reads market specs from the reference database.
type MarketRepository struct {
	db    *sql.DB
	table string
}

// MarketRepositoryOption configures the repository.
type MarketRepositoryOption func(*MarketRepository)

// WithMarketTable overrides the default table name.
func WithMarketTable(table string) MarketRepositoryOption {
	return func(r *MarketRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewMarketRepository creates a repository using the default table name.
func NewMarketRepository(db *sql.DB, opts ...MarketRepositoryOption) *MarketRepository {
	repo := &MarketRepository{db: db, table: defaultMarketTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListByFamily fetches the market specs of one family, in id order.
func (r *MarketRepository) ListByFamily(ctx context.Context, family refdata.MarketFamily) ([]refdata.MarketSpec, error) {
	query := fmt.Sprintf(`
SELECT
	id,
	mercado,
	sentido,
	is_quinceminutal,
	COALESCE(sheet_i90_volumenes, 0),
	COALESCE(sheet_i90_precios, 0)
FROM %s
WHERE familia = $1
ORDER BY id`, r.table)

	rows, err := r.db.QueryContext(ctx, query, string(family))
	if err != nil {
		return nil, fmt.Errorf("market repository: list %s: %w", family, err)
	}
	defer rows.Close()

	var specs []refdata.MarketSpec
	for rows.Next() {
		var (
			spec      refdata.MarketSpec
			direction string
		)
		if err := rows.Scan(&spec.ID, &spec.Name, &direction, &spec.QuarterHourly, &spec.VolumeSheet, &spec.PriceSheet); err != nil {
			return nil, fmt.Errorf("market repository: scan: %w", err)
		}
		spec.Family = family
		spec.Direction = refdata.Direction(direction)
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("market repository: rows: %w", err)
	}
	return specs, nil
}
