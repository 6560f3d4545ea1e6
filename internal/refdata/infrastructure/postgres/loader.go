package postgres

import (
	"context"
	"database/sql"
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

// LoadSnapshot assembles the immutable reference snapshot for a date range:
// the market specs of the requested families, the error records and
// transition days inside [from, to), and the unit allow-list.
func LoadSnapshot(ctx context.Context, db *sql.DB, families []refdata.MarketFamily, from, to time.Time) (*refdata.Snapshot, error) {
	markets := NewMarketRepository(db)
	errs := NewErrorRecordRepository(db)
	transitions := NewTransitionRepository(db)
	units := NewUnitRepository(db)

	var specs []refdata.MarketSpec
	for _, family := range families {
		familySpecs, err := markets.ListByFamily(ctx, family)
		if err != nil {
			return nil, err
		}
		specs = append(specs, familySpecs...)
	}

	errRecords, err := errs.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	transitionDays, err := transitions.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	unitSet, err := units.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	return refdata.NewSnapshot(specs, errRecords, transitionDays, unitSet), nil
}
