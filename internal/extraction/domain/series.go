package extraction

import (
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

// SeriesRow is the canonical long-format output: one value for one
// programming unit at one local timestamp in one market. After aggregation
// there is at most one row per (unit, timestamp, market).
type SeriesRow struct {
	Unit      string
	LocalTime time.Time
	MarketID  int
	Value     float64
	Kind      refdata.ValueKind
}
