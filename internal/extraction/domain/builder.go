package extraction

import (
	"math"
	"sort"
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

// BuildSeries reshapes a filtered sheet into long-format series rows: each
// period cell is mapped onto the local time grid and duplicate (unit,
// timestamp) pairs are aggregated: arithmetic mean rounded to three
// decimals for prices, sum for volumes. Zero-valued volume rows are
// suppressed, since a zero volume means "no activity" rather than a
// measured zero.
//
// A quarter-hourly sheet feeding an hourly market collapses four periods
// into each hour bucket. On a long day the two occurrences of the
// transition hour merge into a single output row here; the raw grid
// carries no occurrence marker to keep them apart.
func BuildSeries(filtered FilteredSheet, spec refdata.MarketSpec, kind refdata.ValueKind, day DayClassification, date time.Time) ([]SeriesRow, error) {
	if filtered.Empty() {
		return nil, nil
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	type bucket struct {
		unit  string
		at    time.Time
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0, len(filtered.Rows))

	collapse := filtered.Granularity == GranularityQuarterHour && !spec.QuarterHourly

	for _, row := range filtered.Rows {
		for _, c := range row.Cells {
			var (
				tod TimeOfDay
				err error
			)
			if collapse {
				tod, err = MapPeriodToHour(c.Period, day)
			} else {
				tod, err = MapPeriod(c.Period, filtered.Granularity, day)
			}
			if err != nil {
				return nil, err
			}

			at := tod.At(date)
			key := row.Unit + "|" + at.Format("15:04")
			b, ok := buckets[key]
			if !ok {
				b = &bucket{unit: row.Unit, at: at}
				buckets[key] = b
				order = append(order, key)
			}
			b.sum += c.Value
			b.count++
		}
	}

	rows := make([]SeriesRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		value := b.sum
		if kind == refdata.KindPrice {
			value = roundTo3(b.sum / float64(b.count))
		} else if value == 0.0 {
			continue
		}
		rows = append(rows, SeriesRow{
			Unit:      b.unit,
			LocalTime: b.at,
			MarketID:  spec.ID,
			Value:     value,
			Kind:      kind,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Unit != rows[j].Unit {
			return rows[i].Unit < rows[j].Unit
		}
		return rows[i].LocalTime.Before(rows[j].LocalTime)
	})
	return rows, nil
}

func roundTo3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
