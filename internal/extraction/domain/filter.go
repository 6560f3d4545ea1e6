package extraction

import (
	"fmt"
	"strconv"
	"strings"

	refdata "i90-ingest/internal/refdata/domain"
)

// FilterSheet narrows a raw sheet to the rows and columns of one market:
// rows are selected by the spec's direction, the condition rule and the
// programming-unit allow-list; columns are narrowed to the unit identifier
// plus the period-value columns right of the schema's total column.
//
// No matching rows is a valid outcome and yields an empty FilteredSheet.
func FilterSheet(sheet *RawSheet, spec refdata.MarketSpec, rule ConditionRule, schema SheetSchema, units refdata.UnitSet) (FilteredSheet, error) {
	if sheet == nil {
		return FilteredSheet{}, ErrNilSheet
	}

	unitIdx := sheet.columnIndex(schema.UnitColumn)
	if unitIdx < 0 {
		return FilteredSheet{}, fmt.Errorf("%w: %q on sheet %02d", ErrMissingColumn, schema.UnitColumn, sheet.ID)
	}
	totalIdx := sheet.columnIndex(schema.TotalColumn)
	if totalIdx < 0 {
		return FilteredSheet{}, fmt.Errorf("%w: %q on sheet %02d", ErrMissingColumn, schema.TotalColumn, sheet.ID)
	}

	directionIdx := sheet.columnIndex(schema.DirectionColumn)
	if spec.Direction != refdata.DirectionNone && directionIdx < 0 {
		return FilteredSheet{}, fmt.Errorf("%w: %q on sheet %02d", ErrMissingColumn, schema.DirectionColumn, sheet.ID)
	}
	conditionIdx := sheet.columnIndex(schema.ConditionColumn)
	if !rule.IsZero() && conditionIdx < 0 {
		return FilteredSheet{}, fmt.Errorf("%w: %q on sheet %02d", ErrMissingColumn, schema.ConditionColumn, sheet.ID)
	}

	periodCount := len(sheet.Header) - totalIdx - 1
	filtered := FilteredSheet{Granularity: granularityForPeriods(periodCount)}

	for _, row := range sheet.Rows {
		unit := strings.TrimSpace(cell(row, unitIdx))
		if unit == "" || !units.Allows(unit) {
			continue
		}
		if spec.Direction != refdata.DirectionNone && cell(row, directionIdx) != string(spec.Direction) {
			continue
		}
		if !rule.IsZero() && !rule.Matches(strings.TrimSpace(cell(row, conditionIdx))) {
			continue
		}

		out := FilteredRow{Unit: unit}
		for i := 0; i < periodCount; i++ {
			raw := strings.TrimSpace(cell(row, totalIdx+1+i))
			if raw == "" {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			out.Cells = append(out.Cells, PeriodCell{Period: i + 1, Value: value})
		}
		filtered.Rows = append(filtered.Rows, out)
	}

	return filtered, nil
}

// granularityForPeriods infers the grid from the period column count. The
// raw column count already reflects the day length, so anything beyond a
// long day's 25 hourly columns must be a quarter-hourly grid.
func granularityForPeriods(count int) Granularity {
	if count > 25 {
		return GranularityQuarterHour
	}
	return GranularityHourly
}
