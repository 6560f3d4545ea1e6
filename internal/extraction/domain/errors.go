package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSheet is returned when a nil raw sheet is passed to the filter.
	ErrNilSheet = errors.New("extraction: nil raw sheet")
	// ErrMissingColumn is returned when the sheet lacks a schema column.
	ErrMissingColumn = errors.New("extraction: missing column")
	// ErrInvalidDate is returned when the calendar date is zero.
	ErrInvalidDate = errors.New("extraction: invalid calendar date")
)

// MappingError reports a period index outside the valid domain of its grid.
// It indicates malformed source data and must propagate; clamping would
// corrupt the time series.
type MappingError struct {
	Period      int
	Granularity Granularity
	Day         DayKind
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("extraction: period %d out of range for %s grid on %s day", e.Period, e.Granularity, e.Day)
}
