package extraction

import "time"

// Granularity is the settlement-period length of a grid.
type Granularity int

const (
	GranularityHourly Granularity = iota
	GranularityQuarterHour
)

func (g Granularity) String() string {
	if g == GranularityQuarterHour {
		return "quarter-hourly"
	}
	return "hourly"
}

// DayKind classifies a calendar day by its hour count.
type DayKind int

const (
	DayNormal DayKind = iota // 24 hours
	DayShort                 // 23 hours, spring transition
	DayLong                  // 25 hours, autumn transition
)

func (k DayKind) String() string {
	switch k {
	case DayShort:
		return "short"
	case DayLong:
		return "long"
	default:
		return "normal"
	}
}

// transitionHour is the local hour at which the clock changes. The source
// market switches at 02:00 standard time.
const transitionHour = 2

// DayClassification is the per-day grid regime: the day kind plus the
// signed offset applied to period indices at the transition.
type DayClassification struct {
	Kind       DayKind
	HourOffset int
}

// ClassifyDay derives the classification from the transition-table offset:
// zero for a normal day, -1 for a short day, +1 for a long day.
func ClassifyDay(hourOffset int) DayClassification {
	switch {
	case hourOffset < 0:
		return DayClassification{Kind: DayShort, HourOffset: -1}
	case hourOffset > 0:
		return DayClassification{Kind: DayLong, HourOffset: 1}
	default:
		return DayClassification{Kind: DayNormal}
	}
}

// Hours returns the wall-clock period count of the day.
func (c DayClassification) Hours() int { return 24 + c.HourOffset }

// periods returns the valid period count of a grid on this day.
func (c DayClassification) periods(g Granularity) int {
	if g == GranularityQuarterHour {
		return 4 * c.Hours()
	}
	return c.Hours()
}

// TimeOfDay is a local wall-clock time within the settlement day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// At combines the time of day with a calendar date. The result stays in the
// date's location; it is a naive local timestamp, not a UTC instant.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// MapPeriod maps a 1-based period index on the raw grid to the local time
// of day it settles. On a short day the skipped hour never appears in the
// output; on a long day two indices land on the transition hour and are
// merged later by aggregation.
func MapPeriod(period int, g Granularity, day DayClassification) (TimeOfDay, error) {
	if period < 1 || period > day.periods(g) {
		return TimeOfDay{}, &MappingError{Period: period, Granularity: g, Day: day.Kind}
	}
	if g == GranularityQuarterHour {
		q := period - 1
		return TimeOfDay{Hour: shiftHour(q/4, day), Minute: (q % 4) * 15}, nil
	}
	return TimeOfDay{Hour: shiftHour(period-1, day)}, nil
}

// MapPeriodToHour collapses a quarter-hourly period index to its hour
// bucket. Floor division by four happens before the day-length shift, so
// the 92/96/100 boundaries land on the right hour.
func MapPeriodToHour(period int, day DayClassification) (TimeOfDay, error) {
	if period < 1 || period > day.periods(GranularityQuarterHour) {
		return TimeOfDay{}, &MappingError{Period: period, Granularity: GranularityQuarterHour, Day: day.Kind}
	}
	return TimeOfDay{Hour: shiftHour((period - 1) / 4, day)}, nil
}

// shiftHour applies the transition-day offset to a raw hour bucket.
// Short day: buckets at and after the transition move up past the skipped
// hour. Long day: buckets after the transition move back, doubling up the
// transition hour.
func shiftHour(raw int, day DayClassification) int {
	switch day.Kind {
	case DayShort:
		if raw >= transitionHour {
			return raw - day.HourOffset
		}
	case DayLong:
		if raw > transitionHour {
			return raw - day.HourOffset
		}
	}
	return raw
}
