package refdata

import "time"

// ErrorRecord marks one workbook sheet as unusable for a date.
type ErrorRecord struct {
	Date    time.Time
	SheetID int
}

// TransitionDay marks a clock-change date together with the signed hour
// offset it applies to the settlement grid: -1 for a 23-hour day, +1 for a
// 25-hour day.
type TransitionDay struct {
	Date       time.Time
	HourOffset int
}

// UnitSet is the programming-unit allow-list, mapping unit code to its
// internal id.
type UnitSet map[string]int

// Allows reports whether the unit code is in the allow-list. A nil set
// allows everything.
func (u UnitSet) Allows(code string) bool {
	if u == nil {
		return true
	}
	_, ok := u[code]
	return ok
}

// ID returns the internal id for a unit code, or zero when unknown.
func (u UnitSet) ID(code string) int { return u[code] }

// Snapshot is an immutable view of the reference data needed for one run:
// market specs per family, error-flagged sheets, transition days and the
// unit allow-list. It is loaded once at orchestrator init and never written
// afterwards, so it is safe to share across goroutines.
type Snapshot struct {
	specs       map[MarketFamily][]MarketSpec
	errorSheets map[string]map[int]struct{}
	transitions map[string]int
	units       UnitSet
}

// NewSnapshot assembles a snapshot from reference-store rows.
func NewSnapshot(specs []MarketSpec, errs []ErrorRecord, transitions []TransitionDay, units UnitSet) *Snapshot {
	s := &Snapshot{
		specs:       make(map[MarketFamily][]MarketSpec),
		errorSheets: make(map[string]map[int]struct{}),
		transitions: make(map[string]int),
		units:       units,
	}
	for _, spec := range specs {
		s.specs[spec.Family] = append(s.specs[spec.Family], spec)
	}
	for _, rec := range errs {
		key := dayKey(rec.Date)
		if s.errorSheets[key] == nil {
			s.errorSheets[key] = make(map[int]struct{})
		}
		s.errorSheets[key][rec.SheetID] = struct{}{}
	}
	for _, td := range transitions {
		s.transitions[dayKey(td.Date)] = td.HourOffset
	}
	return s
}

// SpecsFor returns the market specs of a family, in load order.
func (s *Snapshot) SpecsFor(family MarketFamily) []MarketSpec {
	return s.specs[family]
}

// SheetErrored reports whether the sheet is error-flagged for the date.
func (s *Snapshot) SheetErrored(day time.Time, sheetID int) bool {
	sheets, ok := s.errorSheets[dayKey(day)]
	if !ok {
		return false
	}
	_, flagged := sheets[sheetID]
	return flagged
}

// HourOffset returns the signed grid offset for the date: zero on normal
// days, -1 on short days, +1 on long days.
func (s *Snapshot) HourOffset(day time.Time) int {
	return s.transitions[dayKey(day)]
}

// Units returns the programming-unit allow-list.
func (s *Snapshot) Units() UnitSet { return s.units }

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
