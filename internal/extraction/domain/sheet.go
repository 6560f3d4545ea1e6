package extraction

// RawSheet is one settlement sheet as read from the workbook: a header row
// and the data rows below it, all cells as raw strings. Sheets are loaded
// fresh per day and discarded after extraction.
type RawSheet struct {
	ID     int
	Header []string
	Rows   [][]string
}

// SheetSchema names the structural columns of a raw sheet. The filter
// locates columns by these names instead of by position, so a reordered
// workbook keeps working.
type SheetSchema struct {
	UnitColumn      string
	DirectionColumn string
	ConditionColumn string
	TotalColumn     string
}

// DefaultSchema returns the column names used by the grid operator's I90
// workbooks.
func DefaultSchema() SheetSchema {
	return SheetSchema{
		UnitColumn:      "Unidad de Programación",
		DirectionColumn: "Sentido",
		ConditionColumn: "Redespacho",
		TotalColumn:     "Total",
	}
}

// columnIndex returns the position of a named column, or -1.
func (s *RawSheet) columnIndex(name string) int {
	for i, col := range s.Header {
		if col == name {
			return i
		}
	}
	return -1
}

// cell returns the row's cell at the column, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// PeriodCell is one settlement-period value of a filtered row. Period is
// the 1-based position on the raw grid.
type PeriodCell struct {
	Period int
	Value  float64
}

// FilteredRow is one programming unit's period values after filtering.
type FilteredRow struct {
	Unit  string
	Cells []PeriodCell
}

// FilteredSheet is the narrow view of a raw sheet for one market: unit plus
// period-value columns, with the grid granularity detected from the period
// column count.
type FilteredSheet struct {
	Granularity Granularity
	Rows        []FilteredRow
}

// Empty reports whether filtering matched no rows. An empty sheet means "no
// data for this market today", never an error.
func (f FilteredSheet) Empty() bool { return len(f.Rows) == 0 }
