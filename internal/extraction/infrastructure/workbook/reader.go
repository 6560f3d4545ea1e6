// Package workbook reads I90 settlement workbooks into raw sheets.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	extraction "i90-ingest/internal/extraction/domain"
)

// sheetNameFormat is the grid operator's naming convention: the file prefix
// plus the two-digit sheet id.
const sheetNameFormat = "I90DIA%02d"

// unitColumnAlias maps alternative header spellings back to the canonical
// unit column. Sheet 05 labels the unit column by market participant.
var unitColumnAlias = map[string]string{
	"Participante del Mercado": "Unidad de Programación",
}

// headerRow returns the zero-based header row of a sheet. The operative
// sheets carry two title rows above the header; the rest carry three.
func headerRow(sheetID int) int {
	switch sheetID {
	case 3, 5, 6, 7, 8, 9, 10:
		return 2
	default:
		return 3
	}
}

// Reader provides random access to the sheets of one daily workbook.
type Reader struct {
	file *excelize.File
}

// Open opens a workbook file for reading.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	return &Reader{file: f}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Sheet reads the sheet with the given id. An absent sheet returns ok =
// false without error; callers treat it as no data for the day.
func (r *Reader) Sheet(id int) (*extraction.RawSheet, bool, error) {
	name := fmt.Sprintf(sheetNameFormat, id)
	idx, err := r.file.GetSheetIndex(name)
	if err != nil {
		return nil, false, fmt.Errorf("workbook: sheet %s: %w", name, err)
	}
	if idx < 0 {
		return nil, false, nil
	}

	rows, err := r.file.GetRows(name)
	if err != nil {
		return nil, false, fmt.Errorf("workbook: read %s: %w", name, err)
	}

	hdr := headerRow(id)
	if len(rows) <= hdr {
		return &extraction.RawSheet{ID: id}, true, nil
	}

	header := make([]string, len(rows[hdr]))
	for i, col := range rows[hdr] {
		if canonical, ok := unitColumnAlias[col]; ok {
			col = canonical
		}
		header[i] = col
	}

	return &extraction.RawSheet{
		ID:     id,
		Header: header,
		Rows:   rows[hdr+1:],
	}, true, nil
}
