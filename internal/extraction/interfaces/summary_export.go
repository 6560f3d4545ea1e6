package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"i90-ingest/internal/extraction/application"
)

// BuildRunSummaryPDF renders a minimal PDF audit summary for one family run.
func BuildRunSummaryPDF(result *application.FamilyResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "I90 Extraction Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Family: %s", result.Family))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", result.Day.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", result.RunID))
	pdf.Ln(5)
	if result.AllSheetsErrored {
		pdf.Cell(0, 6, "Warning: all sheets error-flagged, empty result")
		pdf.Ln(5)
	}
	if len(result.SkippedSheets) > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Skipped sheets: %v", result.SkippedSheets))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Market", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Kind", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Rows", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, market := range result.Markets {
		pdf.CellFormat(70, 6, market.Market.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, string(market.Kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%d", len(market.Rows)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRunSummaryXLSX renders a minimal XLSX audit summary for one family run.
func BuildRunSummaryXLSX(result *application.FamilyResult) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	marketsSheet := "markets"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(marketsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "I90 Extraction Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Family")
	_ = f.SetCellValue(summarySheet, "B3", string(result.Family))
	_ = f.SetCellValue(summarySheet, "A4", "Day")
	_ = f.SetCellValue(summarySheet, "B4", result.Day.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Run")
	_ = f.SetCellValue(summarySheet, "B5", result.RunID)
	_ = f.SetCellValue(summarySheet, "A6", "Markets")
	_ = f.SetCellValue(summarySheet, "B6", len(result.Markets))
	_ = f.SetCellValue(summarySheet, "A7", "Skipped sheets")
	_ = f.SetCellValue(summarySheet, "B7", fmt.Sprintf("%v", result.SkippedSheets))
	_ = f.SetCellValue(summarySheet, "A8", "All sheets errored")
	_ = f.SetCellValue(summarySheet, "B8", result.AllSheetsErrored)

	_ = f.SetCellValue(marketsSheet, "A1", "Market")
	_ = f.SetCellValue(marketsSheet, "B1", "Kind")
	_ = f.SetCellValue(marketsSheet, "C1", "Rows")
	for i, market := range result.Markets {
		row := i + 2
		_ = f.SetCellValue(marketsSheet, fmt.Sprintf("A%d", row), market.Market.Name)
		_ = f.SetCellValue(marketsSheet, fmt.Sprintf("B%d", row), string(market.Kind))
		_ = f.SetCellValue(marketsSheet, fmt.Sprintf("C%d", row), len(market.Rows))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
