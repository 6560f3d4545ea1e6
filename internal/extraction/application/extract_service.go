package application

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	extraction "i90-ingest/internal/extraction/domain"
	"i90-ingest/internal/observability/metrics"
	refdata "i90-ingest/internal/refdata/domain"
)

// Workbook is the orchestrator's view of a daily settlement workbook.
// Sheet returns ok = false when the sheet is absent, which is treated as no
// data rather than a failure.
type Workbook interface {
	Sheet(id int) (*extraction.RawSheet, bool, error)
}

// MarketSeries is one market's extracted series for the day.
type MarketSeries struct {
	Market refdata.MarketSpec
	Kind   refdata.ValueKind
	Rows   []extraction.SeriesRow
}

// FamilyResult is the outcome of extracting one market family for one day.
type FamilyResult struct {
	RunID  string
	Day    time.Time
	Family refdata.MarketFamily

	Markets       []MarketSeries
	SkippedSheets []int

	// AllSheetsErrored flags the warning condition where every sheet the
	// family needs was error-flagged for the day. The result is empty but
	// the run as a whole continues.
	AllSheetsErrored bool
}

// ExtractionService drives the per-day, per-family extraction: it walks the
// family's sheets, honors the known-errors table, and runs the row filter
// and series builder for each market.
type ExtractionService struct {
	snapshot *refdata.Snapshot
	rules    *extraction.RuleTable
	schema   extraction.SheetSchema
	logger   *log.Logger
}

// ServiceOption configures the extraction service.
type ServiceOption func(*ExtractionService)

// WithSchema overrides the default sheet schema.
func WithSchema(schema extraction.SheetSchema) ServiceOption {
	return func(s *ExtractionService) { s.schema = schema }
}

// NewExtractionService constructs the orchestrator.
func NewExtractionService(snapshot *refdata.Snapshot, rules *extraction.RuleTable, logger *log.Logger, opts ...ServiceOption) (*ExtractionService, error) {
	if snapshot == nil {
		return nil, errors.New("extraction service: nil reference snapshot")
	}
	if rules == nil {
		return nil, errors.New("extraction service: nil rule table")
	}
	if logger == nil {
		return nil, errors.New("extraction service: nil logger")
	}

	s := &ExtractionService{
		snapshot: snapshot,
		rules:    rules,
		schema:   extraction.DefaultSchema(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ExtractFamily extracts every market of the family for the day from the
// workbook. Sheets flagged in the known-errors table are skipped; when all
// of them are, the result is empty and flagged AllSheetsErrored.
func (s *ExtractionService) ExtractFamily(ctx context.Context, day time.Time, family refdata.MarketFamily, wb Workbook) (*FamilyResult, error) {
	if day.IsZero() {
		return nil, extraction.ErrInvalidDate
	}
	if wb == nil {
		return nil, errors.New("extraction service: nil workbook")
	}

	started := time.Now()
	result := &FamilyResult{
		RunID:  uuid.NewString(),
		Day:    day,
		Family: family,
	}

	specs := s.snapshot.SpecsFor(family)
	if len(specs) == 0 {
		s.logger.Printf("extract run=%s family=%s day=%s: no market specs configured", result.RunID, family, day.Format("2006-01-02"))
		return result, nil
	}

	dayClass := extraction.ClassifyDay(s.snapshot.HourOffset(day))
	if dayClass.Kind != extraction.DayNormal {
		s.logger.Printf("extract run=%s family=%s day=%s: %s day (%d hours)", result.RunID, family, day.Format("2006-01-02"), dayClass.Kind, dayClass.Hours())
	}

	sheetIDs := familySheets(specs)
	for _, sheetID := range sheetIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.snapshot.SheetErrored(day, sheetID) {
			result.SkippedSheets = append(result.SkippedSheets, sheetID)
			metrics.IncSheetErrored(string(family))
			s.logger.Printf("extract run=%s family=%s day=%s: sheet %02d error-flagged, skipping", result.RunID, family, day.Format("2006-01-02"), sheetID)
			continue
		}

		sheet, ok, err := wb.Sheet(sheetID)
		if err != nil {
			metrics.ObserveExtraction(string(family), "error", time.Since(started))
			return nil, err
		}
		if !ok {
			metrics.IncSheetAbsent(string(family))
			continue
		}
		metrics.IncSheetProcessed(string(family))

		for _, spec := range specs {
			if !spec.ReadsSheet(sheetID) {
				continue
			}

			kind := spec.KindForSheet(sheetID)
			rule := s.rules.Lookup(sheetID, spec.Name)

			filtered, err := extraction.FilterSheet(sheet, spec, rule, s.schema, s.snapshot.Units())
			if err != nil {
				metrics.ObserveExtraction(string(family), "error", time.Since(started))
				return nil, err
			}
			rows, err := extraction.BuildSeries(filtered, spec, kind, dayClass, day)
			if err != nil {
				metrics.ObserveExtraction(string(family), "error", time.Since(started))
				return nil, err
			}

			metrics.ObserveMarketExtracted(string(family), string(kind), len(rows))
			result.Markets = append(result.Markets, MarketSeries{Market: spec, Kind: kind, Rows: rows})
		}
	}

	if len(result.SkippedSheets) == len(sheetIDs) && len(sheetIDs) > 0 {
		result.AllSheetsErrored = true
		s.logger.Printf("extract run=%s family=%s day=%s: warning, all sheets error-flagged", result.RunID, family, day.Format("2006-01-02"))
	}

	metrics.ObserveExtraction(string(family), "success", time.Since(started))
	return result, nil
}

// familySheets returns the distinct sheet ids a spec set reads, ascending.
func familySheets(specs []refdata.MarketSpec) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, spec := range specs {
		for _, id := range spec.Sheets() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
