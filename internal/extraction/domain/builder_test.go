package extraction

import (
	"errors"
	"testing"
	"time"

	refdata "i90-ingest/internal/refdata/domain"
)

var testDate = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func TestBuildSeriesPriceMeanRounded(t *testing.T) {
	filtered := FilteredSheet{
		Granularity: GranularityQuarterHour,
		Rows: []FilteredRow{{
			Unit: "UNIT_A",
			// Periods 21 and 22 both fall in hour 5 after the hourly collapse.
			Cells: []PeriodCell{{Period: 21, Value: 10.1}, {Period: 22, Value: 10.3}},
		}},
	}
	spec := refdata.MarketSpec{ID: 6, Name: "Terciaria a subir"}

	rows, err := BuildSeries(filtered, spec, refdata.KindPrice, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d want 1", len(rows))
	}
	if rows[0].Value != 10.2 {
		t.Fatalf("mean: got %v want 10.200", rows[0].Value)
	}
	if rows[0].LocalTime.Hour() != 5 {
		t.Fatalf("hour: got %d want 5", rows[0].LocalTime.Hour())
	}
	if rows[0].MarketID != 6 || rows[0].Kind != refdata.KindPrice {
		t.Fatalf("row metadata: %+v", rows[0])
	}
}

func TestBuildSeriesVolumeSumSuppressesZero(t *testing.T) {
	filtered := FilteredSheet{
		Granularity: GranularityHourly,
		Rows: []FilteredRow{
			{Unit: "UNIT_B", Cells: []PeriodCell{{Period: 3, Value: 5.0}}},
			{Unit: "UNIT_B", Cells: []PeriodCell{{Period: 3, Value: -5.0}}},
			{Unit: "UNIT_C", Cells: []PeriodCell{{Period: 3, Value: 2.5}}},
		},
	}
	spec := refdata.MarketSpec{ID: 2, Name: "RR a subir"}

	rows, err := BuildSeries(filtered, spec, refdata.KindVolume, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d want 1 (zero sum dropped)", len(rows))
	}
	if rows[0].Unit != "UNIT_C" || rows[0].Value != 2.5 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestBuildSeriesLongDayMergesTransitionHour(t *testing.T) {
	longDay := ClassifyDay(1)
	filtered := FilteredSheet{
		Granularity: GranularityHourly,
		Rows: []FilteredRow{{
			Unit: "UNIT_A",
			// Periods 3 and 4 both land on the transition hour of a 25-hour day.
			Cells: []PeriodCell{{Period: 3, Value: 1.0}, {Period: 4, Value: 2.0}},
		}},
	}
	spec := refdata.MarketSpec{ID: 1, Name: "Curtailment"}

	rows, err := BuildSeries(filtered, spec, refdata.KindVolume, longDay, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: got %d want 1 (occurrences merged)", len(rows))
	}
	if rows[0].Value != 3.0 {
		t.Fatalf("sum: got %v want 3.0", rows[0].Value)
	}
	if rows[0].LocalTime.Hour() != 2 {
		t.Fatalf("hour: got %d want 2", rows[0].LocalTime.Hour())
	}
}

func TestBuildSeriesAttachesDate(t *testing.T) {
	filtered := FilteredSheet{
		Granularity: GranularityHourly,
		Rows:        []FilteredRow{{Unit: "UNIT_A", Cells: []PeriodCell{{Period: 10, Value: 7.0}}}},
	}

	rows, err := BuildSeries(filtered, refdata.MarketSpec{ID: 1, Name: "x"}, refdata.KindVolume, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	if !rows[0].LocalTime.Equal(want) {
		t.Fatalf("timestamp: got %v want %v", rows[0].LocalTime, want)
	}
}

func TestBuildSeriesEmptyInput(t *testing.T) {
	rows, err := BuildSeries(FilteredSheet{}, refdata.MarketSpec{ID: 1, Name: "x"}, refdata.KindVolume, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if rows != nil {
		t.Fatalf("expected nil rows, got %v", rows)
	}
}

func TestBuildSeriesPropagatesMappingError(t *testing.T) {
	filtered := FilteredSheet{
		Granularity: GranularityHourly,
		Rows:        []FilteredRow{{Unit: "UNIT_A", Cells: []PeriodCell{{Period: 25, Value: 1.0}}}},
	}

	_, err := BuildSeries(filtered, refdata.MarketSpec{ID: 1, Name: "x"}, refdata.KindVolume, ClassifyDay(0), testDate)
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("got %v, want MappingError", err)
	}
}

func TestBuildSeriesIdempotent(t *testing.T) {
	filtered := FilteredSheet{
		Granularity: GranularityQuarterHour,
		Rows: []FilteredRow{{
			Unit:  "UNIT_A",
			Cells: []PeriodCell{{Period: 1, Value: 1.0}, {Period: 2, Value: 2.0}, {Period: 5, Value: 3.0}},
		}},
	}
	spec := refdata.MarketSpec{ID: 1, Name: "x", QuarterHourly: true}

	first, err := BuildSeries(filtered, spec, refdata.KindVolume, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildSeries(filtered, spec, refdata.KindVolume, ClassifyDay(0), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
