package parquetstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
)

func testRecords() []Record {
	base := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	return []Record{
		{UP: "UNIT_A", LocalTime: base.Add(1 * time.Hour), MarketID: 1, Value: 2.5},
		{UP: "UNIT_A", LocalTime: base.Add(2 * time.Hour), MarketID: 1, Value: 3.0},
		{UP: "UNIT_B", LocalTime: base.Add(1 * time.Hour), MarketID: 1, Value: 1.0},
	}
}

func TestWriteCreatesPartition(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Write(context.Background(), DatasetVolumesI90, "terciaria", 2025, time.March, testRecords()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(store.base, "mercado=terciaria", "year=2025", "month=03", "volumenes_i90.parquet")
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(rows))
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, DatasetVolumesI90, "terciaria", 2025, time.March, testRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, DatasetVolumesI90, "terciaria", 2025, time.March, testRecords()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(store.base, "mercado=terciaria", "year=2025", "month=03", "volumenes_i90.parquet")
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows after rewrite: got %d want 3", len(rows))
	}
}

func TestWriteMergeKeepsLast(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first := testRecords()
	if err := store.Write(ctx, DatasetVolumesI90, "terciaria", 2025, time.March, first); err != nil {
		t.Fatal(err)
	}

	// Re-extraction produced a corrected value for the same key.
	corrected := []Record{{UP: "UNIT_A", LocalTime: first[0].LocalTime, MarketID: 1, Value: 9.9}}
	if err := store.Write(ctx, DatasetVolumesI90, "terciaria", 2025, time.March, corrected); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(store.base, "mercado=terciaria", "year=2025", "month=03", "volumenes_i90.parquet")
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3", len(rows))
	}
	found := false
	for _, r := range rows {
		if r.UP == "UNIT_A" && r.LocalTime.Equal(first[0].LocalTime) {
			found = true
			if r.Value != 9.9 {
				t.Fatalf("keep-last value: got %v want 9.9", r.Value)
			}
		}
	}
	if !found {
		t.Fatal("corrected row missing")
	}
}

func TestPriceDedupIgnoresUnit(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	at := time.Date(2025, 3, 12, 5, 0, 0, 0, time.UTC)
	rows := []Record{
		{UP: "UNIT_A", LocalTime: at, MarketID: 6, Value: 10.1},
		{UP: "UNIT_B", LocalTime: at, MarketID: 6, Value: 10.3},
	}
	if err := store.Write(ctx, DatasetPrices, "terciaria", 2025, time.March, rows); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(store.base, "mercado=terciaria", "year=2025", "month=03", "precios.parquet")
	got, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatal(err)
	}
	// Prices dedup on (market, timestamp): the later row wins.
	if len(got) != 1 {
		t.Fatalf("rows: got %d want 1", len(got))
	}
	if got[0].Value != 10.3 {
		t.Fatalf("value: got %v want 10.3", got[0].Value)
	}
}

func TestWriteDayPartition(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.WriteDay(context.Background(), DatasetVolumesI90, "curtailment", 2025, time.March, 12, testRecords()); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(store.base, "mercado=curtailment", "year=2025", "month=03", "day=12", "volumenes_i90.parquet")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("day partition missing: %v", err)
	}
}

func TestWriteRejectsUnknownDataset(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	err = store.Write(context.Background(), DatasetType("bogus"), "terciaria", 2025, time.March, testRecords())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if vErr.Dataset != "bogus" {
		t.Fatalf("dataset in error: got %q", vErr.Dataset)
	}
}

func TestWriteEmptyRowsIsNoop(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Write(context.Background(), DatasetVolumesI90, "terciaria", 2025, time.March, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(store.base, "mercado=terciaria")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("empty write must not create partitions")
	}
}
