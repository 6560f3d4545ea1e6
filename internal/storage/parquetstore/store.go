// Package parquetstore persists extracted series into a partitioned,
// merge-on-write parquet data lake. Partitions are laid out as
// mercado=<market>/year=YYYY/month=MM[/day=DD]; writing into an existing
// partition reads it back, concatenates, deduplicates keep-last under the
// dataset-specific key and rewrites the file, so repeated writes of the
// same logical rows are idempotent.
package parquetstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	extraction "i90-ingest/internal/extraction/domain"
	"i90-ingest/internal/observability/metrics"
	refdata "i90-ingest/internal/refdata/domain"
)

// DatasetType names a persisted dataset family and selects its dedup key.
type DatasetType string

const (
	DatasetVolumesI90 DatasetType = "volumenes_i90"
	DatasetVolumesI3  DatasetType = "volumenes_i3"
	DatasetPrices     DatasetType = "precios"
	DatasetRevenues   DatasetType = "ingresos"
)

// ValidationError reports an unrecognized dataset type. It is never coerced
// to a default; callers must pass a known dataset.
type ValidationError struct {
	Dataset string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parquetstore: unknown dataset type %q", e.Dataset)
}

func validateDataset(dt DatasetType) error {
	switch dt {
	case DatasetVolumesI90, DatasetVolumesI3, DatasetPrices, DatasetRevenues:
		return nil
	default:
		return &ValidationError{Dataset: string(dt)}
	}
}

// Record is the columnar row shape of every dataset.
type Record struct {
	UP        string    `parquet:"up,dict"`
	LocalTime time.Time `parquet:"local_time,timestamp(millisecond)"`
	MarketID  int32     `parquet:"market_id,dict"`
	Value     float64   `parquet:"value"`
}

// DatasetForKind maps a series value kind to its dataset.
func DatasetForKind(kind refdata.ValueKind) DatasetType {
	if kind == refdata.KindPrice {
		return DatasetPrices
	}
	return DatasetVolumesI90
}

// FromSeries converts extraction output to store records.
func FromSeries(rows []extraction.SeriesRow) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			UP:        row.Unit,
			LocalTime: row.LocalTime,
			MarketID:  int32(row.MarketID),
			Value:     row.Value,
		}
	}
	return records
}

// dedupKey returns the uniqueness key of a record under the dataset's
// rules: volumes are unique per unit, timestamp and market; prices and
// revenues per market and timestamp.
func dedupKey(dt DatasetType, r Record) string {
	ts := r.LocalTime.UTC().Format("2006-01-02T15:04")
	switch dt {
	case DatasetVolumesI90, DatasetVolumesI3:
		return r.UP + "|" + ts + "|" + fmt.Sprint(r.MarketID)
	default:
		return fmt.Sprint(r.MarketID) + "|" + ts
	}
}

// Store writes dataset partitions under a base directory. Writes targeting
// the same partition are serialized: merge-on-write is read-modify-write
// and two interleaved callers would lose rows.
type Store struct {
	base   string
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithLogger attaches a logger for partition-level write logging.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore opens a store rooted at base, which must exist.
func NewStore(base string, opts ...StoreOption) (*Store, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("parquetstore: base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("parquetstore: base path %s is not a directory", base)
	}

	s := &Store{
		base:  base,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write merges rows into the month-level partition of (dataset, market).
func (s *Store) Write(ctx context.Context, dataset DatasetType, market string, year int, month time.Month, rows []Record) error {
	return s.write(ctx, dataset, s.partitionDir(market, year, month, 0), rows)
}

// WriteDay merges rows into a day-level partition.
func (s *Store) WriteDay(ctx context.Context, dataset DatasetType, market string, year int, month time.Month, day int, rows []Record) error {
	return s.write(ctx, dataset, s.partitionDir(market, year, month, day), rows)
}

func (s *Store) partitionDir(market string, year int, month time.Month, day int) string {
	dir := filepath.Join(s.base,
		fmt.Sprintf("mercado=%s", market),
		fmt.Sprintf("year=%d", year),
		fmt.Sprintf("month=%02d", int(month)),
	)
	if day > 0 {
		dir = filepath.Join(dir, fmt.Sprintf("day=%02d", day))
	}
	return dir
}

func (s *Store) write(ctx context.Context, dataset DatasetType, dir string, rows []Record) error {
	if err := validateDataset(dataset); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(dir, string(dataset)+".parquet")
	started := time.Now()

	lock := s.partitionLock(path)
	lock.Lock()
	defer lock.Unlock()

	err := s.mergeAndRewrite(dataset, dir, path, rows)
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ObserveStoreWrite(string(dataset), result, len(rows), time.Since(started))
	return err
}

func (s *Store) mergeAndRewrite(dataset DatasetType, dir, path string, rows []Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("parquetstore: create partition %s: %w", dir, err)
	}

	var existing []Record
	if _, err := os.Stat(path); err == nil {
		existing, err = parquet.ReadFile[Record](path)
		if err != nil {
			return fmt.Errorf("parquetstore: read partition %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("parquetstore: stat partition %s: %w", path, err)
	}

	merged := dedupKeepLast(dataset, append(existing, rows...))

	tmp := path + ".tmp"
	if err := parquet.WriteFile(tmp, merged, parquet.Compression(&parquet.Snappy)); err != nil {
		return fmt.Errorf("parquetstore: write partition %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("parquetstore: replace partition %s: %w", path, err)
	}

	if s.logger != nil {
		s.logger.Printf("store: wrote %s (%d rows, %d incoming)", path, len(merged), len(rows))
	}
	return nil
}

// dedupKeepLast removes duplicates under the dataset key, keeping the value
// seen last and the position seen first.
func dedupKeepLast(dataset DatasetType, rows []Record) []Record {
	out := rows[:0:0]
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		key := dedupKey(dataset, row)
		if at, ok := index[key]; ok {
			out[at] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

func (s *Store) partitionLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}
