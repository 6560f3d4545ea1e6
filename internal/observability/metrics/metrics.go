package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "i90_"

	resultSuccess = "success"
	resultError   = "error"

	skipReasonErrored = "errored"
	skipReasonAbsent  = "absent"
)

var (
	registerOnce sync.Once

	sheetsProcessed *prometheus.CounterVec
	sheetsSkipped   *prometheus.CounterVec

	marketsExtracted *prometheus.CounterVec
	seriesRows       *prometheus.CounterVec

	extractTotal   *prometheus.CounterVec
	extractLatency *prometheus.HistogramVec

	storeWrites       *prometheus.CounterVec
	storeWriteLatency *prometheus.HistogramVec
	storeRowsWritten  *prometheus.CounterVec

	summaryExportTotal *prometheus.CounterVec
)

// Init registers the pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		sheetsProcessed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sheets_processed_total",
				Help: "Total workbook sheets processed by market family",
			},
			[]string{"family"},
		)
		sheetsSkipped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sheets_skipped_total",
				Help: "Total workbook sheets skipped by family and reason",
			},
			[]string{"family", "reason"},
		)

		marketsExtracted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "markets_extracted_total",
				Help: "Total per-market extractions by family and value kind",
			},
			[]string{"family", "kind"},
		)
		seriesRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "series_rows_total",
				Help: "Total series rows produced by family and value kind",
			},
			[]string{"family", "kind"},
		)

		extractTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "extract_total",
				Help: "Total family extractions by result",
			},
			[]string{"family", "result"},
		)
		extractLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "extract_latency_seconds",
				Help:    "Family extraction latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"family", "result"},
		)

		storeWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_writes_total",
				Help: "Total partition writes by dataset and result",
			},
			[]string{"dataset", "result"},
		)
		storeWriteLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "store_write_latency_seconds",
				Help:    "Partition write latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset", "result"},
		)
		storeRowsWritten = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_rows_written_total",
				Help: "Total rows handed to the store by dataset",
			},
			[]string{"dataset"},
		)

		summaryExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_export_total",
				Help: "Total run summary exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			sheetsProcessed,
			sheetsSkipped,
			marketsExtracted,
			seriesRows,
			extractTotal,
			extractLatency,
			storeWrites,
			storeWriteLatency,
			storeRowsWritten,
			summaryExportTotal,
		)
	})
}

// IncSheetProcessed counts one processed sheet.
func IncSheetProcessed(family string) {
	if sheetsProcessed != nil {
		sheetsProcessed.WithLabelValues(family).Inc()
	}
}

// IncSheetErrored counts a sheet skipped via the known-errors table.
func IncSheetErrored(family string) {
	if sheetsSkipped != nil {
		sheetsSkipped.WithLabelValues(family, skipReasonErrored).Inc()
	}
}

// IncSheetAbsent counts a sheet missing from the workbook.
func IncSheetAbsent(family string) {
	if sheetsSkipped != nil {
		sheetsSkipped.WithLabelValues(family, skipReasonAbsent).Inc()
	}
}

// ObserveMarketExtracted counts one per-market extraction and its rows.
func ObserveMarketExtracted(family, kind string, rows int) {
	if marketsExtracted != nil {
		marketsExtracted.WithLabelValues(family, kind).Inc()
	}
	if seriesRows != nil && rows > 0 {
		seriesRows.WithLabelValues(family, kind).Add(float64(rows))
	}
}

// ObserveExtraction records a family extraction's latency and result.
func ObserveExtraction(family, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if extractTotal != nil {
		extractTotal.WithLabelValues(family, result).Inc()
	}
	if extractLatency != nil {
		extractLatency.WithLabelValues(family, result).Observe(duration.Seconds())
	}
}

// ObserveStoreWrite records a partition write's latency and result.
func ObserveStoreWrite(dataset, result string, rows int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if storeWrites != nil {
		storeWrites.WithLabelValues(dataset, result).Inc()
	}
	if storeWriteLatency != nil {
		storeWriteLatency.WithLabelValues(dataset, result).Observe(duration.Seconds())
	}
	if storeRowsWritten != nil && rows > 0 && result == resultSuccess {
		storeRowsWritten.WithLabelValues(dataset).Add(float64(rows))
	}
}

// IncSummaryExport counts one run summary export.
func IncSummaryExport(format string, err error) {
	if summaryExportTotal == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	summaryExportTotal.WithLabelValues(format, result).Inc()
}
