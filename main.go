package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"i90-ingest/internal/extraction/application"
	"i90-ingest/internal/extraction/infrastructure/rulesfile"
	"i90-ingest/internal/extraction/infrastructure/workbook"
	"i90-ingest/internal/extraction/interfaces"
	"i90-ingest/internal/observability/metrics"
	refdata "i90-ingest/internal/refdata/domain"
	"i90-ingest/internal/refdata/infrastructure/postgres"
	"i90-ingest/internal/storage/parquetstore"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Printf("metrics listener error: %v", err)
			}
		}()
	}

	ctx := context.Background()

	snapshot, err := postgres.LoadSnapshot(ctx, db, cfg.Families, cfg.Day, cfg.Day.AddDate(0, 0, 1))
	if err != nil {
		logger.Fatalf("reference data load error: %v", err)
	}

	rules, err := rulesfile.Load(cfg.RulesPath)
	if err != nil {
		logger.Fatalf("condition rules load error: %v", err)
	}

	store, err := parquetstore.NewStore(cfg.DataLakePath, parquetstore.WithLogger(logger))
	if err != nil {
		logger.Fatalf("data lake store error: %v", err)
	}

	service, err := application.NewExtractionService(snapshot, rules, logger)
	if err != nil {
		logger.Fatalf("extraction service error: %v", err)
	}

	workbookPath := filepath.Join(cfg.WorkbookDir, fmt.Sprintf("I90DIA_%s.xlsx", cfg.Day.Format("20060102")))
	wb, err := workbook.Open(workbookPath)
	if err != nil {
		logger.Fatalf("workbook open error: %v", err)
	}
	defer wb.Close()

	logger.Printf("extracting day=%s families=%d workbook=%s", cfg.Day.Format("2006-01-02"), len(cfg.Families), workbookPath)

	var failed bool
	for _, family := range cfg.Families {
		result, err := service.ExtractFamily(ctx, cfg.Day, family, wb)
		if err != nil {
			logger.Printf("family %s: extraction error: %v", family, err)
			failed = true
			continue
		}

		for _, market := range result.Markets {
			records := parquetstore.FromSeries(market.Rows)
			dataset := parquetstore.DatasetForKind(market.Kind)
			partition := marketPartition(market.Market.Name)
			if err := store.Write(ctx, dataset, partition, cfg.Day.Year(), cfg.Day.Month(), records); err != nil {
				logger.Printf("family %s: write %s/%s error: %v", family, dataset, partition, err)
				failed = true
			}
		}

		if cfg.SummaryDir != "" {
			if err := exportSummary(cfg.SummaryDir, result); err != nil {
				logger.Printf("family %s: summary export error: %v", family, err)
			}
		}
	}

	if failed {
		logger.Fatal("extraction finished with errors")
	}
	logger.Print("extraction finished")
}

// marketPartition normalizes a market display name into a partition value.
func marketPartition(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func exportSummary(dir string, result *application.FamilyResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := fmt.Sprintf("%s_%s", result.Family, result.Day.Format("20060102"))

	xlsxData, err := interfaces.BuildRunSummaryXLSX(result)
	metrics.IncSummaryExport("xlsx", err)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, base+".xlsx"), xlsxData, 0o644); err != nil {
		return err
	}

	pdfData, err := interfaces.BuildRunSummaryPDF(result)
	metrics.IncSummaryExport("pdf", err)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+".pdf"), pdfData, 0o644)
}

type config struct {
	DatabaseURL  string
	DataLakePath string
	RulesPath    string
	WorkbookDir  string
	SummaryDir   string
	MetricsAddr  string
	Day          time.Time
	Families     []refdata.MarketFamily
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:  getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		DataLakePath: getenvDefault("DATA_LAKE_PATH", ""),
		RulesPath:    getenvDefault("RULES_PATH", filepath.Join("configs", "condition_rules.yaml")),
		WorkbookDir:  getenvDefault("WORKBOOK_DIR", "."),
		SummaryDir:   getenvDefault("SUMMARY_DIR", ""),
		MetricsAddr:  getenvDefault("METRICS_ADDR", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.DataLakePath == "" {
		log.Fatal("DATA_LAKE_PATH is required")
	}

	dayValue := getenvDefault("EXTRACT_DATE", "")
	if dayValue == "" {
		cfg.Day = time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	} else {
		day, err := time.Parse("2006-01-02", dayValue)
		if err != nil {
			log.Fatalf("EXTRACT_DATE must be YYYY-MM-DD: %v", err)
		}
		cfg.Day = day
	}

	cfg.Families = parseFamilies(getenvDefault("FAMILIES", ""))
	return cfg
}

func parseFamilies(raw string) []refdata.MarketFamily {
	if raw == "" {
		return []refdata.MarketFamily{
			refdata.FamilyTertiary,
			refdata.FamilySecondary,
			refdata.FamilyReplacement,
			refdata.FamilyCurtailment,
			refdata.FamilyGeneric,
		}
	}
	var families []refdata.MarketFamily
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		families = append(families, refdata.MarketFamily(part))
	}
	return families
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
