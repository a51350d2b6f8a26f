// ==============================================================================
// OFFLINE REPORT INGESTION - cmd/ingest/main.go
// ==============================================================================
// Ingests a report CSV from the command line, for batch loads too large or
// too awkward to push through the HTTP upload endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/internal/ingest"
	"github.com/munashechidyiwa/merchant-portfolios/internal/parser"
	"github.com/munashechidyiwa/merchant-portfolios/internal/repository/postgres"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/config"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	kindFlag := flag.String("kind", "merchants", "report kind: merchants or terminals")
	currencyFlag := flag.String("currency", "USD", "currency tag for merchant sales figures: USD or ZWG")
	fileFlag := flag.String("file", "", "path to the report CSV")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("Usage: ingest -kind merchants -currency USD -file report.csv")
	}

	kind := domain.ReportKind(strings.ToLower(*kindFlag))
	if kind != domain.KindMerchants && kind != domain.KindTerminals {
		log.Fatalf("Unknown report kind: %s", *kindFlag)
	}

	currency := domain.Currency(strings.ToUpper(*currencyFlag))
	if kind == domain.KindMerchants && !currency.Valid() {
		log.Fatalf("Invalid currency tag: %s", *currencyFlag)
	}

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(*fileFlag)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	headers, rows, err := parser.ParseCSV(f)
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}
	if err := ingest.ValidateColumns(headers, kind); err != nil {
		log.Fatalf("Column validation failed: %v", err)
	}

	defaultRate, err := decimal.NewFromString(cfg.Portfolio.DefaultZWGRate)
	if err != nil {
		log.Fatalf("Invalid default rate: %v", err)
	}

	lg := logger.New("ingest-cli")
	merchantRepo := postgres.NewMerchantRepository(db)
	terminalRepo := postgres.NewTerminalRepository(db)
	rateRepo := postgres.NewRateRepository(db)

	// No Redis here: rate resolution falls through to the database and the
	// configured default.
	fxService := fx.NewService(rateRepo, nil, defaultRate, lg)
	ingestor := ingest.NewIngestor(merchantRepo, terminalRepo, fxService, lg, cfg.Upload.Timeout, cfg.Portfolio.ActivityThresholdDays)

	ctx := context.Background()
	var summary *ingest.Summary
	switch kind {
	case domain.KindMerchants:
		summary, err = ingestor.IngestMerchants(ctx, rows, currency)
	case domain.KindTerminals:
		summary, err = ingestor.IngestTerminals(ctx, rows)
	}
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Processed %d rows: %d saved, %d failed (%d records total)", summary.Processed, summary.Saved, summary.Failed, summary.TotalRecords)
	for _, w := range summary.Warnings {
		log.Printf("warning: %s", w)
	}
	if summary.Failed > 0 {
		log.Printf("failed ids: %s", strings.Join(summary.FailedIDs, ", "))
		os.Exit(1)
	}
}
