// ==============================================================================
// DEMO DATA SEEDER - cmd/seed/main.go
// ==============================================================================
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/internal/repository/postgres"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/config"
)

type seedMerchant struct {
	terminalID string
	accountCIF string
	name       string
	officer    string
	sector     string
	branch     string
	usdSales   string
	zwgSales   string
	daysAgo    int
}

var demoMerchants = []seedMerchant{
	{"T001", "CIF001", "OK Zimbabwe Avondale", "T. Moyo", "Retail", "AVD01", "15200.00", "48600.00", 2},
	{"T002", "CIF002", "Chicken Inn Borrowdale", "T. Moyo", "Food Services", "BRD02", "8750.50", "31200.00", 1},
	{"T003", "CIF003", "Greenwood Pharmacy", "S. Ncube", "Health", "AVD01", "12400.00", "9800.00", 5},
	{"T004", "CIF004", "City Fuels Msasa", "S. Ncube", "Energy", "MSA03", "45800.00", "112000.00", 0},
	{"T005", "CIF005", "Mukuru Hardware", "R. Dube", "Construction", "HRE04", "3200.00", "27450.00", 12},
	{"T006", "CIF006", "Bon Marche Chisipite", "R. Dube", "Retail", "CHS05", "22100.00", "67300.00", 3},
	{"T007", "CIF007", "Pariah State Restaurant", "T. Moyo", "Food Services", "BRD02", "5600.00", "18900.00", 25},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	merchantRepo := postgres.NewMerchantRepository(db)
	terminalRepo := postgres.NewTerminalRepository(db)
	rateRepo := postgres.NewRateRepository(db)

	// Seed the exchange rate first so consolidation uses it.
	rate, err := decimal.NewFromString(cfg.Portfolio.DefaultZWGRate)
	if err != nil {
		log.Fatalf("Invalid default rate %q: %v", cfg.Portfolio.DefaultZWGRate, err)
	}

	now := time.Now()
	if err := rateRepo.CreateRate(ctx, &domain.RateRecord{
		ID:             uuid.New(),
		BaseCurrency:   domain.ZWG,
		TargetCurrency: domain.USD,
		Rate:           rate,
		Source:         "seed",
		ValidFrom:      now,
		CreatedAt:      now,
	}); err != nil {
		log.Fatalf("Failed to seed exchange rate: %v", err)
	}

	conv, err := fx.NewConverter(rate)
	if err != nil {
		log.Fatalf("Failed to build converter: %v", err)
	}

	threshold := cfg.Portfolio.ActivityThresholdDays

	for _, s := range demoMerchants {
		usd := decimal.RequireFromString(s.usdSales)
		zwg := decimal.RequireFromString(s.zwgSales)
		lastActivity := now.AddDate(0, 0, -s.daysAgo)

		status := domain.StatusInactive
		if s.daysAgo <= threshold {
			status = domain.StatusActive
		}

		merchant := &domain.Merchant{
			ID:               uuid.New(),
			TerminalID:       s.terminalID,
			AccountCIF:       s.accountCIF,
			MerchantName:     s.name,
			SupportOfficer:   s.officer,
			Category:         "POS",
			Sector:           s.sector,
			BusinessUnit:     "Retail Banking",
			BranchCode:       s.branch,
			Location:         "Harare",
			Status:           status,
			USDSales:         usd,
			ZWGSales:         zwg,
			ConsolidatedUSD:  conv.ConsolidatedUSD(usd, zwg),
			MonthToDateTotal: usd.Add(zwg),
			LastActivity:     &lastActivity,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := merchantRepo.Upsert(ctx, merchant); err != nil {
			log.Fatalf("Failed to seed merchant %s: %v", s.terminalID, err)
		}

		terminal := &domain.Terminal{
			ID:               uuid.New(),
			TerminalID:       s.terminalID,
			SerialNumber:     "SN-" + s.terminalID,
			MerchantName:     s.name,
			MerchantID:       s.accountCIF,
			Model:            "PAX S920",
			Location:         "Harare",
			Officer:          s.officer,
			Status:           status,
			LastTransaction:  &lastActivity,
			InstallationDate: &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := terminalRepo.Upsert(ctx, terminal); err != nil {
			log.Fatalf("Failed to seed terminal %s: %v", s.terminalID, err)
		}
	}

	log.Printf("Seeded %d merchants and terminals at rate %s", len(demoMerchants), rate.String())
}
