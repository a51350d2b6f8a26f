// Package ingest normalizes uploaded report rows into merchant and terminal
// records and persists them idempotently.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/activity"
	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

// Placeholder defaults for rows missing identity fields. Malformed rows are
// defaulted and kept rather than rejected: a partially broken officer upload
// should never abort the whole batch.
const (
	defaultOfficer      = "Unassigned"
	defaultMerchantName = "Unknown Merchant"
)

// Timestamp layouts accepted in last-transaction cells.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Summary reports the outcome of one ingestion pass. The HTTP layer renders
// these counts instead of raw errors. TotalRecords is the store count after
// the pass, so officers can see the portfolio size their upload produced.
type Summary struct {
	Processed    int      `json:"processed"`
	Saved        int      `json:"saved"`
	Failed       int      `json:"failed"`
	TotalRecords int      `json:"total_records"`
	FailedIDs    []string `json:"failed_ids,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Ingestor converts raw spreadsheet rows into records and upserts them.
type Ingestor struct {
	merchants     MerchantStore
	terminals     TerminalStore
	rates         RateSource
	logger        logger.Logger
	timeout       time.Duration
	thresholdDays int
}

// NewIngestor constructs an Ingestor. timeout bounds the persistence phase
// of a batch; thresholdDays feeds the activity classifier.
func NewIngestor(merchants MerchantStore, terminals TerminalStore, rates RateSource, log logger.Logger, timeout time.Duration, thresholdDays int) *Ingestor {
	if thresholdDays <= 0 {
		thresholdDays = activity.DefaultThresholdDays
	}
	return &Ingestor{
		merchants:     merchants,
		terminals:     terminals,
		rates:         rates,
		logger:        log,
		timeout:       timeout,
		thresholdDays: thresholdDays,
	}
}

// NormalizeMerchants maps raw rows onto merchant records, preserving input
// order. Missing identity fields receive deterministic placeholders
// (T001..., CIF001...); the sales figure lands in the column matching the
// upload's currency tag and the consolidated figure is recomputed from the
// converter's rate.
func (i *Ingestor) NormalizeMerchants(rows []domain.RawRow, currency domain.Currency, conv *fx.Converter, now time.Time) ([]*domain.Merchant, []string, error) {
	if !currency.Valid() {
		return nil, nil, errors.ErrInvalidCurrencyTag
	}

	merchants := make([]*domain.Merchant, 0, len(rows))
	var warnings []string

	for idx, row := range rows {
		rowNum := idx + 1

		terminalID := lookup(row, fieldTerminalID)
		if terminalID == "" {
			terminalID = fmt.Sprintf("T%03d", rowNum)
			warnings = append(warnings, fmt.Sprintf("row %d: missing terminal id, assigned %s", rowNum, terminalID))
		}
		accountCIF := lookup(row, fieldAccountCIF)
		if accountCIF == "" {
			accountCIF = fmt.Sprintf("CIF%03d", rowNum)
			warnings = append(warnings, fmt.Sprintf("row %d: missing account CIF, assigned %s", rowNum, accountCIF))
		}
		name := lookup(row, fieldMerchantName)
		if name == "" {
			name = defaultMerchantName
			warnings = append(warnings, fmt.Sprintf("row %d: missing merchant name", rowNum))
		}
		officer := lookup(row, fieldOfficer)
		if officer == "" {
			officer = defaultOfficer
		}

		amount, err := parseAmount(lookup(row, fieldSalesAmount))
		if err != nil {
			amount = decimal.Zero
			warnings = append(warnings, fmt.Sprintf("row %d: unparseable sales amount %q, recorded as 0", rowNum, lookup(row, fieldSalesAmount)))
		}

		usd, zwg, err := fx.SalesForCurrency(amount, currency)
		if err != nil {
			return nil, nil, err
		}

		lastActivity, ok := parseDate(lookup(row, fieldLastTransaction))
		if !ok && lookup(row, fieldLastTransaction) != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: unparseable last transaction date %q", rowNum, lookup(row, fieldLastTransaction)))
		}

		result := activity.Classify(lastActivity, now, i.thresholdDays)
		if result.ClockSkew {
			warnings = append(warnings, fmt.Sprintf("row %d: last transaction date is in the future", rowNum))
		}

		m := &domain.Merchant{
			ID:               uuid.New(),
			TerminalID:       terminalID,
			AccountCIF:       accountCIF,
			MerchantName:     name,
			SupportOfficer:   officer,
			Category:         lookup(row, fieldCategory),
			Sector:           lookup(row, fieldSector),
			BusinessUnit:     lookup(row, fieldBusinessUnit),
			BranchCode:       lookup(row, fieldBranchCode),
			Location:         lookup(row, fieldLocation),
			Status:           result.Status,
			USDSales:         usd,
			ZWGSales:         zwg,
			ConsolidatedUSD:  conv.ConsolidatedUSD(usd, zwg),
			MonthToDateTotal: amount,
			LastActivity:     lastActivity,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		merchants = append(merchants, m)
	}

	return merchants, warnings, nil
}

// NormalizeTerminals maps raw rows onto terminal records, preserving input
// order. Status is derived from the last-transaction column, never read
// from the upload.
func (i *Ingestor) NormalizeTerminals(rows []domain.RawRow, now time.Time) ([]*domain.Terminal, []string) {
	terminals := make([]*domain.Terminal, 0, len(rows))
	var warnings []string

	for idx, row := range rows {
		rowNum := idx + 1

		terminalID := lookup(row, fieldTerminalID)
		if terminalID == "" {
			terminalID = fmt.Sprintf("T%03d", rowNum)
			warnings = append(warnings, fmt.Sprintf("row %d: missing terminal id, assigned %s", rowNum, terminalID))
		}
		name := lookup(row, fieldMerchantName)
		if name == "" {
			name = defaultMerchantName
			warnings = append(warnings, fmt.Sprintf("row %d: missing merchant name", rowNum))
		}
		officer := lookup(row, fieldOfficer)
		if officer == "" {
			officer = defaultOfficer
		}

		lastTransaction, ok := parseDate(lookup(row, fieldLastTransaction))
		if !ok && lookup(row, fieldLastTransaction) != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: unparseable last transaction date %q", rowNum, lookup(row, fieldLastTransaction)))
		}
		installed, _ := parseDate(lookup(row, fieldInstallationDate))

		result := activity.Classify(lastTransaction, now, i.thresholdDays)
		if result.ClockSkew {
			warnings = append(warnings, fmt.Sprintf("row %d: last transaction date is in the future", rowNum))
		}

		t := &domain.Terminal{
			ID:               uuid.New(),
			TerminalID:       terminalID,
			SerialNumber:     lookup(row, fieldSerialNumber),
			MerchantName:     name,
			MerchantID:       lookup(row, fieldMerchantID),
			Model:            lookup(row, fieldModel),
			Location:         lookup(row, fieldLocation),
			Officer:          officer,
			Status:           result.Status,
			LastTransaction:  lastTransaction,
			InstallationDate: installed,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		terminals = append(terminals, t)
	}

	return terminals, warnings
}

// IngestMerchants normalizes and persists one merchant report upload.
// Persistence runs under the configured timeout; a store failure marks the
// record failed in the summary without discarding the rest of the batch.
func (i *Ingestor) IngestMerchants(ctx context.Context, rows []domain.RawRow, currency domain.Currency) (*Summary, error) {
	conv, err := i.rates.Converter(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve exchange rate")
	}

	merchants, warnings, err := i.NormalizeMerchants(rows, currency, conv, time.Now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	summary := &Summary{Processed: len(merchants), Warnings: warnings}
	for _, m := range merchants {
		if err := i.merchants.Upsert(ctx, m); err != nil {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, m.TerminalID)
			i.logger.Error("Failed to save merchant record", map[string]interface{}{
				"terminal_id": m.TerminalID,
				"account_cif": m.AccountCIF,
				"error":       err.Error(),
			})
			continue
		}
		summary.Saved++
	}

	if total, err := i.merchants.Count(ctx); err == nil {
		summary.TotalRecords = total
	} else {
		i.logger.Warn("Failed to count merchant records", map[string]interface{}{"error": err.Error()})
	}

	i.logWarnings(warnings)
	return summary, nil
}

// IngestTerminals normalizes and persists one terminal report upload.
func (i *Ingestor) IngestTerminals(ctx context.Context, rows []domain.RawRow) (*Summary, error) {
	terminals, warnings := i.NormalizeTerminals(rows, time.Now())

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	summary := &Summary{Processed: len(terminals), Warnings: warnings}
	for _, t := range terminals {
		if err := i.terminals.Upsert(ctx, t); err != nil {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, t.TerminalID)
			i.logger.Error("Failed to save terminal record", map[string]interface{}{
				"terminal_id": t.TerminalID,
				"error":       err.Error(),
			})
			continue
		}
		summary.Saved++
	}

	if total, err := i.terminals.Count(ctx); err == nil {
		summary.TotalRecords = total
	} else {
		i.logger.Warn("Failed to count terminal records", map[string]interface{}{"error": err.Error()})
	}

	i.logWarnings(warnings)
	return summary, nil
}

func (i *Ingestor) logWarnings(warnings []string) {
	for _, w := range warnings {
		i.logger.Warn("Data quality warning", map[string]interface{}{"detail": w})
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	cleaned := strings.NewReplacer(",", "", "$", "", "ZWG", "", " ", "").Replace(raw)
	return decimal.NewFromString(cleaned)
}

func parseDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, true
		}
	}
	return nil, false
}

// MerchantStore persists merchant records keyed by (terminal_id, account_cif).
type MerchantStore interface {
	Upsert(ctx context.Context, m *domain.Merchant) error
	Count(ctx context.Context) (int, error)
}

// TerminalStore persists terminal records keyed by terminal_id.
type TerminalStore interface {
	Upsert(ctx context.Context, t *domain.Terminal) error
	Count(ctx context.Context) (int, error)
}

// RateSource supplies a converter pinned to the current exchange rate.
type RateSource interface {
	Converter(ctx context.Context) (*fx.Converter, error)
}
