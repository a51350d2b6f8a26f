package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

// --- Mocks ---

type MockMerchantStore struct {
	mock.Mock
}

func (m *MockMerchantStore) Upsert(ctx context.Context, merchant *domain.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockTerminalStore struct {
	mock.Mock
}

func (m *MockTerminalStore) Upsert(ctx context.Context, terminal *domain.Terminal) error {
	args := m.Called(ctx, terminal)
	return args.Error(0)
}

func (m *MockTerminalStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) Converter(ctx context.Context) (*fx.Converter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fx.Converter), args.Error(1)
}

func testIngestor(merchants MerchantStore, terminals TerminalStore, rates RateSource) *Ingestor {
	return NewIngestor(merchants, terminals, rates, logger.NewNop(), 30*time.Second, 7)
}

func mustConverter(t *testing.T) *fx.Converter {
	t.Helper()
	conv, err := fx.NewConverter(decimal.RequireFromString("3.58"))
	assert.NoError(t, err)
	return conv
}

// --- Tests ---

func TestNormalizeMerchantsDefaultsMissingIdentity(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	now := time.Now()

	rows := []domain.RawRow{
		{"Merchant Name": "No IDs Here", "MTD Total": "100.00"},
		{"Terminal ID": "T777", "Account CIF": "CIF777", "MTD Total": "200.00"},
	}

	merchants, warnings, err := ing.NormalizeMerchants(rows, domain.USD, mustConverter(t), now)
	assert.NoError(t, err)
	assert.Len(t, merchants, 2)

	assert.Equal(t, "T001", merchants[0].TerminalID)
	assert.Equal(t, "CIF001", merchants[0].AccountCIF)
	assert.Equal(t, "No IDs Here", merchants[0].MerchantName)
	assert.Equal(t, "Unassigned", merchants[0].SupportOfficer)

	assert.Equal(t, "T777", merchants[1].TerminalID)
	assert.Equal(t, "CIF777", merchants[1].AccountCIF)
	assert.Equal(t, "Unknown Merchant", merchants[1].MerchantName)

	assert.NotEmpty(t, warnings)
}

func TestNormalizeMerchantsCurrencyTagging(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	now := time.Now()
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "Shop", "MTD Total": "3580.00"},
	}

	merchants, _, err := ing.NormalizeMerchants(rows, domain.USD, mustConverter(t), now)
	assert.NoError(t, err)
	assert.True(t, merchants[0].USDSales.Equal(decimal.RequireFromString("3580.00")))
	assert.True(t, merchants[0].ZWGSales.IsZero())
	assert.True(t, merchants[0].ConsolidatedUSD.Equal(decimal.RequireFromString("3580.00")))

	merchants, _, err = ing.NormalizeMerchants(rows, domain.ZWG, mustConverter(t), now)
	assert.NoError(t, err)
	assert.True(t, merchants[0].USDSales.IsZero())
	assert.True(t, merchants[0].ZWGSales.Equal(decimal.RequireFromString("3580.00")))
	assert.True(t, merchants[0].ConsolidatedUSD.Equal(decimal.RequireFromString("1000")))
}

func TestNormalizeMerchantsRejectsUnknownCurrency(t *testing.T) {
	ing := testIngestor(nil, nil, nil)

	_, _, err := ing.NormalizeMerchants(nil, domain.Currency("EUR"), mustConverter(t), time.Now())
	assert.Equal(t, errors.ErrInvalidCurrencyTag, err)
}

func TestNormalizeMerchantsParsesFormattedAmounts(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "A", "MTD Total": "$12,400.50"},
		{"Terminal ID": "T002", "Merchant Name": "B", "MTD Total": "not-a-number"},
	}

	merchants, warnings, err := ing.NormalizeMerchants(rows, domain.USD, mustConverter(t), time.Now())
	assert.NoError(t, err)
	assert.True(t, merchants[0].USDSales.Equal(decimal.RequireFromString("12400.50")))
	assert.True(t, merchants[1].USDSales.IsZero())
	assert.NotEmpty(t, warnings)
}

func TestNormalizeMerchantsClassifiesByRecency(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "Recent", "MTD Total": "1", "Last Transaction Date": "2025-06-13"},
		{"Terminal ID": "T002", "Merchant Name": "Stale", "MTD Total": "1", "Last Transaction Date": "2025-05-01"},
		{"Terminal ID": "T003", "Merchant Name": "Never", "MTD Total": "1"},
	}

	merchants, _, err := ing.NormalizeMerchants(rows, domain.USD, mustConverter(t), now)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusActive, merchants[0].Status)
	assert.Equal(t, domain.StatusInactive, merchants[1].Status)
	assert.Equal(t, domain.StatusInactive, merchants[2].Status)
	assert.Nil(t, merchants[2].LastActivity)
}

func TestNormalizeMerchantsPreservesRowOrder(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	rows := []domain.RawRow{
		{"Terminal ID": "T003", "Merchant Name": "Third", "MTD Total": "3"},
		{"Terminal ID": "T001", "Merchant Name": "First", "MTD Total": "1"},
		{"Terminal ID": "T002", "Merchant Name": "Second", "MTD Total": "2"},
	}

	merchants, _, err := ing.NormalizeMerchants(rows, domain.USD, mustConverter(t), time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "T003", merchants[0].TerminalID)
	assert.Equal(t, "T001", merchants[1].TerminalID)
	assert.Equal(t, "T002", merchants[2].TerminalID)
}

func TestNormalizeTerminalsDerivesStatus(t *testing.T) {
	ing := testIngestor(nil, nil, nil)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "Shop", "Last Transaction Date": "2025-06-14", "Serial Number": "SN100"},
		{"Terminal ID": "T002", "Merchant Name": "Quiet Shop"},
	}

	terminals, warnings := ing.NormalizeTerminals(rows, now)
	assert.Len(t, terminals, 2)
	assert.Equal(t, domain.StatusActive, terminals[0].Status)
	assert.Equal(t, "SN100", terminals[0].SerialNumber)
	assert.Equal(t, domain.StatusInactive, terminals[1].Status)
	assert.Empty(t, warnings)
}

func TestIngestMerchantsContinuesPastFailures(t *testing.T) {
	store := new(MockMerchantStore)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(m *domain.Merchant) bool {
		return m.TerminalID == "T002"
	})).Return(errors.ErrDuplicateMerchant)
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	store.On("Count", mock.Anything).Return(2, nil)

	rates := new(MockRateSource)
	rates.On("Converter", mock.Anything).Return(mustConverter(t), nil)

	ing := testIngestor(store, nil, rates)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "A", "MTD Total": "1"},
		{"Terminal ID": "T002", "Merchant Name": "B", "MTD Total": "2"},
		{"Terminal ID": "T003", "Merchant Name": "C", "MTD Total": "3"},
	}

	summary, err := ing.IngestMerchants(context.Background(), rows, domain.USD)
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, []string{"T002"}, summary.FailedIDs)
}

func TestIngestTerminalsSavesAll(t *testing.T) {
	store := new(MockTerminalStore)
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	store.On("Count", mock.Anything).Return(2, nil)

	ing := testIngestor(nil, store, nil)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "A"},
		{"Terminal ID": "T002", "Merchant Name": "B"},
	}

	summary, err := ing.IngestTerminals(context.Background(), rows)
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Saved)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 2, summary.TotalRecords)
	store.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestIngestTerminalsToleratesCountFailure(t *testing.T) {
	store := new(MockTerminalStore)
	store.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	store.On("Count", mock.Anything).Return(0, fmt.Errorf("connection reset"))

	ing := testIngestor(nil, store, nil)
	rows := []domain.RawRow{
		{"Terminal ID": "T001", "Merchant Name": "A"},
	}

	summary, err := ing.IngestTerminals(context.Background(), rows)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Zero(t, summary.TotalRecords)
}

func TestValidateColumns(t *testing.T) {
	err := ValidateColumns([]string{"Terminal ID", "Merchant Name", "MTD Total"}, domain.KindMerchants)
	assert.NoError(t, err)

	// Alias spellings count as present.
	err = ValidateColumns([]string{"terminal_id", "Merchant", "Sales Amount"}, domain.KindMerchants)
	assert.NoError(t, err)

	err = ValidateColumns([]string{"Terminal ID", "Merchant Name"}, domain.KindMerchants)
	assert.ErrorIs(t, err, errors.ErrMissingColumns)

	err = ValidateColumns([]string{"Serial Number"}, domain.KindTerminals)
	assert.ErrorIs(t, err, errors.ErrMissingColumns)

	err = ValidateColumns([]string{"Terminal ID"}, domain.ReportKind("unknown"))
	assert.Equal(t, errors.ErrUnsupportedKind, err)
}
