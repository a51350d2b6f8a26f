package fx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

func TestNewConverterRejectsNonPositiveRate(t *testing.T) {
	_, err := NewConverter(decimal.Zero)
	assert.Equal(t, errors.ErrInvalidRate, err)

	_, err = NewConverter(decimal.NewFromFloat(-3.58))
	assert.Equal(t, errors.ErrInvalidRate, err)
}

func TestConsolidatedUSD(t *testing.T) {
	conv, err := NewConverter(decimal.RequireFromString("3.58"))
	assert.NoError(t, err)

	tests := []struct {
		name string
		usd  string
		zwg  string
		want string
	}{
		{"usd only", "1500.00", "0", "1500"},
		{"zwg only", "0", "3580.00", "1000"},
		{"mixed portfolio totals", "245000.00", "876000.00", "489692.74"},
		{"rounds to 2dp", "0", "100", "27.93"},
		{"both zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conv.ConsolidatedUSD(decimal.RequireFromString(tt.usd), decimal.RequireFromString(tt.zwg))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got.String(), tt.want)
		})
	}
}

func TestConsolidatedUSDPackageFunc(t *testing.T) {
	got, err := ConsolidatedUSD(decimal.NewFromInt(10), decimal.NewFromInt(358), decimal.RequireFromString("3.58"))
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(110)))

	_, err = ConsolidatedUSD(decimal.NewFromInt(10), decimal.NewFromInt(358), decimal.Zero)
	assert.Equal(t, errors.ErrInvalidRate, err)
}

func TestSalesForCurrency(t *testing.T) {
	amount := decimal.RequireFromString("1234.56")

	usd, zwg, err := SalesForCurrency(amount, domain.USD)
	assert.NoError(t, err)
	assert.True(t, usd.Equal(amount))
	assert.True(t, zwg.IsZero())

	usd, zwg, err = SalesForCurrency(amount, domain.ZWG)
	assert.NoError(t, err)
	assert.True(t, usd.IsZero())
	assert.True(t, zwg.Equal(amount))

	_, _, err = SalesForCurrency(amount, domain.Currency("EUR"))
	assert.Equal(t, errors.ErrInvalidCurrencyTag, err)
}
