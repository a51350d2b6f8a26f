// Package fx implements dual-currency revenue consolidation against a
// ZWG-per-USD exchange rate.
package fx

import (
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

// Converter consolidates USD and ZWG amounts into a USD equivalent using a
// single rate. The rate is fixed for the lifetime of the Converter, so every
// row in one computation pass converts at the same rate.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter returns a Converter for the given ZWG-per-USD rate.
// A zero or negative rate is rejected rather than producing infinities.
func NewConverter(rate decimal.Decimal) (*Converter, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidRate
	}
	return &Converter{rate: rate}, nil
}

// Rate returns the ZWG-per-USD rate this converter was built with.
func (c *Converter) Rate() decimal.Decimal {
	return c.rate
}

// ConsolidatedUSD returns usd + zwg/rate rounded to 2 decimal places.
// Two decimals is a display convention for financial figures; callers that
// need the raw quotient should divide themselves.
func (c *Converter) ConsolidatedUSD(usd, zwg decimal.Decimal) decimal.Decimal {
	return usd.Add(zwg.Div(c.rate)).Round(2)
}

// ConsolidatedUSD converts a single (usd, zwg) pair at the given rate.
func ConsolidatedUSD(usd, zwg, rate decimal.Decimal) (decimal.Decimal, error) {
	conv, err := NewConverter(rate)
	if err != nil {
		return decimal.Zero, err
	}
	return conv.ConsolidatedUSD(usd, zwg), nil
}

// SalesForCurrency splits a reported sales amount into (usd, zwg) columns
// according to the currency the upload was tagged with.
func SalesForCurrency(amount decimal.Decimal, currency domain.Currency) (usd, zwg decimal.Decimal, err error) {
	switch currency {
	case domain.USD:
		return amount, decimal.Zero, nil
	case domain.ZWG:
		return decimal.Zero, amount, nil
	default:
		return decimal.Zero, decimal.Zero, errors.ErrInvalidCurrencyTag
	}
}
