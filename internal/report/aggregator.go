// Package report computes the aggregate dashboard view over the current
// merchant and terminal collections.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
)

var hundred = decimal.NewFromInt(100)

// Aggregate folds the record collections into a snapshot. It is a pure,
// stateless computation re-run on every request; record volumes are in the
// hundreds, so there is nothing to gain from incremental maintenance.
func Aggregate(merchants []*domain.Merchant, terminals []*domain.Terminal, rate decimal.Decimal) (domain.Snapshot, error) {
	conv, err := fx.NewConverter(rate)
	if err != nil {
		return domain.Snapshot{}, err
	}

	totalUSD := decimal.Zero
	totalZWG := decimal.Zero
	activeMerchants := 0
	for _, m := range merchants {
		totalUSD = totalUSD.Add(m.USDSales)
		totalZWG = totalZWG.Add(m.ZWGSales)
		if m.Status == domain.StatusActive {
			activeMerchants++
		}
	}

	activeTerminals := 0
	for _, t := range terminals {
		if t.Status == domain.StatusActive {
			activeTerminals++
		}
	}

	// Defined as 0 for an empty fleet; never a division by zero.
	ratio := decimal.Zero
	if len(terminals) > 0 {
		ratio = decimal.NewFromInt(int64(activeTerminals)).
			Div(decimal.NewFromInt(int64(len(terminals)))).
			Mul(hundred).Round(2)
	}

	return domain.Snapshot{
		TotalUSDRevenue:        totalUSD,
		TotalZWGRevenue:        totalZWG,
		ConsolidatedUSDRevenue: conv.ConsolidatedUSD(totalUSD, totalZWG),
		ExchangeRate:           rate,
		TotalMerchants:         len(merchants),
		ActiveMerchants:        activeMerchants,
		TotalTerminals:         len(terminals),
		ActiveTerminals:        activeTerminals,
		ActivityRatio:          ratio,
		GeneratedAt:            time.Now(),
	}, nil
}

// ApplyContribution recalculates each merchant's share of total consolidated
// revenue in place. Shares are 0 when there is no revenue yet.
func ApplyContribution(merchants []*domain.Merchant) {
	total := decimal.Zero
	for _, m := range merchants {
		total = total.Add(m.ConsolidatedUSD)
	}

	for _, m := range merchants {
		if total.IsZero() {
			m.ContributionPercentage = decimal.Zero
			continue
		}
		m.ContributionPercentage = m.ConsolidatedUSD.Div(total).Mul(hundred).Round(2)
	}
}
