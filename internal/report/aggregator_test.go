package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateEmptyCollections(t *testing.T) {
	snapshot, err := Aggregate(nil, nil, d("3.58"))
	assert.NoError(t, err)

	assert.True(t, snapshot.TotalUSDRevenue.IsZero())
	assert.True(t, snapshot.TotalZWGRevenue.IsZero())
	assert.True(t, snapshot.ConsolidatedUSDRevenue.IsZero())
	assert.Zero(t, snapshot.TotalMerchants)
	assert.Zero(t, snapshot.TotalTerminals)
	assert.True(t, snapshot.ActivityRatio.IsZero())
	assert.False(t, snapshot.GeneratedAt.IsZero())
}

func TestAggregateRejectsInvalidRate(t *testing.T) {
	_, err := Aggregate(nil, nil, decimal.Zero)
	assert.Equal(t, errors.ErrInvalidRate, err)
}

func TestAggregateTotalsAndCounts(t *testing.T) {
	merchants := []*domain.Merchant{
		{USDSales: d("245000.00"), ZWGSales: d("500000.00"), Status: domain.StatusActive},
		{USDSales: d("0"), ZWGSales: d("376000.00"), Status: domain.StatusInactive},
	}
	terminals := []*domain.Terminal{
		{Status: domain.StatusActive},
		{Status: domain.StatusActive},
		{Status: domain.StatusInactive},
	}

	snapshot, err := Aggregate(merchants, terminals, d("3.58"))
	assert.NoError(t, err)

	assert.True(t, snapshot.TotalUSDRevenue.Equal(d("245000.00")))
	assert.True(t, snapshot.TotalZWGRevenue.Equal(d("876000.00")))
	// 245000 + 876000/3.58 rounded to cents.
	assert.True(t, snapshot.ConsolidatedUSDRevenue.Equal(d("489692.74")),
		"got %s", snapshot.ConsolidatedUSDRevenue.String())
	assert.True(t, snapshot.ExchangeRate.Equal(d("3.58")))

	assert.Equal(t, 2, snapshot.TotalMerchants)
	assert.Equal(t, 1, snapshot.ActiveMerchants)
	assert.Equal(t, 3, snapshot.TotalTerminals)
	assert.Equal(t, 2, snapshot.ActiveTerminals)
	assert.True(t, snapshot.ActivityRatio.Equal(d("66.67")),
		"got %s", snapshot.ActivityRatio.String())
}

func TestAggregateActivityRatioFullFleet(t *testing.T) {
	terminals := make([]*domain.Terminal, 0, 142)
	for i := 0; i < 142; i++ {
		status := domain.StatusActive
		if i >= 121 {
			status = domain.StatusInactive
		}
		terminals = append(terminals, &domain.Terminal{Status: status})
	}

	snapshot, err := Aggregate(nil, terminals, d("3.58"))
	assert.NoError(t, err)

	assert.Equal(t, 142, snapshot.TotalTerminals)
	assert.Equal(t, 121, snapshot.ActiveTerminals)
	assert.True(t, snapshot.ActivityRatio.Equal(d("85.21")),
		"got %s", snapshot.ActivityRatio.String())
}

func TestApplyContribution(t *testing.T) {
	merchants := []*domain.Merchant{
		{ConsolidatedUSD: d("750.00")},
		{ConsolidatedUSD: d("250.00")},
	}

	ApplyContribution(merchants)

	assert.True(t, merchants[0].ContributionPercentage.Equal(d("75")))
	assert.True(t, merchants[1].ContributionPercentage.Equal(d("25")))
}

func TestApplyContributionZeroTotal(t *testing.T) {
	merchants := []*domain.Merchant{
		{ConsolidatedUSD: decimal.Zero},
		{ConsolidatedUSD: decimal.Zero},
	}

	ApplyContribution(merchants)

	assert.True(t, merchants[0].ContributionPercentage.IsZero())
	assert.True(t, merchants[1].ContributionPercentage.IsZero())
}
