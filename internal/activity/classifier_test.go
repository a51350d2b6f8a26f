package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
)

func TestClassifyNoTimestampIsInactive(t *testing.T) {
	now := time.Now()

	result := Classify(nil, now, DefaultThresholdDays)
	assert.Equal(t, domain.StatusInactive, result.Status)

	zero := time.Time{}
	result = Classify(&zero, now, DefaultThresholdDays)
	assert.Equal(t, domain.StatusInactive, result.Status)
}

func TestClassifyBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		daysAgo int
		want    domain.RecordStatus
	}{
		{"today", 0, domain.StatusActive},
		{"three days ago", 3, domain.StatusActive},
		{"exactly seven days ago", 7, domain.StatusActive},
		{"eight days ago", 8, domain.StatusInactive},
		{"a month ago", 30, domain.StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := now.AddDate(0, 0, -tt.daysAgo)
			result := Classify(&ts, now, DefaultThresholdDays)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.daysAgo, result.DaysSince)
			assert.False(t, result.ClockSkew)
		})
	}
}

func TestClassifyFutureTimestampFlagsClockSkew(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	future := now.Add(6 * time.Hour)
	result := Classify(&future, now, DefaultThresholdDays)
	assert.Equal(t, domain.StatusActive, result.Status)
	assert.True(t, result.ClockSkew)

	farFuture := now.AddDate(0, 0, 3)
	result = Classify(&farFuture, now, DefaultThresholdDays)
	assert.Equal(t, domain.StatusActive, result.Status)
	assert.True(t, result.ClockSkew)
}

func TestClassifyCustomThreshold(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)

	result := Classify(&tenDaysAgo, now, 14)
	assert.Equal(t, domain.StatusActive, result.Status)

	result = Classify(&tenDaysAgo, now, 7)
	assert.Equal(t, domain.StatusInactive, result.Status)
}

func TestClassifierStatusFor(t *testing.T) {
	c := NewClassifier(0)
	assert.Equal(t, DefaultThresholdDays, c.ThresholdDays)

	now := time.Now()
	recent := now.AddDate(0, 0, -1)
	assert.Equal(t, domain.StatusActive, c.StatusFor(&recent, now))
	assert.Equal(t, domain.StatusInactive, c.StatusFor(nil, now))
}

func TestEffectiveLastTransactionPrefersMerchantReport(t *testing.T) {
	terminalTime := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	merchantTime := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	terminal := &domain.Terminal{TerminalID: "T001", LastTransaction: &terminalTime}
	byTerminal := map[string]*domain.Merchant{
		"T001": {TerminalID: "T001", LastActivity: &merchantTime},
	}

	got := EffectiveLastTransaction(terminal, byTerminal)
	assert.Equal(t, &merchantTime, got)

	// No matching merchant report: fall back to the terminal's own value.
	other := &domain.Terminal{TerminalID: "T999", LastTransaction: &terminalTime}
	got = EffectiveLastTransaction(other, byTerminal)
	assert.Equal(t, &terminalTime, got)

	// Merchant exists but has no activity recorded.
	byTerminal["T001"].LastActivity = nil
	got = EffectiveLastTransaction(terminal, byTerminal)
	assert.Equal(t, &terminalTime, got)
}
