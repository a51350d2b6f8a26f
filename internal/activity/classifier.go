// Package activity classifies merchants and terminals as Active or Inactive
// based on how recently they transacted.
package activity

import (
	"time"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
)

// DefaultThresholdDays is the inclusive recency window for Active status.
const DefaultThresholdDays = 7

// Result is the outcome of classifying a single record.
type Result struct {
	Status    domain.RecordStatus
	DaysSince int
	// ClockSkew is set when the last transaction is in the future relative
	// to now. The record still classifies Active, but the timestamp is a
	// data-quality concern worth surfacing upstream.
	ClockSkew bool
}

// Classify determines Active/Inactive from the last transaction timestamp.
// A record with no timestamp is always Inactive. The boundary is inclusive:
// exactly thresholdDays ago still counts as Active.
func Classify(lastTransaction *time.Time, now time.Time, thresholdDays int) Result {
	if lastTransaction == nil || lastTransaction.IsZero() {
		return Result{Status: domain.StatusInactive}
	}

	daysSince := int(now.Sub(*lastTransaction).Hours() / 24)
	if now.Before(*lastTransaction) {
		return Result{Status: domain.StatusActive, DaysSince: daysSince, ClockSkew: true}
	}

	status := domain.StatusInactive
	if daysSince <= thresholdDays {
		status = domain.StatusActive
	}
	return Result{Status: status, DaysSince: daysSince}
}

// Classifier is a Classify wrapper carrying a configured threshold, for
// callers that only need the resulting status.
type Classifier struct {
	ThresholdDays int
}

// NewClassifier constructs a Classifier, falling back to the default window
// for non-positive thresholds.
func NewClassifier(thresholdDays int) *Classifier {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	return &Classifier{ThresholdDays: thresholdDays}
}

// StatusFor returns the Active/Inactive status for a last transaction time.
func (c *Classifier) StatusFor(lastTransaction *time.Time, now time.Time) domain.RecordStatus {
	return Classify(lastTransaction, now, c.ThresholdDays).Status
}

// EffectiveLastTransaction picks the timestamp a terminal should be judged
// by: the matching merchant report's last activity when one exists,
// otherwise the terminal's own stored value.
func EffectiveLastTransaction(t *domain.Terminal, merchantsByTerminal map[string]*domain.Merchant) *time.Time {
	if m, ok := merchantsByTerminal[t.TerminalID]; ok && m.LastActivity != nil {
		return m.LastActivity
	}
	return t.LastTransaction
}
