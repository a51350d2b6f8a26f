// ==============================================================================
// DASHBOARD SERVICE - internal/report/service.go
// ==============================================================================
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/activity"
	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

const snapshotCacheKey = "dashboard:snapshot"

// Service assembles dashboard snapshots from the current record collections.
// Terminal statuses are refreshed against the classifier before each
// aggregation so the ratio always reflects recency, not stale stored status.
type Service struct {
	merchants     MerchantRepository
	terminals     TerminalRepository
	rates         RateSource
	alerts        AlertStore
	cache         SnapshotCache
	logger        logger.Logger
	snapshotTTL   time.Duration
	thresholdDays int
}

// NewService constructs a dashboard Service. alerts may be nil, which
// disables the auto-alert pass.
func NewService(merchants MerchantRepository, terminals TerminalRepository, rates RateSource, alerts AlertStore, cache SnapshotCache, log logger.Logger, snapshotTTL time.Duration, thresholdDays int) *Service {
	if thresholdDays <= 0 {
		thresholdDays = activity.DefaultThresholdDays
	}
	return &Service{
		merchants:     merchants,
		terminals:     terminals,
		rates:         rates,
		alerts:        alerts,
		cache:         cache,
		logger:        log,
		snapshotTTL:   snapshotTTL,
		thresholdDays: thresholdDays,
	}
}

// Snapshot returns the current aggregate view, served from cache when a
// recent one exists.
func (s *Service) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if s.cache != nil {
		var cached domain.Snapshot
		if err := s.cache.Get(ctx, snapshotCacheKey, &cached); err == nil && !cached.GeneratedAt.IsZero() {
			return &cached, nil
		}
	}

	snapshot, err := s.rebuild(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotCacheKey, snapshot, s.snapshotTTL); err != nil {
			s.logger.Warn("Failed to cache dashboard snapshot", map[string]interface{}{"error": err.Error()})
		}
	}
	return snapshot, nil
}

// Invalidate drops the cached snapshot. Called after writes so the next
// read recomputes.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, snapshotCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate snapshot cache", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) rebuild(ctx context.Context) (*domain.Snapshot, error) {
	merchants, err := s.merchants.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load merchants")
	}
	terminals, err := s.terminals.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load terminals")
	}

	s.refreshTerminalStatuses(ctx, merchants, terminals)

	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := Aggregate(merchants, terminals, rate)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// refreshTerminalStatuses re-derives each terminal's status from the most
// recent matching merchant report, falling back to the terminal's own last
// transaction. Changed statuses are written back; a write failure only logs,
// since the in-memory snapshot is already correct.
func (s *Service) refreshTerminalStatuses(ctx context.Context, merchants []*domain.Merchant, terminals []*domain.Terminal) {
	byTerminal := make(map[string]*domain.Merchant, len(merchants))
	for _, m := range merchants {
		existing, ok := byTerminal[m.TerminalID]
		if !ok || lastActivityAfter(m, existing) {
			byTerminal[m.TerminalID] = m
		}
	}

	now := time.Now()
	for _, t := range terminals {
		lastTxn := activity.EffectiveLastTransaction(t, byTerminal)
		result := activity.Classify(lastTxn, now, s.thresholdDays)

		if result.ClockSkew {
			s.logger.Warn("Terminal reports future last transaction", map[string]interface{}{
				"terminal_id": t.TerminalID,
			})
		}

		if t.Status == result.Status && equalTimes(t.LastTransaction, lastTxn) {
			continue
		}
		wentInactive := t.Status == domain.StatusActive && result.Status == domain.StatusInactive
		t.Status = result.Status
		t.LastTransaction = lastTxn
		if err := s.terminals.UpdateStatus(ctx, t.TerminalID, result.Status, lastTxn); err != nil {
			s.logger.Error("Failed to persist terminal status", map[string]interface{}{
				"terminal_id": t.TerminalID,
				"error":       err.Error(),
			})
		}
		if wentInactive {
			s.raiseInactivityAlert(ctx, t, result.DaysSince, now)
		}
	}
}

// raiseInactivityAlert records an auto-generated alert when a terminal drops
// out of the activity window. A terminal with an alert still open is skipped
// so repeated rebuilds do not pile up duplicates.
func (s *Service) raiseInactivityAlert(ctx context.Context, t *domain.Terminal, daysSince int, now time.Time) {
	if s.alerts == nil {
		return
	}

	if _, err := s.alerts.FindOpenByTerminal(ctx, t.TerminalID); err == nil {
		return
	} else if err != errors.ErrAlertNotFound {
		s.logger.Warn("Failed to check for open terminal alert", map[string]interface{}{
			"terminal_id": t.TerminalID,
			"error":       err.Error(),
		})
		return
	}

	message := fmt.Sprintf("Terminal %s has recorded no transactions for %d days", t.TerminalID, daysSince)
	if t.LastTransaction == nil {
		message = fmt.Sprintf("Terminal %s has no recorded transactions", t.TerminalID)
	}

	terminalID := t.TerminalID
	alert := &domain.Alert{
		ID:            uuid.New(),
		Type:          "terminal_inactivity",
		Severity:      domain.SeverityMedium,
		Message:       message,
		Merchant:      t.MerchantName,
		Officer:       t.Officer,
		TerminalID:    &terminalID,
		Status:        "Open",
		AutoGenerated: true,
		Timestamp:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.Error("Failed to create inactivity alert", map[string]interface{}{
			"terminal_id": t.TerminalID,
			"error":       err.Error(),
		})
		return
	}

	s.logger.Info("Raised inactivity alert", map[string]interface{}{
		"terminal_id": t.TerminalID,
		"days_since":  daysSince,
	})
}

func lastActivityAfter(a, b *domain.Merchant) bool {
	if a.LastActivity == nil {
		return false
	}
	if b.LastActivity == nil {
		return true
	}
	return a.LastActivity.After(*b.LastActivity)
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// MerchantRepository supplies the merchant collection for aggregation.
type MerchantRepository interface {
	FindAll(ctx context.Context) ([]*domain.Merchant, error)
}

// TerminalRepository supplies terminals and accepts derived status updates.
type TerminalRepository interface {
	FindAll(ctx context.Context) ([]*domain.Terminal, error)
	UpdateStatus(ctx context.Context, terminalID string, status domain.RecordStatus, lastTransaction *time.Time) error
}

// AlertStore records auto-generated alerts, guarded against duplicates by
// the open-alert lookup.
type AlertStore interface {
	Create(ctx context.Context, a *domain.Alert) error
	FindOpenByTerminal(ctx context.Context, terminalID string) (*domain.Alert, error)
}

// RateSource supplies the rate for one aggregation pass.
type RateSource interface {
	CurrentRate(ctx context.Context) (decimal.Decimal, error)
}

// SnapshotCache caches computed snapshots between requests.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
