// ==============================================================================
// RATE SERVICE - internal/fx/service.go
// ==============================================================================
package fx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

const rateCacheKey = "fx:rate:ZWG-USD"

// Service resolves the current ZWG-per-USD rate: cache first, then the
// latest persisted rate, then the configured default. The resolved rate is
// constant for the duration of a computation pass; callers take a Converter
// once and reuse it across the batch.
type Service struct {
	repo        Repository
	cache       RateCache
	defaultRate decimal.Decimal
	cacheTTL    time.Duration
	logger      logger.Logger
}

// NewService constructs a rate Service with repository, cache, and fallback rate.
func NewService(repo Repository, cache RateCache, defaultRate decimal.Decimal, log logger.Logger) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		defaultRate: defaultRate,
		cacheTTL:    5 * time.Minute,
		logger:      log,
	}
}

// CurrentRate returns the rate to use for a new computation pass.
func (s *Service) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	if s.cache != nil {
		var cached domain.RateRecord
		if err := s.cache.Get(ctx, rateCacheKey, &cached); err == nil {
			if cached.Rate.GreaterThan(decimal.Zero) {
				return cached.Rate, nil
			}
		}
	}

	record, err := s.repo.GetLatestRate(ctx, domain.ZWG, domain.USD)
	if err == nil && record.Rate.GreaterThan(decimal.Zero) {
		s.storeInCache(ctx, record)
		return record.Rate, nil
	}
	if err != nil {
		s.logger.Warn("No persisted exchange rate, using default", map[string]interface{}{
			"default": s.defaultRate.String(),
			"error":   err.Error(),
		})
	}

	if s.defaultRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.ErrRateNotAvailable
	}
	return s.defaultRate, nil
}

// Converter builds a Converter pinned to the current rate.
func (s *Service) Converter(ctx context.Context) (*Converter, error) {
	rate, err := s.CurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	return NewConverter(rate)
}

// SetRate records a new rate and invalidates the cached one.
func (s *Service) SetRate(ctx context.Context, rate decimal.Decimal, source string) (*domain.RateRecord, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidRate
	}

	now := time.Now()
	record := &domain.RateRecord{
		ID:             uuid.New(),
		BaseCurrency:   domain.ZWG,
		TargetCurrency: domain.USD,
		Rate:           rate,
		Source:         source,
		ValidFrom:      now,
		CreatedAt:      now,
	}

	if err := s.repo.CreateRate(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store exchange rate")
	}

	s.storeInCache(ctx, record)

	s.logger.Info("Exchange rate updated", map[string]interface{}{
		"rate":   rate.String(),
		"source": source,
	})
	return record, nil
}

// History returns recent rate records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.RateRecord, error) {
	return s.repo.GetRateHistory(ctx, domain.ZWG, domain.USD, limit)
}

func (s *Service) storeInCache(ctx context.Context, record *domain.RateRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, rateCacheKey, record, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache exchange rate", map[string]interface{}{"error": err.Error()})
	}
}

// Repository defines persistence operations for exchange rates.
type Repository interface {
	CreateRate(ctx context.Context, record *domain.RateRecord) error
	GetLatestRate(ctx context.Context, from, to domain.Currency) (*domain.RateRecord, error)
	GetRateHistory(ctx context.Context, from, to domain.Currency, limit int) ([]*domain.RateRecord, error)
}

// RateCache defines cache operations for the current rate.
type RateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
