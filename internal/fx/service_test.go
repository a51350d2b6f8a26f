package fx

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRate(ctx context.Context, record *domain.RateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) GetLatestRate(ctx context.Context, from, to domain.Currency) (*domain.RateRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateRecord), args.Error(1)
}

func (m *MockRepository) GetRateHistory(ctx context.Context, from, to domain.Currency, limit int) ([]*domain.RateRecord, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RateRecord), args.Error(1)
}

// --- Tests ---

func TestCurrentRateUsesLatestPersistedRate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetLatestRate", mock.Anything, domain.ZWG, domain.USD).Return(&domain.RateRecord{
		Rate: decimal.RequireFromString("4.10"),
	}, nil)

	svc := NewService(repo, nil, decimal.RequireFromString("3.58"), logger.NewNop())

	rate, err := svc.CurrentRate(context.Background())
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("4.10")))
	repo.AssertExpectations(t)
}

func TestCurrentRateFallsBackToDefault(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetLatestRate", mock.Anything, domain.ZWG, domain.USD).Return(nil, errors.ErrRateNotAvailable)

	svc := NewService(repo, nil, decimal.RequireFromString("3.58"), logger.NewNop())

	rate, err := svc.CurrentRate(context.Background())
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("3.58")))
}

func TestCurrentRateErrorsWithoutAnyRate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetLatestRate", mock.Anything, domain.ZWG, domain.USD).Return(nil, errors.ErrRateNotAvailable)

	svc := NewService(repo, nil, decimal.Zero, logger.NewNop())

	_, err := svc.CurrentRate(context.Background())
	assert.Equal(t, errors.ErrRateNotAvailable, err)
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	svc := NewService(new(MockRepository), nil, decimal.RequireFromString("3.58"), logger.NewNop())

	_, err := svc.SetRate(context.Background(), decimal.Zero, "manual")
	assert.Equal(t, errors.ErrInvalidRate, err)
}

func TestSetRatePersistsRecord(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateRate", mock.Anything, mock.MatchedBy(func(r *domain.RateRecord) bool {
		return r.Rate.Equal(decimal.RequireFromString("4.25")) &&
			r.BaseCurrency == domain.ZWG &&
			r.TargetCurrency == domain.USD &&
			r.Source == "rbz-daily"
	})).Return(nil)

	svc := NewService(repo, nil, decimal.RequireFromString("3.58"), logger.NewNop())

	record, err := svc.SetRate(context.Background(), decimal.RequireFromString("4.25"), "rbz-daily")
	assert.NoError(t, err)
	assert.NotNil(t, record)
	assert.False(t, record.ValidFrom.IsZero())
	repo.AssertExpectations(t)
}

func TestConverterPinsCurrentRate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetLatestRate", mock.Anything, domain.ZWG, domain.USD).Return(&domain.RateRecord{
		Rate: decimal.RequireFromString("3.58"),
	}, nil)

	svc := NewService(repo, nil, decimal.Zero, logger.NewNop())

	conv, err := svc.Converter(context.Background())
	assert.NoError(t, err)
	assert.True(t, conv.Rate().Equal(decimal.RequireFromString("3.58")))
}
