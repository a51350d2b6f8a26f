package report

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

// --- Mocks ---

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) FindAll(ctx context.Context) ([]*domain.Merchant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Merchant), args.Error(1)
}

type MockTerminalRepository struct {
	mock.Mock
}

func (m *MockTerminalRepository) FindAll(ctx context.Context) ([]*domain.Terminal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Terminal), args.Error(1)
}

func (m *MockTerminalRepository) UpdateStatus(ctx context.Context, terminalID string, status domain.RecordStatus, lastTransaction *time.Time) error {
	args := m.Called(ctx, terminalID, status, lastTransaction)
	return args.Error(0)
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockAlertStore struct {
	mock.Mock
}

func (m *MockAlertStore) Create(ctx context.Context, a *domain.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertStore) FindOpenByTerminal(ctx context.Context, terminalID string) (*domain.Alert, error) {
	args := m.Called(ctx, terminalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockSnapshotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockSnapshotCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Tests ---

func TestSnapshotRebuildsWithoutCache(t *testing.T) {
	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{
		{TerminalID: "T001", USDSales: decimal.RequireFromString("100"), ZWGSales: decimal.RequireFromString("358"), Status: domain.StatusActive},
	}, nil)

	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{}, nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.RequireFromString("3.58"), nil)

	svc := NewService(merchants, terminals, rates, nil, nil, logger.NewNop(), time.Minute, 7)

	snapshot, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.True(t, snapshot.ConsolidatedUSDRevenue.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, 1, snapshot.TotalMerchants)
	merchants.AssertExpectations(t)
}

func TestSnapshotServedFromCache(t *testing.T) {
	cached := domain.Snapshot{
		TotalMerchants: 42,
		GeneratedAt:    time.Now(),
	}

	cache := new(MockSnapshotCache)
	cache.On("Get", mock.Anything, "dashboard:snapshot", mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(2).(*domain.Snapshot) = cached
	}).Return(nil)

	// The repositories must never be touched on a cache hit.
	svc := NewService(new(MockMerchantRepository), new(MockTerminalRepository), new(MockRateSource), nil, cache, logger.NewNop(), time.Minute, 7)

	snapshot, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, snapshot.TotalMerchants)
}

func TestSnapshotCachesRebuiltResult(t *testing.T) {
	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{}, nil)

	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{}, nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.RequireFromString("3.58"), nil)

	cache := new(MockSnapshotCache)
	cache.On("Get", mock.Anything, "dashboard:snapshot", mock.Anything).Return(redis.Nil)
	cache.On("Set", mock.Anything, "dashboard:snapshot", mock.Anything, time.Minute).Return(nil)

	svc := NewService(merchants, terminals, rates, nil, cache, logger.NewNop(), time.Minute, 7)

	_, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestSnapshotPropagatesRateFailure(t *testing.T) {
	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{}, nil)

	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{}, nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.Zero, errors.ErrRateNotAvailable)

	svc := NewService(merchants, terminals, rates, nil, nil, logger.NewNop(), time.Minute, 7)

	_, err := svc.Snapshot(context.Background())
	assert.Equal(t, errors.ErrRateNotAvailable, err)
}

func TestSnapshotRefreshesStaleTerminalStatus(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, 0, -2)
	stale := now.AddDate(0, 0, -30)

	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{
		{TerminalID: "T001", LastActivity: &recent, Status: domain.StatusActive},
	}, nil)

	// Stored as Inactive with an old timestamp; the merchant report supersedes it.
	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{
		{TerminalID: "T001", Status: domain.StatusInactive, LastTransaction: &stale},
		{TerminalID: "T002", Status: domain.StatusInactive, LastTransaction: nil},
	}, nil)
	terminals.On("UpdateStatus", mock.Anything, "T001", domain.StatusActive, &recent).Return(nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.RequireFromString("3.58"), nil)

	svc := NewService(merchants, terminals, rates, nil, nil, logger.NewNop(), time.Minute, 7)

	snapshot, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, snapshot.ActiveTerminals)
	assert.Equal(t, 2, snapshot.TotalTerminals)
	assert.True(t, snapshot.ActivityRatio.Equal(decimal.RequireFromString("50")))

	// T002 was already correct and must not be rewritten.
	terminals.AssertNumberOfCalls(t, "UpdateStatus", 1)
	terminals.AssertExpectations(t)
}

func TestSnapshotRaisesAlertWhenTerminalGoesInactive(t *testing.T) {
	now := time.Now()
	stale := now.AddDate(0, 0, -15)

	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{}, nil)

	// Stored as Active but the timestamp has aged out of the window.
	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{
		{TerminalID: "T001", MerchantName: "OK Zimbabwe Avondale", Officer: "T. Moyo", Status: domain.StatusActive, LastTransaction: &stale},
	}, nil)
	terminals.On("UpdateStatus", mock.Anything, "T001", domain.StatusInactive, &stale).Return(nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.RequireFromString("3.58"), nil)

	alerts := new(MockAlertStore)
	alerts.On("FindOpenByTerminal", mock.Anything, "T001").Return(nil, errors.ErrAlertNotFound)
	alerts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Alert) bool {
		return a.AutoGenerated &&
			a.Status == "Open" &&
			a.Severity == domain.SeverityMedium &&
			a.TerminalID != nil && *a.TerminalID == "T001" &&
			a.Merchant == "OK Zimbabwe Avondale"
	})).Return(nil)

	svc := NewService(merchants, terminals, rates, alerts, nil, logger.NewNop(), time.Minute, 7)

	_, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	alerts.AssertExpectations(t)
}

func TestSnapshotSkipsAlertWhenOneIsAlreadyOpen(t *testing.T) {
	now := time.Now()
	stale := now.AddDate(0, 0, -15)

	merchants := new(MockMerchantRepository)
	merchants.On("FindAll", mock.Anything).Return([]*domain.Merchant{}, nil)

	terminals := new(MockTerminalRepository)
	terminals.On("FindAll", mock.Anything).Return([]*domain.Terminal{
		{TerminalID: "T001", Status: domain.StatusActive, LastTransaction: &stale},
	}, nil)
	terminals.On("UpdateStatus", mock.Anything, "T001", domain.StatusInactive, &stale).Return(nil)

	rates := new(MockRateSource)
	rates.On("CurrentRate", mock.Anything).Return(decimal.RequireFromString("3.58"), nil)

	alerts := new(MockAlertStore)
	alerts.On("FindOpenByTerminal", mock.Anything, "T001").Return(&domain.Alert{Status: "Open"}, nil)

	svc := NewService(merchants, terminals, rates, alerts, nil, logger.NewNop(), time.Minute, 7)

	_, err := svc.Snapshot(context.Background())
	assert.NoError(t, err)
	alerts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvalidateDropsCachedSnapshot(t *testing.T) {
	cache := new(MockSnapshotCache)
	cache.On("Delete", mock.Anything, "dashboard:snapshot").Return(nil)

	svc := NewService(nil, nil, nil, nil, cache, logger.NewNop(), time.Minute, 7)
	svc.Invalidate(context.Background())

	cache.AssertExpectations(t)
}
