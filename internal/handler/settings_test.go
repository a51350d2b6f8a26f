package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

// --- Mocks ---

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) ListAlertSettings(ctx context.Context) ([]*domain.AlertSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AlertSetting), args.Error(1)
}

func (m *MockSettingsStore) UpsertAlertSetting(ctx context.Context, s *domain.AlertSetting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettingsStore) ToggleAlertSetting(ctx context.Context, id uuid.UUID, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockSettingsStore) ListSystemSettings(ctx context.Context, category string) ([]*domain.SystemSetting, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SystemSetting), args.Error(1)
}

func (m *MockSettingsStore) GetSystemSetting(ctx context.Context, category, key string) (*domain.SystemSetting, error) {
	args := m.Called(ctx, category, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSetting), args.Error(1)
}

func (m *MockSettingsStore) UpsertSystemSetting(ctx context.Context, s *domain.SystemSetting) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func settingsTestRouter(h *SettingsHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/settings/system/{category}/{key}", h.GetSystemSetting).Methods("GET")
	return r
}

// --- Tests ---

func TestGetSystemSetting(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("GetSystemSetting", mock.Anything, "display", "default_currency").Return(&domain.SystemSetting{
		ID:           uuid.New(),
		Category:     "display",
		SettingKey:   "default_currency",
		SettingValue: domain.Metadata{"value": "USD"},
	}, nil)

	h := NewSettingsHandler(store, validator.New(), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/settings/system/display/default_currency", nil)
	rec := httptest.NewRecorder()
	settingsTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "default_currency")
	store.AssertExpectations(t)
}

func TestGetSystemSettingNotFound(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("GetSystemSetting", mock.Anything, "display", "missing").Return(nil, errors.ErrSettingNotFound)

	h := NewSettingsHandler(store, validator.New(), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/settings/system/display/missing", nil)
	rec := httptest.NewRecorder()
	settingsTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
