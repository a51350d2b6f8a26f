// ==============================================================================
// SETTINGS HANDLER - internal/handler/settings.go
// ==============================================================================
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

// UpsertAlertSettingRequest creates or updates an alerting rule by name.
type UpsertAlertSettingRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=255"`
	Description       string `json:"description" validate:"max=1000"`
	Enabled           bool   `json:"enabled"`
	Priority          string `json:"priority" validate:"required,oneof=High Medium Low"`
	ThresholdValue    string `json:"threshold_value" validate:"max=100"`
	EmailNotification bool   `json:"email_notification"`
}

// ToggleAlertSettingRequest flips a rule on or off.
type ToggleAlertSettingRequest struct {
	Enabled bool `json:"enabled"`
}

// UpsertSystemSettingRequest creates or updates a category-scoped setting.
type UpsertSystemSettingRequest struct {
	Category     string          `json:"category" validate:"required,min=1,max=100"`
	SettingKey   string          `json:"setting_key" validate:"required,min=1,max=100"`
	SettingValue domain.Metadata `json:"setting_value" validate:"required"`
	Description  string          `json:"description" validate:"max=1000"`
}

// SettingsHandler manages alert rules and system settings.
type SettingsHandler struct {
	store     SettingsStore
	validator *validator.Validator
	logger    logger.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(store SettingsStore, val *validator.Validator, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		store:     store,
		validator: val,
		logger:    log,
	}
}

// ListAlertSettings returns every alerting rule.
// GET /settings/alerts
func (h *SettingsHandler) ListAlertSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.ListAlertSettings(r.Context())
	if err != nil {
		h.logger.Error("Failed to list alert settings", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch alert settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
		"count":    len(settings),
	})
}

// UpsertAlertSetting creates or replaces an alerting rule by name.
// PUT /settings/alerts
func (h *SettingsHandler) UpsertAlertSetting(w http.ResponseWriter, r *http.Request) {
	var req UpsertAlertSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	setting := &domain.AlertSetting{
		ID:                uuid.New(),
		Name:              validator.Sanitize(req.Name),
		Description:       validator.Sanitize(req.Description),
		Enabled:           req.Enabled,
		Priority:          req.Priority,
		ThresholdValue:    req.ThresholdValue,
		EmailNotification: req.EmailNotification,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.store.UpsertAlertSetting(r.Context(), setting); err != nil {
		h.logger.Error("Failed to upsert alert setting", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to save alert setting")
		return
	}

	respondJSON(w, http.StatusOK, setting)
}

// ToggleAlertSetting enables or disables a rule.
// PATCH /settings/alerts/{id}
func (h *SettingsHandler) ToggleAlertSetting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid setting ID")
		return
	}

	var req ToggleAlertSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.store.ToggleAlertSetting(r.Context(), id, req.Enabled); err != nil {
		if err == errors.ErrSettingNotFound {
			respondError(w, http.StatusNotFound, "Alert setting not found")
			return
		}
		h.logger.Error("Failed to toggle alert setting", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to update alert setting")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// ListSystemSettings returns system settings, optionally filtered by category.
// GET /settings/system?category=display
func (h *SettingsHandler) ListSystemSettings(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	settings, err := h.store.ListSystemSettings(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list system settings", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch system settings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
		"count":    len(settings),
	})
}

// GetSystemSetting returns a single setting by category and key.
// GET /settings/system/{category}/{key}
func (h *SettingsHandler) GetSystemSetting(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	setting, err := h.store.GetSystemSetting(r.Context(), vars["category"], vars["key"])
	if err != nil {
		if err == errors.ErrSettingNotFound {
			respondError(w, http.StatusNotFound, "System setting not found")
			return
		}
		h.logger.Error("Failed to get system setting", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch system setting")
		return
	}

	respondJSON(w, http.StatusOK, setting)
}

// UpsertSystemSetting creates or replaces a setting by (category, key).
// PUT /settings/system
func (h *SettingsHandler) UpsertSystemSetting(w http.ResponseWriter, r *http.Request) {
	var req UpsertSystemSettingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	setting := &domain.SystemSetting{
		ID:           uuid.New(),
		Category:     req.Category,
		SettingKey:   req.SettingKey,
		SettingValue: req.SettingValue,
		Description:  validator.Sanitize(req.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.UpsertSystemSetting(r.Context(), setting); err != nil {
		h.logger.Error("Failed to upsert system setting", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to save system setting")
		return
	}

	respondJSON(w, http.StatusOK, setting)
}

// SettingsStore is the persistence surface the settings endpoints need.
type SettingsStore interface {
	ListAlertSettings(ctx context.Context) ([]*domain.AlertSetting, error)
	UpsertAlertSetting(ctx context.Context, s *domain.AlertSetting) error
	ToggleAlertSetting(ctx context.Context, id uuid.UUID, enabled bool) error
	ListSystemSettings(ctx context.Context, category string) ([]*domain.SystemSetting, error)
	GetSystemSetting(ctx context.Context, category, key string) (*domain.SystemSetting, error)
	UpsertSystemSetting(ctx context.Context, s *domain.SystemSetting) error
}
