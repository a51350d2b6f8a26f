// ==============================================================================
// EXCHANGE RATE HANDLER - internal/handler/rates.go
// ==============================================================================
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

// SetRateRequest is the payload for posting a new ZWG-per-USD rate.
type SetRateRequest struct {
	Rate   decimal.Decimal `json:"rate" validate:"required"`
	Source string          `json:"source" validate:"max=100"`
}

// RateHandler manages exchange rate endpoints.
type RateHandler struct {
	service   *fx.Service
	dashboard SnapshotInvalidator
	validator *validator.Validator
	logger    logger.Logger
}

// NewRateHandler creates a RateHandler.
func NewRateHandler(service *fx.Service, dashboard SnapshotInvalidator, val *validator.Validator, log logger.Logger) *RateHandler {
	return &RateHandler{
		service:   service,
		dashboard: dashboard,
		validator: val,
		logger:    log,
	}
}

// GetCurrent returns the rate in effect for new computations.
// GET /rates/current
func (h *RateHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.CurrentRate(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Exchange rate unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"base_currency":   "ZWG",
		"target_currency": "USD",
		"rate":            rate,
		"timestamp":       time.Now(),
	})
}

// SetRate records a new rate. Future computations pick it up immediately.
// POST /rates
func (h *RateHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req SetRateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	record, err := h.service.SetRate(r.Context(), req.Rate, source)
	if err != nil {
		if err == errors.ErrInvalidRate {
			respondError(w, http.StatusBadRequest, "Rate must be greater than zero")
			return
		}
		h.logger.Error("Failed to store exchange rate", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to store exchange rate")
		return
	}

	h.dashboard.Invalidate(r.Context())
	respondJSON(w, http.StatusCreated, record)
}

// GetHistory returns recent rate records, newest first.
// GET /rates/history?limit=30
func (h *RateHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch rate history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}
