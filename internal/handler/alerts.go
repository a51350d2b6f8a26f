// ==============================================================================
// ALERT HANDLER - internal/handler/alerts.go
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

// CreateAlertRequest is the payload for manually raising an alert.
type CreateAlertRequest struct {
	Type           string     `json:"type" validate:"required,min=1,max=100"`
	Severity       string     `json:"severity" validate:"required,oneof=High Medium Low"`
	Message        string     `json:"message" validate:"required,min=1,max=1000"`
	Merchant       string     `json:"merchant" validate:"required,min=1,max=255"`
	Officer        string     `json:"officer" validate:"max=255"`
	TerminalID     *string    `json:"terminal_id,omitempty" validate:"omitempty,max=50"`
	ActionRequired *string    `json:"action_required,omitempty" validate:"omitempty,max=500"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

// UpdateAlertStatusRequest transitions an alert.
type UpdateAlertStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Open Acknowledged Resolved"`
}

// AlertHandler manages portfolio alert endpoints.
type AlertHandler struct {
	store     AlertStore
	validator *validator.Validator
	logger    logger.Logger
}

// NewAlertHandler creates an AlertHandler.
func NewAlertHandler(store AlertStore, val *validator.Validator, log logger.Logger) *AlertHandler {
	return &AlertHandler{
		store:     store,
		validator: val,
		logger:    log,
	}
}

// List returns all alerts, newest first.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list alerts", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// Create raises a manual alert.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	alert := &domain.Alert{
		ID:             uuid.New(),
		Type:           req.Type,
		Severity:       req.Severity,
		Message:        validator.Sanitize(req.Message),
		Merchant:       validator.Sanitize(req.Merchant),
		Officer:        validator.Sanitize(req.Officer),
		TerminalID:     req.TerminalID,
		Status:         "Open",
		ActionRequired: req.ActionRequired,
		DueDate:        req.DueDate,
		AutoGenerated:  false,
		Timestamp:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.Create(r.Context(), alert); err != nil {
		h.logger.Error("Failed to create alert", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}

	respondJSON(w, http.StatusCreated, alert)
}

// UpdateStatus transitions an alert between Open, Acknowledged and Resolved.
func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	var req UpdateAlertStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	if err := h.store.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if err == errors.ErrAlertNotFound {
			respondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("Failed to update alert", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to update alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// Delete removes an alert.
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if err == errors.ErrAlertNotFound {
			respondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("Failed to delete alert", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to delete alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AlertStore is the persistence surface the alert endpoints need.
type AlertStore interface {
	Create(ctx context.Context, a *domain.Alert) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]*domain.Alert, error)
}
