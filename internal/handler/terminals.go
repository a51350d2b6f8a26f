// ==============================================================================
// TERMINAL HANDLER - internal/handler/terminals.go
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

// CreateTerminalRequest is the payload for manually registering a terminal.
type CreateTerminalRequest struct {
	TerminalID       string     `json:"terminal_id" validate:"required,min=1,max=50"`
	SerialNumber     string     `json:"serial_number" validate:"max=100"`
	MerchantName     string     `json:"merchant_name" validate:"required,min=1,max=255"`
	MerchantID       string     `json:"merchant_id" validate:"max=50"`
	Model            string     `json:"model" validate:"max=100"`
	Location         string     `json:"location" validate:"max=255"`
	Officer          string     `json:"officer" validate:"max=255"`
	LastTransaction  *time.Time `json:"last_transaction,omitempty"`
	InstallationDate *time.Time `json:"installation_date,omitempty"`
}

// TerminalHandler manages terminal endpoints.
type TerminalHandler struct {
	store      TerminalStore
	dashboard  SnapshotInvalidator
	classifier TerminalClassifier
	validator  *validator.Validator
	logger     logger.Logger
}

// NewTerminalHandler creates a TerminalHandler.
func NewTerminalHandler(store TerminalStore, dashboard SnapshotInvalidator, classifier TerminalClassifier, val *validator.Validator, log logger.Logger) *TerminalHandler {
	return &TerminalHandler{
		store:      store,
		dashboard:  dashboard,
		classifier: classifier,
		validator:  val,
		logger:     log,
	}
}

// List returns every terminal.
func (h *TerminalHandler) List(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list terminals", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch terminals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"terminals": terminals,
		"count":     len(terminals),
	})
}

// Get returns a single terminal by its device identifier.
func (h *TerminalHandler) Get(w http.ResponseWriter, r *http.Request) {
	terminalID := mux.Vars(r)["terminal_id"]

	terminal, err := h.store.FindByTerminalID(r.Context(), terminalID)
	if err == errors.ErrTerminalNotFound {
		respondError(w, http.StatusNotFound, "Terminal not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch terminal")
		return
	}

	respondJSON(w, http.StatusOK, terminal)
}

// Create registers a terminal. Status is derived from the last transaction
// date, never accepted from the client.
func (h *TerminalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTerminalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	terminal := &domain.Terminal{
		ID:               uuid.New(),
		TerminalID:       validator.Sanitize(req.TerminalID),
		SerialNumber:     req.SerialNumber,
		MerchantName:     validator.Sanitize(req.MerchantName),
		MerchantID:       req.MerchantID,
		Model:            req.Model,
		Location:         req.Location,
		Officer:          validator.Sanitize(req.Officer),
		Status:           h.classifier.StatusFor(req.LastTransaction, now),
		LastTransaction:  req.LastTransaction,
		InstallationDate: req.InstallationDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if terminal.Officer == "" {
		terminal.Officer = "Unassigned"
	}

	if err := h.store.Upsert(r.Context(), terminal); err != nil {
		h.logger.Error("Failed to save terminal", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to save terminal")
		return
	}

	h.dashboard.Invalidate(r.Context())
	respondJSON(w, http.StatusCreated, terminal)
}

// Delete removes a terminal by record ID.
func (h *TerminalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid terminal ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if err == errors.ErrTerminalNotFound {
			respondError(w, http.StatusNotFound, "Terminal not found")
			return
		}
		h.logger.Error("Failed to delete terminal", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to delete terminal")
		return
	}

	h.dashboard.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// TerminalStore is the persistence surface the terminal endpoints need.
type TerminalStore interface {
	Upsert(ctx context.Context, t *domain.Terminal) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]*domain.Terminal, error)
	FindByTerminalID(ctx context.Context, terminalID string) (*domain.Terminal, error)
}

// TerminalClassifier derives a terminal status from transaction recency.
type TerminalClassifier interface {
	StatusFor(lastTransaction *time.Time, now time.Time) domain.RecordStatus
}
