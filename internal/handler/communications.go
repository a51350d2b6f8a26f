// ==============================================================================
// COMMUNICATION HANDLER - internal/handler/communications.go
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

// CreateCommunicationRequest is the payload for logging a merchant contact.
type CreateCommunicationRequest struct {
	MerchantID   *string    `json:"merchant_id,omitempty" validate:"omitempty,max=50"`
	MerchantName string     `json:"merchant_name" validate:"required,min=1,max=255"`
	TerminalID   *string    `json:"terminal_id,omitempty" validate:"omitempty,max=50"`
	Officer      string     `json:"officer" validate:"required,min=1,max=255"`
	OfficerEmail *string    `json:"officer_email,omitempty" validate:"omitempty,email"`
	Type         string     `json:"type" validate:"required,oneof=call email visit sms other"`
	Subject      string     `json:"subject" validate:"required,min=1,max=255"`
	Notes        string     `json:"notes" validate:"max=5000"`
	Priority     string     `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	InactiveDays *int       `json:"inactive_days,omitempty" validate:"omitempty,min=0"`
	Date         *time.Time `json:"date,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// UpdateCommunicationRequest carries a partial communication update.
type UpdateCommunicationRequest struct {
	Subject      *string    `json:"subject,omitempty" validate:"omitempty,min=1,max=255"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Priority     *string    `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	Status       *string    `json:"status,omitempty" validate:"omitempty,oneof=Pending Completed Cancelled"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// CommunicationHandler manages the officer communication log.
type CommunicationHandler struct {
	store     CommunicationStore
	validator *validator.Validator
	logger    logger.Logger
}

// NewCommunicationHandler creates a CommunicationHandler.
func NewCommunicationHandler(store CommunicationStore, val *validator.Validator, log logger.Logger) *CommunicationHandler {
	return &CommunicationHandler{
		store:     store,
		validator: val,
		logger:    log,
	}
}

// List returns the communication log, newest first.
func (h *CommunicationHandler) List(w http.ResponseWriter, r *http.Request) {
	comms, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list communications", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch communications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"communications": comms,
		"count":          len(comms),
	})
}

// Create logs a new communication.
func (h *CommunicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCommunicationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	date := req.Date
	if date == nil {
		date = &now
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.SeverityMedium
	}

	comm := &domain.Communication{
		ID:            uuid.New(),
		MerchantID:    req.MerchantID,
		MerchantName:  validator.Sanitize(req.MerchantName),
		TerminalID:    req.TerminalID,
		Officer:       validator.Sanitize(req.Officer),
		OfficerEmail:  req.OfficerEmail,
		Type:          req.Type,
		Subject:       validator.Sanitize(req.Subject),
		Notes:         validator.Sanitize(req.Notes),
		Priority:      priority,
		Status:        "Pending",
		InactiveDays:  req.InactiveDays,
		Date:          date,
		FollowUpDate:  req.FollowUpDate,
		AutoGenerated: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.store.Create(r.Context(), comm); err != nil {
		h.logger.Error("Failed to create communication", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to create communication")
		return
	}

	respondJSON(w, http.StatusCreated, comm)
}

// Update applies a partial edit to a logged communication.
func (h *CommunicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid communication ID")
		return
	}

	var req UpdateCommunicationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	comm, err := h.store.FindByID(r.Context(), id)
	if err == errors.ErrCommunicationNotFound {
		respondError(w, http.StatusNotFound, "Communication not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch communication")
		return
	}

	if req.Subject != nil {
		comm.Subject = validator.Sanitize(*req.Subject)
	}
	if req.Notes != nil {
		comm.Notes = validator.Sanitize(*req.Notes)
	}
	if req.Priority != nil {
		comm.Priority = *req.Priority
	}
	if req.Status != nil {
		comm.Status = *req.Status
	}
	if req.FollowUpDate != nil {
		comm.FollowUpDate = req.FollowUpDate
	}

	if err := h.store.Update(r.Context(), comm); err != nil {
		h.logger.Error("Failed to update communication", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to update communication")
		return
	}

	respondJSON(w, http.StatusOK, comm)
}

// Delete removes a communication from the log.
func (h *CommunicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid communication ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if err == errors.ErrCommunicationNotFound {
			respondError(w, http.StatusNotFound, "Communication not found")
			return
		}
		h.logger.Error("Failed to delete communication", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to delete communication")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CommunicationStore is the persistence surface the communication endpoints need.
type CommunicationStore interface {
	Create(ctx context.Context, c *domain.Communication) error
	Update(ctx context.Context, c *domain.Communication) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Communication, error)
	FindAll(ctx context.Context) ([]*domain.Communication, error)
}
