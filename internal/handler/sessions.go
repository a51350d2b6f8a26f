// ==============================================================================
// SESSION HANDLER - internal/handler/sessions.go
// ==============================================================================
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

// CreateSessionRequest records a dashboard login.
type CreateSessionRequest struct {
	UserEmail string `json:"user_email" validate:"required,email"`
}

// SessionHandler records dashboard logins for the admin activity view.
type SessionHandler struct {
	store     SessionStore
	validator *validator.Validator
	logger    logger.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(store SessionStore, val *validator.Validator, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		store:     store,
		validator: val,
		logger:    log,
	}
}

// Create records a login event.
// POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	now := time.Now()
	session := &domain.UserSession{
		ID:        uuid.New(),
		UserEmail: req.UserEmail,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		LoginTime: now,
		CreatedAt: now,
	}

	if err := h.store.Create(r.Context(), session); err != nil {
		h.logger.Error("Failed to record session", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to record session")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// Close stamps a session's logout time.
// POST /sessions/{id}/close
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := h.store.Close(r.Context(), id); err != nil {
		if err == errors.ErrSessionNotFound {
			respondError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to close session", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to close session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List returns recent sessions, newest first.
// GET /sessions?limit=50
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.store.FindRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list sessions", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// SessionStore is the persistence surface the session endpoints need.
type SessionStore interface {
	Create(ctx context.Context, s *domain.UserSession) error
	Close(ctx context.Context, id uuid.UUID) error
	FindRecent(ctx context.Context, limit int) ([]*domain.UserSession, error)
}
