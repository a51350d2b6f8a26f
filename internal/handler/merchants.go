// ==============================================================================
// MERCHANT HANDLER - internal/handler/merchants.go
// ==============================================================================
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/internal/report"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

// CreateMerchantRequest is the payload for manually adding a merchant.
type CreateMerchantRequest struct {
	TerminalID     string          `json:"terminal_id" validate:"required,min=1,max=50"`
	AccountCIF     string          `json:"account_cif" validate:"required,min=1,max=50"`
	MerchantName   string          `json:"merchant_name" validate:"required,min=1,max=255"`
	SupportOfficer string          `json:"support_officer" validate:"max=255"`
	Category       string          `json:"category" validate:"max=100"`
	Sector         string          `json:"sector" validate:"max=100"`
	BusinessUnit   string          `json:"business_unit" validate:"max=100"`
	BranchCode     string          `json:"branch_code" validate:"max=50"`
	Location       string          `json:"location" validate:"max=255"`
	USDSales       decimal.Decimal `json:"usd_sales"`
	ZWGSales       decimal.Decimal `json:"zwg_sales"`
	LastActivity   *time.Time      `json:"last_activity,omitempty"`
}

// UpdateMerchantRequest carries a partial merchant update. Only non-nil
// fields are applied.
type UpdateMerchantRequest struct {
	MerchantName   *string          `json:"merchant_name,omitempty" validate:"omitempty,min=1,max=255"`
	SupportOfficer *string          `json:"support_officer,omitempty" validate:"omitempty,max=255"`
	Category       *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Sector         *string          `json:"sector,omitempty" validate:"omitempty,max=100"`
	BusinessUnit   *string          `json:"business_unit,omitempty" validate:"omitempty,max=100"`
	BranchCode     *string          `json:"branch_code,omitempty" validate:"omitempty,max=50"`
	Location       *string          `json:"location,omitempty" validate:"omitempty,max=255"`
	USDSales       *decimal.Decimal `json:"usd_sales,omitempty"`
	ZWGSales       *decimal.Decimal `json:"zwg_sales,omitempty"`
	LastActivity   *time.Time       `json:"last_activity,omitempty"`
}

// MerchantHandler manages merchant CRUD endpoints.
type MerchantHandler struct {
	store     MerchantStore
	rates     ConverterSource
	dashboard SnapshotInvalidator
	validator *validator.Validator
	logger    logger.Logger
}

// NewMerchantHandler creates a MerchantHandler.
func NewMerchantHandler(store MerchantStore, rates ConverterSource, dashboard SnapshotInvalidator, val *validator.Validator, log logger.Logger) *MerchantHandler {
	return &MerchantHandler{
		store:     store,
		rates:     rates,
		dashboard: dashboard,
		validator: val,
		logger:    log,
	}
}

// List returns every merchant with contribution percentages recomputed
// against the current totals.
func (h *MerchantHandler) List(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list merchants", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to fetch merchants")
		return
	}

	report.ApplyContribution(merchants)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"merchants": merchants,
		"count":     len(merchants),
	})
}

// Get returns a single merchant by ID.
func (h *MerchantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid merchant ID")
		return
	}

	merchant, err := h.store.FindByID(r.Context(), id)
	if err == errors.ErrMerchantNotFound {
		respondError(w, http.StatusNotFound, "Merchant not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch merchant")
		return
	}

	respondJSON(w, http.StatusOK, merchant)
}

// Create adds a merchant record. The consolidated figure is always derived
// from the current exchange rate, never taken from the client.
func (h *MerchantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMerchantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}
	if req.USDSales.IsNegative() || req.ZWGSales.IsNegative() {
		respondError(w, http.StatusBadRequest, "Sales figures cannot be negative")
		return
	}

	conv, err := h.rates.Converter(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve exchange rate", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Exchange rate unavailable")
		return
	}

	now := time.Now()
	merchant := &domain.Merchant{
		ID:               uuid.New(),
		TerminalID:       validator.Sanitize(req.TerminalID),
		AccountCIF:       validator.Sanitize(req.AccountCIF),
		MerchantName:     validator.Sanitize(req.MerchantName),
		SupportOfficer:   validator.Sanitize(req.SupportOfficer),
		Category:         req.Category,
		Sector:           req.Sector,
		BusinessUnit:     req.BusinessUnit,
		BranchCode:       req.BranchCode,
		Location:         req.Location,
		Status:           domain.StatusInactive,
		USDSales:         req.USDSales,
		ZWGSales:         req.ZWGSales,
		ConsolidatedUSD:  conv.ConsolidatedUSD(req.USDSales, req.ZWGSales),
		MonthToDateTotal: req.USDSales.Add(req.ZWGSales),
		LastActivity:     req.LastActivity,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.LastActivity != nil {
		merchant.Status = domain.StatusActive
	}
	if merchant.SupportOfficer == "" {
		merchant.SupportOfficer = "Unassigned"
	}

	if _, err := h.store.FindByTerminalAndCIF(r.Context(), merchant.TerminalID, merchant.AccountCIF); err == nil {
		respondError(w, http.StatusConflict, "Merchant already exists for this terminal and account")
		return
	}

	if err := h.store.Create(r.Context(), merchant); err != nil {
		h.logger.Error("Failed to create merchant", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to create merchant")
		return
	}

	h.dashboard.Invalidate(r.Context())
	respondJSON(w, http.StatusCreated, merchant)
}

// Update applies a partial edit. Blank fields in the request leave the
// stored values untouched.
func (h *MerchantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid merchant ID")
		return
	}

	var req UpdateMerchantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if valErrs := h.validator.ValidateStructured(&req); valErrs != nil {
		respondValidationErrors(w, valErrs)
		return
	}

	merchant, err := h.store.FindByID(r.Context(), id)
	if err == errors.ErrMerchantNotFound {
		respondError(w, http.StatusNotFound, "Merchant not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch merchant")
		return
	}

	if req.MerchantName != nil {
		merchant.MerchantName = validator.Sanitize(*req.MerchantName)
	}
	if req.SupportOfficer != nil {
		merchant.SupportOfficer = validator.Sanitize(*req.SupportOfficer)
	}
	if req.Category != nil {
		merchant.Category = *req.Category
	}
	if req.Sector != nil {
		merchant.Sector = *req.Sector
	}
	if req.BusinessUnit != nil {
		merchant.BusinessUnit = *req.BusinessUnit
	}
	if req.BranchCode != nil {
		merchant.BranchCode = *req.BranchCode
	}
	if req.Location != nil {
		merchant.Location = *req.Location
	}
	if req.USDSales != nil {
		merchant.USDSales = *req.USDSales
	}
	if req.ZWGSales != nil {
		merchant.ZWGSales = *req.ZWGSales
	}
	if req.LastActivity != nil {
		merchant.LastActivity = req.LastActivity
	}

	if merchant.USDSales.IsNegative() || merchant.ZWGSales.IsNegative() {
		respondError(w, http.StatusBadRequest, "Sales figures cannot be negative")
		return
	}

	if req.USDSales != nil || req.ZWGSales != nil {
		conv, err := h.rates.Converter(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Exchange rate unavailable")
			return
		}
		merchant.ConsolidatedUSD = conv.ConsolidatedUSD(merchant.USDSales, merchant.ZWGSales)
		merchant.MonthToDateTotal = merchant.USDSales.Add(merchant.ZWGSales)
	}

	if err := h.store.Update(r.Context(), merchant); err != nil {
		h.logger.Error("Failed to update merchant", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to update merchant")
		return
	}

	h.dashboard.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, merchant)
}

// Delete removes a merchant by ID.
func (h *MerchantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid merchant ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if err == errors.ErrMerchantNotFound {
			respondError(w, http.StatusNotFound, "Merchant not found")
			return
		}
		h.logger.Error("Failed to delete merchant", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to delete merchant")
		return
	}

	h.dashboard.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body, writing the error response itself
// when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// MerchantStore is the persistence surface the merchant endpoints need.
type MerchantStore interface {
	Create(ctx context.Context, m *domain.Merchant) error
	Update(ctx context.Context, m *domain.Merchant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]*domain.Merchant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	FindByTerminalAndCIF(ctx context.Context, terminalID, accountCIF string) (*domain.Merchant, error)
}

// ConverterSource supplies a converter pinned to the current exchange rate.
type ConverterSource interface {
	Converter(ctx context.Context) (*fx.Converter, error)
}

// SnapshotInvalidator drops the cached dashboard snapshot after writes.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context)
}
