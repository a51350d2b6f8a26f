// ==============================================================================
// REPORT UPLOAD HANDLER - internal/handler/uploads.go
// ==============================================================================
package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/munashechidyiwa/merchant-portfolios/internal/domain"
	"github.com/munashechidyiwa/merchant-portfolios/internal/ingest"
	"github.com/munashechidyiwa/merchant-portfolios/internal/parser"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

// UploadHandler accepts officer spreadsheet uploads and feeds them through
// the ingestion pipeline.
type UploadHandler struct {
	ingestor  *ingest.Ingestor
	dashboard SnapshotInvalidator
	logger    logger.Logger
	maxBytes  int64
}

// NewUploadHandler creates an UploadHandler. maxBytes caps the accepted
// upload size.
func NewUploadHandler(ingestor *ingest.Ingestor, dashboard SnapshotInvalidator, log logger.Logger, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadHandler{
		ingestor:  ingestor,
		dashboard: dashboard,
		logger:    log,
		maxBytes:  maxBytes,
	}
}

// UploadMerchants ingests a merchant performance report. The currency query
// parameter is required and tags which column the sales figures belong to;
// there is no default.
// POST /uploads/merchants?currency=USD
func (h *UploadHandler) UploadMerchants(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("currency"))
	if raw == "" {
		respondError(w, http.StatusBadRequest, "currency query parameter is required (USD or ZWG)")
		return
	}
	currency := domain.Currency(strings.ToUpper(raw))
	if !currency.Valid() {
		respondError(w, http.StatusBadRequest, "currency must be USD or ZWG")
		return
	}

	rows, ok := h.parseUpload(w, r, domain.KindMerchants)
	if !ok {
		return
	}

	summary, err := h.ingestor.IngestMerchants(r.Context(), rows, currency)
	if err != nil {
		h.logger.Error("Merchant ingestion failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	h.dashboard.Invalidate(r.Context())
	h.logger.Info("Merchant report ingested", map[string]interface{}{
		"currency":  currency,
		"processed": summary.Processed,
		"saved":     summary.Saved,
		"failed":    summary.Failed,
	})

	respondJSON(w, http.StatusOK, summary)
}

// UploadTerminals ingests a terminal status report.
// POST /uploads/terminals
func (h *UploadHandler) UploadTerminals(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.parseUpload(w, r, domain.KindTerminals)
	if !ok {
		return
	}

	summary, err := h.ingestor.IngestTerminals(r.Context(), rows)
	if err != nil {
		h.logger.Error("Terminal ingestion failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	h.dashboard.Invalidate(r.Context())
	h.logger.Info("Terminal report ingested", map[string]interface{}{
		"processed": summary.Processed,
		"saved":     summary.Saved,
		"failed":    summary.Failed,
	})

	respondJSON(w, http.StatusOK, summary)
}

// parseUpload extracts and parses the uploaded CSV, validating its columns
// against the expected report kind. It writes the error response itself on
// failure.
func (h *UploadHandler) parseUpload(w http.ResponseWriter, r *http.Request, kind domain.ReportKind) ([]domain.RawRow, bool) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			respondError(w, http.StatusBadRequest, "'file' field is required")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, false
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" {
		respondError(w, http.StatusBadRequest, "Only CSV report files are supported")
		return nil, false
	}

	headers, rows, err := parser.ParseCSV(file)
	if err != nil {
		if err == errors.ErrEmptyUpload {
			respondError(w, http.StatusBadRequest, "Uploaded file contains no data rows")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "Failed to parse CSV file")
		return nil, false
	}

	if err := ingest.ValidateColumns(headers, kind); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, false
	}

	h.logger.Info("Report upload received", map[string]interface{}{
		"kind":      string(kind),
		"file_name": header.Filename,
		"file_size": header.Size,
		"rows":      len(rows),
	})

	return rows, true
}
