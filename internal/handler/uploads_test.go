package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
)

func TestUploadMerchantsRequiresCurrency(t *testing.T) {
	h := NewUploadHandler(nil, nil, logger.NewNop(), 0)

	req := httptest.NewRequest(http.MethodPost, "/uploads/merchants", nil)
	rec := httptest.NewRecorder()
	h.UploadMerchants(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "currency")
}

func TestUploadMerchantsRejectsUnknownCurrency(t *testing.T) {
	h := NewUploadHandler(nil, nil, logger.NewNop(), 0)

	req := httptest.NewRequest(http.MethodPost, "/uploads/merchants?currency=EUR", nil)
	rec := httptest.NewRecorder()
	h.UploadMerchants(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "USD or ZWG")
}
