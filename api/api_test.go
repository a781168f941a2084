package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
)

func testRouter() http.Handler {
	return NewAPI(nil).Router()
}

func TestHealthEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "server running")
}

func TestRunSettlementRejectsMissingDate(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/settlements", strings.NewReader(`{}`))
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "settlement_date")
}

func TestRunSettlementRejectsBadDateFormat(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/settlements", strings.NewReader(`{"settlement_date": "03/06/2024"}`))
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLotsRejectsBadDate(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/lots/not-a-date", nil)
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonthlyReportRejectsBadPeriod(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/reports/monthly/june-2024", nil)
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMapRunError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, mapRunError(&finpay.DuplicateRunError{}))
	assert.Equal(t, http.StatusUnprocessableEntity, mapRunError(&finpay.ConfigIntegrityError{}))
	assert.Equal(t, http.StatusConflict, mapRunError(apierror.NewAPIError(apierror.ErrConflict, "busy", nil)))
	assert.Equal(t, http.StatusInternalServerError, mapRunError(assert.AnError))
}
