package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	details := "lot insert failed"
	apiErr := apierror.NewAPIError(apierror.ErrPersistence, "Failed to create settlement lot", details)

	assert.Equal(t, apierror.ErrPersistence, apiErr.Code)
	assert.Equal(t, "Failed to create settlement lot", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "PERSISTENCE_ERROR: Failed to create settlement lot", apiErr.Error())
}

func TestIs(t *testing.T) {
	err := apierror.NewAPIError(apierror.ErrConflict, "active lot exists", nil)
	assert.True(t, apierror.Is(err, apierror.ErrConflict))
	assert.False(t, apierror.Is(err, apierror.ErrNotFound))
	assert.False(t, apierror.Is(errors.New("plain"), apierror.ErrConflict))
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "NotFound Error",
			err:      apierror.NewAPIError(apierror.ErrNotFound, "Lot not found", nil),
			expected: http.StatusNotFound,
		},
		{
			name:     "Conflict Error",
			err:      apierror.NewAPIError(apierror.ErrConflict, "Conflict occurred", nil),
			expected: http.StatusConflict,
		},
		{
			name:     "InvalidInput Error",
			err:      apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid input", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "Persistence Error",
			err:      apierror.NewAPIError(apierror.ErrPersistence, "insert failed", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Unknown Error",
			err:      errors.New("unknown error"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusCode := apierror.MapErrorToHTTPStatus(tt.err)
			assert.Equal(t, tt.expected, statusCode)
		})
	}
}
