package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeCartEmpty, http.StatusUnprocessableEntity},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeBackendUnavailable, http.StatusBadGateway},
		{ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"CART_EMPTY", ErrCodeCartEmpty},
		{"CART_QUANTITY_EXCEEDED", ErrCodeCartLimit},
		{"CART_LINE_NOT_FOUND", ErrCodeNotFound},
		{"PREFERENCES_INVALID", ErrCodeValidation},
		{"INVALID_DATE_RANGE", ErrCodeValidationRange},
		// Envelope codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		// Unknown codes pass through unchanged
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainMappingTargetsHaveStatus(t *testing.T) {
	for domainCode, code := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, code)
	}
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeForStatus(http.StatusNotFound))
	assert.Equal(t, ErrCodeConflict, CodeForStatus(http.StatusConflict))
	assert.Equal(t, ErrCodeBusinessRule, CodeForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, ErrCodeBackendError, CodeForStatus(http.StatusServiceUnavailable))
	assert.Equal(t, ErrCodeUnknown, CodeForStatus(http.StatusTeapot))
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse(shared.NewPage([]string{"a", "b"}, 5, 1, 2))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":["a","b"],"meta":{"total":5,"page":1,"limit":2,"total_pages":3}}`, string(raw))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "quantity", Message: "Must be at least 1"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_VALIDATION",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "quantity", "message": "Must be at least 1"}]
		}
	}`, string(raw))
}

func TestNewErrorResponse_OmitsEmptyRequestID(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "gone"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"gone"}}`, string(raw))
}
