package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := testContext()
	c.Set(RequestIDKey, "req-1")

	Success(c, http.StatusCreated, map[string]string{"id": "w-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Nil(t, resp.Error)
}

func TestValidationErrorResponse(t *testing.T) {
	c, w := testContext()

	ValidationErrorResponse(c, []FieldError{
		{Field: "amount", Message: "must be a decimal", Code: "amount"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "amount", resp.Error.Fields[0].Field)
}

func TestHandleDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"wallet not found", domainErrors.ErrWalletNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"credit type not found", domainErrors.ErrCreditTypeNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"hold not found", domainErrors.ErrHoldNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"insufficient balance", domainErrors.ErrInsufficientBalance, http.StatusPaymentRequired, ErrCodeInsufficient},
		{"debit exceeds hold", domainErrors.ErrHoldAmountExceeds, http.StatusPaymentRequired, ErrCodeInsufficient},
		{"duplicate external id", domainErrors.ErrDuplicateTransaction, http.StatusConflict, ErrCodeConflict},
		{"lock busy", domainErrors.ErrLockBusy, http.StatusConflict, ErrCodeConflict},
		{"hold not held", domainErrors.ErrHoldNotHeld, http.StatusBadRequest, ErrCodeBadRequest},
		{"wallet inactive", domainErrors.ErrWalletInactive, http.StatusBadRequest, ErrCodeBadRequest},
		{"credit type in use", domainErrors.ErrCreditTypeInUse, http.StatusBadRequest, ErrCodeBadRequest},
		{"validation error", domainErrors.ValidationError{Field: "amount", Message: "bad"}, http.StatusUnprocessableEntity, ErrCodeValidation},
		{"unknown error", fmt.Errorf("connection reset"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()

			HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleDomainError_WrappedError(t *testing.T) {
	c, w := testContext()

	HandleDomainError(c, fmt.Errorf("loading hold: %w", domainErrors.ErrHoldNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDomainError_ValidationFields(t *testing.T) {
	c, w := testContext()

	errs := domainErrors.ValidationErrors{}
	errs.Add("amount", "must be positive")
	errs.Add("credit_type_id", "required")

	HandleDomainError(c, errs)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Len(t, resp.Error.Fields, 2)
}

func TestInternalErrorResponse_HidesCause(t *testing.T) {
	c, w := testContext()

	HandleDomainError(c, fmt.Errorf("pq: password authentication failed"))

	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "password")
}

func TestGetRequestID_Unset(t *testing.T) {
	c, _ := testContext()
	assert.Empty(t, GetRequestID(c))
}
