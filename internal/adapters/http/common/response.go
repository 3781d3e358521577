// Package common holds the response envelope shared by all handlers.
// Kept separate from the handlers package to avoid an import cycle with
// the router.
package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError describes a failed request.
type APIError struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Fields     []FieldError `json:"fields,omitempty"`
	RetryAfter int          `json:"retry_after,omitempty"`
}

// FieldError is a per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error codes.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInsufficient    = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidState    = "INVALID_STATE"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

const RequestIDKey = "request_id"

// GetRequestID returns the request id set by the middleware.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}

// Success sends a successful envelope.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// Error sends a failed envelope.
func Error(c *gin.Context, statusCode int, apiError *APIError) {
	c.JSON(statusCode, APIResponse{
		Success:   false,
		Error:     apiError,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// ValidationErrorResponse sends a 422 with per-field errors.
func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusUnprocessableEntity, &APIError{
		Code:    ErrCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	})
}

// BadRequestResponse sends a 400.
func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
	})
}

// NotFoundResponse sends a 404.
func NotFoundResponse(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
	})
}

// ConflictResponse sends a 409.
func ConflictResponse(c *gin.Context, message string) {
	Error(c, http.StatusConflict, &APIError{
		Code:    ErrCodeConflict,
		Message: message,
	})
}

// InternalErrorResponse sends a 500 without leaking the cause.
func InternalErrorResponse(c *gin.Context) {
	Error(c, http.StatusInternalServerError, &APIError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred",
	})
}

// HandleDomainError maps the domain error taxonomy onto status codes:
// missing targets are 404, state violations 400, insufficient funds
// 402, duplicate external ids and lock contention 409, field problems
// 422, everything else 500.
func HandleDomainError(c *gin.Context, err error) {
	switch {
	case domainErrors.IsValidation(err):
		ValidationErrorResponse(c, validationFields(err))

	case domainErrors.IsNotFound(err):
		NotFoundResponse(c, err.Error())

	case domainErrors.IsInvalidState(err):
		BadRequestResponse(c, err.Error())

	case domainErrors.IsInsufficient(err):
		Error(c, http.StatusPaymentRequired, &APIError{
			Code:    ErrCodeInsufficient,
			Message: err.Error(),
		})

	case domainErrors.IsConflict(err):
		ConflictResponse(c, err.Error())

	default:
		InternalErrorResponse(c)
	}
}

func validationFields(err error) []FieldError {
	var many domainErrors.ValidationErrors
	if errors.As(err, &many) {
		fields := make([]FieldError, 0, len(many))
		for _, v := range many {
			fields = append(fields, FieldError{Field: v.Field, Message: v.Message, Code: "invalid"})
		}
		return fields
	}

	var single domainErrors.ValidationError
	if errors.As(err, &single) {
		return []FieldError{{Field: single.Field, Message: single.Message, Code: "invalid"}}
	}

	return nil
}
