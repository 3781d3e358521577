// Package handlers contains the HTTP handlers of the REST API. A
// handler binds the request into a command or query DTO, calls the use
// case and writes the envelope.
package handlers

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/credgem/credgem/internal/adapters/http/common"
)

// validate is the shared validator for command/query DTOs. The DTOs
// carry `validate:` tags, so validation runs after binding rather than
// inside Gin's binding step.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names from json tags, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("amount", validateAmount)

	return v
}

// validateAmount accepts decimal strings like "100", "0.5", "10.25".
// Sign rules (positive vs non-negative) belong to the use cases; the
// tag only guards the format.
func validateAmount(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}

// ValidateStruct validates a DTO and writes a 422 on failure. Returns
// true when the DTO is valid.
func ValidateStruct(c *gin.Context, v any) bool {
	if err := validate.Struct(v); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// HandleValidationErrors converts validator errors into the envelope.
func HandleValidationErrors(c *gin.Context, err error) {
	var fieldErrors []common.FieldError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			fieldErrors = append(fieldErrors, common.FieldError{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
				Code:    fieldErr.Tag(),
			})
		}
	}

	if len(fieldErrors) == 0 {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}

	common.ValidationErrorResponse(c, fieldErrors)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Invalid UUID format"
	case "min":
		return "Value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum: " + fe.Param() + ")"
	case "oneof":
		return "Value must be one of: " + fe.Param()
	case "amount":
		return "Invalid amount format (use a decimal string like '100.50')"
	default:
		return "Invalid value"
	}
}

// ===== Binding helpers =====

// BindJSON binds the JSON body into req and validates it. Returns true
// on success; on failure the error response is already written.
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return false
	}
	return ValidateStruct(c, req)
}

// BindQuery binds query parameters into req and validates it.
func BindQuery[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		common.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return ValidateStruct(c, req)
}

// ===== Pagination defaults =====

const (
	defaultPage     = 1
	defaultPageSize = 50
)

// normalizePage fills in defaults for zero-valued pagination fields
// before validation, so an omitted page is not a 422.
func normalizePage(page, pageSize *int) {
	if *page == 0 {
		*page = defaultPage
	}
	if *pageSize == 0 {
		*pageSize = defaultPageSize
	}
}
