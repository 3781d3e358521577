package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/adapters/http/common"
	"github.com/credgem/credgem/internal/application/dtos"
)

type CreateCreditTypeUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateCreditTypeCommand) (*dtos.CreditTypeDTO, error)
}

type GetCreditTypeUseCase interface {
	Execute(ctx context.Context, id string) (*dtos.CreditTypeDTO, error)
}

type UpdateCreditTypeUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateCreditTypeCommand) (*dtos.CreditTypeDTO, error)
}

type DeleteCreditTypeUseCase interface {
	Execute(ctx context.Context, id string) error
}

type ListCreditTypesUseCase interface {
	Execute(ctx context.Context, query dtos.ListCreditTypesQuery) (*dtos.CreditTypeListDTO, error)
}

// CreditTypeHandler serves the credit type admin endpoints.
type CreditTypeHandler struct {
	createCreditType CreateCreditTypeUseCase
	getCreditType    GetCreditTypeUseCase
	updateCreditType UpdateCreditTypeUseCase
	deleteCreditType DeleteCreditTypeUseCase
	listCreditTypes  ListCreditTypesUseCase
}

// NewCreditTypeHandler creates the handler.
func NewCreditTypeHandler(
	createCreditType CreateCreditTypeUseCase,
	getCreditType GetCreditTypeUseCase,
	updateCreditType UpdateCreditTypeUseCase,
	deleteCreditType DeleteCreditTypeUseCase,
	listCreditTypes ListCreditTypesUseCase,
) *CreditTypeHandler {
	return &CreditTypeHandler{
		createCreditType: createCreditType,
		getCreditType:    getCreditType,
		updateCreditType: updateCreditType,
		deleteCreditType: deleteCreditType,
		listCreditTypes:  listCreditTypes,
	}
}

func creditTypeIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		common.ValidationErrorResponse(c, []common.FieldError{
			{Field: "id", Message: "Invalid UUID format", Code: "uuid"},
		})
		return "", false
	}
	return id, true
}

// CreateCreditType handles POST /credit-types.
func (h *CreditTypeHandler) CreateCreditType(c *gin.Context) {
	var cmd dtos.CreateCreditTypeCommand
	if !BindJSON(c, &cmd) {
		return
	}

	result, err := h.createCreditType.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// GetCreditType handles GET /credit-types/:id.
func (h *CreditTypeHandler) GetCreditType(c *gin.Context) {
	id, ok := creditTypeIDParam(c)
	if !ok {
		return
	}

	result, err := h.getCreditType.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// UpdateCreditType handles PUT /credit-types/:id.
func (h *CreditTypeHandler) UpdateCreditType(c *gin.Context) {
	id, ok := creditTypeIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.UpdateCreditTypeCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.CreditTypeID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.updateCreditType.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DeleteCreditType handles DELETE /credit-types/:id. Types still
// referenced by transactions are refused.
func (h *CreditTypeHandler) DeleteCreditType(c *gin.Context) {
	id, ok := creditTypeIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteCreditType.Execute(c.Request.Context(), id); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCreditTypes handles GET /credit-types.
func (h *CreditTypeHandler) ListCreditTypes(c *gin.Context) {
	var query dtos.ListCreditTypesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
		return
	}
	normalizePage(&query.Page, &query.PageSize)
	if !ValidateStruct(c, &query) {
		return
	}

	result, err := h.listCreditTypes.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}
