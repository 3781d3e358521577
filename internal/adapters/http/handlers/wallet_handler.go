package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/adapters/http/common"
	"github.com/credgem/credgem/internal/application/dtos"
)

// Use case interfaces. Handlers depend on these rather than concrete
// use case types so tests can stub them.

type CreateWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error)
}

type GetWalletUseCase interface {
	Execute(ctx context.Context, id string) (*dtos.WalletDTO, error)
}

type UpdateWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateWalletCommand) (*dtos.WalletDTO, error)
}

type DeleteWalletUseCase interface {
	Execute(ctx context.Context, id string) error
}

type ListWalletsUseCase interface {
	Execute(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error)
}

// WalletHandler serves the wallet admin endpoints.
type WalletHandler struct {
	createWallet CreateWalletUseCase
	getWallet    GetWalletUseCase
	updateWallet UpdateWalletUseCase
	deleteWallet DeleteWalletUseCase
	listWallets  ListWalletsUseCase
}

// NewWalletHandler creates the handler.
func NewWalletHandler(
	createWallet CreateWalletUseCase,
	getWallet GetWalletUseCase,
	updateWallet UpdateWalletUseCase,
	deleteWallet DeleteWalletUseCase,
	listWallets ListWalletsUseCase,
) *WalletHandler {
	return &WalletHandler{
		createWallet: createWallet,
		getWallet:    getWallet,
		updateWallet: updateWallet,
		deleteWallet: deleteWallet,
		listWallets:  listWallets,
	}
}

// walletIDParam extracts and validates the :id path parameter. Returns
// false after writing the 422 when the id is not a UUID.
func walletIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		common.ValidationErrorResponse(c, []common.FieldError{
			{Field: "id", Message: "Invalid UUID format", Code: "uuid"},
		})
		return "", false
	}
	return id, true
}

// CreateWallet handles POST /wallets.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var cmd dtos.CreateWalletCommand
	if !BindJSON(c, &cmd) {
		return
	}

	result, err := h.createWallet.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// GetWallet handles GET /wallets/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	result, err := h.getWallet.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// UpdateWallet handles PUT /wallets/:id. Omitted fields keep their
// current value; a present context replaces the stored one wholesale.
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.UpdateWalletCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.updateWallet.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DeleteWallet handles DELETE /wallets/:id. Soft delete: the wallet is
// deactivated, never erased.
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteWallet.Execute(c.Request.Context(), id); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListWallets handles GET /wallets.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	var query dtos.ListWalletsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
		return
	}
	normalizePage(&query.Page, &query.PageSize)
	if !ValidateStruct(c, &query) {
		return
	}

	result, err := h.listWallets.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}
