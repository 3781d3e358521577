package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/adapters/http/common"
	"github.com/credgem/credgem/internal/adapters/http/middleware"
	"github.com/credgem/credgem/internal/application/dtos"
)

type DepositUseCase interface {
	Execute(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error)
}

type DebitUseCase interface {
	Execute(ctx context.Context, cmd dtos.DebitCommand) (*dtos.TransactionDTO, error)
}

type HoldUseCase interface {
	Execute(ctx context.Context, cmd dtos.HoldCommand) (*dtos.TransactionDTO, error)
}

type ReleaseUseCase interface {
	Execute(ctx context.Context, cmd dtos.ReleaseCommand) (*dtos.TransactionDTO, error)
}

type AdjustUseCase interface {
	Execute(ctx context.Context, cmd dtos.AdjustCommand) (*dtos.TransactionDTO, error)
}

type GetTransactionUseCase interface {
	Execute(ctx context.Context, id string) (*dtos.TransactionDTO, error)
}

type ListTransactionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error)
}

// TransactionHandler serves the ledger operations. The mutating
// endpoints hang off the wallet resource (POST /wallets/:id/deposit
// and friends); reads live under /transactions.
type TransactionHandler struct {
	deposit          DepositUseCase
	debit            DebitUseCase
	hold             HoldUseCase
	release          ReleaseUseCase
	adjust           AdjustUseCase
	getTransaction   GetTransactionUseCase
	listTransactions ListTransactionsUseCase
}

// NewTransactionHandler creates the handler.
func NewTransactionHandler(
	deposit DepositUseCase,
	debit DebitUseCase,
	hold HoldUseCase,
	release ReleaseUseCase,
	adjust AdjustUseCase,
	getTransaction GetTransactionUseCase,
	listTransactions ListTransactionsUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		deposit:          deposit,
		debit:            debit,
		hold:             hold,
		release:          release,
		adjust:           adjust,
		getTransaction:   getTransaction,
		listTransactions: listTransactions,
	}
}

// Deposit handles POST /wallets/:id/deposit.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.DepositCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.deposit.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordTransaction(result.Type, result.Status)
	common.Success(c, http.StatusOK, result)
}

// Debit handles POST /wallets/:id/debit. With hold_transaction_id the
// debit settles against that hold; without it the debit is direct.
func (h *TransactionHandler) Debit(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.DebitCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.debit.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordTransaction(result.Type, result.Status)
	common.Success(c, http.StatusOK, result)
}

// Hold handles POST /wallets/:id/hold.
func (h *TransactionHandler) Hold(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.HoldCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.hold.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordTransaction(result.Type, result.Status)
	common.Success(c, http.StatusOK, result)
}

// Release handles POST /wallets/:id/release.
func (h *TransactionHandler) Release(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.ReleaseCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.release.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordTransaction(result.Type, result.Status)
	common.Success(c, http.StatusOK, result)
}

// Adjust handles POST /wallets/:id/adjust. Sets available to the given
// absolute amount.
func (h *TransactionHandler) Adjust(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var cmd dtos.AdjustCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}
	cmd.WalletID = id
	if !ValidateStruct(c, &cmd) {
		return
	}

	result, err := h.adjust.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordTransaction(result.Type, result.Status)
	common.Success(c, http.StatusOK, result)
}

// GetTransaction handles GET /transactions/:id.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		common.ValidationErrorResponse(c, []common.FieldError{
			{Field: "id", Message: "Invalid UUID format", Code: "uuid"},
		})
		return
	}

	result, err := h.getTransaction.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListTransactions handles GET /transactions.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var query dtos.ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
		return
	}
	normalizePage(&query.Page, &query.PageSize)
	if !ValidateStruct(c, &query) {
		return
	}

	result, err := h.listTransactions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListWalletTransactions handles GET /wallets/:id/transactions: the
// transaction log scoped to one wallet.
func (h *TransactionHandler) ListWalletTransactions(c *gin.Context) {
	id, ok := walletIDParam(c)
	if !ok {
		return
	}

	var query dtos.ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
		return
	}
	query.WalletID = &id
	normalizePage(&query.Page, &query.PageSize)
	if !ValidateStruct(c, &query) {
		return
	}

	result, err := h.listTransactions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}
