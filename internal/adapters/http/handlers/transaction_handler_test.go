package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgem/credgem/internal/application/dtos"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

type stubDeposit struct {
	gotCmd dtos.DepositCommand
	result *dtos.TransactionDTO
	err    error
}

func (s *stubDeposit) Execute(_ context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error) {
	s.gotCmd = cmd
	return s.result, s.err
}

type stubDebit struct {
	gotCmd dtos.DebitCommand
	result *dtos.TransactionDTO
	err    error
}

func (s *stubDebit) Execute(_ context.Context, cmd dtos.DebitCommand) (*dtos.TransactionDTO, error) {
	s.gotCmd = cmd
	return s.result, s.err
}

type stubHold struct {
	gotCmd dtos.HoldCommand
	result *dtos.TransactionDTO
	err    error
}

func (s *stubHold) Execute(_ context.Context, cmd dtos.HoldCommand) (*dtos.TransactionDTO, error) {
	s.gotCmd = cmd
	return s.result, s.err
}

type stubRelease struct {
	gotCmd dtos.ReleaseCommand
	result *dtos.TransactionDTO
	err    error
}

func (s *stubRelease) Execute(_ context.Context, cmd dtos.ReleaseCommand) (*dtos.TransactionDTO, error) {
	s.gotCmd = cmd
	return s.result, s.err
}

type stubAdjust struct {
	gotCmd dtos.AdjustCommand
	result *dtos.TransactionDTO
	err    error
}

func (s *stubAdjust) Execute(_ context.Context, cmd dtos.AdjustCommand) (*dtos.TransactionDTO, error) {
	s.gotCmd = cmd
	return s.result, s.err
}

type stubGetTransaction struct {
	gotID  string
	result *dtos.TransactionDTO
	err    error
}

func (s *stubGetTransaction) Execute(_ context.Context, id string) (*dtos.TransactionDTO, error) {
	s.gotID = id
	return s.result, s.err
}

type stubListTransactions struct {
	gotQuery dtos.ListTransactionsQuery
	result   *dtos.TransactionListDTO
	err      error
}

func (s *stubListTransactions) Execute(_ context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error) {
	s.gotQuery = query
	return s.result, s.err
}

type txStubs struct {
	deposit *stubDeposit
	debit   *stubDebit
	hold    *stubHold
	release *stubRelease
	adjust  *stubAdjust
	get     *stubGetTransaction
	list    *stubListTransactions
}

func newTxStubs() *txStubs {
	dto := &dtos.TransactionDTO{ID: uuid.NewString(), Status: "completed"}
	return &txStubs{
		deposit: &stubDeposit{result: dto},
		debit:   &stubDebit{result: dto},
		hold:    &stubHold{result: dto},
		release: &stubRelease{result: dto},
		adjust:  &stubAdjust{result: dto},
		get:     &stubGetTransaction{result: dto},
		list:    &stubListTransactions{result: &dtos.TransactionListDTO{}},
	}
}

func txRouter(s *txStubs) *gin.Engine {
	h := NewTransactionHandler(s.deposit, s.debit, s.hold, s.release, s.adjust, s.get, s.list)
	r := gin.New()
	r.POST("/wallets/:id/deposit", h.Deposit)
	r.POST("/wallets/:id/debit", h.Debit)
	r.POST("/wallets/:id/hold", h.Hold)
	r.POST("/wallets/:id/release", h.Release)
	r.POST("/wallets/:id/adjust", h.Adjust)
	r.GET("/wallets/:id/transactions", h.ListWalletTransactions)
	r.GET("/transactions", h.ListTransactions)
	r.GET("/transactions/:id", h.GetTransaction)
	return r
}

func TestDeposit(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)
	walletID := uuid.NewString()
	creditTypeID := uuid.NewString()

	w := doJSON(t, r, http.MethodPost, "/wallets/"+walletID+"/deposit",
		`{"credit_type_id":"`+creditTypeID+`","external_id":"order-1","payload":{"type":"deposit","amount":"100.50"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, walletID, s.deposit.gotCmd.WalletID)
	assert.Equal(t, creditTypeID, s.deposit.gotCmd.CreditTypeID)
	assert.Equal(t, "100.50", s.deposit.gotCmd.Payload.Amount)
	require.NotNil(t, s.deposit.gotCmd.ExternalID)
	assert.Equal(t, "order-1", *s.deposit.gotCmd.ExternalID)
}

func TestDeposit_PayloadTypeMustMatchRoute(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/deposit",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"debit","amount":"10"}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeposit_BadAmountFormat(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/deposit",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"deposit","amount":"ten"}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.NotEmpty(t, resp.Error.Fields)
	assert.Equal(t, "amount", resp.Error.Fields[0].Field)
}

func TestDeposit_MissingCreditType(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/deposit",
		`{"payload":{"type":"deposit","amount":"10"}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeposit_DuplicateExternalID(t *testing.T) {
	s := newTxStubs()
	s.deposit.err = domainErrors.ErrDuplicateTransaction
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/deposit",
		`{"credit_type_id":"`+uuid.NewString()+`","external_id":"order-1","payload":{"type":"deposit","amount":"10"}}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	s := newTxStubs()
	s.debit.err = domainErrors.ErrInsufficientBalance
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/debit",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"debit","amount":"9999"}}`)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestDebit_WithHoldReference(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)
	holdID := uuid.NewString()

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/debit",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"debit","amount":"5","hold_transaction_id":"`+holdID+`"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, s.debit.gotCmd.Payload.HoldTransactionID)
	assert.Equal(t, holdID, *s.debit.gotCmd.Payload.HoldTransactionID)
}

func TestHold_LockBusy(t *testing.T) {
	s := newTxStubs()
	s.hold.err = domainErrors.ErrLockBusy
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/hold",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"hold","amount":"25"}}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRelease_RequiresHoldID(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/release",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"release"}}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRelease_HoldNotHeld(t *testing.T) {
	s := newTxStubs()
	s.release.err = domainErrors.ErrHoldNotHeld
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/release",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"release","hold_transaction_id":"`+uuid.NewString()+`"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjust_ZeroAmountAccepted(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodPost, "/wallets/"+uuid.NewString()+"/adjust",
		`{"credit_type_id":"`+uuid.NewString()+`","payload":{"type":"adjust","amount":"0","reset_spent":true}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", s.adjust.gotCmd.Payload.Amount)
	assert.True(t, s.adjust.gotCmd.Payload.ResetSpent)
}

func TestGetTransaction(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)
	id := uuid.NewString()

	w := doJSON(t, r, http.MethodGet, "/transactions/"+id, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, s.get.gotID)
}

func TestGetTransaction_InvalidUUID(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodGet, "/transactions/42", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, s.get.gotID)
}

func TestListTransactions_Filters(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)
	walletID := uuid.NewString()

	w := doJSON(t, r, http.MethodGet,
		"/transactions?wallet_id="+walletID+"&type=hold&status=completed", "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, s.list.gotQuery.WalletID)
	assert.Equal(t, walletID, *s.list.gotQuery.WalletID)
	require.NotNil(t, s.list.gotQuery.Type)
	assert.Equal(t, "hold", *s.list.gotQuery.Type)
}

func TestListTransactions_BadType(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)

	w := doJSON(t, r, http.MethodGet, "/transactions?type=transfer", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListWalletTransactions_ScopesToWallet(t *testing.T) {
	s := newTxStubs()
	r := txRouter(s)
	walletID := uuid.NewString()

	w := doJSON(t, r, http.MethodGet, "/wallets/"+walletID+"/transactions?status=pending", "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, s.list.gotQuery.WalletID)
	assert.Equal(t, walletID, *s.list.gotQuery.WalletID)
	require.NotNil(t, s.list.gotQuery.Status)
	assert.Equal(t, "pending", *s.list.gotQuery.Status)
}
