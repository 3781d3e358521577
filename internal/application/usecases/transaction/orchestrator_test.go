package transaction

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
)

func TestOrchestrator_DuplicateExternalID(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()
	ctx := context.Background()

	deposit := NewDepositUseCase(f.orch)
	externalID := "order-2024-0042"

	first, err := deposit.Execute(ctx, dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		ExternalID:   &externalID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", first.Status)

	// Same external id on the same wallet is refused before any balance
	// work; the first transaction stands untouched.
	_, err = deposit.Execute(ctx, dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		ExternalID:   &externalID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errors.ErrDuplicateTransaction)

	completed := f.transactions.byStatus(entities.TransactionStatusCompleted)
	require.Len(t, completed, 1)

	balance, err := f.balances.Find(ctx, walletID, creditTypeID)
	require.NoError(t, err)
	assert.Equal(t, "100", balance.Available().String())
}

func TestOrchestrator_SameExternalIDOnDifferentWallets(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()

	other, err := entities.NewWallet("other-wallet", nil)
	require.NoError(t, err)
	f.wallets.wallets[other.ID()] = other

	ctx := context.Background()
	deposit := NewDepositUseCase(f.orch)
	externalID := "order-2024-0042"

	_, err = deposit.Execute(ctx, dtos.DepositCommand{
		WalletID: walletID, CreditTypeID: creditTypeID, ExternalID: &externalID, Payload: dtos.DepositPayloadDTO{Amount: "10"},
	})
	require.NoError(t, err)

	// Idempotency is scoped per wallet.
	_, err = deposit.Execute(ctx, dtos.DepositCommand{
		WalletID: other.ID(), CreditTypeID: creditTypeID, ExternalID: &externalID, Payload: dtos.DepositPayloadDTO{Amount: "10"},
	})
	assert.NoError(t, err)
}

func TestOrchestrator_LockBusyFailsTransaction(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()
	f.locker.busy = true

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errors.ErrLockBusy)

	// The pending row was already registered, so it ends up failed.
	failed := f.transactions.byStatus(entities.TransactionStatusFailed)
	require.Len(t, failed, 1)
	assert.Nil(t, failed[0].BalanceSnapshot())
}

func TestOrchestrator_UnknownWalletCreatesNoRow(t *testing.T) {
	f := newFixture()
	_, creditTypeID := f.seed()

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     "11111111-2222-4333-8444-555566667777",
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errors.ErrWalletNotFound)
	assert.Empty(t, f.transactions.order)
}

func TestOrchestrator_InactiveWalletRefused(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()
	require.NoError(t, f.wallets.wallets[walletID].Deactivate())

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errors.ErrWalletInactive)
}

func TestOrchestrator_UnknownCreditTypeRefused(t *testing.T) {
	f := newFixture()
	walletID, _ := f.seed()

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: "11111111-2222-4333-8444-555566667777",
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errors.ErrCreditTypeNotFound)
}

func TestOrchestrator_LockKeyCoversPair(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "1"},
	})
	require.NoError(t, err)

	require.Len(t, f.locker.acquired, 1)
	assert.Equal(t, walletID+"_"+creditTypeID, f.locker.acquired[0])
}

func TestOrchestrator_CompletionPublishesEvent(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	require.NoError(t, err)

	completedEvents := f.publisher.byType(events.EventTypeTransactionCompleted)
	require.Len(t, completedEvents, 1)

	evt := completedEvents[0].(*events.TransactionCompleted)
	assert.Equal(t, walletID, evt.WalletID)
	assert.Equal(t, "deposit", evt.TransactionType)
	assert.Equal(t, "100", evt.BalanceSnapshot.Available.String())
}

func TestOrchestrator_PublishFailureMarksRowFailed(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()

	errEventBusDown := stderrors.New("event bus unavailable")
	f.orch.publisher = &failingPublisher{batchErr: errEventBusDown}

	_, err := NewDepositUseCase(f.orch).Execute(context.Background(), dtos.DepositCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DepositPayloadDTO{Amount: "100"},
	})
	assert.ErrorIs(t, err, errEventBusDown)

	// The mutation committed and then the batch write broke, so the row
	// must still be finalized as FAILED, not left pending or completed.
	assert.Empty(t, f.transactions.byStatus(entities.TransactionStatusCompleted))
	assert.Empty(t, f.transactions.byStatus(entities.TransactionStatusPending))
	failed := f.transactions.byStatus(entities.TransactionStatusFailed)
	require.Len(t, failed, 1)
	assert.Nil(t, failed[0].BalanceSnapshot())
}

func TestOrchestrator_FailurePublishesEvent(t *testing.T) {
	f := newFixture()
	walletID, creditTypeID := f.seed()

	// Debit with no balance row at all.
	_, err := NewDebitUseCase(f.orch).Execute(context.Background(), dtos.DebitCommand{
		WalletID:     walletID,
		CreditTypeID: creditTypeID,
		Payload:      dtos.DebitPayloadDTO{Amount: "5"},
	})
	assert.ErrorIs(t, err, errors.ErrBalanceNotFound)

	failedEvents := f.publisher.byType(events.EventTypeTransactionFailed)
	require.Len(t, failedEvents, 1)
	assert.Equal(t, "debit", failedEvents[0].(*events.TransactionFailed).TransactionType)
}
