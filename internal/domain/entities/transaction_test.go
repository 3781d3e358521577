package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

func TestNewTransaction_Deposit(t *testing.T) {
	tx, err := NewTransaction(
		"wallet-1", "points", "billing", "monthly top-up",
		nil, map[string]any{"order": "42"},
		DepositPayload{Amount: valueobjects.MustAmount("100")},
	)
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID())
	assert.Equal(t, TransactionTypeDeposit, tx.Type())
	assert.Equal(t, TransactionStatusPending, tx.Status())
	assert.Nil(t, tx.HoldStatus())
	assert.Nil(t, tx.BalanceSnapshot())
}

func TestNewTransaction_HoldStartsHeld(t *testing.T) {
	tx, err := NewTransaction(
		"wallet-1", "points", "", "",
		nil, nil,
		HoldPayload{Amount: valueobjects.MustAmount("30")},
	)
	require.NoError(t, err)

	require.NotNil(t, tx.HoldStatus())
	assert.Equal(t, HoldStatusHeld, *tx.HoldStatus())
	assert.True(t, tx.IsOpenHold())
}

func TestNewTransaction_Validation(t *testing.T) {
	tests := []struct {
		name     string
		walletID string
		creditID string
		external *string
		payload  Payload
	}{
		{
			name:     "missing wallet id",
			creditID: "points",
			payload:  DepositPayload{Amount: valueobjects.MustAmount("1")},
		},
		{
			name:     "missing credit type id",
			walletID: "wallet-1",
			payload:  DepositPayload{Amount: valueobjects.MustAmount("1")},
		},
		{
			name:     "nil payload",
			walletID: "wallet-1",
			creditID: "points",
		},
		{
			name:     "zero deposit",
			walletID: "wallet-1",
			creditID: "points",
			payload:  DepositPayload{Amount: valueobjects.ZeroAmount()},
		},
		{
			name:     "empty external id",
			walletID: "wallet-1",
			creditID: "points",
			external: ptr(""),
			payload:  DepositPayload{Amount: valueobjects.MustAmount("1")},
		},
		{
			name:     "release without hold reference",
			walletID: "wallet-1",
			creditID: "points",
			payload:  ReleasePayload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.walletID, tt.creditID, "", "", tt.external, nil, tt.payload)
			assert.Error(t, err)
		})
	}
}

func TestTransaction_MarkCompleted(t *testing.T) {
	tx := mustDeposit(t, "100")
	snap := valueobjects.NewBalanceSnapshot(
		valueobjects.MustAmount("100").Decimal(),
		valueobjects.ZeroAmount().Decimal(),
		valueobjects.ZeroAmount().Decimal(),
		valueobjects.ZeroAmount().Decimal(),
	)

	require.NoError(t, tx.MarkCompleted(snap))
	assert.Equal(t, TransactionStatusCompleted, tx.Status())
	require.NotNil(t, tx.BalanceSnapshot())
	assert.True(t, tx.BalanceSnapshot().Equal(snap))

	// Finalizing twice is refused.
	assert.ErrorIs(t, tx.MarkCompleted(snap), errors.ErrTransactionNotPending)
	assert.ErrorIs(t, tx.MarkFailed(), errors.ErrTransactionTerminal)
}

func TestTransaction_CompletedLeavesReceiverPending(t *testing.T) {
	tx := mustDeposit(t, "100")
	snap := valueobjects.NewBalanceSnapshot(
		valueobjects.MustAmount("100").Decimal(),
		valueobjects.ZeroAmount().Decimal(),
		valueobjects.ZeroAmount().Decimal(),
		valueobjects.ZeroAmount().Decimal(),
	)

	done, err := tx.Completed(snap)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusCompleted, done.Status())
	require.NotNil(t, done.BalanceSnapshot())
	assert.True(t, done.BalanceSnapshot().Equal(snap))

	// The original stays PENDING, so it can still be marked failed.
	assert.Equal(t, TransactionStatusPending, tx.Status())
	require.NoError(t, tx.MarkFailed())

	_, err = done.Completed(snap)
	assert.ErrorIs(t, err, errors.ErrTransactionNotPending)
}

func TestTransaction_MarkFailedLeavesNoSnapshot(t *testing.T) {
	tx := mustDeposit(t, "100")

	require.NoError(t, tx.MarkFailed())
	assert.Equal(t, TransactionStatusFailed, tx.Status())
	assert.Nil(t, tx.BalanceSnapshot())
}

func TestTransaction_HoldLifecycle(t *testing.T) {
	t.Run("used is terminal", func(t *testing.T) {
		tx := mustHold(t, "30")
		require.NoError(t, tx.MarkHoldUsed())
		assert.Equal(t, HoldStatusUsed, *tx.HoldStatus())
		assert.False(t, tx.IsOpenHold())

		assert.ErrorIs(t, tx.MarkHoldReleased(), errors.ErrHoldNotHeld)
	})

	t.Run("released is terminal", func(t *testing.T) {
		tx := mustHold(t, "30")
		require.NoError(t, tx.MarkHoldReleased())
		assert.Equal(t, HoldStatusReleased, *tx.HoldStatus())

		assert.ErrorIs(t, tx.MarkHoldUsed(), errors.ErrHoldNotHeld)
		assert.ErrorIs(t, tx.MarkHoldReleased(), errors.ErrHoldNotHeld)
	})

	t.Run("expired is terminal", func(t *testing.T) {
		tx := mustHold(t, "30")
		require.NoError(t, tx.MarkHoldExpired())
		assert.Equal(t, HoldStatusExpired, *tx.HoldStatus())

		assert.ErrorIs(t, tx.MarkHoldUsed(), errors.ErrHoldNotHeld)
	})

	t.Run("non-hold transaction has no hold state", func(t *testing.T) {
		tx := mustDeposit(t, "10")
		assert.ErrorIs(t, tx.MarkHoldUsed(), errors.ErrHoldNotFound)
	})
}

func TestTransaction_AttachSubscription(t *testing.T) {
	tx := mustDeposit(t, "10")

	require.NoError(t, tx.AttachSubscription("sub-1"))
	require.NotNil(t, tx.SubscriptionID())
	assert.Equal(t, "sub-1", *tx.SubscriptionID())

	require.NoError(t, tx.MarkFailed())
	assert.ErrorIs(t, tx.AttachSubscription("sub-2"), errors.ErrTransactionTerminal)
}

func TestTransaction_HoldAmount(t *testing.T) {
	tx := mustHold(t, "42.5")

	got, err := tx.HoldAmount()
	require.NoError(t, err)
	assert.True(t, got.Equal(valueobjects.MustAmount("42.5")))

	_, err = mustDeposit(t, "10").HoldAmount()
	assert.ErrorIs(t, err, errors.ErrHoldNotFound)
}

func TestPayloadRoundTrip(t *testing.T) {
	holdID := "b4a4e9f2-1111-4222-8333-444455556666"

	tests := []struct {
		name    string
		payload Payload
	}{
		{"deposit", DepositPayload{Amount: valueobjects.MustAmount("100.25")}},
		{"debit direct", DebitPayload{Amount: valueobjects.MustAmount("20")}},
		{"debit with hold", DebitPayload{Amount: valueobjects.MustAmount("20"), HoldTransactionID: &holdID}},
		{"hold", HoldPayload{Amount: valueobjects.MustAmount("30")}},
		{"release", ReleasePayload{HoldTransactionID: holdID}},
		{"adjust", AdjustPayload{Amount: valueobjects.MustAmount("20"), ResetSpent: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalPayload(tt.payload)
			require.NoError(t, err)

			got, err := UnmarshalPayload(data)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestUnmarshalPayload_UnknownType(t *testing.T) {
	_, err := UnmarshalPayload([]byte(`{"type":"transfer","amount":5}`))
	assert.Error(t, err)
}

func mustDeposit(t *testing.T, amount string) *Transaction {
	t.Helper()
	tx, err := NewTransaction("wallet-1", "points", "", "", nil, nil,
		DepositPayload{Amount: valueobjects.MustAmount(amount)})
	require.NoError(t, err)
	return tx
}

func mustHold(t *testing.T, amount string) *Transaction {
	t.Helper()
	tx, err := NewTransaction("wallet-1", "points", "", "", nil, nil,
		HoldPayload{Amount: valueobjects.MustAmount(amount)})
	require.NoError(t, err)
	return tx
}

func ptr[T any](v T) *T { return &v }
