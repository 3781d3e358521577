package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmount(t *testing.T) {
	a, err := NewAmount("100.50")
	require.NoError(t, err)
	assert.Equal(t, "100.5", a.String())

	_, err = NewAmount("-1")
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = NewAmount("ten")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	zero, err := NewAmount("0")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestNewPositiveAmount(t *testing.T) {
	a, err := NewPositiveAmount("0.0001")
	require.NoError(t, err)
	assert.True(t, a.IsPositive())

	_, err = NewPositiveAmount("0")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = NewPositiveAmount("-5")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNewAmountFromDecimal(t *testing.T) {
	a, err := NewAmountFromDecimal(decimal.RequireFromString("3.14"))
	require.NoError(t, err)
	assert.Equal(t, "3.14", a.String())

	_, err = NewAmountFromDecimal(decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestAmount_Arithmetic(t *testing.T) {
	a := MustAmount("10")
	b := MustAmount("4")

	assert.Equal(t, "14", a.Add(b).String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "6", diff.String())

	// Subtraction never produces a negative Amount.
	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrNegativeAmount)

	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.True(t, a.GreaterThanOrEqual(b))
	assert.True(t, a.Equal(MustAmount("10.0")))
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(MustAmount("42.5"))
	require.NoError(t, err)
	assert.Equal(t, "42.5", string(data))

	var fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte("42.5"), &fromNumber))
	assert.True(t, fromNumber.Equal(MustAmount("42.5")))

	var fromString Amount
	require.NoError(t, json.Unmarshal([]byte(`"17.25"`), &fromString))
	assert.True(t, fromString.Equal(MustAmount("17.25")))

	var bad Amount
	assert.ErrorIs(t, json.Unmarshal([]byte(`"-3"`), &bad), ErrNegativeAmount)
}

func TestBalanceSnapshot_Equal(t *testing.T) {
	s := NewBalanceSnapshot(
		decimal.RequireFromString("70"),
		decimal.RequireFromString("0"),
		decimal.RequireFromString("30"),
		decimal.RequireFromString("30"),
	)

	same := NewBalanceSnapshot(
		decimal.RequireFromString("70.00"),
		decimal.Zero,
		decimal.RequireFromString("30"),
		decimal.RequireFromString("30"),
	)
	assert.True(t, s.Equal(same))

	other := NewBalanceSnapshot(
		decimal.RequireFromString("69"),
		decimal.Zero,
		decimal.RequireFromString("30"),
		decimal.RequireFromString("30"),
	)
	assert.False(t, s.Equal(other))
}

func TestBalanceSnapshot_JSONFieldNames(t *testing.T) {
	s := NewBalanceSnapshot(
		decimal.RequireFromString("1"),
		decimal.RequireFromString("2"),
		decimal.RequireFromString("3"),
		decimal.RequireFromString("4"),
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"available", "held", "spent", "overall_spent"} {
		assert.Contains(t, m, key)
	}
}
