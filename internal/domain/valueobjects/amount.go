// Package valueobjects contains the immutable value types shared by the
// ledger entities: credit amounts and balance snapshots.
package valueobjects

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative credit quantity with exact decimal semantics.
// All balance arithmetic goes through decimal.Decimal; binary floating
// point is never used for credits.
type Amount struct {
	value decimal.Decimal
}

var (
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInvalidAmount     = errors.New("invalid amount format")
)

// NewAmount parses a decimal string (e.g. "100.50") into an Amount.
// Negative values are rejected.
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: d}, nil
}

// NewPositiveAmount parses a decimal string and additionally requires it
// to be strictly greater than zero. Used for deposit/debit/hold payloads.
func NewPositiveAmount(s string) (Amount, error) {
	a, err := NewAmount(s)
	if err != nil {
		return Amount{}, err
	}
	if !a.IsPositive() {
		return Amount{}, ErrNonPositiveAmount
	}
	return a, nil
}

// NewAmountFromDecimal wraps an existing decimal. Negative values are
// rejected; use this when reconstructing from storage.
func NewAmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: d}, nil
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount {
	return Amount{value: decimal.Zero}
}

// MustAmount is NewAmount that panics on error. Test helper.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// String renders the amount without trailing zero padding.
func (a Amount) String() string {
	return a.value.String()
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

// Add returns the sum of two amounts.
func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Sub returns a minus other. The result may only be constructed when it is
// non-negative; callers that can underflow must check Cmp first.
func (a Amount) Sub(other Amount) (Amount, error) {
	d := a.value.Sub(other.value)
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: d}, nil
}

// Cmp compares two amounts: -1 if a < other, 0 if equal, +1 if a > other.
func (a Amount) Cmp(other Amount) int {
	return a.value.Cmp(other.value)
}

// GreaterThanOrEqual reports whether a >= other.
func (a Amount) GreaterThanOrEqual(other Amount) bool {
	return a.value.GreaterThanOrEqual(other.value)
}

// Equal reports exact numeric equality.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

// MarshalJSON encodes the amount as a JSON number with full precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.value.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	a.value = d
	return nil
}
