package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// Balance is the per-(wallet, credit type) counter row. The four
// counters obey: available >= 0, held >= 0, spent >= 0, and
// overall_spent only ever grows. All mutations happen under the
// per-pair write lock, so entity methods are plain read-modify-write.
type Balance struct {
	id           string
	walletID     string
	creditTypeID string

	available    decimal.Decimal
	held         decimal.Decimal
	spent        decimal.Decimal
	overallSpent decimal.Decimal

	createdAt time.Time
	updatedAt time.Time
}

// NewBalance creates a zeroed balance row for a pair. Rows are created
// lazily by the first deposit.
func NewBalance(walletID, creditTypeID string) *Balance {
	now := time.Now().UTC()
	return &Balance{
		id:           uuid.NewString(),
		walletID:     walletID,
		creditTypeID: creditTypeID,
		available:    decimal.Zero,
		held:         decimal.Zero,
		spent:        decimal.Zero,
		overallSpent: decimal.Zero,
		createdAt:    now,
		updatedAt:    now,
	}
}

// ReconstructBalance rebuilds a Balance from stored data.
func ReconstructBalance(
	id, walletID, creditTypeID string,
	available, held, spent, overallSpent decimal.Decimal,
	createdAt, updatedAt time.Time,
) *Balance {
	return &Balance{
		id:           id,
		walletID:     walletID,
		creditTypeID: creditTypeID,
		available:    available,
		held:         held,
		spent:        spent,
		overallSpent: overallSpent,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (b *Balance) ID() string { return b.id }

func (b *Balance) WalletID() string { return b.walletID }

func (b *Balance) CreditTypeID() string { return b.creditTypeID }

func (b *Balance) Available() decimal.Decimal { return b.available }

func (b *Balance) Held() decimal.Decimal { return b.held }

func (b *Balance) Spent() decimal.Decimal { return b.spent }

func (b *Balance) OverallSpent() decimal.Decimal { return b.overallSpent }

func (b *Balance) CreatedAt() time.Time { return b.createdAt }

func (b *Balance) UpdatedAt() time.Time { return b.updatedAt }

// Snapshot captures the current counters.
func (b *Balance) Snapshot() valueobjects.BalanceSnapshot {
	return valueobjects.NewBalanceSnapshot(b.available, b.held, b.spent, b.overallSpent)
}

// IsEmpty reports whether all counters except overall_spent are zero.
// Only empty balances allow their wallet to be deactivated.
func (b *Balance) IsEmpty() bool {
	return b.available.IsZero() && b.held.IsZero()
}

// Deposit adds amount to available.
func (b *Balance) Deposit(amount valueobjects.Amount) {
	b.available = b.available.Add(amount.Decimal())
	b.touch()
}

// Hold moves amount from available to held.
func (b *Balance) Hold(amount valueobjects.Amount) error {
	next := b.available.Sub(amount.Decimal())
	if next.IsNegative() {
		return errors.ErrInsufficientBalance
	}
	b.available = next
	b.held = b.held.Add(amount.Decimal())
	b.touch()
	return nil
}

// ReleaseHold returns a previously held amount to available.
func (b *Balance) ReleaseHold(amount valueobjects.Amount) error {
	next := b.held.Sub(amount.Decimal())
	if next.IsNegative() {
		return errors.ErrHoldAmountExceeds
	}
	b.held = next
	b.available = b.available.Add(amount.Decimal())
	b.touch()
	return nil
}

// DebitDirect consumes amount straight from available.
func (b *Balance) DebitDirect(amount valueobjects.Amount) error {
	next := b.available.Sub(amount.Decimal())
	if next.IsNegative() {
		return errors.ErrInsufficientBalance
	}
	b.available = next
	b.spent = b.spent.Add(amount.Decimal())
	b.overallSpent = b.overallSpent.Add(amount.Decimal())
	b.touch()
	return nil
}

// DebitWithHold settles a debit against a hold: the full hold comes off
// held, the unconsumed remainder returns to available, and the debited
// amount is recorded as spent. debitAmount must not exceed holdAmount;
// the handler checks that before calling.
func (b *Balance) DebitWithHold(debitAmount, holdAmount valueobjects.Amount) error {
	nextHeld := b.held.Sub(holdAmount.Decimal())
	if nextHeld.IsNegative() {
		return errors.ErrHoldAmountExceeds
	}
	remainder := holdAmount.Decimal().Sub(debitAmount.Decimal())
	nextAvailable := b.available.Add(remainder)
	if nextAvailable.IsNegative() {
		return errors.ErrInsufficientBalance
	}
	b.held = nextHeld
	b.available = nextAvailable
	b.spent = b.spent.Add(debitAmount.Decimal())
	b.overallSpent = b.overallSpent.Add(debitAmount.Decimal())
	b.touch()
	return nil
}

// Adjust sets available to the absolute target, clears held, and
// optionally resets the periodic spent counter. overall_spent is never
// decreased.
func (b *Balance) Adjust(target valueobjects.Amount, resetSpent bool) {
	b.available = target.Decimal()
	b.held = decimal.Zero
	if resetSpent {
		b.spent = decimal.Zero
	}
	b.touch()
}

func (b *Balance) touch() {
	b.updatedAt = time.Now().UTC()
}
