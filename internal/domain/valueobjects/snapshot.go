package valueobjects

import "github.com/shopspring/decimal"

// BalanceSnapshot is the post-mutation four-tuple stamped on every
// completed transaction. It makes the transaction log self-auditing:
// replaying completed transactions for a (wallet, credit type) pair must
// reproduce the snapshot sequence.
type BalanceSnapshot struct {
	Available    decimal.Decimal `json:"available"`
	Held         decimal.Decimal `json:"held"`
	Spent        decimal.Decimal `json:"spent"`
	OverallSpent decimal.Decimal `json:"overall_spent"`
}

// NewBalanceSnapshot builds a snapshot from the four counters.
func NewBalanceSnapshot(available, held, spent, overallSpent decimal.Decimal) BalanceSnapshot {
	return BalanceSnapshot{
		Available:    available,
		Held:         held,
		Spent:        spent,
		OverallSpent: overallSpent,
	}
}

// Equal reports field-wise numeric equality.
func (s BalanceSnapshot) Equal(other BalanceSnapshot) bool {
	return s.Available.Equal(other.Available) &&
		s.Held.Equal(other.Held) &&
		s.Spent.Equal(other.Spent) &&
		s.OverallSpent.Equal(other.OverallSpent)
}
