// Package entities - Transaction is the append-only ledger record.
// Rows are created PENDING and move to COMPLETED or FAILED exactly once;
// hold transactions additionally carry the held/used/released/expired
// sub-state machine.
package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// TransactionType discriminates the payload and the handler.
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "deposit" // add credits to a wallet
	TransactionTypeDebit   TransactionType = "debit"   // consume credits, optionally closing a hold
	TransactionTypeHold    TransactionType = "hold"    // reserve credits
	TransactionTypeRelease TransactionType = "release" // cancel a hold
	TransactionTypeAdjust  TransactionType = "adjust"  // set available to an absolute target
)

// IsValid checks if the transaction type is known.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeDebit, TransactionTypeHold,
		TransactionTypeRelease, TransactionTypeAdjust:
		return true
	default:
		return false
	}
}

// TransactionStatus is the outer lifecycle of a ledger row.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsValid checks if the status is known.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal returns true if the status is terminal.
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// HoldStatus is the sub-state machine on transactions of type hold.
type HoldStatus string

const (
	HoldStatusHeld     HoldStatus = "held"
	HoldStatusUsed     HoldStatus = "used"     // consumed by a debit
	HoldStatusReleased HoldStatus = "released" // explicitly released without use
	HoldStatusExpired  HoldStatus = "expired"  // reserved for a future TTL sweep
)

// IsTerminal returns true once the hold can no longer change state.
func (h HoldStatus) IsTerminal() bool {
	return h == HoldStatusUsed || h == HoldStatusReleased || h == HoldStatusExpired
}

// Payload is the typed body of a transaction, discriminated by type.
type Payload interface {
	PayloadType() TransactionType
	Validate() error
}

// DepositPayload adds amount to available.
type DepositPayload struct {
	Amount valueobjects.Amount `json:"amount"`
}

func (p DepositPayload) PayloadType() TransactionType { return TransactionTypeDeposit }

func (p DepositPayload) Validate() error {
	if !p.Amount.IsPositive() {
		return errors.ValidationError{Field: "payload.amount", Message: "must be positive"}
	}
	return nil
}

// DebitPayload consumes amount, optionally closing the referenced hold.
type DebitPayload struct {
	Amount            valueobjects.Amount `json:"amount"`
	HoldTransactionID *string             `json:"hold_transaction_id,omitempty"`
}

func (p DebitPayload) PayloadType() TransactionType { return TransactionTypeDebit }

func (p DebitPayload) Validate() error {
	if !p.Amount.IsPositive() {
		return errors.ValidationError{Field: "payload.amount", Message: "must be positive"}
	}
	if p.HoldTransactionID != nil && *p.HoldTransactionID == "" {
		return errors.ValidationError{Field: "payload.hold_transaction_id", Message: "must not be empty"}
	}
	return nil
}

// HoldPayload reserves amount, moving it from available to held.
type HoldPayload struct {
	Amount valueobjects.Amount `json:"amount"`
}

func (p HoldPayload) PayloadType() TransactionType { return TransactionTypeHold }

func (p HoldPayload) Validate() error {
	if !p.Amount.IsPositive() {
		return errors.ValidationError{Field: "payload.amount", Message: "must be positive"}
	}
	return nil
}

// ReleasePayload cancels the referenced hold; the released amount is
// derived from the hold's own payload, never supplied by the caller.
type ReleasePayload struct {
	HoldTransactionID string `json:"hold_transaction_id"`
}

func (p ReleasePayload) PayloadType() TransactionType { return TransactionTypeRelease }

func (p ReleasePayload) Validate() error {
	if p.HoldTransactionID == "" {
		return errors.ValidationError{Field: "payload.hold_transaction_id", Message: "is required"}
	}
	return nil
}

// AdjustPayload sets available to an absolute target. held is forced to
// zero and spent optionally resets; overall_spent is never decreased.
type AdjustPayload struct {
	Amount     valueobjects.Amount `json:"amount"`
	ResetSpent bool                `json:"reset_spent"`
}

func (p AdjustPayload) PayloadType() TransactionType { return TransactionTypeAdjust }

func (p AdjustPayload) Validate() error {
	// The amount is an absolute target for available, so zero is legal
	// but negatives are not; Amount already refuses negatives on parse.
	return nil
}

// payloadEnvelope is the stored JSON shape: the concrete payload fields
// plus a "type" discriminator.
type payloadEnvelope struct {
	Type              TransactionType      `json:"type"`
	Amount            *valueobjects.Amount `json:"amount,omitempty"`
	HoldTransactionID *string              `json:"hold_transaction_id,omitempty"`
	ResetSpent        *bool                `json:"reset_spent,omitempty"`
}

// MarshalPayload serializes a payload with its type discriminator.
func MarshalPayload(p Payload) ([]byte, error) {
	env := payloadEnvelope{Type: p.PayloadType()}
	switch v := p.(type) {
	case DepositPayload:
		a := v.Amount
		env.Amount = &a
	case DebitPayload:
		a := v.Amount
		env.Amount = &a
		env.HoldTransactionID = v.HoldTransactionID
	case HoldPayload:
		a := v.Amount
		env.Amount = &a
	case ReleasePayload:
		id := v.HoldTransactionID
		env.HoldTransactionID = &id
	case AdjustPayload:
		a := v.Amount
		env.Amount = &a
		rs := v.ResetSpent
		env.ResetSpent = &rs
	default:
		return nil, fmt.Errorf("unknown payload type %T", p)
	}
	return json.Marshal(env)
}

// UnmarshalPayload decodes a stored payload by its discriminator.
func UnmarshalPayload(data []byte) (Payload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	amount := valueobjects.ZeroAmount()
	if env.Amount != nil {
		amount = *env.Amount
	}

	switch env.Type {
	case TransactionTypeDeposit:
		return DepositPayload{Amount: amount}, nil
	case TransactionTypeDebit:
		return DebitPayload{Amount: amount, HoldTransactionID: env.HoldTransactionID}, nil
	case TransactionTypeHold:
		return HoldPayload{Amount: amount}, nil
	case TransactionTypeRelease:
		if env.HoldTransactionID == nil {
			return nil, errors.ValidationError{Field: "payload.hold_transaction_id", Message: "is required"}
		}
		return ReleasePayload{HoldTransactionID: *env.HoldTransactionID}, nil
	case TransactionTypeAdjust:
		reset := false
		if env.ResetSpent != nil {
			reset = *env.ResetSpent
		}
		return AdjustPayload{Amount: amount, ResetSpent: reset}, nil
	default:
		return nil, fmt.Errorf("unknown payload type %q", env.Type)
	}
}

// Transaction is the ledger entity. Identity is the id plus the
// per-wallet external id (idempotency token); the payload is immutable
// after creation while status, hold_status and balance_snapshot are the
// only mutable fields.
type Transaction struct {
	id           string
	txType       TransactionType
	walletID     string
	creditTypeID string
	issuer       string
	description  string
	context      map[string]any
	payload      Payload
	externalID   *string

	status          TransactionStatus
	holdStatus      *HoldStatus
	balanceSnapshot *valueobjects.BalanceSnapshot
	subscriptionID  *string

	createdAt time.Time
	updatedAt time.Time
}

// NewTransaction creates a PENDING transaction for a wallet.
// Hold transactions start with hold_status=held.
func NewTransaction(
	walletID string,
	creditTypeID string,
	issuer string,
	description string,
	externalID *string,
	context map[string]any,
	payload Payload,
) (*Transaction, error) {
	if walletID == "" {
		return nil, errors.ValidationError{Field: "wallet_id", Message: "is required"}
	}
	if creditTypeID == "" {
		return nil, errors.ValidationError{Field: "credit_type_id", Message: "is required"}
	}
	if payload == nil {
		return nil, errors.ValidationError{Field: "payload", Message: "is required"}
	}
	if !payload.PayloadType().IsValid() {
		return nil, errors.ValidationError{Field: "payload.type", Message: "unknown transaction type"}
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if externalID != nil && *externalID == "" {
		return nil, errors.ValidationError{Field: "external_id", Message: "must not be empty when present"}
	}
	if context == nil {
		context = make(map[string]any)
	}

	now := time.Now().UTC()
	tx := &Transaction{
		id:           uuid.NewString(),
		txType:       payload.PayloadType(),
		walletID:     walletID,
		creditTypeID: creditTypeID,
		issuer:       issuer,
		description:  description,
		context:      context,
		payload:      payload,
		externalID:   externalID,
		status:       TransactionStatusPending,
		createdAt:    now,
		updatedAt:    now,
	}

	if tx.txType == TransactionTypeHold {
		held := HoldStatusHeld
		tx.holdStatus = &held
	}

	return tx, nil
}

// ReconstructTransaction rebuilds a Transaction from stored data.
func ReconstructTransaction(
	id string,
	txType TransactionType,
	walletID, creditTypeID, issuer, description string,
	context map[string]any,
	payload Payload,
	externalID *string,
	status TransactionStatus,
	holdStatus *HoldStatus,
	balanceSnapshot *valueobjects.BalanceSnapshot,
	subscriptionID *string,
	createdAt, updatedAt time.Time,
) *Transaction {
	if context == nil {
		context = make(map[string]any)
	}
	return &Transaction{
		id:              id,
		txType:          txType,
		walletID:        walletID,
		creditTypeID:    creditTypeID,
		issuer:          issuer,
		description:     description,
		context:         context,
		payload:         payload,
		externalID:      externalID,
		status:          status,
		holdStatus:      holdStatus,
		balanceSnapshot: balanceSnapshot,
		subscriptionID:  subscriptionID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Getters

func (t *Transaction) ID() string { return t.id }

func (t *Transaction) Type() TransactionType { return t.txType }

func (t *Transaction) WalletID() string { return t.walletID }

func (t *Transaction) CreditTypeID() string { return t.creditTypeID }

func (t *Transaction) Issuer() string { return t.issuer }

func (t *Transaction) Description() string { return t.description }

func (t *Transaction) Context() map[string]any { return t.context }

func (t *Transaction) Payload() Payload { return t.payload }

func (t *Transaction) ExternalID() *string { return t.externalID }

func (t *Transaction) Status() TransactionStatus { return t.status }

func (t *Transaction) HoldStatus() *HoldStatus { return t.holdStatus }

func (t *Transaction) BalanceSnapshot() *valueobjects.BalanceSnapshot { return t.balanceSnapshot }

func (t *Transaction) SubscriptionID() *string { return t.subscriptionID }

func (t *Transaction) CreatedAt() time.Time { return t.createdAt }

func (t *Transaction) UpdatedAt() time.Time { return t.updatedAt }

// State predicates

func (t *Transaction) IsPending() bool { return t.status == TransactionStatusPending }

func (t *Transaction) IsCompleted() bool { return t.status == TransactionStatusCompleted }

func (t *Transaction) IsFailed() bool { return t.status == TransactionStatusFailed }

// IsOpenHold returns true for a hold transaction that has not reached a
// terminal hold status.
func (t *Transaction) IsOpenHold() bool {
	return t.txType == TransactionTypeHold && t.holdStatus != nil && *t.holdStatus == HoldStatusHeld
}

// HoldAmount returns the reserved amount of a hold transaction.
func (t *Transaction) HoldAmount() (valueobjects.Amount, error) {
	p, ok := t.payload.(HoldPayload)
	if !ok {
		return valueobjects.Amount{}, errors.ErrHoldNotFound
	}
	return p.Amount, nil
}

// State transitions

// MarkCompleted moves a PENDING transaction to COMPLETED, stamping the
// post-mutation balance snapshot.
func (t *Transaction) MarkCompleted(snapshot valueobjects.BalanceSnapshot) error {
	if !t.IsPending() {
		return errors.ErrTransactionNotPending
	}
	t.status = TransactionStatusCompleted
	t.balanceSnapshot = &snapshot
	t.updatedAt = time.Now().UTC()
	return nil
}

// Completed returns a COMPLETED copy of a PENDING transaction with the
// post-mutation balance snapshot stamped. The receiver is left
// untouched, so a caller can persist the copy and keep the original
// PENDING until the write commits.
func (t *Transaction) Completed(snapshot valueobjects.BalanceSnapshot) (*Transaction, error) {
	c := *t
	if err := c.MarkCompleted(snapshot); err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkFailed moves a PENDING transaction to FAILED. No snapshot is
// stamped; the balance was rolled back.
func (t *Transaction) MarkFailed() error {
	if t.status.IsFinal() {
		return errors.ErrTransactionTerminal
	}
	t.status = TransactionStatusFailed
	t.updatedAt = time.Now().UTC()
	return nil
}

// MarkHoldUsed transitions an open hold to used. Called when a debit
// referencing the hold completes.
func (t *Transaction) MarkHoldUsed() error {
	return t.transitionHold(HoldStatusUsed)
}

// MarkHoldReleased transitions an open hold to released.
func (t *Transaction) MarkHoldReleased() error {
	return t.transitionHold(HoldStatusReleased)
}

// MarkHoldExpired transitions an open hold to expired. Reserved for the
// TTL sweeper; no core handler calls this.
func (t *Transaction) MarkHoldExpired() error {
	return t.transitionHold(HoldStatusExpired)
}

func (t *Transaction) transitionHold(next HoldStatus) error {
	if t.txType != TransactionTypeHold || t.holdStatus == nil {
		return errors.ErrHoldNotFound
	}
	if t.holdStatus.IsTerminal() {
		return errors.ErrHoldNotHeld
	}
	t.holdStatus = &next
	t.updatedAt = time.Now().UTC()
	return nil
}

// AttachSubscription links the transaction to the subscription that
// issued it. Only legal before the row is finalized.
func (t *Transaction) AttachSubscription(subscriptionID string) error {
	if t.status.IsFinal() {
		return errors.ErrTransactionTerminal
	}
	t.subscriptionID = &subscriptionID
	t.updatedAt = time.Now().UTC()
	return nil
}
