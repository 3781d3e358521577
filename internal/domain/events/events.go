// Package events defines the domain events emitted by the credit ledger.
// Events are immutable facts; they are collected during a handler run and
// written to the outbox in the same database transaction as the state
// change.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// DomainEvent is the base interface for all ledger events.
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent provides the common identity fields, embedded by every
// concrete event type.
type BaseEvent struct {
	eventID     string
	eventType   string
	occurredAt  time.Time
	aggregateID string
}

func newBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		eventID:     uuid.NewString(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() string {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// Event type constants.
const (
	EventTypeWalletCreated        = "wallet.created"
	EventTypeWalletUpdated        = "wallet.updated"
	EventTypeWalletDeactivated    = "wallet.deactivated"
	EventTypeCreditTypeCreated    = "credit_type.created"
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
	EventTypeHoldUsed             = "hold.used"
	EventTypeHoldReleased         = "hold.released"
)

// ===== Wallet events =====

// WalletCreated is raised when a new wallet is created.
type WalletCreated struct {
	BaseEvent
	WalletID string
	Name     string
}

func NewWalletCreated(walletID, name string) *WalletCreated {
	return &WalletCreated{
		BaseEvent: newBaseEvent(EventTypeWalletCreated, walletID),
		WalletID:  walletID,
		Name:      name,
	}
}

// WalletUpdated is raised when a wallet's name or context changes.
type WalletUpdated struct {
	BaseEvent
	WalletID string
	Name     string
}

func NewWalletUpdated(walletID, name string) *WalletUpdated {
	return &WalletUpdated{
		BaseEvent: newBaseEvent(EventTypeWalletUpdated, walletID),
		WalletID:  walletID,
		Name:      name,
	}
}

// WalletDeactivated is raised on wallet soft-delete.
type WalletDeactivated struct {
	BaseEvent
	WalletID string
}

func NewWalletDeactivated(walletID string) *WalletDeactivated {
	return &WalletDeactivated{
		BaseEvent: newBaseEvent(EventTypeWalletDeactivated, walletID),
		WalletID:  walletID,
	}
}

// ===== Credit type events =====

// CreditTypeCreated is raised when a new credit type is registered.
type CreditTypeCreated struct {
	BaseEvent
	CreditTypeID string
	Name         string
}

func NewCreditTypeCreated(creditTypeID, name string) *CreditTypeCreated {
	return &CreditTypeCreated{
		BaseEvent:    newBaseEvent(EventTypeCreditTypeCreated, creditTypeID),
		CreditTypeID: creditTypeID,
		Name:         name,
	}
}

// ===== Transaction events =====

// TransactionCompleted is raised when a ledger transaction finalizes
// successfully. Carries the post-mutation balance snapshot so consumers
// never have to read the balance table.
type TransactionCompleted struct {
	BaseEvent
	TransactionID   string
	WalletID        string
	CreditTypeID    string
	TransactionType string
	BalanceSnapshot valueobjects.BalanceSnapshot
}

func NewTransactionCompleted(
	transactionID, walletID, creditTypeID, transactionType string,
	snapshot valueobjects.BalanceSnapshot,
) *TransactionCompleted {
	return &TransactionCompleted{
		BaseEvent:       newBaseEvent(EventTypeTransactionCompleted, transactionID),
		TransactionID:   transactionID,
		WalletID:        walletID,
		CreditTypeID:    creditTypeID,
		TransactionType: transactionType,
		BalanceSnapshot: snapshot,
	}
}

// TransactionFailed is raised when a ledger transaction is marked failed.
type TransactionFailed struct {
	BaseEvent
	TransactionID   string
	WalletID        string
	CreditTypeID    string
	TransactionType string
	FailureReason   string
}

func NewTransactionFailed(
	transactionID, walletID, creditTypeID, transactionType, failureReason string,
) *TransactionFailed {
	return &TransactionFailed{
		BaseEvent:       newBaseEvent(EventTypeTransactionFailed, transactionID),
		TransactionID:   transactionID,
		WalletID:        walletID,
		CreditTypeID:    creditTypeID,
		TransactionType: transactionType,
		FailureReason:   failureReason,
	}
}

// ===== Hold events =====

// HoldUsed is raised when a debit settles against a hold.
type HoldUsed struct {
	BaseEvent
	HoldTransactionID  string
	DebitTransactionID string
	WalletID           string
}

func NewHoldUsed(holdTransactionID, debitTransactionID, walletID string) *HoldUsed {
	return &HoldUsed{
		BaseEvent:          newBaseEvent(EventTypeHoldUsed, holdTransactionID),
		HoldTransactionID:  holdTransactionID,
		DebitTransactionID: debitTransactionID,
		WalletID:           walletID,
	}
}

// HoldReleased is raised when a hold is released without being used.
type HoldReleased struct {
	BaseEvent
	HoldTransactionID    string
	ReleaseTransactionID string
	WalletID             string
}

func NewHoldReleased(holdTransactionID, releaseTransactionID, walletID string) *HoldReleased {
	return &HoldReleased{
		BaseEvent:            newBaseEvent(EventTypeHoldReleased, holdTransactionID),
		HoldTransactionID:    holdTransactionID,
		ReleaseTransactionID: releaseTransactionID,
		WalletID:             walletID,
	}
}
