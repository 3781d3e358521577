package dtos

import "time"

// ============================================
// Commands (ledger operations)
// ============================================

// Request bodies carry the operation inputs in a typed payload
// envelope: {credit_type_id, ..., payload:{type:"deposit", amount}}.
// The type discriminator must match the route. Amounts travel as
// decimal strings ("100.50"); the use case parses them into exact
// decimals, never floats.

// DepositPayloadDTO is the typed payload of a deposit request.
type DepositPayloadDTO struct {
	Type   string `json:"type" validate:"required,eq=deposit"`
	Amount string `json:"amount" validate:"required,amount"`
}

// DepositCommand adds credits to a wallet.
type DepositCommand struct {
	WalletID     string            `json:"-" validate:"required,uuid"`
	CreditTypeID string            `json:"credit_type_id" validate:"required,uuid"`
	Description  string            `json:"description,omitempty"`
	Issuer       string            `json:"issuer,omitempty"`
	ExternalID   *string           `json:"external_id,omitempty" validate:"omitempty,min=1,max=255"`
	Context      map[string]any    `json:"context,omitempty"`
	Payload      DepositPayloadDTO `json:"payload"`
}

// DebitPayloadDTO is the typed payload of a debit request.
type DebitPayloadDTO struct {
	Type              string  `json:"type" validate:"required,eq=debit"`
	Amount            string  `json:"amount" validate:"required,amount"`
	HoldTransactionID *string `json:"hold_transaction_id,omitempty" validate:"omitempty,uuid"`
}

// DebitCommand consumes credits, optionally settling against a hold.
type DebitCommand struct {
	WalletID     string          `json:"-" validate:"required,uuid"`
	CreditTypeID string          `json:"credit_type_id" validate:"required,uuid"`
	Description  string          `json:"description,omitempty"`
	Issuer       string          `json:"issuer,omitempty"`
	ExternalID   *string         `json:"external_id,omitempty" validate:"omitempty,min=1,max=255"`
	Context      map[string]any  `json:"context,omitempty"`
	Payload      DebitPayloadDTO `json:"payload"`
}

// HoldPayloadDTO is the typed payload of a hold request.
type HoldPayloadDTO struct {
	Type   string `json:"type" validate:"required,eq=hold"`
	Amount string `json:"amount" validate:"required,amount"`
}

// HoldCommand reserves credits.
type HoldCommand struct {
	WalletID     string         `json:"-" validate:"required,uuid"`
	CreditTypeID string         `json:"credit_type_id" validate:"required,uuid"`
	Description  string         `json:"description,omitempty"`
	Issuer       string         `json:"issuer,omitempty"`
	ExternalID   *string        `json:"external_id,omitempty" validate:"omitempty,min=1,max=255"`
	Context      map[string]any `json:"context,omitempty"`
	Payload      HoldPayloadDTO `json:"payload"`
}

// ReleasePayloadDTO is the typed payload of a release request. No
// amount: the released amount comes from the hold itself.
type ReleasePayloadDTO struct {
	Type              string `json:"type" validate:"required,eq=release"`
	HoldTransactionID string `json:"hold_transaction_id" validate:"required,uuid"`
}

// ReleaseCommand cancels a hold.
type ReleaseCommand struct {
	WalletID     string            `json:"-" validate:"required,uuid"`
	CreditTypeID string            `json:"credit_type_id" validate:"required,uuid"`
	Description  string            `json:"description,omitempty"`
	Issuer       string            `json:"issuer,omitempty"`
	ExternalID   *string           `json:"external_id,omitempty" validate:"omitempty,min=1,max=255"`
	Context      map[string]any    `json:"context,omitempty"`
	Payload      ReleasePayloadDTO `json:"payload"`
}

// AdjustPayloadDTO is the typed payload of an adjust request.
type AdjustPayloadDTO struct {
	Type       string `json:"type" validate:"required,eq=adjust"`
	Amount     string `json:"amount" validate:"required,amount"`
	ResetSpent bool   `json:"reset_spent"`
}

// AdjustCommand sets available to an absolute target.
type AdjustCommand struct {
	WalletID     string           `json:"-" validate:"required,uuid"`
	CreditTypeID string           `json:"credit_type_id" validate:"required,uuid"`
	Description  string           `json:"description,omitempty"`
	Issuer       string           `json:"issuer,omitempty"`
	ExternalID   *string          `json:"external_id,omitempty" validate:"omitempty,min=1,max=255"`
	Context      map[string]any   `json:"context,omitempty"`
	Payload      AdjustPayloadDTO `json:"payload"`
}

// ============================================
// Queries
// ============================================

// ListTransactionsQuery filters and paginates the transaction log.
type ListTransactionsQuery struct {
	WalletID     *string `form:"wallet_id" validate:"omitempty,uuid"`
	CreditTypeID *string `form:"credit_type_id" validate:"omitempty,uuid"`
	Type         *string `form:"type" validate:"omitempty,oneof=deposit debit hold release adjust"`
	Status       *string `form:"status" validate:"omitempty,oneof=pending completed failed"`
	ExternalID   *string `form:"external_id" validate:"omitempty,min=1,max=255"`
	Page         int     `form:"page" validate:"min=1"`
	PageSize     int     `form:"page_size" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// BalanceSnapshotDTO is the post-mutation four-tuple on a completed
// transaction.
type BalanceSnapshotDTO struct {
	Available    string `json:"available"`
	Held         string `json:"held"`
	Spent        string `json:"spent"`
	OverallSpent string `json:"overall_spent"`
}

// TransactionDTO is the API representation of a ledger transaction.
type TransactionDTO struct {
	ID              string              `json:"id"`
	Type            string              `json:"type"`
	WalletID        string              `json:"wallet_id"`
	CreditTypeID    string              `json:"credit_type_id"`
	Issuer          string              `json:"issuer,omitempty"`
	Description     string              `json:"description,omitempty"`
	Context         map[string]any      `json:"context"`
	Payload         map[string]any      `json:"payload"`
	ExternalID      *string             `json:"external_id,omitempty"`
	Status          string              `json:"status"`
	HoldStatus      *string             `json:"hold_status,omitempty"`
	BalanceSnapshot *BalanceSnapshotDTO `json:"balance_snapshot,omitempty"`
	SubscriptionID  *string             `json:"subscription_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TransactionListDTO is a page of transactions.
type TransactionListDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Pagination   PaginationDTO    `json:"pagination"`
}
