package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/domain/errors"
)

// WalletStatus is the wallet lifecycle state. Deleting a wallet is a
// soft operation: the row stays for audit, new transactions are refused.
type WalletStatus string

const (
	WalletStatusActive   WalletStatus = "active"
	WalletStatusInactive WalletStatus = "inactive"
)

// IsValid checks if the wallet status is known.
func (s WalletStatus) IsValid() bool {
	return s == WalletStatusActive || s == WalletStatusInactive
}

const maxWalletNameLength = 255

// Wallet is an owner's container of balances, one per credit type.
// The context map carries caller-defined metadata and is never
// interpreted by the ledger.
type Wallet struct {
	id        string
	name      string
	context   map[string]any
	status    WalletStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewWallet creates an active wallet with a generated id.
func NewWallet(name string, context map[string]any) (*Wallet, error) {
	if err := validateWalletName(name); err != nil {
		return nil, err
	}
	if context == nil {
		context = make(map[string]any)
	}

	now := time.Now().UTC()
	return &Wallet{
		id:        uuid.NewString(),
		name:      name,
		context:   context,
		status:    WalletStatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructWallet rebuilds a Wallet from stored data.
func ReconstructWallet(
	id, name string,
	context map[string]any,
	status WalletStatus,
	createdAt, updatedAt time.Time,
) *Wallet {
	if context == nil {
		context = make(map[string]any)
	}
	return &Wallet{
		id:        id,
		name:      name,
		context:   context,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (w *Wallet) ID() string { return w.id }

func (w *Wallet) Name() string { return w.name }

func (w *Wallet) Context() map[string]any { return w.context }

func (w *Wallet) Status() WalletStatus { return w.status }

func (w *Wallet) CreatedAt() time.Time { return w.createdAt }

func (w *Wallet) UpdatedAt() time.Time { return w.updatedAt }

// IsActive reports whether the wallet accepts new transactions.
func (w *Wallet) IsActive() bool {
	return w.status == WalletStatusActive
}

// Rename changes the wallet name.
func (w *Wallet) Rename(name string) error {
	if err := validateWalletName(name); err != nil {
		return err
	}
	w.name = name
	w.updatedAt = time.Now().UTC()
	return nil
}

// ReplaceContext swaps the metadata map wholesale. Partial merges are a
// caller concern.
func (w *Wallet) ReplaceContext(context map[string]any) {
	if context == nil {
		context = make(map[string]any)
	}
	w.context = context
	w.updatedAt = time.Now().UTC()
}

// Deactivate soft-deletes the wallet.
func (w *Wallet) Deactivate() error {
	if w.status == WalletStatusInactive {
		return errors.ErrWalletInactive
	}
	w.status = WalletStatusInactive
	w.updatedAt = time.Now().UTC()
	return nil
}

func validateWalletName(name string) error {
	if name == "" {
		return errors.ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > maxWalletNameLength {
		return errors.ValidationError{Field: "name", Message: "must be at most 255 characters"}
	}
	return nil
}
