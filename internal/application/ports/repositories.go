// Package ports defines the interfaces the application layer depends on.
// Implementations live in the infrastructure layer.
package ports

import (
	"context"

	"github.com/credgem/credgem/internal/domain/entities"
)

// WalletRepository persists wallets.
type WalletRepository interface {
	// Save creates or updates a wallet by id.
	Save(ctx context.Context, wallet *entities.Wallet) error

	// FindByID loads a wallet. Returns errors.ErrWalletNotFound when absent.
	FindByID(ctx context.Context, id string) (*entities.Wallet, error)

	// List returns wallets matching the filter plus the total match count.
	List(ctx context.Context, filter WalletFilter, offset, limit int) ([]*entities.Wallet, int, error)
}

// WalletFilter narrows wallet listings.
type WalletFilter struct {
	// Name is a case-insensitive substring match when set.
	Name   *string
	Status *entities.WalletStatus
}

// CreditTypeRepository persists credit types.
type CreditTypeRepository interface {
	// Save creates or updates a credit type. A name collision surfaces as
	// errors.ErrCreditTypeNameTaken.
	Save(ctx context.Context, creditType *entities.CreditType) error

	// FindByID loads a credit type. Returns errors.ErrCreditTypeNotFound
	// when absent.
	FindByID(ctx context.Context, id string) (*entities.CreditType, error)

	// FindByIDs loads several credit types at once, keyed by id. Missing
	// ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*entities.CreditType, error)

	// List returns all credit types ordered by name.
	List(ctx context.Context, offset, limit int) ([]*entities.CreditType, int, error)

	// Delete removes a credit type. Returns errors.ErrCreditTypeInUse when
	// transactions still reference it.
	Delete(ctx context.Context, id string) error
}

// BalanceRepository persists the per-(wallet, credit type) counter rows.
// Mutations run under the pair's write lock, so a plain load-save cycle
// is race-free.
type BalanceRepository interface {
	// Find loads the balance row for a pair. Returns
	// errors.ErrBalanceNotFound when no row exists yet.
	Find(ctx context.Context, walletID, creditTypeID string) (*entities.Balance, error)

	// Save upserts the balance row.
	Save(ctx context.Context, balance *entities.Balance) error

	// FindByWallet returns all balance rows of a wallet.
	FindByWallet(ctx context.Context, walletID string) ([]*entities.Balance, error)
}

// TransactionRepository persists ledger transactions.
type TransactionRepository interface {
	// Create inserts a new transaction row. A (wallet_id, external_id)
	// collision surfaces as errors.ErrDuplicateTransaction.
	Create(ctx context.Context, tx *entities.Transaction) error

	// Update persists status, hold_status and balance_snapshot changes.
	Update(ctx context.Context, tx *entities.Transaction) error

	// FindByID loads a transaction. Returns errors.ErrTransactionNotFound
	// when absent.
	FindByID(ctx context.Context, id string) (*entities.Transaction, error)

	// List returns transactions matching the filter, newest first, plus
	// the total match count.
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*entities.Transaction, int, error)
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	WalletID     *string
	CreditTypeID *string
	Type         *entities.TransactionType
	Status       *entities.TransactionStatus
	ExternalID   *string
}
