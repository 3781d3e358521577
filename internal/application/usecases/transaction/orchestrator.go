// Package transaction implements the ledger operations. Every operation
// runs through the same three-phase engine: register a PENDING row,
// mutate the balance under the pair's write lock, finalize the row as
// COMPLETED or FAILED. The PENDING insert happens in its own database
// transaction so a duplicate external id is detected before any balance
// work, and a failed handler still leaves an auditable FAILED row.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// DefaultLockTTL bounds how long a crashed handler can keep a balance
// pair locked.
const DefaultLockTTL = 20 * time.Second

// mutateFunc applies the balance mutation inside the handler's database
// transaction. It returns the post-mutation snapshot and any extra
// events to publish alongside the completion event.
type mutateFunc func(ctx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error)

// Orchestrator owns the shared engine and the dependencies of all
// ledger operations.
type Orchestrator struct {
	wallets      ports.WalletRepository
	creditTypes  ports.CreditTypeRepository
	balances     ports.BalanceRepository
	transactions ports.TransactionRepository
	publisher    ports.EventPublisher
	locker       ports.Locker
	uow          ports.UnitOfWork
	logger       *slog.Logger
	lockTTL      time.Duration
}

// NewOrchestrator wires the engine.
func NewOrchestrator(
	wallets ports.WalletRepository,
	creditTypes ports.CreditTypeRepository,
	balances ports.BalanceRepository,
	transactions ports.TransactionRepository,
	publisher ports.EventPublisher,
	locker ports.Locker,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		wallets:      wallets,
		creditTypes:  creditTypes,
		balances:     balances,
		transactions: transactions,
		publisher:    publisher,
		locker:       locker,
		uow:          uow,
		logger:       logger,
		lockTTL:      DefaultLockTTL,
	}
}

// WithLockTTL overrides the lease TTL. Zero or negative values keep the
// default.
func (o *Orchestrator) WithLockTTL(ttl time.Duration) *Orchestrator {
	if ttl > 0 {
		o.lockTTL = ttl
	}
	return o
}

// lockKey is the per-(wallet, credit type) serialization key.
func lockKey(walletID, creditTypeID string) string {
	return walletID + "_" + creditTypeID
}

// validateTarget checks that the wallet exists, accepts transactions and
// the credit type is registered. Runs outside the lock; reads only.
func (o *Orchestrator) validateTarget(ctx context.Context, walletID, creditTypeID string) error {
	wallet, err := o.wallets.FindByID(ctx, walletID)
	if err != nil {
		return err
	}
	if !wallet.IsActive() {
		return errors.ErrWalletInactive
	}
	if _, err := o.creditTypes.FindByID(ctx, creditTypeID); err != nil {
		return err
	}
	return nil
}

// execute runs a ledger transaction through the engine.
//
// Phase 1 inserts the PENDING row in its own database transaction; a
// (wallet, external_id) collision aborts here with
// errors.ErrDuplicateTransaction and no balance was touched.
//
// Phase 2 acquires the pair's write lock and runs mutate plus the
// COMPLETED update in one database transaction, so the balance change,
// the snapshot and the outbox events commit atomically. The in-memory
// entity stays PENDING until that transaction commits; only a COMPLETED
// copy is written inside it.
//
// Phase 3, on any phase-2 error, best-effort marks the still-PENDING
// row FAILED in a fresh database transaction. The original error is
// returned either way.
func (o *Orchestrator) execute(ctx context.Context, tx *entities.Transaction, mutate mutateFunc) (*entities.Transaction, error) {
	if err := o.uow.Execute(ctx, func(txCtx context.Context) error {
		return o.transactions.Create(txCtx, tx)
	}); err != nil {
		return nil, err
	}

	lease, err := o.locker.Acquire(ctx, lockKey(tx.WalletID(), tx.CreditTypeID()), o.lockTTL)
	if err != nil {
		o.markFailed(ctx, tx, err)
		return nil, err
	}
	defer func() {
		if relErr := lease.Release(context.WithoutCancel(ctx)); relErr != nil {
			o.logger.WarnContext(ctx, "failed to release balance lock",
				slog.String("transaction_id", tx.ID()),
				slog.String("error", relErr.Error()))
		}
	}()

	var completed *entities.Transaction
	err = o.uow.Execute(ctx, func(txCtx context.Context) error {
		snapshot, extraEvents, err := mutate(txCtx)
		if err != nil {
			return err
		}
		completed, err = tx.Completed(snapshot)
		if err != nil {
			return err
		}
		if err := o.transactions.Update(txCtx, completed); err != nil {
			return fmt.Errorf("failed to finalize transaction: %w", err)
		}

		batch := append(extraEvents, events.NewTransactionCompleted(
			tx.ID(), tx.WalletID(), tx.CreditTypeID(), string(tx.Type()), snapshot,
		))
		return o.publisher.PublishBatch(txCtx, batch)
	})
	if err != nil {
		o.markFailed(ctx, tx, err)
		return nil, err
	}

	o.logger.InfoContext(ctx, "transaction completed",
		slog.String("transaction_id", tx.ID()),
		slog.String("type", string(tx.Type())),
		slog.String("wallet_id", tx.WalletID()),
		slog.String("credit_type_id", tx.CreditTypeID()))

	return completed, nil
}

// markFailed finalizes the row as FAILED in its own database
// transaction. Best effort: a failure here is logged, never returned,
// so the caller always sees the original handler error.
func (o *Orchestrator) markFailed(ctx context.Context, tx *entities.Transaction, cause error) {
	bg := context.WithoutCancel(ctx)
	err := o.uow.Execute(bg, func(txCtx context.Context) error {
		if err := tx.MarkFailed(); err != nil {
			return err
		}
		if err := o.transactions.Update(txCtx, tx); err != nil {
			return err
		}
		return o.publisher.Publish(txCtx, events.NewTransactionFailed(
			tx.ID(), tx.WalletID(), tx.CreditTypeID(), string(tx.Type()), cause.Error(),
		))
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to mark transaction failed",
			slog.String("transaction_id", tx.ID()),
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()))
		return
	}

	o.logger.WarnContext(ctx, "transaction failed",
		slog.String("transaction_id", tx.ID()),
		slog.String("type", string(tx.Type())),
		slog.String("wallet_id", tx.WalletID()),
		slog.String("cause", cause.Error()))
}

// loadOpenHold loads and validates a hold referenced by a debit or a
// release. A hold that does not exist, belongs to another wallet or
// another credit type, or is not a hold at all surfaces uniformly as
// ErrHoldNotFound; a terminal hold surfaces as ErrHoldNotHeld.
func (o *Orchestrator) loadOpenHold(ctx context.Context, holdID, walletID, creditTypeID string) (*entities.Transaction, error) {
	hold, err := o.transactions.FindByID(ctx, holdID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrHoldNotFound
		}
		return nil, err
	}
	if hold.Type() != entities.TransactionTypeHold ||
		hold.WalletID() != walletID ||
		hold.CreditTypeID() != creditTypeID {
		return nil, errors.ErrHoldNotFound
	}
	if !hold.IsOpenHold() {
		return nil, errors.ErrHoldNotHeld
	}
	return hold, nil
}
