package transaction

import (
	"context"
	"fmt"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// DebitUseCase consumes credits. A plain debit draws straight from
// available; a debit referencing a hold settles against it, returning
// the unconsumed remainder to available and closing the hold as used.
type DebitUseCase struct {
	orch *Orchestrator
}

// NewDebitUseCase creates the use case.
func NewDebitUseCase(orch *Orchestrator) *DebitUseCase {
	return &DebitUseCase{orch: orch}
}

// Execute runs the debit through the engine.
func (uc *DebitUseCase) Execute(ctx context.Context, cmd dtos.DebitCommand) (*dtos.TransactionDTO, error) {
	amount, err := valueobjects.NewPositiveAmount(cmd.Payload.Amount)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
	}

	if err := uc.orch.validateTarget(ctx, cmd.WalletID, cmd.CreditTypeID); err != nil {
		return nil, err
	}

	tx, err := entities.NewTransaction(
		cmd.WalletID, cmd.CreditTypeID, cmd.Issuer, cmd.Description,
		cmd.ExternalID, cmd.Context,
		entities.DebitPayload{Amount: amount, HoldTransactionID: cmd.Payload.HoldTransactionID},
	)
	if err != nil {
		return nil, err
	}

	tx, err = uc.orch.execute(ctx, tx, func(txCtx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error) {
		var extra []events.DomainEvent

		// The hold, when referenced, is validated before any balance
		// arithmetic so state errors surface with the right kind.
		var hold *entities.Transaction
		if cmd.Payload.HoldTransactionID != nil {
			hold, err = uc.orch.loadOpenHold(txCtx, *cmd.Payload.HoldTransactionID, cmd.WalletID, cmd.CreditTypeID)
			if err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			holdAmount, err := hold.HoldAmount()
			if err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			if amount.Cmp(holdAmount) > 0 {
				return valueobjects.BalanceSnapshot{}, nil, errors.ErrHoldAmountExceeds
			}
		}

		balance, err := uc.orch.balances.Find(txCtx, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}

		if hold != nil {
			holdAmount, err := hold.HoldAmount()
			if err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			if err := balance.DebitWithHold(amount, holdAmount); err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			if err := hold.MarkHoldUsed(); err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			if err := uc.orch.transactions.Update(txCtx, hold); err != nil {
				return valueobjects.BalanceSnapshot{}, nil, fmt.Errorf("failed to close hold: %w", err)
			}
			extra = append(extra, events.NewHoldUsed(hold.ID(), tx.ID(), cmd.WalletID))
		} else {
			if err := balance.DebitDirect(amount); err != nil {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
		}

		if err := uc.orch.balances.Save(txCtx, balance); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, fmt.Errorf("failed to save balance: %w", err)
		}
		return balance.Snapshot(), extra, nil
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
