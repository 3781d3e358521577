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

// HoldUseCase reserves credits, moving them from available to held. The
// created transaction is itself the hold: its id is what debit and
// release reference later.
type HoldUseCase struct {
	orch *Orchestrator
}

// NewHoldUseCase creates the use case.
func NewHoldUseCase(orch *Orchestrator) *HoldUseCase {
	return &HoldUseCase{orch: orch}
}

// Execute runs the hold through the engine.
func (uc *HoldUseCase) Execute(ctx context.Context, cmd dtos.HoldCommand) (*dtos.TransactionDTO, error) {
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
		entities.HoldPayload{Amount: amount},
	)
	if err != nil {
		return nil, err
	}

	tx, err = uc.orch.execute(ctx, tx, func(txCtx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error) {
		balance, err := uc.orch.balances.Find(txCtx, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}

		if err := balance.Hold(amount); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}
		if err := uc.orch.balances.Save(txCtx, balance); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, fmt.Errorf("failed to save balance: %w", err)
		}
		return balance.Snapshot(), nil, nil
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
