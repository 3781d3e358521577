package transaction

import (
	"context"
	"fmt"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/events"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// ReleaseUseCase cancels a hold, returning the reserved credits to
// available. The released amount is read from the hold's own payload;
// callers only name the hold.
type ReleaseUseCase struct {
	orch *Orchestrator
}

// NewReleaseUseCase creates the use case.
func NewReleaseUseCase(orch *Orchestrator) *ReleaseUseCase {
	return &ReleaseUseCase{orch: orch}
}

// Execute runs the release through the engine.
func (uc *ReleaseUseCase) Execute(ctx context.Context, cmd dtos.ReleaseCommand) (*dtos.TransactionDTO, error) {
	if err := uc.orch.validateTarget(ctx, cmd.WalletID, cmd.CreditTypeID); err != nil {
		return nil, err
	}

	tx, err := entities.NewTransaction(
		cmd.WalletID, cmd.CreditTypeID, cmd.Issuer, cmd.Description,
		cmd.ExternalID, cmd.Context,
		entities.ReleasePayload{HoldTransactionID: cmd.Payload.HoldTransactionID},
	)
	if err != nil {
		return nil, err
	}

	tx, err = uc.orch.execute(ctx, tx, func(txCtx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error) {
		hold, err := uc.orch.loadOpenHold(txCtx, cmd.Payload.HoldTransactionID, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}
		holdAmount, err := hold.HoldAmount()
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}

		balance, err := uc.orch.balances.Find(txCtx, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}

		if err := balance.ReleaseHold(holdAmount); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}
		if err := hold.MarkHoldReleased(); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}
		if err := uc.orch.transactions.Update(txCtx, hold); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, fmt.Errorf("failed to close hold: %w", err)
		}
		if err := uc.orch.balances.Save(txCtx, balance); err != nil {
			return valueobjects.BalanceSnapshot{}, nil, fmt.Errorf("failed to save balance: %w", err)
		}

		extra := []events.DomainEvent{events.NewHoldReleased(hold.ID(), tx.ID(), cmd.WalletID)}
		return balance.Snapshot(), extra, nil
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
