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

// AdjustUseCase sets available to an absolute target, clearing held and
// optionally resetting the periodic spent counter. overall_spent is
// never decreased, keeping the audit trail monotonic.
type AdjustUseCase struct {
	orch *Orchestrator
}

// NewAdjustUseCase creates the use case.
func NewAdjustUseCase(orch *Orchestrator) *AdjustUseCase {
	return &AdjustUseCase{orch: orch}
}

// Execute runs the adjustment through the engine.
func (uc *AdjustUseCase) Execute(ctx context.Context, cmd dtos.AdjustCommand) (*dtos.TransactionDTO, error) {
	// Zero is a legal absolute target for available.
	amount, err := valueobjects.NewAmount(cmd.Payload.Amount)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
	}

	if err := uc.orch.validateTarget(ctx, cmd.WalletID, cmd.CreditTypeID); err != nil {
		return nil, err
	}

	tx, err := entities.NewTransaction(
		cmd.WalletID, cmd.CreditTypeID, cmd.Issuer, cmd.Description,
		cmd.ExternalID, cmd.Context,
		entities.AdjustPayload{Amount: amount, ResetSpent: cmd.Payload.ResetSpent},
	)
	if err != nil {
		return nil, err
	}

	tx, err = uc.orch.execute(ctx, tx, func(txCtx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error) {
		balance, err := uc.orch.balances.Find(txCtx, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			return valueobjects.BalanceSnapshot{}, nil, err
		}

		balance.Adjust(amount, cmd.Payload.ResetSpent)
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
