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

// DepositUseCase adds credits to a wallet. The first deposit for a
// (wallet, credit type) pair creates the balance row.
type DepositUseCase struct {
	orch *Orchestrator
}

// NewDepositUseCase creates the use case.
func NewDepositUseCase(orch *Orchestrator) *DepositUseCase {
	return &DepositUseCase{orch: orch}
}

// Execute runs the deposit through the engine.
func (uc *DepositUseCase) Execute(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error) {
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
		entities.DepositPayload{Amount: amount},
	)
	if err != nil {
		return nil, err
	}

	tx, err = uc.orch.execute(ctx, tx, func(txCtx context.Context) (valueobjects.BalanceSnapshot, []events.DomainEvent, error) {
		balance, err := uc.orch.balances.Find(txCtx, cmd.WalletID, cmd.CreditTypeID)
		if err != nil {
			if !errors.IsNotFound(err) {
				return valueobjects.BalanceSnapshot{}, nil, err
			}
			balance = entities.NewBalance(cmd.WalletID, cmd.CreditTypeID)
		}

		balance.Deposit(amount)
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
