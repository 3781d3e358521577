package wallet

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/events"
)

// UpdateWalletUseCase renames a wallet and/or replaces its context map.
type UpdateWalletUseCase struct {
	wallets   ports.WalletRepository
	balances  ports.BalanceRepository
	publisher ports.EventPublisher
	uow       ports.UnitOfWork
}

// NewUpdateWalletUseCase creates the use case.
func NewUpdateWalletUseCase(
	wallets ports.WalletRepository,
	balances ports.BalanceRepository,
	publisher ports.EventPublisher,
	uow ports.UnitOfWork,
) *UpdateWalletUseCase {
	return &UpdateWalletUseCase{wallets: wallets, balances: balances, publisher: publisher, uow: uow}
}

// Execute applies the partial update.
func (uc *UpdateWalletUseCase) Execute(ctx context.Context, cmd dtos.UpdateWalletCommand) (*dtos.WalletDTO, error) {
	var dto dtos.WalletDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		wallet, err := uc.wallets.FindByID(txCtx, cmd.WalletID)
		if err != nil {
			return err
		}

		if cmd.Name != nil {
			if err := wallet.Rename(*cmd.Name); err != nil {
				return err
			}
		}
		if cmd.Context != nil {
			wallet.ReplaceContext(*cmd.Context)
		}

		if err := uc.wallets.Save(txCtx, wallet); err != nil {
			return err
		}
		if err := uc.publisher.Publish(txCtx, events.NewWalletUpdated(wallet.ID(), wallet.Name())); err != nil {
			return err
		}

		balances, err := uc.balances.FindByWallet(txCtx, wallet.ID())
		if err != nil {
			return err
		}
		dto = dtos.ToWalletDTO(wallet, balances)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto, nil
}
