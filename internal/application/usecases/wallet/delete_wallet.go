package wallet

import (
	"context"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
)

// DeleteWalletUseCase soft-deletes a wallet. The row survives for
// audit; only wallets whose balances are fully drained can go.
type DeleteWalletUseCase struct {
	wallets   ports.WalletRepository
	balances  ports.BalanceRepository
	publisher ports.EventPublisher
	uow       ports.UnitOfWork
}

// NewDeleteWalletUseCase creates the use case.
func NewDeleteWalletUseCase(
	wallets ports.WalletRepository,
	balances ports.BalanceRepository,
	publisher ports.EventPublisher,
	uow ports.UnitOfWork,
) *DeleteWalletUseCase {
	return &DeleteWalletUseCase{wallets: wallets, balances: balances, publisher: publisher, uow: uow}
}

// Execute deactivates the wallet.
func (uc *DeleteWalletUseCase) Execute(ctx context.Context, id string) error {
	return uc.uow.Execute(ctx, func(txCtx context.Context) error {
		wallet, err := uc.wallets.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		balances, err := uc.balances.FindByWallet(txCtx, id)
		if err != nil {
			return err
		}
		for _, b := range balances {
			if !b.IsEmpty() {
				return errors.ErrWalletHasBalances
			}
		}

		if err := wallet.Deactivate(); err != nil {
			return err
		}
		if err := uc.wallets.Save(txCtx, wallet); err != nil {
			return err
		}
		return uc.publisher.Publish(txCtx, events.NewWalletDeactivated(wallet.ID()))
	})
}
