// Package wallet implements the wallet admin operations.
package wallet

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/events"
)

// CreateWalletUseCase creates a wallet.
type CreateWalletUseCase struct {
	wallets   ports.WalletRepository
	publisher ports.EventPublisher
	uow       ports.UnitOfWork
}

// NewCreateWalletUseCase creates the use case.
func NewCreateWalletUseCase(
	wallets ports.WalletRepository,
	publisher ports.EventPublisher,
	uow ports.UnitOfWork,
) *CreateWalletUseCase {
	return &CreateWalletUseCase{wallets: wallets, publisher: publisher, uow: uow}
}

// Execute creates the wallet and publishes wallet.created.
func (uc *CreateWalletUseCase) Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
	wallet, err := entities.NewWallet(cmd.Name, cmd.Context)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := uc.wallets.Save(txCtx, wallet); err != nil {
			return err
		}
		return uc.publisher.Publish(txCtx, events.NewWalletCreated(wallet.ID(), wallet.Name()))
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToWalletDTO(wallet, nil)
	return &dto, nil
}
