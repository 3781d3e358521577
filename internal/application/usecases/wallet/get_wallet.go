package wallet

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
)

// GetWalletUseCase reads a wallet together with its balance rows.
type GetWalletUseCase struct {
	wallets  ports.WalletRepository
	balances ports.BalanceRepository
}

// NewGetWalletUseCase creates the use case.
func NewGetWalletUseCase(wallets ports.WalletRepository, balances ports.BalanceRepository) *GetWalletUseCase {
	return &GetWalletUseCase{wallets: wallets, balances: balances}
}

// Execute loads the wallet and its balances.
func (uc *GetWalletUseCase) Execute(ctx context.Context, id string) (*dtos.WalletDTO, error) {
	wallet, err := uc.wallets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balances, err := uc.balances.FindByWallet(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToWalletDTO(wallet, balances)
	return &dto, nil
}
