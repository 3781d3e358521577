package wallet

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
)

// ListWalletsUseCase pages through wallets with optional name and
// status filters. Balances are loaded per wallet so the listing shows
// current counters.
type ListWalletsUseCase struct {
	wallets  ports.WalletRepository
	balances ports.BalanceRepository
}

// NewListWalletsUseCase creates the use case.
func NewListWalletsUseCase(wallets ports.WalletRepository, balances ports.BalanceRepository) *ListWalletsUseCase {
	return &ListWalletsUseCase{wallets: wallets, balances: balances}
}

// Execute lists wallets matching the query.
func (uc *ListWalletsUseCase) Execute(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
	filter := ports.WalletFilter{Name: query.Name}
	if query.Status != nil {
		s := entities.WalletStatus(*query.Status)
		filter.Status = &s
	}

	offset := (query.Page - 1) * query.PageSize
	wallets, total, err := uc.wallets.List(ctx, filter, offset, query.PageSize)
	if err != nil {
		return nil, err
	}

	result := &dtos.WalletListDTO{
		Wallets:    make([]dtos.WalletDTO, 0, len(wallets)),
		Pagination: dtos.NewPaginationDTO(query.Page, query.PageSize, total),
	}
	for _, w := range wallets {
		balances, err := uc.balances.FindByWallet(ctx, w.ID())
		if err != nil {
			return nil, err
		}
		result.Wallets = append(result.Wallets, dtos.ToWalletDTO(w, balances))
	}
	return result, nil
}
