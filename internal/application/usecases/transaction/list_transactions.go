package transaction

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
)

// ListTransactionsUseCase pages through the transaction log, newest
// first.
type ListTransactionsUseCase struct {
	transactions ports.TransactionRepository
}

// NewListTransactionsUseCase creates the use case.
func NewListTransactionsUseCase(transactions ports.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{transactions: transactions}
}

// Execute lists transactions matching the query.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error) {
	filter := ports.TransactionFilter{
		WalletID:     query.WalletID,
		CreditTypeID: query.CreditTypeID,
		ExternalID:   query.ExternalID,
	}
	if query.Type != nil {
		t := entities.TransactionType(*query.Type)
		filter.Type = &t
	}
	if query.Status != nil {
		s := entities.TransactionStatus(*query.Status)
		filter.Status = &s
	}

	offset := (query.Page - 1) * query.PageSize
	txs, total, err := uc.transactions.List(ctx, filter, offset, query.PageSize)
	if err != nil {
		return nil, err
	}

	return &dtos.TransactionListDTO{
		Transactions: dtos.ToTransactionDTOList(txs),
		Pagination:   dtos.NewPaginationDTO(query.Page, query.PageSize, total),
	}, nil
}
