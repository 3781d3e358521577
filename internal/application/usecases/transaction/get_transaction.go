package transaction

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
)

// GetTransactionUseCase reads a single transaction by id.
type GetTransactionUseCase struct {
	transactions ports.TransactionRepository
}

// NewGetTransactionUseCase creates the use case.
func NewGetTransactionUseCase(transactions ports.TransactionRepository) *GetTransactionUseCase {
	return &GetTransactionUseCase{transactions: transactions}
}

// Execute loads the transaction.
func (uc *GetTransactionUseCase) Execute(ctx context.Context, id string) (*dtos.TransactionDTO, error) {
	tx, err := uc.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
