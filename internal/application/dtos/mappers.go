package dtos

import (
	"encoding/json"

	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

// ToWalletDTO converts a wallet and its balance rows to the API shape.
func ToWalletDTO(wallet *entities.Wallet, balances []*entities.Balance) WalletDTO {
	dto := WalletDTO{
		ID:        wallet.ID(),
		Name:      wallet.Name(),
		Context:   wallet.Context(),
		Status:    string(wallet.Status()),
		Balances:  make([]WalletBalanceDTO, 0, len(balances)),
		CreatedAt: wallet.CreatedAt(),
		UpdatedAt: wallet.UpdatedAt(),
	}
	for _, b := range balances {
		dto.Balances = append(dto.Balances, WalletBalanceDTO{
			CreditTypeID: b.CreditTypeID(),
			Available:    b.Available().String(),
			Held:         b.Held().String(),
			Spent:        b.Spent().String(),
			OverallSpent: b.OverallSpent().String(),
		})
	}
	return dto
}

// ToCreditTypeDTO converts a credit type to the API shape.
func ToCreditTypeDTO(ct *entities.CreditType) CreditTypeDTO {
	return CreditTypeDTO{
		ID:          ct.ID(),
		Name:        ct.Name(),
		Description: ct.Description(),
		CreatedAt:   ct.CreatedAt(),
		UpdatedAt:   ct.UpdatedAt(),
	}
}

// ToCreditTypeDTOList converts a slice of credit types.
func ToCreditTypeDTOList(cts []*entities.CreditType) []CreditTypeDTO {
	result := make([]CreditTypeDTO, len(cts))
	for i, ct := range cts {
		result[i] = ToCreditTypeDTO(ct)
	}
	return result
}

// ToBalanceSnapshotDTO converts a snapshot, or nil for transactions that
// never completed.
func ToBalanceSnapshotDTO(s *valueobjects.BalanceSnapshot) *BalanceSnapshotDTO {
	if s == nil {
		return nil
	}
	return &BalanceSnapshotDTO{
		Available:    s.Available.String(),
		Held:         s.Held.String(),
		Spent:        s.Spent.String(),
		OverallSpent: s.OverallSpent.String(),
	}
}

// ToTransactionDTO converts a ledger transaction to the API shape.
func ToTransactionDTO(tx *entities.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:              tx.ID(),
		Type:            string(tx.Type()),
		WalletID:        tx.WalletID(),
		CreditTypeID:    tx.CreditTypeID(),
		Issuer:          tx.Issuer(),
		Description:     tx.Description(),
		Context:         tx.Context(),
		Payload:         payloadToMap(tx.Payload()),
		ExternalID:      tx.ExternalID(),
		Status:          string(tx.Status()),
		BalanceSnapshot: ToBalanceSnapshotDTO(tx.BalanceSnapshot()),
		SubscriptionID:  tx.SubscriptionID(),
		CreatedAt:       tx.CreatedAt(),
		UpdatedAt:       tx.UpdatedAt(),
	}
	if hs := tx.HoldStatus(); hs != nil {
		s := string(*hs)
		dto.HoldStatus = &s
	}
	return dto
}

// ToTransactionDTOList converts a slice of transactions.
func ToTransactionDTOList(txs []*entities.Transaction) []TransactionDTO {
	result := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		result[i] = ToTransactionDTO(tx)
	}
	return result
}

func payloadToMap(p entities.Payload) map[string]any {
	if p == nil {
		return nil
	}
	data, err := entities.MarshalPayload(p)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
