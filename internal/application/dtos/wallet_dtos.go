// Package dtos carries data between the HTTP adapter and the use cases.
package dtos

import "time"

// ============================================
// Commands (write operations)
// ============================================

// CreateWalletCommand creates a wallet.
type CreateWalletCommand struct {
	Name    string         `json:"name" validate:"required,max=255"`
	Context map[string]any `json:"context,omitempty"`
}

// UpdateWalletCommand updates name and/or context. Nil fields keep the
// current value; a non-nil context replaces the map wholesale.
type UpdateWalletCommand struct {
	WalletID string          `json:"-" validate:"required,uuid"`
	Name     *string         `json:"name,omitempty" validate:"omitempty,max=255"`
	Context  *map[string]any `json:"context,omitempty"`
}

// ============================================
// Queries (read operations)
// ============================================

// ListWalletsQuery filters and paginates the wallet listing.
type ListWalletsQuery struct {
	Name     *string `form:"name" validate:"omitempty,max=255"`
	Status   *string `form:"status" validate:"omitempty,oneof=active inactive"`
	Page     int     `form:"page" validate:"min=1"`
	PageSize int     `form:"page_size" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// WalletBalanceDTO is one (credit type, counters) row of a wallet.
type WalletBalanceDTO struct {
	CreditTypeID string `json:"credit_type_id"`
	Available    string `json:"available"`
	Held         string `json:"held"`
	Spent        string `json:"spent"`
	OverallSpent string `json:"overall_spent"`
}

// WalletDTO is the API representation of a wallet.
type WalletDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Context   map[string]any     `json:"context"`
	Status    string             `json:"status"`
	Balances  []WalletBalanceDTO `json:"balances"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PaginationDTO describes a page of a listing.
type PaginationDTO struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// WalletListDTO is a page of wallets.
type WalletListDTO struct {
	Wallets    []WalletDTO   `json:"wallets"`
	Pagination PaginationDTO `json:"pagination"`
}

// NewPaginationDTO computes the page descriptor from a total count.
func NewPaginationDTO(page, pageSize, totalCount int) PaginationDTO {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PaginationDTO{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
