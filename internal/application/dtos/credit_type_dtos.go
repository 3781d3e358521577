package dtos

import "time"

// CreateCreditTypeCommand registers a new credit type.
type CreateCreditTypeCommand struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
}

// UpdateCreditTypeCommand updates name and/or description. Nil fields
// keep the current value.
type UpdateCreditTypeCommand struct {
	CreditTypeID string  `json:"-" validate:"required,uuid"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description  *string `json:"description,omitempty"`
}

// ListCreditTypesQuery paginates the credit type listing.
type ListCreditTypesQuery struct {
	Page     int `form:"page" validate:"min=1"`
	PageSize int `form:"page_size" validate:"min=1,max=100"`
}

// CreditTypeDTO is the API representation of a credit type.
type CreditTypeDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreditTypeListDTO is a page of credit types.
type CreditTypeListDTO struct {
	CreditTypes []CreditTypeDTO `json:"credit_types"`
	Pagination  PaginationDTO   `json:"pagination"`
}
