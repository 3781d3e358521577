package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/domain/errors"
)

const maxCreditTypeNameLength = 255

// CreditType is an issuer-defined currency of credits. Names are unique
// across the service; balances and transactions reference it by id.
type CreditType struct {
	id          string
	name        string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCreditType creates a credit type with a generated id.
func NewCreditType(name, description string) (*CreditType, error) {
	if err := validateCreditTypeName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &CreditType{
		id:          uuid.NewString(),
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructCreditType rebuilds a CreditType from stored data.
func ReconstructCreditType(id, name, description string, createdAt, updatedAt time.Time) *CreditType {
	return &CreditType{
		id:          id,
		name:        name,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (ct *CreditType) ID() string { return ct.id }

func (ct *CreditType) Name() string { return ct.name }

func (ct *CreditType) Description() string { return ct.description }

func (ct *CreditType) CreatedAt() time.Time { return ct.createdAt }

func (ct *CreditType) UpdatedAt() time.Time { return ct.updatedAt }

// Update changes the name and/or description. Empty name means keep the
// current one.
func (ct *CreditType) Update(name, description *string) error {
	if name != nil {
		if err := validateCreditTypeName(*name); err != nil {
			return err
		}
		ct.name = *name
	}
	if description != nil {
		ct.description = *description
	}
	ct.updatedAt = time.Now().UTC()
	return nil
}

func validateCreditTypeName(name string) error {
	if name == "" {
		return errors.ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > maxCreditTypeNameLength {
		return errors.ValidationError{Field: "name", Message: "must be at most 255 characters"}
	}
	return nil
}
