// Package credittype implements the credit type admin operations.
// Small CRUD surface, so the whole package fits in one file.
package credittype

import (
	"context"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/events"
)

// CreateCreditTypeUseCase registers a new credit type.
type CreateCreditTypeUseCase struct {
	creditTypes ports.CreditTypeRepository
	publisher   ports.EventPublisher
	uow         ports.UnitOfWork
}

// NewCreateCreditTypeUseCase creates the use case.
func NewCreateCreditTypeUseCase(
	creditTypes ports.CreditTypeRepository,
	publisher ports.EventPublisher,
	uow ports.UnitOfWork,
) *CreateCreditTypeUseCase {
	return &CreateCreditTypeUseCase{creditTypes: creditTypes, publisher: publisher, uow: uow}
}

// Execute creates the credit type. Name collisions surface as
// errors.ErrCreditTypeNameTaken.
func (uc *CreateCreditTypeUseCase) Execute(ctx context.Context, cmd dtos.CreateCreditTypeCommand) (*dtos.CreditTypeDTO, error) {
	ct, err := entities.NewCreditType(cmd.Name, cmd.Description)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := uc.creditTypes.Save(txCtx, ct); err != nil {
			return err
		}
		return uc.publisher.Publish(txCtx, events.NewCreditTypeCreated(ct.ID(), ct.Name()))
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToCreditTypeDTO(ct)
	return &dto, nil
}

// GetCreditTypeUseCase reads a credit type by id.
type GetCreditTypeUseCase struct {
	creditTypes ports.CreditTypeRepository
}

// NewGetCreditTypeUseCase creates the use case.
func NewGetCreditTypeUseCase(creditTypes ports.CreditTypeRepository) *GetCreditTypeUseCase {
	return &GetCreditTypeUseCase{creditTypes: creditTypes}
}

// Execute loads the credit type.
func (uc *GetCreditTypeUseCase) Execute(ctx context.Context, id string) (*dtos.CreditTypeDTO, error) {
	ct, err := uc.creditTypes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := dtos.ToCreditTypeDTO(ct)
	return &dto, nil
}

// UpdateCreditTypeUseCase updates name and/or description.
type UpdateCreditTypeUseCase struct {
	creditTypes ports.CreditTypeRepository
	uow         ports.UnitOfWork
}

// NewUpdateCreditTypeUseCase creates the use case.
func NewUpdateCreditTypeUseCase(creditTypes ports.CreditTypeRepository, uow ports.UnitOfWork) *UpdateCreditTypeUseCase {
	return &UpdateCreditTypeUseCase{creditTypes: creditTypes, uow: uow}
}

// Execute applies the partial update.
func (uc *UpdateCreditTypeUseCase) Execute(ctx context.Context, cmd dtos.UpdateCreditTypeCommand) (*dtos.CreditTypeDTO, error) {
	var dto dtos.CreditTypeDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		ct, err := uc.creditTypes.FindByID(txCtx, cmd.CreditTypeID)
		if err != nil {
			return err
		}
		if err := ct.Update(cmd.Name, cmd.Description); err != nil {
			return err
		}
		if err := uc.creditTypes.Save(txCtx, ct); err != nil {
			return err
		}
		dto = dtos.ToCreditTypeDTO(ct)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto, nil
}

// DeleteCreditTypeUseCase removes a credit type. Types referenced by
// transactions are kept; the repository refuses with
// errors.ErrCreditTypeInUse.
type DeleteCreditTypeUseCase struct {
	creditTypes ports.CreditTypeRepository
	uow         ports.UnitOfWork
}

// NewDeleteCreditTypeUseCase creates the use case.
func NewDeleteCreditTypeUseCase(creditTypes ports.CreditTypeRepository, uow ports.UnitOfWork) *DeleteCreditTypeUseCase {
	return &DeleteCreditTypeUseCase{creditTypes: creditTypes, uow: uow}
}

// Execute deletes the credit type.
func (uc *DeleteCreditTypeUseCase) Execute(ctx context.Context, id string) error {
	return uc.uow.Execute(ctx, func(txCtx context.Context) error {
		return uc.creditTypes.Delete(txCtx, id)
	})
}

// ListCreditTypesUseCase pages through the registered credit types.
type ListCreditTypesUseCase struct {
	creditTypes ports.CreditTypeRepository
}

// NewListCreditTypesUseCase creates the use case.
func NewListCreditTypesUseCase(creditTypes ports.CreditTypeRepository) *ListCreditTypesUseCase {
	return &ListCreditTypesUseCase{creditTypes: creditTypes}
}

// Execute lists credit types.
func (uc *ListCreditTypesUseCase) Execute(ctx context.Context, query dtos.ListCreditTypesQuery) (*dtos.CreditTypeListDTO, error) {
	offset := (query.Page - 1) * query.PageSize
	cts, total, err := uc.creditTypes.List(ctx, offset, query.PageSize)
	if err != nil {
		return nil, err
	}

	return &dtos.CreditTypeListDTO{
		CreditTypes: dtos.ToCreditTypeDTOList(cts),
		Pagination:  dtos.NewPaginationDTO(query.Page, query.PageSize, total),
	}, nil
}
