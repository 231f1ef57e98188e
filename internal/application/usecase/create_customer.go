package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/event"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/port"
)

const customerSequence = "customer_id"

// CreateCustomerUseCase registers a new customer with a generated CUS- code.
type CreateCustomerUseCase struct {
	customerRepo port.CustomerRepository
	sequences    port.SequenceRepository
	publisher    port.EventPublisher
}

// NewCreateCustomerUseCase wires dependencies.
func NewCreateCustomerUseCase(
	customerRepo port.CustomerRepository,
	sequences port.SequenceRepository,
	publisher port.EventPublisher,
) *CreateCustomerUseCase {
	return &CreateCustomerUseCase{
		customerRepo: customerRepo,
		sequences:    sequences,
		publisher:    publisher,
	}
}

// Execute registers the customer. The NIC must be unique.
func (uc *CreateCustomerUseCase) Execute(
	ctx context.Context,
	req dto.CreateCustomerRequest,
) (dto.CustomerResponse, error) {
	now := time.Now().UTC()

	if req.NIC != "" {
		if _, err := uc.customerRepo.FindByNIC(ctx, req.NIC); err == nil {
			return dto.CustomerResponse{}, apperror.Validation("customer with NIC %s already exists", req.NIC)
		} else if !apperror.IsNotFound(err) {
			return dto.CustomerResponse{}, fmt.Errorf("check NIC: %w", err)
		}
	}

	seq, err := uc.sequences.Next(ctx, customerSequence)
	if err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("next customer sequence: %w", err)
	}
	id := fmt.Sprintf("CUS-%04d", seq)

	customer, err := model.NewCustomer(id, req.FullName, req.NIC, req.Phone, req.Address, req.Notes, now)
	if err != nil {
		return dto.CustomerResponse{}, err
	}

	if err := uc.customerRepo.Save(ctx, customer); err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("save customer: %w", err)
	}

	if err := uc.publisher.Publish(ctx, event.NewCustomerRegistered(id, customer.FullName(), customer.NIC())); err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toCustomerResponse(customer), nil
}

// UpdateCustomerUseCase edits an existing customer record.
type UpdateCustomerUseCase struct {
	customerRepo port.CustomerRepository
}

// NewUpdateCustomerUseCase wires dependencies.
func NewUpdateCustomerUseCase(customerRepo port.CustomerRepository) *UpdateCustomerUseCase {
	return &UpdateCustomerUseCase{customerRepo: customerRepo}
}

// Execute applies the edits and persists.
func (uc *UpdateCustomerUseCase) Execute(
	ctx context.Context,
	req dto.UpdateCustomerRequest,
) (dto.CustomerResponse, error) {
	now := time.Now().UTC()

	customer, err := uc.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("find customer: %w", err)
	}

	customer, err = customer.Apply(model.CustomerChanges{
		FullName: req.FullName,
		NIC:      req.NIC,
		Phone:    req.Phone,
		Address:  req.Address,
		Notes:    req.Notes,
		Active:   req.Active,
	}, now)
	if err != nil {
		return dto.CustomerResponse{}, err
	}

	if err := uc.customerRepo.Save(ctx, customer); err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("save customer: %w", err)
	}

	return toCustomerResponse(customer), nil
}

// GetCustomerUseCase retrieves a customer by ID.
type GetCustomerUseCase struct {
	customerRepo port.CustomerRepository
}

// NewGetCustomerUseCase wires dependencies.
func NewGetCustomerUseCase(customerRepo port.CustomerRepository) *GetCustomerUseCase {
	return &GetCustomerUseCase{customerRepo: customerRepo}
}

// Execute returns a customer response for the given ID.
func (uc *GetCustomerUseCase) Execute(ctx context.Context, customerID string) (dto.CustomerResponse, error) {
	customer, err := uc.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return dto.CustomerResponse{}, fmt.Errorf("find customer: %w", err)
	}
	return toCustomerResponse(customer), nil
}

// ListCustomersUseCase pages through customer records.
type ListCustomersUseCase struct {
	customerRepo port.CustomerRepository
}

// NewListCustomersUseCase wires dependencies.
func NewListCustomersUseCase(customerRepo port.CustomerRepository) *ListCustomersUseCase {
	return &ListCustomersUseCase{customerRepo: customerRepo}
}

// Execute returns up to limit customers starting at offset.
func (uc *ListCustomersUseCase) Execute(ctx context.Context, limit, offset int) ([]dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	customers, err := uc.customerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}
