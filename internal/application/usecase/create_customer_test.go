package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/application/usecase"
	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
)

func TestCreateCustomerUseCase_Execute(t *testing.T) {
	t.Run("registers a customer with a generated code", func(t *testing.T) {
		customerRepo := &mockCustomerRepository{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewCreateCustomerUseCase(customerRepo, &mockSequenceRepository{}, publisher)

		resp, err := uc.Execute(context.Background(), dto.CreateCustomerRequest{
			FullName: "Jane Perera",
			NIC:      "902345678V",
			Phone:    "+94771234567",
		})
		require.NoError(t, err)

		assert.Equal(t, "CUS-0001", resp.ID)
		assert.True(t, resp.Active)
		require.Len(t, customerRepo.savedCustomers, 1)
		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, "loanbook.customer.registered", publisher.publishedEvents[0].EventType())
	})

	t.Run("duplicate NIC is rejected", func(t *testing.T) {
		customerRepo := &mockCustomerRepository{
			findByNICFunc: func(ctx context.Context, nic string) (model.Customer, error) {
				return existingCustomer(t, "CUS-0001"), nil
			},
		}
		uc := usecase.NewCreateCustomerUseCase(customerRepo, &mockSequenceRepository{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.CreateCustomerRequest{
			FullName: "Jane Perera",
			NIC:      "902345678V",
			Phone:    "+94771234567",
		})
		assert.True(t, apperror.IsValidation(err), "expected a validation error, got %v", err)
		assert.Empty(t, customerRepo.savedCustomers)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		uc := usecase.NewCreateCustomerUseCase(&mockCustomerRepository{}, &mockSequenceRepository{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.CreateCustomerRequest{
			NIC:   "902345678V",
			Phone: "+94771234567",
		})
		assert.True(t, apperror.IsValidation(err), "expected a validation error, got %v", err)
	})
}

func TestUpdateCustomerUseCase_Execute(t *testing.T) {
	t.Run("applies partial edits", func(t *testing.T) {
		customerRepo := &mockCustomerRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.Customer, error) {
				return existingCustomer(t, id), nil
			},
		}
		uc := usecase.NewUpdateCustomerUseCase(customerRepo)

		phone := "+94779999999"
		resp, err := uc.Execute(context.Background(), dto.UpdateCustomerRequest{
			CustomerID: "CUS-0001",
			Phone:      &phone,
		})
		require.NoError(t, err)

		assert.Equal(t, phone, resp.Phone)
		assert.Equal(t, "Jane Perera", resp.FullName)
		require.Len(t, customerRepo.savedCustomers, 1)
	})

	t.Run("unknown customer", func(t *testing.T) {
		uc := usecase.NewUpdateCustomerUseCase(&mockCustomerRepository{})

		_, err := uc.Execute(context.Background(), dto.UpdateCustomerRequest{CustomerID: "CUS-9999"})
		assert.True(t, apperror.IsNotFound(err), "expected a not-found error, got %v", err)
	})
}
