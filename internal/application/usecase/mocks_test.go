package usecase_test

import (
	"context"
	"time"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/event"
	"github.com/microfin/loanbook/internal/domain/model"
)

type mockLoanRepository struct {
	saveFunc                func(ctx context.Context, loan model.Loan) error
	findByIDFunc            func(ctx context.Context, id string) (model.Loan, error)
	findByCustomerIDFunc    func(ctx context.Context, customerID string) ([]model.Loan, error)
	listFunc                func(ctx context.Context, status string, limit, offset int) ([]model.Loan, error)
	findActiveDueBeforeFunc func(ctx context.Context, cutoff time.Time) ([]model.Loan, error)
	deleteFunc              func(ctx context.Context, id string) error
	statsFunc               func(ctx context.Context) (model.LoanStats, error)
	savedLoans              []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, apperror.NotFound("loan %s not found", id)
}

func (m *mockLoanRepository) FindByCustomerID(ctx context.Context, customerID string) ([]model.Loan, error) {
	if m.findByCustomerIDFunc != nil {
		return m.findByCustomerIDFunc(ctx, customerID)
	}
	return nil, nil
}

func (m *mockLoanRepository) List(ctx context.Context, status string, limit, offset int) ([]model.Loan, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *mockLoanRepository) FindActiveDueBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
	if m.findActiveDueBeforeFunc != nil {
		return m.findActiveDueBeforeFunc(ctx, cutoff)
	}
	return nil, nil
}

func (m *mockLoanRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockLoanRepository) Stats(ctx context.Context) (model.LoanStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return model.LoanStats{}, nil
}

type mockCustomerRepository struct {
	saveFunc       func(ctx context.Context, c model.Customer) error
	findByIDFunc   func(ctx context.Context, id string) (model.Customer, error)
	findByNICFunc  func(ctx context.Context, nic string) (model.Customer, error)
	listFunc       func(ctx context.Context, limit, offset int) ([]model.Customer, error)
	savedCustomers []model.Customer
}

func (m *mockCustomerRepository) Save(ctx context.Context, c model.Customer) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	m.savedCustomers = append(m.savedCustomers, c)
	return nil
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id string) (model.Customer, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Customer{}, apperror.NotFound("customer %s not found", id)
}

func (m *mockCustomerRepository) FindByNIC(ctx context.Context, nic string) (model.Customer, error) {
	if m.findByNICFunc != nil {
		return m.findByNICFunc(ctx, nic)
	}
	return model.Customer{}, apperror.NotFound("customer with NIC %s not found", nic)
}

func (m *mockCustomerRepository) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

type mockSequenceRepository struct {
	nextFunc func(ctx context.Context, name string) (int64, error)
	counter  int64
}

func (m *mockSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	if m.nextFunc != nil {
		return m.nextFunc(ctx, name)
	}
	m.counter++
	return m.counter, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}
