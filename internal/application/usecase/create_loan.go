package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/port"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

const loanSequence = "loan_id"

// CreateLoanUseCase originates a loan: validates the terms, verifies the
// customer, assigns a LON- code, and generates the installment schedule.
type CreateLoanUseCase struct {
	loanRepo     port.LoanRepository
	customerRepo port.CustomerRepository
	sequences    port.SequenceRepository
	publisher    port.EventPublisher
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(
	loanRepo port.LoanRepository,
	customerRepo port.CustomerRepository,
	sequences port.SequenceRepository,
	publisher port.EventPublisher,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		sequences:    sequences,
		publisher:    publisher,
	}
}

// Execute originates the loan. A missing interest rate is rejected outright;
// an explicit zero is a valid interest-free loan.
func (uc *CreateLoanUseCase) Execute(
	ctx context.Context,
	req dto.CreateLoanRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	if req.InterestRate == nil {
		return dto.LoanResponse{}, apperror.Validation("interest rate is required and must be a number")
	}

	frequency, err := valueobject.NewPaymentFrequency(req.PaymentFrequency)
	if err != nil {
		return dto.LoanResponse{}, apperror.Validation("%s", err.Error())
	}

	if _, err := uc.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find customer: %w", err)
	}

	seq, err := uc.sequences.Next(ctx, loanSequence)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("next loan sequence: %w", err)
	}
	id := fmt.Sprintf("LON-%04d", seq)

	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	loan, err := model.NewLoan(
		id, req.CustomerID,
		req.Amount, *req.InterestRate, req.AdditionalCharges,
		frequency, req.Duration, issueDate, req.Notes, now,
	)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toLoanResponse(loan), nil
}
