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

// UpdateLoanUseCase edits loan terms. Structural changes regenerate the
// schedule while keeping already-recorded payment facts; amount-only changes
// reprice the remaining slots.
type UpdateLoanUseCase struct {
	loanRepo     port.LoanRepository
	customerRepo port.CustomerRepository
	publisher    port.EventPublisher
}

// NewUpdateLoanUseCase wires dependencies.
func NewUpdateLoanUseCase(
	loanRepo port.LoanRepository,
	customerRepo port.CustomerRepository,
	publisher port.EventPublisher,
) *UpdateLoanUseCase {
	return &UpdateLoanUseCase{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
	}
}

// Execute applies the term changes and re-derives the loan state.
func (uc *UpdateLoanUseCase) Execute(
	ctx context.Context,
	req dto.UpdateLoanRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	if req.CustomerID != nil && *req.CustomerID != loan.CustomerID() {
		if _, err := uc.customerRepo.FindByID(ctx, *req.CustomerID); err != nil {
			return dto.LoanResponse{}, fmt.Errorf("find customer: %w", err)
		}
	}

	changes := model.TermChanges{
		CustomerID:        req.CustomerID,
		Principal:         req.Amount,
		InterestRate:      req.InterestRate,
		AdditionalCharges: req.AdditionalCharges,
		Duration:          req.Duration,
		IssueDate:         req.IssueDate,
		Notes:             req.Notes,
	}
	if req.PaymentFrequency != nil {
		frequency, err := valueobject.NewPaymentFrequency(*req.PaymentFrequency)
		if err != nil {
			return dto.LoanResponse{}, apperror.Validation("%s", err.Error())
		}
		changes.Frequency = &frequency
	}

	updated, err := loan.ApplyTermChanges(changes, now)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	if err := uc.loanRepo.Save(ctx, updated); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, updated.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toLoanResponse(updated), nil
}
