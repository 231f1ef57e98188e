package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/port"
)

// saveAttempts bounds the reload-and-retry loop the payment use cases run
// when a concurrent writer bumps the aggregate version between read and save.
const saveAttempts = 3

// PayInstallmentUseCase applies a payment to a single installment.
type PayInstallmentUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewPayInstallmentUseCase wires dependencies.
func NewPayInstallmentUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *PayInstallmentUseCase {
	return &PayInstallmentUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute records the payment. On a version conflict the loan is reloaded
// and the payment replayed against the fresh state, up to saveAttempts times.
func (uc *PayInstallmentUseCase) Execute(
	ctx context.Context,
	req dto.PayInstallmentRequest,
) (dto.PaymentResponse, error) {
	now := time.Now().UTC()

	var updated model.Loan
	for attempt := 0; ; attempt++ {
		loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
		if err != nil {
			return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
		}

		updated, err = loan.PayInstallment(req.InstallmentNumber, req.Amount, req.Notes, req.PaidDate, now)
		if err != nil {
			return dto.PaymentResponse{}, err
		}

		err = uc.loanRepo.Save(ctx, updated)
		if err == nil {
			break
		}
		if apperror.IsConflict(err) && attempt < saveAttempts-1 {
			continue
		}
		return dto.PaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, updated.DomainEvents()...); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	resp := dto.PaymentResponse{Loan: toLoanSummary(updated)}
	for _, inst := range updated.Installments() {
		if inst.Number == req.InstallmentNumber {
			resp.Installment = toInstallmentResponse(inst)
			break
		}
	}
	if history := updated.PaymentHistory(); len(history) > 0 {
		resp.PaymentID = history[len(history)-1].ID
	}
	return resp, nil
}
