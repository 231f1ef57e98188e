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

// BulkPaymentUseCase spreads one payment amount across consecutive
// installments, oldest unpaid first.
type BulkPaymentUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewBulkPaymentUseCase wires dependencies.
func NewBulkPaymentUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *BulkPaymentUseCase {
	return &BulkPaymentUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute applies the bulk payment, retrying on version conflicts.
func (uc *BulkPaymentUseCase) Execute(
	ctx context.Context,
	req dto.BulkPaymentRequest,
) (dto.BulkPaymentResponse, error) {
	now := time.Now().UTC()

	var (
		updated model.Loan
		result  model.BulkPaymentResult
	)
	for attempt := 0; ; attempt++ {
		loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
		if err != nil {
			return dto.BulkPaymentResponse{}, fmt.Errorf("find loan: %w", err)
		}

		updated, result, err = loan.ApplyBulkPayment(req.TotalAmount, req.Notes, req.StartFromInstallment, now)
		if err != nil {
			return dto.BulkPaymentResponse{}, err
		}

		err = uc.loanRepo.Save(ctx, updated)
		if err == nil {
			break
		}
		if apperror.IsConflict(err) && attempt < saveAttempts-1 {
			continue
		}
		return dto.BulkPaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, updated.DomainEvents()...); err != nil {
		return dto.BulkPaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	resp := dto.BulkPaymentResponse{
		TotalApplied:    result.TotalApplied,
		RemainingAmount: result.Remaining,
		Loan:            toLoanSummary(updated),
	}
	for _, applied := range result.Applied {
		resp.PaymentsApplied = append(resp.PaymentsApplied, dto.AppliedPaymentResponse{
			InstallmentNumber: applied.InstallmentNumber,
			AmountApplied:     applied.AmountApplied,
			Status:            applied.Status.String(),
		})
	}
	return resp, nil
}
