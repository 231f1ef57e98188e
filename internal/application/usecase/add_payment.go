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

// AddPaymentUseCase records a whole-loan payment without touching the
// installment schedule.
//
// Deprecated: kept for callers that predate per-installment payments. New
// integrations should use PayInstallmentUseCase or BulkPaymentUseCase.
type AddPaymentUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewAddPaymentUseCase wires dependencies.
func NewAddPaymentUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *AddPaymentUseCase {
	return &AddPaymentUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute records the payment against the loan totals directly.
func (uc *AddPaymentUseCase) Execute(
	ctx context.Context,
	req dto.AddPaymentRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	method := valueobject.PaymentMethodCash
	if req.Method != "" {
		var err error
		method, err = valueobject.NewPaymentMethod(req.Method)
		if err != nil {
			return dto.LoanResponse{}, apperror.Validation("%s", err.Error())
		}
	}

	var updated model.Loan
	for attempt := 0; ; attempt++ {
		loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
		if err != nil {
			return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
		}

		updated, err = loan.AddPayment(req.Amount, method, req.Notes, now)
		if err != nil {
			return dto.LoanResponse{}, err
		}

		err = uc.loanRepo.Save(ctx, updated)
		if err == nil {
			break
		}
		if apperror.IsConflict(err) && attempt < saveAttempts-1 {
			continue
		}
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, updated.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toLoanResponse(updated), nil
}
