package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/port"
)

// OverrideInstallmentUseCase applies administrative corrections to one
// installment slot and re-derives the loan state afterwards.
type OverrideInstallmentUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewOverrideInstallmentUseCase wires dependencies.
func NewOverrideInstallmentUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *OverrideInstallmentUseCase {
	return &OverrideInstallmentUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute applies the override.
func (uc *OverrideInstallmentUseCase) Execute(
	ctx context.Context,
	req dto.OverrideInstallmentRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	updated, err := loan.OverrideInstallment(req.InstallmentNumber, model.InstallmentOverride{
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
		PaidAmount: req.PaidAmount,
		PaidDate:   req.PaidDate,
	}, now)
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
