package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/port"
)

// MarkDefaultedUseCase transitions a loan to defaulted. The transition is
// terminal and rejected for completed loans.
type MarkDefaultedUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewMarkDefaultedUseCase wires dependencies.
func NewMarkDefaultedUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *MarkDefaultedUseCase {
	return &MarkDefaultedUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute marks the loan defaulted.
func (uc *MarkDefaultedUseCase) Execute(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	updated, err := loan.MarkDefaulted(now)
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
