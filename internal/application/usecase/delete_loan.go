package usecase

import (
	"context"
	"fmt"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/port"
)

// DeleteLoanUseCase removes a loan record. Loans with recorded payments are
// protected; they carry financial history and must be kept.
type DeleteLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewDeleteLoanUseCase wires dependencies.
func NewDeleteLoanUseCase(loanRepo port.LoanRepository) *DeleteLoanUseCase {
	return &DeleteLoanUseCase{loanRepo: loanRepo}
}

// Execute deletes the loan when nothing has been paid against it.
func (uc *DeleteLoanUseCase) Execute(ctx context.Context, loanID string) error {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("find loan: %w", err)
	}

	if loan.HasRecordedPayments() {
		return apperror.Validation("loan %s has recorded payments and cannot be deleted", loanID)
	}

	if err := uc.loanRepo.Delete(ctx, loanID); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	return nil
}
