package usecase

import (
	"context"
	"fmt"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/port"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

// GetScheduleUseCase returns the installment schedule with paid/pending
// counters and the next installment falling due.
type GetScheduleUseCase struct {
	loanRepo port.LoanRepository
}

func NewGetScheduleUseCase(loanRepo port.LoanRepository) *GetScheduleUseCase {
	return &GetScheduleUseCase{loanRepo: loanRepo}
}

func (uc *GetScheduleUseCase) Execute(ctx context.Context, loanID string) (dto.ScheduleResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find loan: %w", err)
	}

	resp := dto.ScheduleResponse{
		LoanID:          loan.ID(),
		TotalAmount:     loan.TotalAmount(),
		PaidAmount:      loan.PaidAmount(),
		RemainingAmount: loan.RemainingAmount(),
	}
	for _, inst := range loan.Installments() {
		resp.Installments = append(resp.Installments, toInstallmentResponse(inst))
		switch inst.Status {
		case valueobject.InstallmentStatusPaid:
			resp.PaidCount++
		case valueobject.InstallmentStatusOverdue:
			resp.OverdueCount++
		default:
			resp.PendingCount++
		}
	}
	if next := loan.NextDueInstallment(); next != nil {
		instResp := toInstallmentResponse(*next)
		resp.NextDue = &instResp
	}
	return resp, nil
}
