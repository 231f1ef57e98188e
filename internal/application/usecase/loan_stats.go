package usecase

import (
	"context"
	"fmt"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/port"
)

// LoanStatsUseCase returns the portfolio summary for dashboards.
type LoanStatsUseCase struct {
	loanRepo port.LoanRepository
}

func NewLoanStatsUseCase(loanRepo port.LoanRepository) *LoanStatsUseCase {
	return &LoanStatsUseCase{loanRepo: loanRepo}
}

func (uc *LoanStatsUseCase) Execute(ctx context.Context) (dto.LoanStatsResponse, error) {
	stats, err := uc.loanRepo.Stats(ctx)
	if err != nil {
		return dto.LoanStatsResponse{}, fmt.Errorf("loan stats: %w", err)
	}
	return dto.LoanStatsResponse{
		TotalLoans:       stats.TotalLoans,
		ActiveLoans:      stats.ActiveLoans,
		CompletedLoans:   stats.CompletedLoans,
		OverdueLoans:     stats.OverdueLoans,
		DefaultedLoans:   stats.DefaultedLoans,
		TotalLoanAmount:  stats.TotalLent,
		TotalOutstanding: stats.TotalOutstanding,
	}, nil
}
