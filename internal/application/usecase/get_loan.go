package usecase

import (
	"context"
	"fmt"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/port"
)

// GetLoanUseCase fetches one loan with its schedule and payment history.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

func (uc *GetLoanUseCase) Execute(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ListLoansUseCase lists loans, optionally filtered by customer or status.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

func (uc *ListLoansUseCase) Execute(ctx context.Context, req dto.ListLoansRequest) ([]dto.LoanResponse, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	var (
		loans []model.Loan
		err   error
	)
	if req.CustomerID != "" {
		loans, err = uc.loanRepo.FindByCustomerID(ctx, req.CustomerID)
	} else {
		loans, err = uc.loanRepo.List(ctx, req.Status, req.Limit, req.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	out := make([]dto.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out, nil
}
