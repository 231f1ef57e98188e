package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/port"
)

// SweepOverdueUseCase walks loans whose due date has passed and re-derives
// their state, flipping installments and loans to overdue where warranted.
// It runs on a timer in the daemon and is also exposed for manual runs.
type SweepOverdueUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewSweepOverdueUseCase wires dependencies.
func NewSweepOverdueUseCase(loanRepo port.LoanRepository, publisher port.EventPublisher) *SweepOverdueUseCase {
	return &SweepOverdueUseCase{loanRepo: loanRepo, publisher: publisher}
}

// Execute runs one sweep. Version conflicts on individual loans are skipped;
// whoever won the write already holds fresher state and the next sweep will
// pick the loan up again.
func (uc *SweepOverdueUseCase) Execute(ctx context.Context) (dto.SweepResponse, error) {
	now := time.Now().UTC()

	loans, err := uc.loanRepo.FindActiveDueBefore(ctx, now)
	if err != nil {
		return dto.SweepResponse{}, fmt.Errorf("find due loans: %w", err)
	}

	resp := dto.SweepResponse{Scanned: len(loans)}
	for _, loan := range loans {
		updated, changed := loan.RefreshStatus(now)
		if !changed {
			continue
		}
		if err := uc.loanRepo.Save(ctx, updated); err != nil {
			if apperror.IsConflict(err) {
				continue
			}
			return resp, fmt.Errorf("save loan %s: %w", loan.ID(), err)
		}
		if err := uc.publisher.Publish(ctx, updated.DomainEvents()...); err != nil {
			return resp, fmt.Errorf("publish events: %w", err)
		}
		resp.Updated++
	}
	return resp, nil
}
