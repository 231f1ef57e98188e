package port

import (
	"context"
	"time"

	"github.com/microfin/loanbook/internal/domain/event"
	"github.com/microfin/loanbook/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loan aggregates. Save performs a
// compare-and-swap on the aggregate version and returns a ConflictError when
// the stored version has moved.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]model.Loan, error)
	List(ctx context.Context, status string, limit, offset int) ([]model.Loan, error)
	FindActiveDueBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (model.LoanStats, error)
}

// CustomerRepository persists and retrieves customers.
type CustomerRepository interface {
	Save(ctx context.Context, c model.Customer) error
	FindByID(ctx context.Context, id string) (model.Customer, error)
	FindByNIC(ctx context.Context, nic string) (model.Customer, error)
	List(ctx context.Context, limit, offset int) ([]model.Customer, error)
}

// SequenceRepository hands out monotonically increasing values for
// human-readable codes (LON-0001, CUS-0001). Implementations must increment
// atomically in the store, not in process.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
