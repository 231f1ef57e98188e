package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/valueobject"
	pkgpostgres "github.com/microfin/loanbook/pkg/postgres"
)

// LoanRepo implements port.LoanRepository. The loan row carries its
// installment schedule and payment history as JSONB documents; the aggregate
// is always written back whole.
type LoanRepo struct {
	db pkgpostgres.Querier
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(db pkgpostgres.Querier) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `
	id, customer_id, principal, interest_rate, additional_charges,
	frequency, duration, issue_date, due_date,
	total_amount, paid_amount, remaining_amount,
	status, notes, installments, payment_history,
	version, created_at, updated_at`

// Save persists the whole aggregate. Updates compare-and-swap on the stored
// version; a lost race surfaces as a ConflictError.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	installments, err := json.Marshal(toInstallmentDocs(loan.Installments()))
	if err != nil {
		return fmt.Errorf("marshal installments: %w", err)
	}
	payments, err := json.Marshal(toPaymentDocs(loan.PaymentHistory()))
	if err != nil {
		return fmt.Errorf("marshal payment history: %w", err)
	}

	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			customer_id        = EXCLUDED.customer_id,
			principal          = EXCLUDED.principal,
			interest_rate      = EXCLUDED.interest_rate,
			additional_charges = EXCLUDED.additional_charges,
			frequency          = EXCLUDED.frequency,
			duration           = EXCLUDED.duration,
			issue_date         = EXCLUDED.issue_date,
			due_date           = EXCLUDED.due_date,
			total_amount       = EXCLUDED.total_amount,
			paid_amount        = EXCLUDED.paid_amount,
			remaining_amount   = EXCLUDED.remaining_amount,
			status             = EXCLUDED.status,
			notes              = EXCLUDED.notes,
			installments       = EXCLUDED.installments,
			payment_history    = EXCLUDED.payment_history,
			version            = loans.version + 1,
			updated_at         = EXCLUDED.updated_at
		WHERE loans.version = $17
	`
	tag, err := r.db.Exec(ctx, query,
		loan.ID(), loan.CustomerID(), loan.Principal(), loan.InterestRate(), loan.AdditionalCharges(),
		loan.Frequency().String(), loan.Duration(), loan.IssueDate(), loan.DueDate(),
		loan.TotalAmount(), loan.PaidAmount(), loan.RemainingAmount(),
		loan.Status().String(), loan.Notes(), installments, payments,
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("loan %s was modified concurrently", loan.ID())
	}
	return nil
}

// FindByID retrieves one loan with its schedule and payment history.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	loan, err := scanLoanRow(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, apperror.NotFound("loan %s not found", id)
	}
	return loan, err
}

// FindByCustomerID retrieves all loans for one customer, newest first.
func (r *LoanRepo) FindByCustomerID(ctx context.Context, customerID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.queryLoans(ctx, query, customerID)
}

// List retrieves loans, optionally filtered by status.
func (r *LoanRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Loan, error) {
	if status != "" {
		query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		return r.queryLoans(ctx, query, status, limit, offset)
	}
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryLoans(ctx, query, limit, offset)
}

// FindActiveDueBefore retrieves loans the overdue sweep should look at:
// anything not terminal whose due date has passed or that is already overdue.
func (r *LoanRepo) FindActiveDueBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans
		WHERE status IN ('active', 'overdue') AND due_date <= $1
		ORDER BY due_date`
	return r.queryLoans(ctx, query, cutoff)
}

// Delete removes one loan row.
func (r *LoanRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("loan %s not found", id)
	}
	return nil
}

// Stats computes the portfolio summary in one aggregate query.
func (r *LoanRepo) Stats(ctx context.Context) (model.LoanStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'overdue'),
			COUNT(*) FILTER (WHERE status = 'defaulted'),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(remaining_amount) FILTER (WHERE status <> 'completed'), 0)
		FROM loans
	`
	var stats model.LoanStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalLoans, &stats.ActiveLoans, &stats.CompletedLoans,
		&stats.OverdueLoans, &stats.DefaultedLoans,
		&stats.TotalLent, &stats.TotalOutstanding,
	)
	if err != nil {
		return model.LoanStats{}, fmt.Errorf("loan stats: %w", err)
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, customerID                     string
		principal, interestRate, charges   decimal.Decimal
		frequencyStr                       string
		duration                           int
		issueDate, dueDate                 time.Time
		totalAmount, paidAmount, remaining decimal.Decimal
		statusStr, notes                   string
		installmentsJSON, paymentsJSON     []byte
		version                            int
		createdAt, updatedAt               time.Time
	)

	err := s.Scan(
		&id, &customerID, &principal, &interestRate, &charges,
		&frequencyStr, &duration, &issueDate, &dueDate,
		&totalAmount, &paidAmount, &remaining,
		&statusStr, &notes, &installmentsJSON, &paymentsJSON,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, err
	}

	frequency, err := valueobject.NewPaymentFrequency(frequencyStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse frequency: %w", err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	installments, err := parseInstallmentDocs(installmentsJSON)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse installments: %w", err)
	}
	payments, err := parsePaymentDocs(paymentsJSON)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse payment history: %w", err)
	}

	return model.ReconstructLoan(
		id, customerID,
		principal, interestRate, charges,
		frequency, duration,
		issueDate, dueDate,
		totalAmount, paidAmount, remaining,
		status, notes,
		installments, payments,
		version, createdAt, updatedAt,
	), nil
}
