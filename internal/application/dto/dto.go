package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateCustomerRequest carries the data for a new customer record.
type CreateCustomerRequest struct {
	FullName string `json:"fullName"`
	NIC      string `json:"nic"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

// UpdateCustomerRequest carries partial customer edits. Nil means unchanged.
type UpdateCustomerRequest struct {
	CustomerID string  `json:"customerId"`
	FullName   *string `json:"fullName"`
	NIC        *string `json:"nic"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Notes      *string `json:"notes"`
	Active     *bool   `json:"active"`
}

// CreateLoanRequest carries the data for loan origination. InterestRate is a
// pointer on purpose: an absent rate is a hard validation error, while an
// explicit zero is a valid interest-free loan.
type CreateLoanRequest struct {
	CustomerID        string           `json:"customer"`
	Amount            decimal.Decimal  `json:"amount"`
	InterestRate      *decimal.Decimal `json:"interestRate"`
	AdditionalCharges decimal.Decimal  `json:"additionalCharges"`
	PaymentFrequency  string           `json:"paymentMethod"`
	Duration          int              `json:"duration"`
	IssueDate         *time.Time       `json:"issueDate"`
	Notes             string           `json:"notes"`
}

// UpdateLoanRequest carries partial term edits. Nil means unchanged.
type UpdateLoanRequest struct {
	LoanID            string           `json:"loanId"`
	CustomerID        *string          `json:"customer"`
	Amount            *decimal.Decimal `json:"amount"`
	InterestRate      *decimal.Decimal `json:"interestRate"`
	AdditionalCharges *decimal.Decimal `json:"additionalCharges"`
	PaymentFrequency  *string          `json:"paymentMethod"`
	Duration          *int             `json:"duration"`
	IssueDate         *time.Time       `json:"issueDate"`
	Notes             *string          `json:"notes"`
}

// PayInstallmentRequest targets one installment with a payment.
type PayInstallmentRequest struct {
	LoanID            string          `json:"loanId"`
	InstallmentNumber int             `json:"installmentNumber"`
	Amount            decimal.Decimal `json:"amount"`
	Notes             string          `json:"notes"`
	PaidDate          *time.Time      `json:"paidDate"`
}

// BulkPaymentRequest spreads one payment across consecutive installments.
// StartFromInstallment 0 means "first pending or partial slot".
type BulkPaymentRequest struct {
	LoanID               string          `json:"loanId"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Notes                string          `json:"notes"`
	StartFromInstallment int             `json:"startFromInstallment"`
}

// AddPaymentRequest is the legacy whole-loan payment input.
type AddPaymentRequest struct {
	LoanID string          `json:"loanId"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes"`
}

// OverrideInstallmentRequest carries administrative installment corrections.
type OverrideInstallmentRequest struct {
	LoanID            string           `json:"loanId"`
	InstallmentNumber int              `json:"installmentNumber"`
	Amount            *decimal.Decimal `json:"installmentAmount"`
	DueDate           *time.Time       `json:"dueDate"`
	Notes             *string          `json:"notes"`
	PaidAmount        *decimal.Decimal `json:"paidAmount"`
	PaidDate          *time.Time       `json:"paidDate"`
}

// ListLoansRequest filters the loan listing.
type ListLoansRequest struct {
	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// CustomerResponse is the external representation of a customer.
type CustomerResponse struct {
	ID        string    `json:"customerId"`
	FullName  string    `json:"fullName"`
	NIC       string    `json:"nic"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InstallmentResponse represents one installment slot.
type InstallmentResponse struct {
	Number     int             `json:"installmentNumber"`
	Amount     decimal.Decimal `json:"installmentAmount"`
	DueDate    time.Time       `json:"dueDate"`
	PaidDate   *time.Time      `json:"paidDate"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
}

// PaymentRecordResponse represents one payment-history entry.
type PaymentRecordResponse struct {
	ID     string          `json:"paymentId"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes,omitempty"`
}

// LoanResponse is the external representation of a loan aggregate.
type LoanResponse struct {
	ID                   string                  `json:"loanId"`
	CustomerID           string                  `json:"customer"`
	Amount               decimal.Decimal         `json:"amount"`
	InterestRate         decimal.Decimal         `json:"interestRate"`
	AdditionalCharges    decimal.Decimal         `json:"additionalCharges"`
	PaymentFrequency     string                  `json:"paymentMethod"`
	Duration             int                     `json:"duration"`
	IssueDate            time.Time               `json:"issueDate"`
	DueDate              time.Time               `json:"dueDate"`
	TotalAmount          decimal.Decimal         `json:"totalAmount"`
	PaidAmount           decimal.Decimal         `json:"paidAmount"`
	RemainingAmount      decimal.Decimal         `json:"remainingAmount"`
	CompletionPercentage int                     `json:"completionPercentage"`
	Status               string                  `json:"status"`
	Notes                string                  `json:"notes,omitempty"`
	Installments         []InstallmentResponse   `json:"installments,omitempty"`
	PaymentHistory       []PaymentRecordResponse `json:"paymentHistory,omitempty"`
	CreatedAt            time.Time               `json:"createdAt"`
	UpdatedAt            time.Time               `json:"updatedAt"`
}

// LoanSummary is the aggregate snapshot returned alongside payment results.
type LoanSummary struct {
	ID                   string          `json:"loanId"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	PaidAmount           decimal.Decimal `json:"paidAmount"`
	RemainingAmount      decimal.Decimal `json:"remainingAmount"`
	CompletionPercentage int             `json:"completionPercentage"`
	Status               string          `json:"status"`
}

// PaymentResponse is the result of a single-installment payment.
type PaymentResponse struct {
	Installment InstallmentResponse `json:"installment"`
	Loan        LoanSummary         `json:"loan"`
	PaymentID   string              `json:"paymentId"`
}

// AppliedPaymentResponse is one slot touched by a bulk payment.
type AppliedPaymentResponse struct {
	InstallmentNumber int             `json:"installmentNumber"`
	AmountApplied     decimal.Decimal `json:"amountApplied"`
	Status            string          `json:"status"`
}

// BulkPaymentResponse summarises a bulk payment.
type BulkPaymentResponse struct {
	PaymentsApplied []AppliedPaymentResponse `json:"paymentsApplied"`
	TotalApplied    decimal.Decimal          `json:"totalApplied"`
	RemainingAmount decimal.Decimal          `json:"remainingAmount"`
	Loan            LoanSummary              `json:"loan"`
}

// ScheduleResponse is the installment schedule plus a summary.
type ScheduleResponse struct {
	LoanID          string                `json:"loanId"`
	Installments    []InstallmentResponse `json:"installments"`
	PaidCount       int                   `json:"paidCount"`
	PendingCount    int                   `json:"pendingCount"`
	OverdueCount    int                   `json:"overdueCount"`
	NextDue         *InstallmentResponse  `json:"nextDueInstallment"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
	PaidAmount      decimal.Decimal       `json:"paidAmount"`
	RemainingAmount decimal.Decimal       `json:"remainingAmount"`
}

// LoanStatsResponse is the portfolio summary for dashboards.
type LoanStatsResponse struct {
	TotalLoans       int64           `json:"totalLoans"`
	ActiveLoans      int64           `json:"activeLoans"`
	CompletedLoans   int64           `json:"completedLoans"`
	OverdueLoans     int64           `json:"overdueLoans"`
	DefaultedLoans   int64           `json:"defaultedLoans"`
	TotalLoanAmount  decimal.Decimal `json:"totalLoanAmount"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// SweepResponse reports one overdue sweep run.
type SweepResponse struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}
