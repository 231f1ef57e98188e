package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanbook/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Customer events
// ---------------------------------------------------------------------------

// CustomerRegistered is raised when a new customer record enters the system.
type CustomerRegistered struct {
	events.BaseEvent
	FullName string `json:"full_name"`
	NIC      string `json:"nic"`
}

func NewCustomerRegistered(customerID, fullName, nic string) CustomerRegistered {
	return CustomerRegistered{
		BaseEvent: events.NewBaseEvent("loanbook.customer.registered", customerID, "Customer"),
		FullName:  fullName,
		NIC:       nic,
	}
}

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanCreated is raised when a loan is issued and its schedule generated.
type LoanCreated struct {
	events.BaseEvent
	CustomerID        string          `json:"customer_id"`
	Principal         decimal.Decimal `json:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	Frequency         string          `json:"payment_frequency"`
	Duration          int             `json:"duration"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	DueDate           time.Time       `json:"due_date"`
}

func NewLoanCreated(
	loanID, customerID string,
	principal, interestRate, additionalCharges decimal.Decimal,
	frequency string, duration int,
	totalAmount decimal.Decimal, dueDate time.Time,
) LoanCreated {
	return LoanCreated{
		BaseEvent:         events.NewBaseEvent("loanbook.loan.created", loanID, "Loan"),
		CustomerID:        customerID,
		Principal:         principal,
		InterestRate:      interestRate,
		AdditionalCharges: additionalCharges,
		Frequency:         frequency,
		Duration:          duration,
		TotalAmount:       totalAmount,
		DueDate:           dueDate,
	}
}

// LoanTermsUpdated is raised when a loan's terms change and the schedule is
// recalculated.
type LoanTermsUpdated struct {
	events.BaseEvent
	CustomerID  string          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Frequency   string          `json:"payment_frequency"`
	Duration    int             `json:"duration"`
	DueDate     time.Time       `json:"due_date"`
}

func NewLoanTermsUpdated(
	loanID, customerID string,
	totalAmount decimal.Decimal,
	frequency string, duration int, dueDate time.Time,
) LoanTermsUpdated {
	return LoanTermsUpdated{
		BaseEvent:   events.NewBaseEvent("loanbook.loan.terms_updated", loanID, "Loan"),
		CustomerID:  customerID,
		TotalAmount: totalAmount,
		Frequency:   frequency,
		Duration:    duration,
		DueDate:     dueDate,
	}
}

// InstallmentPaymentReceived is raised when a payment lands on an installment.
type InstallmentPaymentReceived struct {
	events.BaseEvent
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	InstallmentStatus string          `json:"installment_status"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
}

func NewInstallmentPaymentReceived(
	loanID string, number int,
	amount decimal.Decimal, installmentStatus string,
	remaining decimal.Decimal,
) InstallmentPaymentReceived {
	return InstallmentPaymentReceived{
		BaseEvent:         events.NewBaseEvent("loanbook.loan.installment_payment", loanID, "Loan"),
		InstallmentNumber: number,
		Amount:            amount,
		InstallmentStatus: installmentStatus,
		RemainingAmount:   remaining,
	}
}

// LegacyPaymentRecorded is raised by the deprecated whole-loan payment path.
type LegacyPaymentRecorded struct {
	events.BaseEvent
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func NewLegacyPaymentRecorded(loanID string, amount decimal.Decimal, method string, remaining decimal.Decimal) LegacyPaymentRecorded {
	return LegacyPaymentRecorded{
		BaseEvent:       events.NewBaseEvent("loanbook.loan.legacy_payment", loanID, "Loan"),
		Amount:          amount,
		Method:          method,
		RemainingAmount: remaining,
	}
}

// LoanCompleted is raised when a loan becomes fully paid.
type LoanCompleted struct {
	events.BaseEvent
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

func NewLoanCompleted(loanID string, paidAmount decimal.Decimal) LoanCompleted {
	return LoanCompleted{
		BaseEvent:  events.NewBaseEvent("loanbook.loan.completed", loanID, "Loan"),
		PaidAmount: paidAmount,
	}
}

// LoanOverdue is raised when the sweep flips a loan to overdue.
type LoanOverdue struct {
	events.BaseEvent
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         time.Time       `json:"due_date"`
}

func NewLoanOverdue(loanID string, remaining decimal.Decimal, dueDate time.Time) LoanOverdue {
	return LoanOverdue{
		BaseEvent:       events.NewBaseEvent("loanbook.loan.overdue", loanID, "Loan"),
		RemainingAmount: remaining,
		DueDate:         dueDate,
	}
}

// LoanDefaulted is raised when a loan is administratively declared defaulted.
type LoanDefaulted struct {
	events.BaseEvent
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func NewLoanDefaulted(loanID string, remaining decimal.Decimal) LoanDefaulted {
	return LoanDefaulted{
		BaseEvent:       events.NewBaseEvent("loanbook.loan.defaulted", loanID, "Loan"),
		RemainingAmount: remaining,
	}
}
