package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/event"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

var (
	minPrincipal = decimal.NewFromInt(1)
	maxPrincipal = decimal.NewFromInt(10_000_000)
	maxRate      = decimal.NewFromInt(100)
)

// PaymentRecord is one entry in the loan's append-only payment history.
type PaymentRecord struct {
	ID     string
	Date   time.Time
	Amount decimal.Decimal
	Method valueobject.PaymentMethod
	Notes  string
}

// Loan is an immutable aggregate. Mutations return a new copy. The loan owns
// its installment schedule and payment history exclusively; both are persisted
// and rewritten with the aggregate as a whole.
type Loan struct {
	id                string
	customerID        string
	principal         decimal.Decimal
	interestRate      decimal.Decimal
	additionalCharges decimal.Decimal
	frequency         valueobject.PaymentFrequency
	duration          int
	issueDate         time.Time
	dueDate           time.Time
	totalAmount       decimal.Decimal
	paidAmount        decimal.Decimal
	remainingAmount   decimal.Decimal
	status            valueobject.LoanStatus
	notes             string
	installments      []Installment
	payments          []PaymentRecord
	version           int
	createdAt         time.Time
	updatedAt         time.Time
	domainEvents      []event.DomainEvent
}

// TermChanges carries the editable loan fields for an update. Nil fields are
// left untouched.
type TermChanges struct {
	CustomerID        *string
	Principal         *decimal.Decimal
	InterestRate      *decimal.Decimal
	AdditionalCharges *decimal.Decimal
	Frequency         *valueobject.PaymentFrequency
	Duration          *int
	IssueDate         *time.Time
	Notes             *string
}

// InstallmentOverride carries administrative corrections for one installment.
// Nil fields are left untouched. The derivation pass runs afterwards, so the
// resulting statuses stay consistent with whatever was set.
type InstallmentOverride struct {
	Amount     *decimal.Decimal
	DueDate    *time.Time
	Notes      *string
	PaidAmount *decimal.Decimal
	PaidDate   *time.Time
}

// AppliedPayment describes one installment touched by a bulk payment.
type AppliedPayment struct {
	InstallmentNumber int
	AmountApplied     decimal.Decimal
	Status            valueobject.InstallmentStatus
}

// BulkPaymentResult summarises a bulk payment walk.
type BulkPaymentResult struct {
	Applied      []AppliedPayment
	TotalApplied decimal.Decimal
	Remaining    decimal.Decimal
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan, generates its installment schedule, and runs the
// derivation pass. The loan starts active with nothing paid.
func NewLoan(
	id, customerID string,
	principal, interestRate, additionalCharges decimal.Decimal,
	frequency valueobject.PaymentFrequency,
	duration int,
	issueDate time.Time,
	notes string,
	now time.Time,
) (Loan, error) {
	if id == "" {
		return Loan{}, apperror.Validation("loan id is required")
	}
	if customerID == "" {
		return Loan{}, apperror.Validation("customer is required")
	}
	if err := validateTerms(principal, interestRate, additionalCharges, duration); err != nil {
		return Loan{}, err
	}
	if frequency.IsZero() {
		return Loan{}, apperror.Validation("payment frequency is required")
	}
	if issueDate.IsZero() {
		issueDate = now
	}

	total := computeTotalAmount(principal, interestRate, additionalCharges)
	schedule := GenerateInstallmentSchedule(total, frequency, duration, issueDate)

	loan := Loan{
		id:                id,
		customerID:        customerID,
		principal:         principal,
		interestRate:      interestRate,
		additionalCharges: additionalCharges,
		frequency:         frequency,
		duration:          duration,
		issueDate:         issueDate,
		totalAmount:       total,
		paidAmount:        decimal.Zero,
		remainingAmount:   total,
		status:            valueobject.LoanStatusActive,
		notes:             notes,
		installments:      schedule,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}
	loan.derive(now)

	loan.domainEvents = append(loan.domainEvents, event.NewLoanCreated(
		id, customerID, principal, interestRate, additionalCharges,
		frequency.String(), duration, total, loan.dueDate,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, customerID string,
	principal, interestRate, additionalCharges decimal.Decimal,
	frequency valueobject.PaymentFrequency,
	duration int,
	issueDate, dueDate time.Time,
	totalAmount, paidAmount, remainingAmount decimal.Decimal,
	status valueobject.LoanStatus,
	notes string,
	installments []Installment,
	payments []PaymentRecord,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:                id,
		customerID:        customerID,
		principal:         principal,
		interestRate:      interestRate,
		additionalCharges: additionalCharges,
		frequency:         frequency,
		duration:          duration,
		issueDate:         issueDate,
		dueDate:           dueDate,
		totalAmount:       totalAmount,
		paidAmount:        paidAmount,
		remainingAmount:   remainingAmount,
		status:            status,
		notes:             notes,
		installments:      installments,
		payments:          payments,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func validateTerms(principal, interestRate, additionalCharges decimal.Decimal, duration int) error {
	if principal.LessThan(minPrincipal) {
		return apperror.Validation("amount must be greater than 0")
	}
	if principal.GreaterThan(maxPrincipal) {
		return apperror.Validation("amount cannot exceed 10,000,000")
	}
	if interestRate.IsNegative() {
		return apperror.Validation("interest rate cannot be negative")
	}
	if interestRate.GreaterThan(maxRate) {
		return apperror.Validation("interest rate cannot exceed 100%%")
	}
	if additionalCharges.IsNegative() {
		return apperror.Validation("additional charges cannot be negative")
	}
	if duration < 1 {
		return apperror.Validation("duration must be at least 1")
	}
	return nil
}

func computeTotalAmount(principal, interestRate, additionalCharges decimal.Decimal) decimal.Decimal {
	interest := principal.Mul(interestRate).Div(decimal.NewFromInt(100))
	return principal.Add(interest).Add(additionalCharges)
}

// ---------------------------------------------------------------------------
// Term changes (recalculation)
// ---------------------------------------------------------------------------

// ApplyTermChanges edits the loan's terms and keeps the schedule consistent.
//
// A frequency or duration change regenerates the whole schedule, carrying
// payment facts over by installment number; numbers beyond the new duration
// are dropped (their history entries remain). A principal, interest-rate, or
// charges change only reprices the existing slots. Either way the derivation
// pass runs afterwards.
func (l Loan) ApplyTermChanges(ch TermChanges, now time.Time) (Loan, error) {
	next := l
	next.domainEvents = copyEvents(l.domainEvents)

	if ch.CustomerID != nil {
		if *ch.CustomerID == "" {
			return l, apperror.Validation("customer is required")
		}
		next.customerID = *ch.CustomerID
	}

	principal := l.principal
	rate := l.interestRate
	charges := l.additionalCharges
	if ch.Principal != nil {
		principal = *ch.Principal
	}
	if ch.InterestRate != nil {
		rate = *ch.InterestRate
	}
	if ch.AdditionalCharges != nil {
		charges = *ch.AdditionalCharges
	}
	duration := l.duration
	if ch.Duration != nil {
		duration = *ch.Duration
	}
	if err := validateTerms(principal, rate, charges, duration); err != nil {
		return l, err
	}

	amountChanged := !principal.Equal(l.principal) || !rate.Equal(l.interestRate) || !charges.Equal(l.additionalCharges)
	next.principal = principal
	next.interestRate = rate
	next.additionalCharges = charges
	next.totalAmount = computeTotalAmount(principal, rate, charges)

	structureChanged := false
	if ch.Frequency != nil && !ch.Frequency.Equal(l.frequency) {
		next.frequency = *ch.Frequency
		structureChanged = true
	}
	if duration != l.duration {
		next.duration = duration
		structureChanged = true
	}
	if ch.IssueDate != nil {
		next.issueDate = *ch.IssueDate
	}
	if ch.Notes != nil {
		next.notes = *ch.Notes
	}

	switch {
	case structureChanged:
		next.installments = regenerateWithPayments(l.installments, next.totalAmount, next.frequency, next.duration, next.issueDate)
	case amountChanged:
		next.installments = repriceInstallments(l.installments, next.totalAmount)
	default:
		next.installments = copyInstallments(l.installments)
	}

	next.updatedAt = now
	next.derive(now)

	next.domainEvents = append(next.domainEvents, event.NewLoanTermsUpdated(
		l.id, next.customerID, next.totalAmount, next.frequency.String(), next.duration, next.dueDate,
	))

	return next, nil
}

// regenerateWithPayments builds a fresh schedule and carries paidAmount,
// paidDate, status, and notes over from the old slots at the same number.
// Only due dates and amounts are recomputed; payment facts survive.
func regenerateWithPayments(
	old []Installment,
	totalAmount decimal.Decimal,
	frequency valueobject.PaymentFrequency,
	duration int,
	issueDate time.Time,
) []Installment {
	fresh := GenerateInstallmentSchedule(totalAmount, frequency, duration, issueDate)

	byNumber := make(map[int]Installment, len(old))
	for _, inst := range old {
		if inst.Number <= duration {
			byNumber[inst.Number] = inst
		}
	}

	for i := range fresh {
		prev, ok := byNumber[fresh[i].Number]
		if !ok {
			continue
		}
		fresh[i].PaidAmount = prev.PaidAmount
		fresh[i].PaidDate = prev.PaidDate
		fresh[i].Status = prev.Status
		fresh[i].Notes = prev.Notes
	}
	return fresh
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

// PayInstallment applies a payment against one installment. The payment may
// not exceed what is still due on that slot. paidDate overrides the recorded
// payment date when supplied.
func (l Loan) PayInstallment(number int, amount decimal.Decimal, notes string, paidDate *time.Time, now time.Time) (Loan, error) {
	idx := -1
	for i, inst := range l.installments {
		if inst.Number == number {
			idx = i
			break
		}
	}
	if idx == -1 {
		return l, apperror.NotFound("installment %d not found", number)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return l, apperror.Validation("payment amount must be greater than 0")
	}
	if amount.GreaterThan(l.installments[idx].Remaining()) {
		return l, apperror.Validation("payment amount exceeds remaining installment amount")
	}

	recordedAt := now
	if paidDate != nil {
		recordedAt = *paidDate
	}

	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.installments = copyInstallments(l.installments)

	inst := &next.installments[idx]
	inst.PaidAmount = inst.PaidAmount.Add(amount)
	if notes != "" {
		inst.Notes = notes
	}
	if inst.PaidAmount.GreaterThanOrEqual(inst.Amount) {
		inst.PaidDate = &recordedAt
	}

	next.payments = appendPayment(l.payments, PaymentRecord{
		ID:     uuid.New().String(),
		Date:   recordedAt,
		Amount: amount,
		Method: valueobject.PaymentMethodCash,
		Notes:  installmentPaymentNote(number, notes),
	})

	wasCompleted := l.status.Equal(valueobject.LoanStatusCompleted)
	next.updatedAt = now
	next.derive(now)

	next.domainEvents = append(next.domainEvents, event.NewInstallmentPaymentReceived(
		l.id, number, amount, next.installments[idx].Status.String(), next.remainingAmount,
	))
	if !wasCompleted && next.status.Equal(valueobject.LoanStatusCompleted) {
		next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, next.paidAmount))
	}

	return next, nil
}

// ApplyBulkPayment spreads one payment across consecutive installments in
// ascending number order, starting at startFrom (or the first pending/partial
// slot when startFrom is 0). Already-paid slots are skipped. The walk stops at
// the first failed application; what was applied stays applied.
func (l Loan) ApplyBulkPayment(total decimal.Decimal, notes string, startFrom int, now time.Time) (Loan, BulkPaymentResult, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return l, BulkPaymentResult{}, apperror.Validation("total amount must be greater than 0")
	}

	start := startFrom
	if start <= 0 {
		start = 1
		if next := l.NextDueInstallment(); next != nil {
			start = next.Number
		}
	}

	result := BulkPaymentResult{
		TotalApplied: decimal.Zero,
		Remaining:    total,
	}

	current := l
	for n := start; n <= len(current.installments) && result.Remaining.IsPositive(); n++ {
		inst := current.installment(n)
		if inst == nil || inst.Status.Equal(valueobject.InstallmentStatusPaid) {
			continue
		}

		due := inst.Remaining()
		payment := decimal.Min(result.Remaining, due)

		updated, err := current.PayInstallment(n, payment, bulkPaymentNote(notes), nil, now)
		if err != nil {
			break
		}
		current = updated

		status := valueobject.InstallmentStatusPartial
		if payment.GreaterThanOrEqual(due) {
			status = valueobject.InstallmentStatusPaid
		}
		result.Applied = append(result.Applied, AppliedPayment{
			InstallmentNumber: n,
			AmountApplied:     payment,
			Status:            status,
		})
		result.TotalApplied = result.TotalApplied.Add(payment)
		result.Remaining = result.Remaining.Sub(payment)
	}

	return current, result, nil
}

// AddPayment records a whole-loan payment without targeting an installment.
//
// Deprecated: this legacy path bypasses installment bookkeeping entirely; the
// loan's paid amount moves but no slot does. It exists for migrated historical
// data only. New callers should use PayInstallment or ApplyBulkPayment.
func (l Loan) AddPayment(amount decimal.Decimal, method valueobject.PaymentMethod, notes string, now time.Time) (Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, apperror.Validation("payment amount must be greater than 0")
	}
	if amount.GreaterThan(l.remainingAmount) {
		return l, apperror.Validation("payment amount cannot exceed remaining amount")
	}
	if method.IsZero() {
		method = valueobject.PaymentMethodCash
	}

	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.payments = appendPayment(l.payments, PaymentRecord{
		ID:     uuid.New().String(),
		Date:   now,
		Amount: amount,
		Method: method,
		Notes:  notes,
	})

	next.paidAmount = l.paidAmount.Add(amount)
	next.remainingAmount = next.totalAmount.Sub(next.paidAmount)
	if next.paidAmount.GreaterThanOrEqual(next.totalAmount) {
		next.status = valueobject.LoanStatusCompleted
	}
	next.updatedAt = now

	next.domainEvents = append(next.domainEvents, event.NewLegacyPaymentRecorded(
		l.id, amount, method.String(), next.remainingAmount,
	))

	return next, nil
}

// ---------------------------------------------------------------------------
// Administrative operations
// ---------------------------------------------------------------------------

// OverrideInstallment applies administrative corrections to one installment
// and re-derives all dependent state.
func (l Loan) OverrideInstallment(number int, ov InstallmentOverride, now time.Time) (Loan, error) {
	idx := -1
	for i, inst := range l.installments {
		if inst.Number == number {
			idx = i
			break
		}
	}
	if idx == -1 {
		return l, apperror.NotFound("installment %d not found", number)
	}

	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.installments = copyInstallments(l.installments)

	inst := &next.installments[idx]
	if ov.Amount != nil {
		if ov.Amount.IsNegative() {
			return l, apperror.Validation("installment amount cannot be negative")
		}
		inst.Amount = *ov.Amount
	}
	if ov.DueDate != nil {
		inst.DueDate = *ov.DueDate
	}
	if ov.Notes != nil {
		inst.Notes = *ov.Notes
	}
	if ov.PaidAmount != nil {
		if ov.PaidAmount.IsNegative() {
			return l, apperror.Validation("paid amount cannot be negative")
		}
		inst.PaidAmount = *ov.PaidAmount
	}
	if ov.PaidDate != nil {
		inst.PaidDate = ov.PaidDate
	}

	next.updatedAt = now
	next.derive(now)
	return next, nil
}

// MarkDefaulted moves the loan to the terminal defaulted status.
func (l Loan) MarkDefaulted(now time.Time) (Loan, error) {
	if l.status.Equal(valueobject.LoanStatusCompleted) || l.status.Equal(valueobject.LoanStatusDefaulted) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusDefaulted
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDefaulted(l.id, l.remainingAmount))
	return next, nil
}

// RefreshStatus re-runs the derivation pass so the passage of time alone can
// flip pending installments and active loans to overdue. The bool reports
// whether anything changed.
func (l Loan) RefreshStatus(now time.Time) (Loan, bool) {
	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.installments = copyInstallments(l.installments)

	wasOverdue := l.status.Equal(valueobject.LoanStatusOverdue)
	before := l.statusFingerprint()
	next.derive(now)
	changed := next.statusFingerprint() != before

	if changed {
		next.updatedAt = now
	}
	if !wasOverdue && next.status.Equal(valueobject.LoanStatusOverdue) {
		next.domainEvents = append(next.domainEvents, event.NewLoanOverdue(l.id, next.remainingAmount, next.dueDate))
	}
	return next, changed
}

// ---------------------------------------------------------------------------
// Derivation pass
// ---------------------------------------------------------------------------

// derive is the single place all derived state is recomputed: loan paid and
// remaining amounts, every installment's status, the loan's due date, and the
// loan's own status. It is idempotent and must run after every mutation.
func (l *Loan) derive(now time.Time) {
	if len(l.installments) > 0 {
		l.dueDate = l.installments[len(l.installments)-1].DueDate
	}

	today := startOfDay(now)
	paid := decimal.Zero
	for i := range l.installments {
		inst := &l.installments[i]
		paid = paid.Add(inst.PaidAmount)

		switch {
		case inst.PaidAmount.GreaterThanOrEqual(inst.Amount):
			inst.Status = valueobject.InstallmentStatusPaid
			if inst.PaidDate == nil {
				t := now
				inst.PaidDate = &t
			}
		case inst.PaidAmount.IsPositive():
			inst.Status = valueobject.InstallmentStatusPartial
		case startOfDay(inst.DueDate).Before(today):
			inst.Status = valueobject.InstallmentStatusOverdue
		default:
			inst.Status = valueobject.InstallmentStatusPending
		}
	}

	l.paidAmount = paid
	l.remainingAmount = l.totalAmount.Sub(paid)

	switch {
	case l.paidAmount.GreaterThanOrEqual(l.totalAmount):
		l.status = valueobject.LoanStatusCompleted
	case l.status.Equal(valueobject.LoanStatusCompleted):
		// Paid amount dropped back below the total (e.g. a term edit raised
		// the total): the loan is live again.
		l.status = valueobject.LoanStatusActive
	case l.status.Equal(valueobject.LoanStatusActive) && l.dueDate.Before(now):
		l.status = valueobject.LoanStatusOverdue
	}
}

func (l Loan) statusFingerprint() string {
	fp := l.status.String()
	for _, inst := range l.installments {
		fp += "|" + inst.Status.String()
	}
	return fp
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                             { return l.id }
func (l Loan) CustomerID() string                     { return l.customerID }
func (l Loan) Principal() decimal.Decimal             { return l.principal }
func (l Loan) InterestRate() decimal.Decimal          { return l.interestRate }
func (l Loan) AdditionalCharges() decimal.Decimal     { return l.additionalCharges }
func (l Loan) Frequency() valueobject.PaymentFrequency { return l.frequency }
func (l Loan) Duration() int                          { return l.duration }
func (l Loan) IssueDate() time.Time                   { return l.issueDate }
func (l Loan) DueDate() time.Time                     { return l.dueDate }
func (l Loan) TotalAmount() decimal.Decimal           { return l.totalAmount }
func (l Loan) PaidAmount() decimal.Decimal            { return l.paidAmount }
func (l Loan) RemainingAmount() decimal.Decimal       { return l.remainingAmount }
func (l Loan) Status() valueobject.LoanStatus         { return l.status }
func (l Loan) Notes() string                          { return l.notes }
func (l Loan) Version() int                           { return l.version }
func (l Loan) CreatedAt() time.Time                   { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                   { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent      { return l.domainEvents }

// Installments returns a defensive copy of the schedule.
func (l Loan) Installments() []Installment {
	return copyInstallments(l.installments)
}

// PaymentHistory returns a defensive copy of the payment log.
func (l Loan) PaymentHistory() []PaymentRecord {
	if l.payments == nil {
		return nil
	}
	out := make([]PaymentRecord, len(l.payments))
	copy(out, l.payments)
	return out
}

// NextDueInstallment returns the lowest-numbered pending or partial
// installment, or nil when everything is settled. Number order, not due-date
// order: the generator keeps the two in sync.
func (l Loan) NextDueInstallment() *Installment {
	for _, inst := range l.installments {
		if inst.Status.Equal(valueobject.InstallmentStatusPending) || inst.Status.Equal(valueobject.InstallmentStatusPartial) {
			out := inst
			return &out
		}
	}
	return nil
}

// CompletionPercentage returns paid progress rounded to whole percent.
func (l Loan) CompletionPercentage() int {
	if l.totalAmount.IsZero() {
		return 0
	}
	pct := l.paidAmount.Div(l.totalAmount).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// HasRecordedPayments reports whether any installment carries paid amount.
// Deletion policy hangs off this.
func (l Loan) HasRecordedPayments() bool {
	for _, inst := range l.installments {
		if inst.PaidAmount.IsPositive() {
			return true
		}
	}
	return false
}

func (l Loan) installment(number int) *Installment {
	for i := range l.installments {
		if l.installments[i].Number == number {
			return &l.installments[i]
		}
	}
	return nil
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func copyInstallments(in []Installment) []Installment {
	if in == nil {
		return nil
	}
	out := make([]Installment, len(in))
	copy(out, in)
	return out
}

func appendPayment(in []PaymentRecord, rec PaymentRecord) []PaymentRecord {
	out := make([]PaymentRecord, len(in)+1)
	copy(out, in)
	out[len(in)] = rec
	return out
}

func copyEvents(in []event.DomainEvent) []event.DomainEvent {
	if in == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(in))
	copy(out, in)
	return out
}

func installmentPaymentNote(number int, notes string) string {
	note := fmt.Sprintf("Payment for installment %d.", number)
	if notes != "" {
		note += " " + notes
	}
	return note
}

func bulkPaymentNote(notes string) string {
	if notes == "" {
		return "Bulk payment"
	}
	return notes + " (Bulk payment)"
}

