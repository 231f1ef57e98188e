package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanbook/internal/domain/valueobject"
)

// Installment is one scheduled partial payment of a loan. Installments are
// owned by the Loan aggregate; Number is 1-based and dense.
type Installment struct {
	Number     int
	Amount     decimal.Decimal
	DueDate    time.Time
	PaidDate   *time.Time
	PaidAmount decimal.Decimal
	Status     valueobject.InstallmentStatus
	Notes      string
}

// Remaining returns the amount still due on this installment.
func (i Installment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// GenerateInstallmentSchedule splits a loan's total repayable amount into a
// fixed sequence of installments.
//
// Every slot gets ceil(totalAmount/duration) except the last, which absorbs
// the rounding remainder so the slots sum to totalAmount exactly. Rounding up
// is deliberate: the error accumulates in the lender's favour and is handed
// back on the final installment.
//
// Due dates are derived from issueDate: +i days (daily), +7i days (weekly),
// or +i calendar months with month-end clamping (monthly).
func GenerateInstallmentSchedule(
	totalAmount decimal.Decimal,
	frequency valueobject.PaymentFrequency,
	duration int,
	issueDate time.Time,
) []Installment {
	if duration <= 0 || totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	base := totalAmount.Div(decimal.NewFromInt(int64(duration))).Ceil()

	schedule := make([]Installment, 0, duration)
	for i := 1; i <= duration; i++ {
		amount := base
		if i == duration {
			amount = totalAmount.Sub(base.Mul(decimal.NewFromInt(int64(duration - 1))))
			if amount.IsNegative() {
				amount = decimal.Zero
			}
		}

		schedule = append(schedule, Installment{
			Number:     i,
			Amount:     amount,
			DueDate:    installmentDueDate(issueDate, frequency, i),
			PaidAmount: decimal.Zero,
			Status:     valueobject.InstallmentStatusPending,
		})
	}

	return schedule
}

func installmentDueDate(issueDate time.Time, frequency valueobject.PaymentFrequency, n int) time.Time {
	switch frequency {
	case valueobject.PaymentFrequencyWeekly:
		return issueDate.AddDate(0, 0, 7*n)
	case valueobject.PaymentFrequencyMonthly:
		return addMonthsClamped(issueDate, n)
	default:
		return issueDate.AddDate(0, 0, n)
	}
}

// addMonthsClamped adds n calendar months, clamping to the last day of the
// target month when the source day does not exist there (Jan 31 + 1mo =
// Feb 28/29, never Mar 2).
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(n), 1, hour, min, sec, t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// repriceInstallments recomputes every slot's amount against a new total
// using the same ceiling-then-last-absorbs rule, leaving due dates and
// payment facts untouched.
func repriceInstallments(installments []Installment, totalAmount decimal.Decimal) []Installment {
	n := len(installments)
	if n == 0 {
		return installments
	}

	base := totalAmount.Div(decimal.NewFromInt(int64(n))).Ceil()
	out := make([]Installment, n)
	copy(out, installments)

	for i := range out {
		if i == n-1 {
			last := totalAmount.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
			if last.IsNegative() {
				last = decimal.Zero
			}
			out[i].Amount = last
		} else {
			out[i].Amount = base
		}
	}
	return out
}
