package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

var issueDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateInstallmentSchedule_CeilingWithRemainder(t *testing.T) {
	// 1100 over 3 slots: ceil(1100/3) = 367, last absorbs 1100 - 734 = 366.
	total := decimal.NewFromInt(1100)

	schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyMonthly, 3, issueDate)

	require.Len(t, schedule, 3)
	assert.True(t, decimal.NewFromInt(367).Equal(schedule[0].Amount), "got %s", schedule[0].Amount)
	assert.True(t, decimal.NewFromInt(367).Equal(schedule[1].Amount), "got %s", schedule[1].Amount)
	assert.True(t, decimal.NewFromInt(366).Equal(schedule[2].Amount), "got %s", schedule[2].Amount)

	sum := decimal.Zero
	for _, inst := range schedule {
		sum = sum.Add(inst.Amount)
		assert.Equal(t, valueobject.InstallmentStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
		assert.Nil(t, inst.PaidDate)
	}
	assert.True(t, total.Equal(sum), "installments should sum to the total, got %s", sum)
}

func TestGenerateInstallmentSchedule_ExactDivision(t *testing.T) {
	total := decimal.NewFromInt(1200)

	schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyMonthly, 12, issueDate)

	require.Len(t, schedule, 12)
	for _, inst := range schedule {
		assert.True(t, decimal.NewFromInt(100).Equal(inst.Amount), "slot %d got %s", inst.Number, inst.Amount)
	}
}

func TestGenerateInstallmentSchedule_SingleInstallment(t *testing.T) {
	total := decimal.NewFromInt(550)

	schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyWeekly, 1, issueDate)

	require.Len(t, schedule, 1)
	assert.True(t, total.Equal(schedule[0].Amount))
	assert.Equal(t, issueDate.AddDate(0, 0, 7), schedule[0].DueDate)
}

func TestGenerateInstallmentSchedule_DueDates(t *testing.T) {
	total := decimal.NewFromInt(300)

	t.Run("daily advances one day per slot", func(t *testing.T) {
		schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyDaily, 3, issueDate)
		require.Len(t, schedule, 3)
		assert.Equal(t, issueDate.AddDate(0, 0, 1), schedule[0].DueDate)
		assert.Equal(t, issueDate.AddDate(0, 0, 2), schedule[1].DueDate)
		assert.Equal(t, issueDate.AddDate(0, 0, 3), schedule[2].DueDate)
	})

	t.Run("weekly advances seven days per slot", func(t *testing.T) {
		schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyWeekly, 3, issueDate)
		require.Len(t, schedule, 3)
		assert.Equal(t, issueDate.AddDate(0, 0, 7), schedule[0].DueDate)
		assert.Equal(t, issueDate.AddDate(0, 0, 21), schedule[2].DueDate)
	})

	t.Run("monthly keeps the day of month", func(t *testing.T) {
		schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyMonthly, 3, issueDate)
		require.Len(t, schedule, 3)
		assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	})

	t.Run("monthly clamps to the end of shorter months", func(t *testing.T) {
		jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		schedule := model.GenerateInstallmentSchedule(total, valueobject.PaymentFrequencyMonthly, 3, jan31)
		require.Len(t, schedule, 3)
		// 2024 is a leap year.
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	})

	t.Run("due dates are strictly increasing", func(t *testing.T) {
		for _, freq := range []valueobject.PaymentFrequency{
			valueobject.PaymentFrequencyDaily,
			valueobject.PaymentFrequencyWeekly,
			valueobject.PaymentFrequencyMonthly,
		} {
			schedule := model.GenerateInstallmentSchedule(decimal.NewFromInt(1000), freq, 10, issueDate)
			require.Len(t, schedule, 10)
			for i := 1; i < len(schedule); i++ {
				assert.True(t, schedule[i].DueDate.After(schedule[i-1].DueDate),
					"%s: slot %d not after slot %d", freq.String(), i+1, i)
			}
		}
	})
}

func TestGenerateInstallmentSchedule_InvalidInput(t *testing.T) {
	assert.Nil(t, model.GenerateInstallmentSchedule(decimal.NewFromInt(100), valueobject.PaymentFrequencyDaily, 0, issueDate))
	assert.Nil(t, model.GenerateInstallmentSchedule(decimal.Zero, valueobject.PaymentFrequencyDaily, 5, issueDate))
}

func TestInstallment_Remaining(t *testing.T) {
	inst := model.Installment{
		Number:     1,
		Amount:     decimal.NewFromInt(367),
		PaidAmount: decimal.NewFromInt(100),
	}
	assert.True(t, decimal.NewFromInt(267).Equal(inst.Remaining()))
}
