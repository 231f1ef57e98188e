package usecase

import (
	"github.com/microfin/loanbook/internal/application/dto"
	"github.com/microfin/loanbook/internal/domain/model"
)

func toCustomerResponse(c model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID(),
		FullName:  c.FullName(),
		NIC:       c.NIC(),
		Phone:     c.Phone(),
		Address:   c.Address(),
		Notes:     c.Notes(),
		Active:    c.Active(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func toInstallmentResponse(inst model.Installment) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		Number:     inst.Number,
		Amount:     inst.Amount,
		DueDate:    inst.DueDate,
		PaidDate:   inst.PaidDate,
		PaidAmount: inst.PaidAmount,
		Status:     inst.Status.String(),
		Notes:      inst.Notes,
	}
}

func toLoanSummary(l model.Loan) dto.LoanSummary {
	return dto.LoanSummary{
		ID:                   l.ID(),
		TotalAmount:          l.TotalAmount(),
		PaidAmount:           l.PaidAmount(),
		RemainingAmount:      l.RemainingAmount(),
		CompletionPercentage: l.CompletionPercentage(),
		Status:               l.Status().String(),
	}
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	installments := l.Installments()
	instResponses := make([]dto.InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		instResponses = append(instResponses, toInstallmentResponse(inst))
	}

	history := l.PaymentHistory()
	payResponses := make([]dto.PaymentRecordResponse, 0, len(history))
	for _, rec := range history {
		payResponses = append(payResponses, dto.PaymentRecordResponse{
			ID:     rec.ID,
			Date:   rec.Date,
			Amount: rec.Amount,
			Method: rec.Method.String(),
			Notes:  rec.Notes,
		})
	}

	return dto.LoanResponse{
		ID:                   l.ID(),
		CustomerID:           l.CustomerID(),
		Amount:               l.Principal(),
		InterestRate:         l.InterestRate(),
		AdditionalCharges:    l.AdditionalCharges(),
		PaymentFrequency:     l.Frequency().String(),
		Duration:             l.Duration(),
		IssueDate:            l.IssueDate(),
		DueDate:              l.DueDate(),
		TotalAmount:          l.TotalAmount(),
		PaidAmount:           l.PaidAmount(),
		RemainingAmount:      l.RemainingAmount(),
		CompletionPercentage: l.CompletionPercentage(),
		Status:               l.Status().String(),
		Notes:                l.Notes(),
		Installments:         instResponses,
		PaymentHistory:       payResponses,
		CreatedAt:            l.CreatedAt(),
		UpdatedAt:            l.UpdatedAt(),
	}
}
