package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanbook/internal/domain/model"
	"github.com/microfin/loanbook/internal/domain/valueobject"
)

// installmentDoc is the JSONB shape of one installment slot.
type installmentDoc struct {
	Number     int             `json:"number"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"dueDate"`
	PaidDate   *time.Time      `json:"paidDate,omitempty"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
}

// paymentDoc is the JSONB shape of one payment-history entry.
type paymentDoc struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes,omitempty"`
}

func toInstallmentDocs(installments []model.Installment) []installmentDoc {
	docs := make([]installmentDoc, 0, len(installments))
	for _, inst := range installments {
		docs = append(docs, installmentDoc{
			Number:     inst.Number,
			Amount:     inst.Amount,
			DueDate:    inst.DueDate,
			PaidDate:   inst.PaidDate,
			PaidAmount: inst.PaidAmount,
			Status:     inst.Status.String(),
			Notes:      inst.Notes,
		})
	}
	return docs
}

func parseInstallmentDocs(data []byte) ([]model.Installment, error) {
	var docs []installmentDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	installments := make([]model.Installment, 0, len(docs))
	for _, doc := range docs {
		status, err := valueobject.NewInstallmentStatus(doc.Status)
		if err != nil {
			return nil, fmt.Errorf("installment %d: %w", doc.Number, err)
		}
		installments = append(installments, model.Installment{
			Number:     doc.Number,
			Amount:     doc.Amount,
			DueDate:    doc.DueDate,
			PaidDate:   doc.PaidDate,
			PaidAmount: doc.PaidAmount,
			Status:     status,
			Notes:      doc.Notes,
		})
	}
	return installments, nil
}

func toPaymentDocs(payments []model.PaymentRecord) []paymentDoc {
	docs := make([]paymentDoc, 0, len(payments))
	for _, rec := range payments {
		docs = append(docs, paymentDoc{
			ID:     rec.ID,
			Date:   rec.Date,
			Amount: rec.Amount,
			Method: rec.Method.String(),
			Notes:  rec.Notes,
		})
	}
	return docs
}

func parsePaymentDocs(data []byte) ([]model.PaymentRecord, error) {
	var docs []paymentDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	payments := make([]model.PaymentRecord, 0, len(docs))
	for _, doc := range docs {
		method, err := valueobject.NewPaymentMethod(doc.Method)
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", doc.ID, err)
		}
		payments = append(payments, model.PaymentRecord{
			ID:     doc.ID,
			Date:   doc.Date,
			Amount: doc.Amount,
			Method: method,
			Notes:  doc.Notes,
		})
	}
	return payments, nil
}
