package model

import "github.com/shopspring/decimal"

// LoanStats is a read-only portfolio summary computed by the store.
type LoanStats struct {
	TotalLoans       int64
	ActiveLoans      int64
	CompletedLoans   int64
	OverdueLoans     int64
	DefaultedLoans   int64
	TotalLent        decimal.Decimal
	TotalOutstanding decimal.Decimal
}
