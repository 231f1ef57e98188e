package testutil

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fixed identifiers for deterministic testing
const (
	TestCustomerID1 = "CUS-0001"
	TestCustomerID2 = "CUS-0002"
	TestLoanID1     = "LON-0001"
	TestLoanID2     = "LON-0002"
)

// TestIssueDate is a stable issue date well in the past so derived overdue
// states are deterministic.
var TestIssueDate = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

// Dec parses a decimal literal, panicking on malformed input. Test-only.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
