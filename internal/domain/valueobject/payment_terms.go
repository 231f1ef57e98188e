package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// PaymentFrequency – immutable value object
// ---------------------------------------------------------------------------

// PaymentFrequency is the cadence at which installments fall due.
type PaymentFrequency struct {
	value string
}

const (
	frequencyDaily   = "daily"
	frequencyWeekly  = "weekly"
	frequencyMonthly = "monthly"
)

var (
	PaymentFrequencyDaily   = PaymentFrequency{value: frequencyDaily}
	PaymentFrequencyWeekly  = PaymentFrequency{value: frequencyWeekly}
	PaymentFrequencyMonthly = PaymentFrequency{value: frequencyMonthly}
)

var validPaymentFrequencies = map[string]PaymentFrequency{
	frequencyDaily:   PaymentFrequencyDaily,
	frequencyWeekly:  PaymentFrequencyWeekly,
	frequencyMonthly: PaymentFrequencyMonthly,
}

// NewPaymentFrequency creates a PaymentFrequency from a raw string.
func NewPaymentFrequency(s string) (PaymentFrequency, error) {
	v, ok := validPaymentFrequencies[s]
	if !ok {
		return PaymentFrequency{}, fmt.Errorf("invalid payment frequency: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (f PaymentFrequency) String() string { return f.value }

// IsZero returns true when not initialised.
func (f PaymentFrequency) IsZero() bool { return f.value == "" }

// Equal returns true when both frequencies match.
func (f PaymentFrequency) Equal(other PaymentFrequency) bool { return f.value == other.value }

// ---------------------------------------------------------------------------
// PaymentMethod – immutable value object
// ---------------------------------------------------------------------------

// PaymentMethod records how a payment was collected.
type PaymentMethod struct {
	value string
}

const (
	methodCash         = "cash"
	methodBankTransfer = "bank_transfer"
	methodCheck        = "check"
	methodOnline       = "online"
)

var (
	PaymentMethodCash         = PaymentMethod{value: methodCash}
	PaymentMethodBankTransfer = PaymentMethod{value: methodBankTransfer}
	PaymentMethodCheck        = PaymentMethod{value: methodCheck}
	PaymentMethodOnline       = PaymentMethod{value: methodOnline}
)

var validPaymentMethods = map[string]PaymentMethod{
	methodCash:         PaymentMethodCash,
	methodBankTransfer: PaymentMethodBankTransfer,
	methodCheck:        PaymentMethodCheck,
	methodOnline:       PaymentMethodOnline,
}

// NewPaymentMethod creates a PaymentMethod from a raw string.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	v, ok := validPaymentMethods[s]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (m PaymentMethod) String() string { return m.value }

// IsZero returns true when not initialised.
func (m PaymentMethod) IsZero() bool { return m.value == "" }

// Equal returns true when both methods match.
func (m PaymentMethod) Equal(other PaymentMethod) bool { return m.value == other.value }
