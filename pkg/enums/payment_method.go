package enums

import "fmt"

// PaymentMethod identifies how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodPaypal,
	PaymentMethodBankTransfer,
	PaymentMethodCash,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
