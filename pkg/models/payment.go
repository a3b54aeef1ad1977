package models

import (
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// CardDetails is stored only for credit card payments.
type CardDetails struct {
	Last4  string `json:"last4"`
	Expiry string `json:"expiry"`
	Brand  string `json:"brand,omitempty"`
}

// Payment records a settlement against an order. At most one non-voided
// payment per order by convention; the storage layer does not enforce it.
type Payment struct {
	ID          string              `json:"id,omitempty"`
	OrderID     string              `json:"order_id"`
	Amount      float64             `json:"amount"`
	Method      enums.PaymentMethod `json:"method"`
	Status      enums.PaymentStatus `json:"status"`
	CardDetails *CardDetails        `json:"card_details,omitempty"`
}

func (p Payment) Validate() error {
	details := map[string]string{}
	if p.OrderID == "" {
		details["order_id"] = "is required"
	}
	if !p.Method.IsValid() {
		details["method"] = "is invalid"
	}
	if !p.Status.IsValid() {
		details["status"] = "is invalid"
	}
	if p.CardDetails != nil && p.Method != enums.PaymentMethodCreditCard {
		details["card_details"] = "only allowed for credit_card payments"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment").WithDetails(details)
	}
	return nil
}
