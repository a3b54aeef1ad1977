package models

import (
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Order groups line items sold to a customer. TotalAmount is fixed at
// creation time from the items' subtotals; item mutations never recompute it.
type Order struct {
	ID          string            `json:"id,omitempty"`
	CustomerID  string            `json:"customer_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount float64           `json:"total_amount"`
}

func (o Order) Validate() error {
	details := map[string]string{}
	if o.CustomerID == "" {
		details["customer_id"] = "is required"
	}
	if !o.Status.IsValid() {
		details["status"] = "is invalid"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(details)
	}
	return nil
}

// OrderItem is a single order line. Subtotal must equal price x quantity at
// write time; partial updates do not recompute it.
type OrderItem struct {
	ID          string  `json:"id,omitempty"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
	WarehouseID string  `json:"warehouse_id,omitempty"`
}

func (i OrderItem) Validate() error {
	details := map[string]string{}
	if i.OrderID == "" {
		details["order_id"] = "is required"
	}
	if i.ProductID == "" {
		details["product_id"] = "is required"
	}
	if i.Quantity < 1 {
		details["quantity"] = "must be at least 1"
	}
	if i.Subtotal != Subtotal(i.Price, i.Quantity) {
		details["subtotal"] = "must equal price x quantity"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order item").WithDetails(details)
	}
	return nil
}

// WithSubtotal returns a copy with the subtotal recomputed from price and
// quantity.
func (i OrderItem) WithSubtotal() OrderItem {
	i.Subtotal = Subtotal(i.Price, i.Quantity)
	return i
}
