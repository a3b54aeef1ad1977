package models

import (
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Expense is a cost booked against a warehouse. WarehouseName is a
// point-in-time snapshot of the warehouse's name captured by the caller at
// write time; it is never re-synced when the warehouse is renamed.
type Expense struct {
	ID            string  `json:"id,omitempty"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category,omitempty"`
	WarehouseID   string  `json:"warehouse_id"`
	WarehouseName string  `json:"warehouse_name,omitempty"`
	ExpenseDate   string  `json:"expense_date,omitempty"`
}

func (e Expense) Validate() error {
	details := map[string]string{}
	if e.Title == "" {
		details["title"] = "is required"
	}
	if e.Amount <= 0 {
		details["amount"] = "must be positive"
	}
	if e.WarehouseID == "" {
		details["warehouse_id"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid expense").WithDetails(details)
	}
	return nil
}
