package models

import (
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Product is a catalog entry tracked per warehouse-wide stock count.
type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Stock       int     `json:"stock"`
}

// Validate enforces the product invariants (price and stock never negative).
func (p Product) Validate() error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "is required"
	}
	if p.Price < 0 {
		details["price"] = "must not be negative"
	}
	if p.Stock < 0 {
		details["stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
