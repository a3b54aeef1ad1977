package models

import "github.com/shopspring/decimal"

// RoundAmount normalizes a money amount to two decimal places. Amounts enter
// the system as JSON numbers; rounding through decimal avoids accumulating
// binary float artifacts in stored subtotals.
func RoundAmount(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Subtotal computes price x quantity rounded to two decimal places.
func Subtotal(price float64, quantity int) float64 {
	f, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		Float64()
	return f
}
