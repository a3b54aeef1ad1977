package models

import (
	"testing"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func TestProductValidate(t *testing.T) {
	t.Parallel()

	ok := Product{Name: "Widget", Price: 9.99, Category: "Tools", Stock: 10}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}

	bad := Product{Name: "Widget", Price: -1, Stock: -3}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOrderItemSubtotalRule(t *testing.T) {
	t.Parallel()

	item := OrderItem{OrderID: "o1", ProductID: "p1", Quantity: 3, Price: 9.99}
	item = item.WithSubtotal()
	if item.Subtotal != 29.97 {
		t.Fatalf("expected subtotal 29.97, got %v", item.Subtotal)
	}
	if err := item.Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	item.Subtotal = 30
	if err := item.Validate(); err == nil {
		t.Fatal("expected subtotal mismatch to fail validation")
	}

	item.Quantity = 0
	if err := item.Validate(); err == nil {
		t.Fatal("expected quantity below 1 to fail validation")
	}
}

func TestPaymentCardDetailsOnlyForCreditCard(t *testing.T) {
	t.Parallel()

	card := &CardDetails{Last4: "4242", Expiry: "12/27", Brand: "visa"}

	p := Payment{OrderID: "o1", Amount: 10, Method: enums.PaymentMethodCreditCard, Status: enums.PaymentStatusCompleted, CardDetails: card}
	if err := p.Validate(); err != nil {
		t.Fatalf("credit card payment with card details rejected: %v", err)
	}

	p.Method = enums.PaymentMethodCash
	if err := p.Validate(); err == nil {
		t.Fatal("expected card details on cash payment to fail validation")
	}
}

func TestExpenseValidate(t *testing.T) {
	t.Parallel()

	ok := Expense{Title: "Forklift repair", Amount: 120.50, WarehouseID: "w1", WarehouseName: "North"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	if err := (Expense{Title: "x", Amount: 0, WarehouseID: "w1"}).Validate(); err == nil {
		t.Fatal("expected zero amount to fail validation")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	p := Product{ID: "p1", Name: "Widget", Price: 9.99, Category: "Tools", Stock: 10}
	rec, err := ToRecord(p)
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	if rec["id"] != "p1" || rec["name"] != "Widget" {
		t.Fatalf("unexpected record %v", rec)
	}

	var back Product
	if err := FromRecord(rec, &back); err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if back != p {
		t.Fatalf("round trip mismatch: %+v != %+v", back, p)
	}
}

func TestRoundAmount(t *testing.T) {
	t.Parallel()

	if got := RoundAmount(10.005); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := Subtotal(0.1, 3); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}
