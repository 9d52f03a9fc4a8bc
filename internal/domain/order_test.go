package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("299.00")},
		{ProductID: "p2", Quantity: 2, Price: decimal.RequireFromString("100.25")},
	}

	if got, want := OrderTotal(items), decimal.RequireFromString("499.50"); !got.Equal(want) {
		t.Errorf("OrderTotal() = %s, want %s", got, want)
	}
	if got := OrderTotal(nil); !got.IsZero() {
		t.Errorf("OrderTotal(nil) = %s, want 0", got)
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("Valid() = false for %q", s)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Error(`Valid() = true for "refunded"`)
	}
}
