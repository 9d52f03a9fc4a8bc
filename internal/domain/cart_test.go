package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCartTotals(t *testing.T) {
	cart := Cart{
		Lines: []CartLine{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString("299.00"), Quantity: 1},
			{ProductID: "p2", UnitPrice: decimal.RequireFromString("150.50"), Quantity: 3},
		},
	}

	if got, want := cart.TotalPrice(), decimal.RequireFromString("750.50"); !got.Equal(want) {
		t.Errorf("TotalPrice() = %s, want %s", got, want)
	}
	if got := cart.TotalItems(); got != 4 {
		t.Errorf("TotalItems() = %d, want 4", got)
	}
	if cart.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty cart")
	}
}

func TestCartTotalsEmpty(t *testing.T) {
	var cart Cart
	if !cart.TotalPrice().IsZero() {
		t.Errorf("TotalPrice() = %s, want 0", cart.TotalPrice())
	}
	if cart.TotalItems() != 0 {
		t.Errorf("TotalItems() = %d, want 0", cart.TotalItems())
	}
	if !cart.IsEmpty() {
		t.Error("IsEmpty() = false for empty cart")
	}
}

func TestCartTotalsTrackCurrentPrice(t *testing.T) {
	cart := Cart{
		Lines: []CartLine{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 2},
		},
	}
	if got, want := cart.TotalPrice(), decimal.RequireFromString("200.00"); !got.Equal(want) {
		t.Fatalf("TotalPrice() = %s, want %s", got, want)
	}

	// a catalog price change shows up on the next read
	cart.Lines[0].UnitPrice = decimal.RequireFromString("90.00")
	if got, want := cart.TotalPrice(), decimal.RequireFromString("180.00"); !got.Equal(want) {
		t.Errorf("TotalPrice() after price change = %s, want %s", got, want)
	}
}
