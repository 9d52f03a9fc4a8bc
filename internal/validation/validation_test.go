package validation

import (
	"strings"
	"testing"
)

func TestCheckoutRequest(t *testing.T) {
	v := New()

	valid := CheckoutRequest{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
	if err := v.Struct(valid); err != nil {
		t.Fatalf("valid checkout rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*CheckoutRequest)
		wantMsg string
	}{
		{"missing name", func(r *CheckoutRequest) { r.Name = "" }, "name is required"},
		{"bad email", func(r *CheckoutRequest) { r.Email = "not-an-email" }, "email must be a valid email address"},
		{"short pincode", func(r *CheckoutRequest) { r.Pincode = "5600" }, "pincode must be a 6-digit pin code"},
		{"alpha pincode", func(r *CheckoutRequest) { r.Pincode = "56000a" }, "pincode must be a 6-digit pin code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Struct(req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if msg := Message(err); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("Message() = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestReviewRequestRatingRange(t *testing.T) {
	v := New()

	for _, rating := range []int{1, 3, 5} {
		if err := v.Struct(ReviewRequest{Rating: rating, Comment: "nice"}); err != nil {
			t.Errorf("rating %d rejected: %v", rating, err)
		}
	}
	for _, rating := range []int{0, 6, -1} {
		if err := v.Struct(ReviewRequest{Rating: rating, Comment: "nice"}); err == nil {
			t.Errorf("rating %d accepted", rating)
		}
	}
}

func TestWithdrawalRequestPaymentMethod(t *testing.T) {
	v := New()

	if err := v.Struct(WithdrawalRequest{Amount: "500.00", PaymentMethod: "bank"}); err != nil {
		t.Errorf("bank method rejected: %v", err)
	}
	if err := v.Struct(WithdrawalRequest{Amount: "500.00", PaymentMethod: "cash"}); err == nil {
		t.Error("cash method accepted")
	}
}
