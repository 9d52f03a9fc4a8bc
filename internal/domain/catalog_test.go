package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountPercentage(t *testing.T) {
	compare := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name    string
		price   string
		compare *decimal.Decimal
		want    int
	}{
		{"no compare price", "100.00", nil, 0},
		{"compare below price", "100.00", compare("90.00"), 0},
		{"compare equals price", "100.00", compare("100.00"), 0},
		{"rounded up", "100.00", compare("120.00"), 17},
		{"half off", "50.00", compare("100.00"), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tt.price), ComparePrice: tt.compare}
			if got := p.DiscountPercentage(); got != tt.want {
				t.Errorf("DiscountPercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil); got != 0 {
		t.Errorf("AverageRating(nil) = %v, want 0", got)
	}

	reviews := []Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	if got := AverageRating(reviews); got != 4.3 {
		t.Errorf("AverageRating() = %v, want 4.3", got)
	}
}
