package checkout

import (
	"strings"
	"testing"
)

func TestNewOrderNumber(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		n := NewOrderNumber()

		if len(n) != 12 {
			t.Fatalf("expected 12 characters, got %d (%q)", len(n), n)
		}
		if n != strings.ToUpper(n) {
			t.Fatalf("expected uppercase, got %q", n)
		}
		for _, c := range n {
			if !strings.ContainsRune("0123456789ABCDEF", c) {
				t.Fatalf("expected hex characters, got %q", n)
			}
		}
		if seen[n] {
			t.Fatalf("duplicate order number %q", n)
		}
		seen[n] = true
	}
}
