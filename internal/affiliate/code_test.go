package affiliate

import (
	"strings"
	"testing"
)

func TestNewAffiliateCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := NewAffiliateCode()

		if len(code) != 11 {
			t.Fatalf("expected 11 characters, got %d (%q)", len(code), code)
		}
		if !strings.HasPrefix(code, "AFF") {
			t.Fatalf("expected AFF prefix, got %q", code)
		}
		for _, c := range code[3:] {
			if !strings.ContainsRune("0123456789ABCDEF", c) {
				t.Fatalf("expected hex suffix, got %q", code)
			}
		}
		if seen[code] {
			t.Fatalf("duplicate affiliate code %q", code)
		}
		seen[code] = true
	}
}
