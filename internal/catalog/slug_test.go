package catalog

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vitamin C Serum", "vitamin-c-serum"},
		{"Aloe & Honey Face Wash", "aloe-honey-face-wash"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"Rosewater 100ml", "rosewater-100ml"},
		{"---", ""},
		{"Déjà vu", "d-j-vu"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
