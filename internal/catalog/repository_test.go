package catalog

import "testing"

func TestProductFilterLimit(t *testing.T) {
	tests := []struct {
		name   string
		filter ProductFilter
		want   int
	}{
		{"defaults to page size", ProductFilter{}, pageSize},
		{"featured strip on home", ProductFilter{FeaturedOnly: true, Limit: homeFeaturedLimit}, 6},
		{"latest strip on home", ProductFilter{Limit: homeLatestLimit}, 8},
		{"negative falls back", ProductFilter{Limit: -1}, pageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.limit(); got != tt.want {
				t.Errorf("limit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProductFilterOrderBy(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{"price_low", "p.price ASC"},
		{"price_high", "p.price DESC"},
		{"newest", "p.created_at DESC"},
		{"", "p.name ASC"},
		{"bogus", "p.name ASC"},
	}

	for _, tt := range tests {
		f := ProductFilter{Sort: tt.sort}
		if got := f.orderBy(); got != tt.want {
			t.Errorf("orderBy() with sort %q = %q, want %q", tt.sort, got, tt.want)
		}
	}
}
