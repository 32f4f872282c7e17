package domain

import "strings"

// ApplyFilters returns the venues matching f in their original order. The
// input slice is not modified.
func ApplyFilters(venues []Venue, f Filter) []Venue {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Venue, 0, len(venues))
	for _, v := range venues {
		if f.Lit && !v.Amenities.Lit {
			continue
		}
		if f.Water && !v.Amenities.Water {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(v.Name), query) {
			continue
		}
		out = append(out, v)
	}
	return out
}
