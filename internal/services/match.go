package services

import (
	"strings"

	"cctv-survey/internal/strapi"
)

// MatchStrategy is how a spreadsheet value is compared with a stored name.
// The BOQ mapper and the location importer pick a strategy per field.
type MatchStrategy int

const (
	// MatchExactNormalized: equal after lower-casing, trimming and
	// collapsing inner whitespace.
	MatchExactNormalized MatchStrategy = iota
	// MatchExactTrimmed: equal after trimming, case-sensitive.
	MatchExactTrimmed
	// MatchContainsFold: stored name contains the value, case-insensitive.
	MatchContainsFold
)

func (m MatchStrategy) String() string {
	switch m {
	case MatchExactNormalized:
		return "exact-normalized"
	case MatchExactTrimmed:
		return "exact"
	case MatchContainsFold:
		return "contains"
	}
	return "unknown"
}

// Match reports whether stored satisfies want under the strategy.
func (m MatchStrategy) Match(stored, want string) bool {
	switch m {
	case MatchExactNormalized:
		return normalizeName(stored) == normalizeName(want)
	case MatchExactTrimmed:
		return strings.TrimSpace(stored) == strings.TrimSpace(want)
	case MatchContainsFold:
		return strings.Contains(strings.ToLower(stored), strings.ToLower(strings.TrimSpace(want)))
	}
	return false
}

// Filter renders the strategy as a backend filter on field. Normalized
// matching has no server-side equivalent and falls back to $eq.
func (m MatchStrategy) Filter(field, want string) strapi.Filter {
	if m == MatchContainsFold {
		return strapi.ContainsI(field, strings.TrimSpace(want))
	}
	return strapi.Eq(field, strings.TrimSpace(want))
}

// Per-field strategies.
var (
	boqFieldMatch = map[string]MatchStrategy{
		"division":   MatchExactNormalized,
		"depot":      MatchExactNormalized,
		"busstation": MatchExactNormalized,
		"busstand":   MatchExactNormalized,
	}
	hierarchyLevelMatch = map[string]MatchStrategy{
		"division":   MatchExactTrimmed,
		"depot":      MatchExactTrimmed,
		"busStation": MatchExactTrimmed,
		"busStand":   MatchContainsFold,
	}
)

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// findByName returns the first item whose name matches want.
func findByName[T any](items []T, name func(T) string, want string, m MatchStrategy) (T, bool) {
	for _, it := range items {
		if m.Match(name(it), want) {
			return it, true
		}
	}
	var zero T
	return zero, false
}
