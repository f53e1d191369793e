package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"kaamkhojo-engine/internal/domain"
)

// Matches reports whether r satisfies every active key in c.
func Matches(r domain.Record, c Criteria) bool {
	if !IsSentinel(c.Keyword) && !matchesKeyword(r, strings.TrimSpace(c.Keyword)) {
		return false
	}
	if !IsSentinel(c.Location) && !containsFold(r.Location, strings.TrimSpace(c.Location)) {
		return false
	}
	return equalOrAll(r.Category, string(c.Category)) &&
		equalOrAll(r.Type, string(c.JobType)) &&
		equalOrAll(r.Experience, string(c.Experience)) &&
		equalOrAll(r.SalaryBand, string(c.Salary))
}

// Apply returns the records matching c in their original order. The input
// slice is not modified.
func Apply(records []domain.Record, c Criteria) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// enum comparisons are exact; the vocabularies are controlled
func equalOrAll(field, want string) bool {
	return IsSentinel(want) || field == want
}

// keyword hits if any of title, company or a skill contains it
func matchesKeyword(r domain.Record, kw string) bool {
	needle := fold(kw)
	if strings.Contains(fold(r.Title), needle) || strings.Contains(fold(r.Company), needle) {
		return true
	}
	for _, s := range r.Skills {
		if strings.Contains(fold(s), needle) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

// Casers are cheap; build one per call instead of sharing across goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}
