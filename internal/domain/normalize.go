package domain

import (
	"strings"
)

// NormalizeSearch prepares a free-text search term: surrounding whitespace
// is trimmed, inner runs of whitespace collapse to one space and the result
// is lowercased. Both backends match against the normalized term.
func NormalizeSearch(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// containsFold reports whether needle (already normalized) occurs in any of
// the haystacks, ignoring case.
func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
