package common

import (
	"strings"
	"unicode/utf8"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RuneLen counts characters rather than bytes; Hangul is three bytes each.
func RuneLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
