// Package stringutil provides rune-aware string helpers for user text.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks text cut by Truncate.
const Ellipsis = "…"

// Truncate shortens s to at most n runes, replacing the tail with Ellipsis.
//
//	Truncate("番茄施肥", 3) // "番茄…"
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + Ellipsis
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
