package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s case-folded for caseless matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}

// IsAllOrEmpty reports whether a filter value is the "no filter" sentinel.
func IsAllOrEmpty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}
