// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package stringutils provides string interning via Go's unique package for
// memory-efficient deduplication of commonly repeated strings like tags,
// indexer names, and status strings.
package stringutils

import (
	"strings"
	"unique"
)

// Intern returns a canonical representation of the string. Identical strings
// share the same underlying memory, reducing allocations and enabling fast
// equality comparisons.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// InternLower interns a lowercase version of the string. Useful for
// case-insensitive storage keys.
func InternLower(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(strings.ToLower(s)).Value()
}

// NormalizeTag canonicalizes a profile or artist tag: trimmed, lowercased,
// interned. Tag matching across delay profiles and artists goes through this
// so "Vinyl " and "vinyl" resolve to the same tag.
func NormalizeTag(s string) string {
	return InternLower(strings.TrimSpace(s))
}
