// Package normalizer cleans up filter input typed by a user: comma or
// semicolon separated lists, extensions with or without a leading dot, stray
// whitespace and mixed case.
package normalizer

import (
	"strings"
)

// SplitList splits s on commas and semicolons, trims each part and drops
// empty parts.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	return Patterns(parts)
}

// SplitAll applies SplitList to every value, so repeated flags and
// delimited values can be mixed.
func SplitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, SplitList(v)...)
	}
	return out
}

// Patterns trims each pattern and drops empty ones, keeping order.
func Patterns(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Extension lowercases ext and makes sure it starts with a single dot.
// It returns "" for blank input.
func Extension(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimLeft(ext, "*")
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + strings.ToLower(ext)
}

// Extensions normalizes every entry with Extension, dropping blanks and
// duplicates while keeping first-seen order.
func Extensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	var out []string
	for _, e := range exts {
		n := Extension(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
