// Package glob implements the filename wildcard language used by include and
// exclude patterns: '*' matches any run of characters, '?' matches exactly
// one character, and everything else is literal. Matching is
// case-insensitive and always covers the whole name.
package glob

import (
	"regexp"
	"strings"
)

// Pattern is a compiled wildcard pattern.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// Translate converts a wildcard pattern into an anchored regular expression.
// Every literal character is escaped first, then the two wildcards are
// substituted, so characters like '.', '[' or '+' never carry meaning.
func Translate(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return b.String()
}

// Compile compiles a wildcard pattern. Translate only emits escaped literals
// and the two wildcard forms, so compilation cannot fail.
func Compile(pattern string) *Pattern {
	return &Pattern{
		raw: pattern,
		re:  regexp.MustCompile(Translate(pattern)),
	}
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether name matches the pattern in full.
func (p *Pattern) Match(name string) bool {
	return p.re.MatchString(name)
}

// Matches compiles pattern and matches it against name.
func Matches(name, pattern string) bool {
	return Compile(pattern).Match(name)
}

// CompileAll compiles a list of patterns, keeping their order.
func CompileAll(patterns []string) []*Pattern {
	compiled := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, Compile(p))
	}
	return compiled
}

// Any reports whether at least one of the patterns matches name.
func Any(patterns []*Pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
