// Package matcher decides whether a file or archive entry satisfies the
// extension, exclude, include and content filters of a search.
package matcher

import (
	"path/filepath"
	"strings"

	"github.com/f4ah6o/fetchlog-go/internal/content"
	"github.com/f4ah6o/fetchlog-go/internal/glob"
)

// Criteria holds the filters a Matcher evaluates. Empty lists and an empty
// content filter impose no constraint.
type Criteria struct {
	Extensions    []string
	Include       []string
	Exclude       []string
	ContentFilter string
	CaseSensitive bool
}

// ContentLoader supplies the text of a candidate. It is only called when a
// content filter is configured and the name checks already passed.
type ContentLoader func() (string, error)

// Matcher evaluates Criteria against names and content.
type Matcher struct {
	extensions    map[string]bool
	include       []*glob.Pattern
	exclude       []*glob.Pattern
	contentFilter string
	caseSensitive bool
}

// New compiles c into a Matcher.
func New(c Criteria) *Matcher {
	m := &Matcher{
		include:       glob.CompileAll(c.Include),
		exclude:       glob.CompileAll(c.Exclude),
		caseSensitive: c.CaseSensitive,
	}
	if len(c.Extensions) > 0 {
		m.extensions = make(map[string]bool, len(c.Extensions))
		for _, ext := range c.Extensions {
			m.extensions[strings.ToLower(ext)] = true
		}
	}
	if strings.TrimSpace(c.ContentFilter) != "" {
		m.contentFilter = c.ContentFilter
	}
	return m
}

// Extension returns the lowercased extension of name including the dot.
// A trailing dot yields no extension.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}

// MatchName applies the extension, exclude and include checks in that order.
func (m *Matcher) MatchName(name, ext string) bool {
	if m.extensions != nil && !m.extensions[strings.ToLower(ext)] {
		return false
	}
	if glob.Any(m.exclude, name) {
		return false
	}
	if len(m.include) > 0 && !glob.Any(m.include, name) {
		return false
	}
	return true
}

// NeedsContent reports whether a content filter is configured.
func (m *Matcher) NeedsContent() bool {
	return m.contentFilter != ""
}

// ContentMatches reports whether text satisfies the content filter. It is
// true when no content filter is configured.
func (m *Matcher) ContentMatches(text string) bool {
	if m.contentFilter == "" {
		return true
	}
	return content.Contains(text, m.contentFilter, m.caseSensitive)
}

// IsMatch runs every check. Content is loaded only when the name checks
// pass and a content filter is set; a load error is a non-match.
func (m *Matcher) IsMatch(name, ext string, load ContentLoader) bool {
	if !m.MatchName(name, ext) {
		return false
	}
	if !m.NeedsContent() {
		return true
	}
	if load == nil {
		return false
	}
	text, err := load()
	if err != nil {
		return false
	}
	return m.ContentMatches(text)
}
