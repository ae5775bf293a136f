package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f4ah6o/fetchlog-go/internal/search"
)

func TestNewValidator(t *testing.T) {
	require.NotNil(t, New())
}

func hasProblem(problems []string, substr string) bool {
	for _, p := range problems {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "out")
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := []struct {
		name        string
		req         search.Request
		export      bool
		wantOK      bool
		wantError   string
		wantWarning string
	}{
		{
			name:   "valid request",
			req:    search.Request{Roots: []string{root}, OutputPath: outside, Recursive: true},
			export: true,
			wantOK: true,
		},
		{
			name:      "no roots",
			req:       search.Request{OutputPath: outside},
			export:    true,
			wantError: "at least one directory",
		},
		{
			name:      "no output when exporting",
			req:       search.Request{Roots: []string{root}},
			export:    true,
			wantError: "output path is required",
		},
		{
			name:   "no output needed for search only",
			req:    search.Request{Roots: []string{root}},
			wantOK: true,
		},
		{
			name:      "output is a file",
			req:       search.Request{Roots: []string{root}, OutputPath: file},
			export:    true,
			wantError: "not a directory",
		},
		{
			name:      "unknown encoding",
			req:       search.Request{Roots: []string{root}, Encoding: "klingon"},
			wantError: "unknown encoding",
		},
		{
			name:        "missing root is a warning",
			req:         search.Request{Roots: []string{root, filepath.Join(root, "nope")}},
			wantOK:      true,
			wantWarning: "directory not found",
		},
		{
			name:        "output inside recursive root",
			req:         search.Request{Roots: []string{root}, Recursive: true, OutputPath: filepath.Join(root, "a", "b")},
			export:      true,
			wantOK:      true,
			wantWarning: "inside search root",
		},
		{
			name:        "multi-dot extension",
			req:         search.Request{Roots: []string{root}, Extensions: []string{"tar.gz"}},
			wantOK:      true,
			wantWarning: "more than one dot",
		},
		{
			name:        "pattern with separator",
			req:         search.Request{Roots: []string{root}, IncludePatterns: []string{"logs/*.log"}},
			wantOK:      true,
			wantWarning: "path separator",
		},
		{
			name:        "included and excluded",
			req:         search.Request{Roots: []string{root}, IncludePatterns: []string{"*.cfg"}, ExcludePatterns: []string{"*.CFG"}},
			wantOK:      true,
			wantWarning: "exclusion wins",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.req, tt.export)
			assert.Equal(t, tt.wantOK, res.OK(), "errors: %v", res.Errors)
			if tt.wantError != "" {
				assert.True(t, hasProblem(res.Errors, tt.wantError), "errors: %v", res.Errors)
			}
			if tt.wantWarning != "" {
				assert.True(t, hasProblem(res.Warnings, tt.wantWarning), "warnings: %v", res.Warnings)
			}
		})
	}
}

func TestValidate_OutputBelowShallowRoot(t *testing.T) {
	root := t.TempDir()
	v := New()

	direct := v.Validate(search.Request{Roots: []string{root}, OutputPath: filepath.Join(root, "out")}, true)
	assert.True(t, hasProblem(direct.Warnings, "inside search root"))

	deep := v.Validate(search.Request{Roots: []string{root}, OutputPath: filepath.Join(root, "a", "out")}, true)
	assert.False(t, hasProblem(deep.Warnings, "inside search root"))
}
