// Package validator checks a search request before it runs. Problems that
// make the run pointless are errors; questionable settings that still allow
// a run are warnings.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/content"
	"github.com/f4ah6o/fetchlog-go/internal/logging"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

// Validator validates search requests.
type Validator struct {
	logger zerolog.Logger
}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{logger: logging.Get("validator")}
}

// Result lists the problems found in a request.
type Result struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the request has no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks req. When export is set the output path is checked too.
func (v *Validator) Validate(req search.Request, export bool) Result {
	req = req.Normalized()
	var res Result

	// 1. Roots
	if len(req.Roots) == 0 {
		res.Errors = append(res.Errors, "at least one directory to search is required")
	}
	for _, root := range req.Roots {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("directory not found: %s", root))
		}
	}

	// 2. Output path
	if export {
		if strings.TrimSpace(req.OutputPath) == "" {
			res.Errors = append(res.Errors, "an output path is required")
		} else if info, err := os.Stat(req.OutputPath); err == nil && !info.IsDir() {
			res.Errors = append(res.Errors, fmt.Sprintf("output path is not a directory: %s", req.OutputPath))
		} else if root := containingRoot(req, req.OutputPath); root != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("output path %s is inside search root %s; exported copies will be found by later searches", req.OutputPath, root))
		}
	}

	// 3. Encoding
	if !content.ValidEncoding(req.Encoding) {
		res.Errors = append(res.Errors, fmt.Sprintf("unknown encoding: %s", req.Encoding))
	}

	// 4. Filters that can never match
	for _, ext := range req.Extensions {
		if strings.Count(ext, ".") > 1 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("extension %s has more than one dot and will never match; only the last extension is compared", ext))
		}
	}
	for _, p := range append(append([]string{}, req.IncludePatterns...), req.ExcludePatterns...) {
		if strings.ContainsAny(p, `/\`) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("pattern %s contains a path separator; patterns match file names only", p))
		}
	}
	for _, inc := range req.IncludePatterns {
		for _, exc := range req.ExcludePatterns {
			if strings.EqualFold(inc, exc) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("pattern %s is both included and excluded; exclusion wins", inc))
			}
		}
	}

	for _, e := range res.Errors {
		v.logger.Debug().Str("problem", e).Msg("Validation error")
	}
	for _, w := range res.Warnings {
		v.logger.Debug().Str("problem", w).Msg("Validation warning")
	}
	return res
}

// containingRoot returns the root that contains path when the search would
// reach it, or "".
func containingRoot(req search.Request, path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	for _, root := range req.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absRoot, absPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." || req.Recursive || !strings.ContainsRune(rel, filepath.Separator) {
			return root
		}
	}
	return ""
}
