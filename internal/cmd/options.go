package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/fetchlog-go/internal/config"
	"github.com/f4ah6o/fetchlog-go/internal/normalizer"
	"github.com/f4ah6o/fetchlog-go/internal/progress"
	"github.com/f4ah6o/fetchlog-go/internal/search"
	"github.com/f4ah6o/fetchlog-go/internal/validator"
)

// filterOptions holds the flags shared by search and collect.
type filterOptions struct {
	extensions    []string
	include       []string
	exclude       []string
	content       string
	caseSensitive bool
	noRecursive   bool
	noArchives    bool
	encoding      string
	htmlText      bool
	quiet         bool
}

func (o *filterOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVarP(&o.extensions, "ext", "e", nil, "file extensions to match, e.g. log,txt (repeatable)")
	f.StringSliceVarP(&o.include, "include", "i", nil, "file name patterns to include, e.g. app*.log (repeatable)")
	f.StringSliceVarP(&o.exclude, "exclude", "x", nil, "file name patterns to exclude (repeatable)")
	f.StringVarP(&o.content, "content", "c", "", "text the file content must contain")
	f.BoolVar(&o.caseSensitive, "case-sensitive", false, "compare content case-sensitively")
	f.BoolVar(&o.noRecursive, "no-recursive", false, "search only the top level of each directory")
	f.BoolVar(&o.noArchives, "no-zip", false, "treat zip archives as plain files")
	f.StringVar(&o.encoding, "encoding", "", "encoding assumed for files without a byte order mark (default utf-8)")
	f.BoolVar(&o.htmlText, "html-text", false, "match content of .html/.htm files against their text, not markup")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "only report warnings and errors while running")
}

// request builds the search request from the profile, the positional roots
// and any flags set on the command line, in that order of precedence.
func (o *filterOptions) request(cmd *cobra.Command, roots []string) (search.Request, error) {
	req := search.Request{Recursive: true, SearchInArchives: true}

	flagProfile, _ := cmd.Flags().GetString("profile")
	if path := config.Resolve(flagProfile); path != "" {
		p, err := config.Load(path)
		if err != nil {
			return search.Request{}, err
		}
		req = p.Request()
	}

	if len(roots) > 0 {
		req.Roots = normalizer.Patterns(roots)
	}

	changed := cmd.Flags().Changed
	if changed("ext") {
		req.Extensions = normalizer.Extensions(normalizer.SplitAll(o.extensions))
	}
	if changed("include") {
		req.IncludePatterns = normalizer.SplitAll(o.include)
	}
	if changed("exclude") {
		req.ExcludePatterns = normalizer.SplitAll(o.exclude)
	}
	if changed("content") {
		req.ContentFilter = o.content
	}
	if changed("case-sensitive") {
		req.CaseSensitive = o.caseSensitive
	}
	if changed("no-recursive") {
		req.Recursive = !o.noRecursive
	}
	if changed("no-zip") {
		req.SearchInArchives = !o.noArchives
	}
	if changed("encoding") {
		req.Encoding = o.encoding
	}
	if changed("html-text") {
		req.HTMLText = o.htmlText
	}
	return req, nil
}

// validate reports warnings on sink and fails on errors.
func validate(req search.Request, export bool, sink progress.Sink) error {
	res := validator.New().Validate(req, export)
	for _, w := range res.Warnings {
		progress.Reportf(sink, "Warning: %s", w)
	}
	if !res.OK() {
		return fmt.Errorf("invalid request: %s", strings.Join(res.Errors, "; "))
	}
	return nil
}
