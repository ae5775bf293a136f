package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/fetchlog-go/internal/progress"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

// NewSearchCommand creates the search subcommand
func NewSearchCommand() *cobra.Command {
	var (
		opts   filterOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "search [directory...]",
		Short: "List files matching the filters without copying them",
		Long: `Search the given directories (or the profile's roots) and list every
match. A zip archive is listed once when any of its entries match.

Examples:
  fetchlog search /var/log --ext log --content ERROR
  fetchlog search ./logs --include "app*" --exclude "temp_*" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd, args)
			if err != nil {
				return err
			}
			sink := progress.NewConsole(cmd.ErrOrStderr(), opts.quiet)
			if err := validate(req, false, sink); err != nil {
				return err
			}

			results, err := runSearch(cmd, req, sink)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), format, results)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")

	return cmd
}

// runSearch runs the engine and prints the cancellation notice when the
// run was interrupted.
func runSearch(cmd *cobra.Command, req search.Request, sink progress.Sink) ([]search.MatchRecord, error) {
	results, err := search.New().Search(cmd.Context(), req, sink)
	if errors.Is(err, search.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Search cancelled by user.")
	}
	return results, err
}

func writeResults(w io.Writer, format string, results []search.MatchRecord) error {
	switch format {
	case "text", "":
		search.FormatResults(w, results)
		return nil
	case "json":
		return search.FormatJSON(w, results)
	case "yaml":
		return search.FormatYAML(w, results)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
