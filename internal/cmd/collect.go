package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/fetchlog-go/internal/config"
	"github.com/f4ah6o/fetchlog-go/internal/exporter"
	"github.com/f4ah6o/fetchlog-go/internal/packager"
	"github.com/f4ah6o/fetchlog-go/internal/progress"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

// NewCollectCommand creates the collect subcommand
func NewCollectCommand() *cobra.Command {
	var (
		opts   filterOptions
		output string
		dryRun bool
		bundle bool
	)

	cmd := &cobra.Command{
		Use:   "collect [directory...]",
		Short: "Search and copy the matches into an output directory",
		Long: `Search the given directories, then copy every match into the output
directory. Existing files are never overwritten: a clashing name gets a
numeric suffix before its extension (app.log, app_1.log, app_2.log).

Examples:
  fetchlog collect /var/log --ext log --content ERROR -o ./incident
  fetchlog collect --profile nightly.toml --bundle`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				req.OutputPath = output
			}
			if req.OutputPath == "" {
				req.OutputPath = config.DefaultOutputPath()
			}

			sink := progress.NewConsole(cmd.ErrOrStderr(), opts.quiet)
			if err := validate(req, true, sink); err != nil {
				return err
			}

			start := time.Now()
			results, err := runSearch(cmd, req, sink)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				search.FormatResults(out, results)
				return nil
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No files found matching the search criteria.")
				return nil
			}

			copied, err := exporter.New().Export(cmd.Context(), results, req.OutputPath, sink)
			if errors.Is(err, search.ErrCancelled) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Export cancelled by user. Copied %d file(s) before stopping.\n", copied)
				return err
			}
			if err != nil {
				return err
			}

			if bundle {
				zipPath := packager.BundlePath(req.OutputPath)
				if _, err := packager.New().Package(cmd.Context(), req.OutputPath, zipPath); err != nil {
					if ctxErr := cmd.Context().Err(); ctxErr != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), "Bundling cancelled by user.")
						return fmt.Errorf("%w: %w", search.ErrCancelled, ctxErr)
					}
					return fmt.Errorf("failed to bundle %s: %w", req.OutputPath, err)
				}
				progress.Reportf(sink, "Bundled: %s", zipPath)
			}

			fmt.Fprintf(out, "Found %d file(s), copied %d file(s) to %s in %.2f seconds.\n",
				len(results), copied, req.OutputPath, time.Since(start).Seconds())
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default ~/Documents/FetchLog_Results)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the matches without copying them")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "zip the output directory to <output>.zip after copying")

	return cmd
}
