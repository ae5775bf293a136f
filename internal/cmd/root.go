// Package cmd implements the fetchlog command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/fetchlog-go/internal/logging"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for fetchlog
func NewRootCommand() *cobra.Command {
	var verbosity int

	cmd := &cobra.Command{
		Use:   "fetchlog",
		Short: "Find files by name and content and collect them into one folder",
		Long: `fetchlog searches one or more directories for files by extension,
file name pattern and text content, optionally looking inside zip archives,
and copies the matches into a staging directory without overwriting
anything already there.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity, cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	cmd.PersistentFlags().String("profile", "", "load settings from a TOML or YAML profile (default $FETCHLOG_PROFILE)")

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewCollectCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the root command with args and returns the process exit
// code. Cancellation exits with 130 after printing a notice.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, search.ErrCancelled):
		return 130
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
