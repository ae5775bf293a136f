package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	// ANSI colors for terminal output
	colorHeader = color.New(color.FgHiMagenta, color.Bold)
	colorBold   = color.New(color.Bold)
	colorCyan   = color.New(color.FgCyan)
	colorZip    = color.New(color.FgYellow)
)

// FormatResults prints results in a human-readable listing
func FormatResults(w io.Writer, results []MatchRecord) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No files found matching the search criteria.")
		return
	}

	colorHeader.Fprintf(w, "\nSearch Results\n")
	fmt.Fprintf(w, "Found %d file(s).\n\n", len(results))

	nameWidth := len("Name")
	for _, res := range results {
		nameWidth = max(nameWidth, len(res.DisplayName))
	}

	colorBold.Fprintf(w, "%-*s  %-4s  %10s  %s\n", nameWidth, "Name", "Type", "Size", "Path")
	colorCyan.Fprintln(w, strings.Repeat("-", nameWidth+24))

	for _, res := range results {
		kind := res.Origin.String()
		if res.Origin == ArchiveContainer {
			kind = colorZip.Sprintf("%-4s", kind)
		} else {
			kind = fmt.Sprintf("%-4s", kind)
		}
		fmt.Fprintf(w, "%-*s  %s  %10s  %s\n", nameWidth, res.DisplayName, kind, res.SizeHuman, res.SourcePath)
	}
	fmt.Fprintln(w)
}

// FormatJSON prints results as JSON
func FormatJSON(w io.Writer, results []MatchRecord) error {
	if results == nil {
		results = []MatchRecord{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

// FormatYAML prints results as YAML
func FormatYAML(w io.Writer, results []MatchRecord) error {
	if results == nil {
		results = []MatchRecord{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return encoder.Close()
}
