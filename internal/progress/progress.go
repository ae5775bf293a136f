// Package progress carries human-readable status lines from the search and
// export engine to whatever front end is driving it. Lines are free-form text
// and must not be parsed for control decisions.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Sink receives progress lines.
type Sink interface {
	Report(msg string)
}

// Func adapts a plain function to a Sink.
type Func func(msg string)

// Report calls f(msg).
func (f Func) Report(msg string) { f(msg) }

type discard struct{}

func (discard) Report(string) {}

// Discard drops every line.
var Discard Sink = discard{}

// Reportf formats a line and sends it to s. A nil sink is ignored.
func Reportf(s Sink, format string, args ...any) {
	if s == nil {
		return
	}
	s.Report(fmt.Sprintf(format, args...))
}

// Recorder keeps every reported line in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Report appends msg.
func (r *Recorder) Report(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, msg)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

var (
	colorMatch = color.New(color.FgGreen)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
	colorInfo  = color.New(color.FgCyan)
)

// Console writes progress lines to a terminal, one per line, colouring them
// by their leading word. Colour is only used when the writer is a terminal.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
	quiet   bool
}

// NewConsole creates a Console writing to w. When quiet is set only warnings
// and errors are shown.
func NewConsole(w io.Writer, quiet bool) *Console {
	return &Console{
		out:     w,
		colored: isTerminal(w) && !color.NoColor,
		quiet:   quiet,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report writes msg.
func (c *Console) Report(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	painter := classify(msg)
	if c.quiet && painter != colorWarn && painter != colorError {
		return
	}
	if !c.colored || painter == nil {
		fmt.Fprintln(c.out, msg)
		return
	}
	painter.Fprintln(c.out, msg)
}

func classify(msg string) *color.Color {
	switch {
	case strings.HasPrefix(msg, "Error"):
		return colorError
	case strings.HasPrefix(msg, "Warning"), strings.HasPrefix(msg, "Directory not found"),
		strings.HasPrefix(msg, "Skipping"):
		return colorWarn
	case strings.HasPrefix(msg, "Match found"), strings.HasPrefix(msg, "Found matches"),
		strings.HasPrefix(msg, "Copied"), strings.HasPrefix(msg, "Bundled"):
		return colorMatch
	case strings.HasPrefix(msg, "Searching in"):
		return colorInfo
	default:
		return nil
	}
}
