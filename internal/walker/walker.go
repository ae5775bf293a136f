// Package walker enumerates candidate files under a set of search roots.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/progress"
)

// Walker lists files below search roots, reporting each root on a progress
// sink as it starts.
type Walker struct {
	sink   progress.Sink
	logger zerolog.Logger
}

// New creates a Walker. A nil sink discards progress.
func New(sink progress.Sink, logger zerolog.Logger) *Walker {
	if sink == nil {
		sink = progress.Discard
	}
	return &Walker{sink: sink, logger: logger}
}

// Walk returns a single-use sequence of file paths under roots. Recursive
// walks cover each root's whole subtree; otherwise only the root's immediate
// children are listed. Directories are never yielded.
//
// A root that does not exist, or is not a directory, is reported and
// skipped. Unreadable subdirectories are reported and skipped. Failing to
// read a root itself is yielded as an error and ends the walk.
func (w *Walker) Walk(roots []string, recursive bool) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, root := range roots {
			info, err := os.Stat(root)
			if err != nil || !info.IsDir() {
				progress.Reportf(w.sink, "Directory not found: %s", root)
				w.logger.Debug().Str("root", root).Msg("Skipping missing root")
				continue
			}

			progress.Reportf(w.sink, "Searching in: %s", root)

			var cont bool
			if recursive {
				cont, err = w.walkTree(resolveRoot(root), yield)
			} else {
				cont, err = w.walkShallow(root, yield)
			}
			if err != nil {
				yield("", err)
				return
			}
			if !cont {
				return
			}
		}
	}
}

func (w *Walker) walkShallow(root string, yield func(string, error) bool) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", root, err)
	}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if !isFile(path, e) {
			continue
		}
		if !yield(path, nil) {
			return false, nil
		}
	}
	return true, nil
}

var errStop = errors.New("walk stopped")

func (w *Walker) walkTree(root string, yield func(string, error) bool) (bool, error) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to read %s: %w", root, err)
			}
			progress.Reportf(w.sink, "Skipping %s: %v", path, err)
			w.logger.Debug().Err(err).Str("path", path).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !isFile(path, d) {
			return nil
		}
		if !yield(path, nil) {
			return errStop
		}
		return nil
	})

	if errors.Is(err, errStop) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// resolveRoot follows a symlinked root so WalkDir descends into it.
func resolveRoot(root string) string {
	info, err := os.Lstat(root)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return root
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	return resolved
}

// isFile reports whether an entry is a file, following symlinks so a link
// to a regular file counts and a link to a directory does not.
func isFile(path string, d fs.DirEntry) bool {
	if d.IsDir() {
		return false
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
