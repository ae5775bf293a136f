// Package search finds files under a set of roots by extension, name
// pattern and content, optionally looking inside zip archives, and returns
// the matches in traversal order.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/archive"
	"github.com/f4ah6o/fetchlog-go/internal/content"
	"github.com/f4ah6o/fetchlog-go/internal/logging"
	"github.com/f4ah6o/fetchlog-go/internal/matcher"
	"github.com/f4ah6o/fetchlog-go/internal/progress"
	"github.com/f4ah6o/fetchlog-go/internal/walker"
)

// errBinary marks plain files skipped by content matching.
var errBinary = errors.New("binary file")

// Searcher runs searches. It holds no per-run state, so one Searcher can
// serve any number of sequential or concurrent calls.
type Searcher struct {
	logger zerolog.Logger
}

// New creates a Searcher logging under the "search" component.
func New() *Searcher {
	return &Searcher{logger: logging.Get("search")}
}

// WithLogger returns a copy of s that logs to logger.
func (s *Searcher) WithLogger(logger zerolog.Logger) *Searcher {
	return &Searcher{logger: logger}
}

// Search walks req.Roots and returns every match in traversal order.
// Status lines go to sink, which may be nil.
//
// Missing roots, unreadable files and unreadable archives are skipped. If
// ctx ends before the walk completes the result is discarded and the error
// wraps ErrCancelled. Any other error aborts the search.
func (s *Searcher) Search(ctx context.Context, req Request, sink progress.Sink) ([]MatchRecord, error) {
	if sink == nil {
		sink = progress.Discard
	}
	req = req.Normalized()
	if len(req.Roots) == 0 {
		return nil, ErrNoRoots
	}

	logger := s.logger.With().Str("run", uuid.NewString()).Logger()
	done := logging.Start(logger, "search")
	defer done()

	decoder, err := content.NewDecoder(req.Encoding, req.HTMLText)
	if err != nil {
		return nil, err
	}

	m := matcher.New(req.Criteria())
	scanner := archive.New(m, decoder, logger)
	w := walker.New(sink, logger)
	c := newCollector()

	for path, walkErr := range w.Walk(req.Roots, req.Recursive) {
		if walkErr != nil {
			return nil, fmt.Errorf("search failed: %w", walkErr)
		}
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		name := filepath.Base(path)

		if req.SearchInArchives && archive.IsZip(name) {
			if c.hasContainer(path) {
				continue
			}
			matched, err := scanner.ScanArchive(ctx, path)
			if err != nil {
				return nil, cancelled(err)
			}
			if !matched {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				logger.Debug().Err(err).Str("path", path).Msg("Skipping archive that vanished")
				continue
			}
			if c.addContainer(NewArchiveRecord(name, path, info.Size())) {
				progress.Reportf(sink, "Found matches in ZIP: %s", name)
			}
			continue
		}

		load := func() (string, error) {
			if content.IsBinary(path) {
				return "", errBinary
			}
			return decoder.ReadFile(path)
		}
		if !m.IsMatch(name, matcher.Extension(name), load) {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("Skipping inaccessible file")
			continue
		}
		c.addFile(NewFileRecord(name, path, info.Size()))
		progress.Reportf(sink, "Match found: %s", name)
	}

	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	logger.Info().Int("matches", len(c.records)).Msg("Search finished")
	return c.results(), nil
}

func cancelled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return err
}
