// Package exporter copies search matches into a staging directory. Name
// collisions are resolved by inserting a numeric suffix before the
// extension, so nothing already in the directory is overwritten.
package exporter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/logging"
	"github.com/f4ah6o/fetchlog-go/internal/progress"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

const (
	// maxSuffix bounds the collision counter.
	maxSuffix = 1 << 20

	lockRetryDelay = 100 * time.Millisecond
)

// Exporter copies MatchRecords into an output directory.
type Exporter struct {
	logger  zerolog.Logger
	lockDir string
}

// New creates an Exporter logging under the "exporter" component.
func New() *Exporter {
	return &Exporter{
		logger:  logging.Get("exporter"),
		lockDir: os.TempDir(),
	}
}

// WithLogger returns a copy of e that logs to logger.
func (e *Exporter) WithLogger(logger zerolog.Logger) *Exporter {
	c := *e
	c.logger = logger
	return &c
}

// Export copies each record's source file into outputPath, creating the
// directory if needed, and returns how many copies succeeded. Records are
// processed in order; a failed copy is reported on sink and skipped.
//
// The output directory is locked for the duration of the export so that
// concurrent exports into the same directory resolve collisions one at a
// time. If ctx ends, files already copied stay in place and the returned
// error wraps search.ErrCancelled.
func (e *Exporter) Export(ctx context.Context, records []search.MatchRecord, outputPath string, sink progress.Sink) (int, error) {
	if sink == nil {
		sink = progress.Discard
	}
	if strings.TrimSpace(outputPath) == "" {
		return 0, errors.New("output path is empty")
	}

	logger := e.logger.With().Str("run", uuid.NewString()).Str("output", outputPath).Logger()
	done := logging.Start(logger, "export")
	defer done()

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(e.lockPath(outputPath))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%w: %w", search.ErrCancelled, ctxErr)
		}
		return 0, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("failed to lock output directory %s", outputPath)
	}
	defer lock.Unlock()

	copied := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			logger.Info().Int("copied", copied).Msg("Export cancelled")
			return copied, fmt.Errorf("%w: %w", search.ErrCancelled, err)
		}

		destName, err := copyRecord(rec, outputPath)
		if err != nil {
			progress.Reportf(sink, "Error copying %s: %v", rec.DisplayName, err)
			logger.Warn().Err(err).Str("source", rec.SourcePath).Msg("Copy failed")
			continue
		}

		copied++
		progress.Reportf(sink, "Copied: %s", destName)
	}

	logger.Info().Int("copied", copied).Int("records", len(records)).Msg("Export finished")
	return copied, nil
}

// lockPath returns a lock file outside the output directory so the lock
// never shows up among the exported files.
func (e *Exporter) lockPath(outputPath string) string {
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		abs = filepath.Clean(outputPath)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(e.lockDir, "fetchlog-"+hex.EncodeToString(sum[:8])+".lock")
}

// CandidateName returns the destination name for the n-th collision of
// name: name itself for n == 0, otherwise stem_n.ext.
func CandidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// copyRecord copies rec into dir under the first free candidate name and
// returns that name.
func copyRecord(rec search.MatchRecord, dir string) (string, error) {
	src, err := os.Open(rec.SourcePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", rec.SourcePath)
	}

	dst, destName, err := createFree(dir, rec.DisplayName, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	destPath := filepath.Join(dir, destName)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(destPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(destPath)
		return "", err
	}
	// Timestamps are best effort.
	_ = os.Chtimes(destPath, info.ModTime(), info.ModTime())
	return destName, nil
}

// createFree creates the first candidate name that does not yet exist in
// dir. Existence is checked and the file created in one step, so files
// that appear between attempts, including ones from earlier runs, are never
// overwritten.
func createFree(dir, name string, perm fs.FileMode) (*os.File, string, error) {
	if perm == 0 {
		perm = 0644
	}
	for n := 0; n < maxSuffix; n++ {
		candidate := CandidateName(name, n)
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm|0200)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}
