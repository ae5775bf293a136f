// Package packager bundles an export staging directory into a single zip
// archive, preserving the directory layout.
package packager

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/logging"
)

// Packager creates zip archives from directories.
type Packager struct {
	logger zerolog.Logger
}

// New creates a new Packager instance.
func New() *Packager {
	return &Packager{logger: logging.Get("packager")}
}

// WithLogger returns a copy of p that logs to logger.
func (p *Packager) WithLogger(logger zerolog.Logger) *Packager {
	return &Packager{logger: logger}
}

// BundlePath returns the default archive path for a staging directory:
// the directory path with a .zip suffix, placed beside it.
func BundlePath(dir string) string {
	return filepath.Clean(dir) + ".zip"
}

// Package writes every file and directory below dir into the zip archive at
// zipPath, replacing any existing file. Entry names are relative to dir
// and use forward slashes; directory entries end in '/'. Files are
// compressed with DEFLATE.
//
// The archive must not live inside dir. ctx is checked before each entry;
// a cancelled or failed run removes the partial archive.
func (p *Packager) Package(ctx context.Context, dir, zipPath string) (int, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return 0, fmt.Errorf("directory not found: %s", dir)
	}
	if inside(dir, zipPath) {
		return 0, fmt.Errorf("archive %s must not be inside %s", zipPath, dir)
	}

	p.logger.Debug().Str("dir", dir).Str("archive", zipPath).Msg("Packaging")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create zip file: %w", err)
	}

	files, err := writeArchive(ctx, zipFile, dir)
	closeErr := zipFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(zipPath)
		return 0, fmt.Errorf("failed to package %s: %w", dir, err)
	}

	p.logger.Info().Str("archive", zipPath).Int("files", files).Msg("Package created")
	return files, nil
}

func writeArchive(ctx context.Context, w io.Writer, dir string) (int, error) {
	zipWriter := zip.NewWriter(w)
	files := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		// Use forward slashes for zip paths (cross-platform compatibility)
		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		if err := copyInto(writer, path); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		zipWriter.Close()
		return 0, err
	}
	return files, zipWriter.Close()
}

func copyInto(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(w, file)
	return err
}

func inside(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
