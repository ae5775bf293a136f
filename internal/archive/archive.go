// Package archive inspects zip containers. A container matches when at least
// one of its file entries satisfies the search filters; the entries
// themselves are never reported.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/f4ah6o/fetchlog-go/internal/content"
	"github.com/f4ah6o/fetchlog-go/internal/matcher"
)

// Scanner applies a Matcher to the entries of zip archives.
type Scanner struct {
	matcher *matcher.Matcher
	decoder *content.Decoder
	logger  zerolog.Logger
}

// New creates a Scanner. Entry content is decoded with d; no binary
// classification is applied to entries.
func New(m *matcher.Matcher, d *content.Decoder, logger zerolog.Logger) *Scanner {
	return &Scanner{
		matcher: m,
		decoder: d,
		logger:  logger,
	}
}

// IsZip reports whether name has a .zip extension, in any case.
func IsZip(name string) bool {
	return matcher.Extension(name) == ".zip"
}

// EntryName returns the base filename of a zip entry path. Both '/' and '\'
// are treated as separators.
func EntryName(fullName string) string {
	if i := strings.LastIndexAny(fullName, `/\`); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// IsDirEntry reports whether a zip entry name denotes a directory.
func IsDirEntry(fullName string) bool {
	return strings.HasSuffix(fullName, "/")
}

// ScanArchive reports whether any entry of the zip at path matches. Scanning
// stops at the first matching entry. An archive that cannot be opened or
// read is unmatched and yields no error; the only error returned is the
// context's, checked before each entry.
func (s *Scanner) ScanArchive(ctx context.Context, path string) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		s.logger.Debug().Err(err).Str("path", path).Msg("Skipping unreadable archive")
		return false, nil
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if IsDirEntry(f.Name) {
			continue
		}

		name := EntryName(f.Name)
		if !s.matcher.MatchName(name, matcher.Extension(name)) {
			continue
		}
		if !s.matcher.NeedsContent() {
			s.logger.Trace().Str("path", path).Str("entry", f.Name).Msg("Entry matched")
			return true, nil
		}

		text, err := s.readEntry(f, name)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", path).Str("entry", f.Name).Msg("Skipping unreadable archive")
			return false, nil
		}
		if s.matcher.ContentMatches(text) {
			s.logger.Trace().Str("path", path).Str("entry", f.Name).Msg("Entry matched")
			return true, nil
		}
	}

	return false, nil
}

func (s *Scanner) readEntry(f *zip.File, name string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.decoder.ReadText(rc, name)
}
