package search

import (
	"fmt"
	"math"
	"strconv"

	"github.com/f4ah6o/fetchlog-go/internal/matcher"
	"github.com/f4ah6o/fetchlog-go/internal/normalizer"
)

// Request describes one search-and-export run. It is built once by the
// caller and passed by value.
type Request struct {
	// Roots are the directories to search.
	Roots []string
	// Recursive searches each root's whole subtree instead of its top level.
	Recursive bool
	// SearchInArchives inspects the entries of .zip files instead of
	// treating the archive as a plain file.
	SearchInArchives bool
	// CaseSensitive governs content comparison only. Name patterns are
	// always case-insensitive.
	CaseSensitive bool
	// Extensions restricts matches to these extensions. Empty means any.
	Extensions []string
	// IncludePatterns, when non-empty, require a name to match one of them.
	IncludePatterns []string
	// ExcludePatterns reject any name matching one of them.
	ExcludePatterns []string
	// ContentFilter, when non-blank, must occur in the decoded text.
	ContentFilter string
	// OutputPath is the export destination directory.
	OutputPath string
	// Encoding names the text encoding assumed when no byte order mark is
	// present. Empty means UTF-8.
	Encoding string
	// HTMLText matches the content filter against the document text of
	// .html and .htm files rather than their markup.
	HTMLText bool
}

// Normalized returns a copy of r with extensions lowercased and dotted and
// blank patterns removed.
func (r Request) Normalized() Request {
	r.Roots = normalizer.Patterns(r.Roots)
	r.Extensions = normalizer.Extensions(r.Extensions)
	r.IncludePatterns = normalizer.Patterns(r.IncludePatterns)
	r.ExcludePatterns = normalizer.Patterns(r.ExcludePatterns)
	return r
}

// Criteria returns the filters of r for a matcher.
func (r Request) Criteria() matcher.Criteria {
	return matcher.Criteria{
		Extensions:    r.Extensions,
		Include:       r.IncludePatterns,
		Exclude:       r.ExcludePatterns,
		ContentFilter: r.ContentFilter,
		CaseSensitive: r.CaseSensitive,
	}
}

// Origin tells whether a match is a plain file or a zip container.
type Origin int

const (
	// PlainFile is a file matched directly.
	PlainFile Origin = iota
	// ArchiveContainer is a zip archive with at least one matching entry.
	ArchiveContainer
)

// String returns the short label shown in result listings.
func (o Origin) String() string {
	switch o {
	case PlainFile:
		return "File"
	case ArchiveContainer:
		return "ZIP"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// MarshalText encodes the origin as its label.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (o *Origin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "File":
		*o = PlainFile
	case "ZIP":
		*o = ArchiveContainer
	default:
		return fmt.Errorf("unknown origin %q", string(text))
	}
	return nil
}

// MatchRecord is one search result.
type MatchRecord struct {
	DisplayName string `json:"name" yaml:"name"`
	SourcePath  string `json:"source_path" yaml:"source_path"`
	SizeBytes   int64  `json:"size_bytes" yaml:"size_bytes"`
	SizeHuman   string `json:"size" yaml:"size"`
	Origin      Origin `json:"type" yaml:"type"`
	// ContainerPath is set only for ArchiveContainer records and then
	// equals SourcePath.
	ContainerPath string `json:"container_path,omitempty" yaml:"container_path,omitempty"`
}

// NewFileRecord creates a record for a plain file.
func NewFileRecord(name, path string, size int64) MatchRecord {
	return MatchRecord{
		DisplayName: name,
		SourcePath:  path,
		SizeBytes:   size,
		SizeHuman:   FormatSize(size),
		Origin:      PlainFile,
	}
}

// NewArchiveRecord creates a record for a matched zip container.
func NewArchiveRecord(name, path string, size int64) MatchRecord {
	return MatchRecord{
		DisplayName:   name,
		SourcePath:    path,
		SizeBytes:     size,
		SizeHuman:     FormatSize(size),
		Origin:        ArchiveContainer,
		ContainerPath: path,
	}
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes in base-1024 units with at most two decimals,
// trailing zeros dropped: 0 B, 1 KB, 1.5 KB, 2.25 MB.
func FormatSize(bytes int64) string {
	size := float64(bytes)
	order := 0
	for size >= 1024 && order < len(sizeUnits)-1 {
		order++
		size /= 1024
	}
	rounded := math.Round(size*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[order]
}
