// Package content classifies files as text or binary and decodes file and
// archive entry bytes into text for content filtering.
package content

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SniffLen is the number of leading bytes inspected by IsBinary.
const SniffLen = 512

// textExtensions are always treated as text without reading the file.
var textExtensions = map[string]bool{
	".txt": true, ".log": true, ".xml": true, ".json": true, ".csv": true,
	".config": true, ".ini": true, ".yaml": true, ".yml": true, ".md": true,
	".cs": true, ".js": true, ".html": true, ".css": true, ".sql": true,
	".bat": true, ".sh": true, ".ps1": true,
}

// IsTextExtension reports whether ext (with leading dot, any case) is on the
// text allow-list.
func IsTextExtension(ext string) bool {
	return textExtensions[strings.ToLower(ext)]
}

// IsBinary reports whether the file at path should be skipped by content
// matching. Allow-listed extensions are text. Otherwise the first SniffLen
// bytes are read and any byte in the range 0-8 marks the file as binary.
// Bytes 9 and above never do. A file that cannot be read counts as binary.
func IsBinary(path string) bool {
	if IsTextExtension(filepath.Ext(path)) {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return true
	}
	return HasBinaryBytes(buf[:n])
}

// HasBinaryBytes reports whether buf holds a byte below 9.
func HasBinaryBytes(buf []byte) bool {
	for _, b := range buf {
		if b < 9 {
			return true
		}
	}
	return false
}
