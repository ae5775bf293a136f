package content

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns raw bytes into text. A byte order mark always wins; without
// one the configured fallback encoding is used, UTF-8 by default. Invalid
// sequences decode to U+FFFD instead of failing.
type Decoder struct {
	fallback encoding.Encoding
	htmlText bool
}

// NewDecoder creates a Decoder. encodingName is a WHATWG encoding label such
// as "windows-1252" or "shift_jis"; empty means UTF-8. When htmlText is set,
// .html and .htm content is reduced to its document text before matching.
func NewDecoder(encodingName string, htmlText bool) (*Decoder, error) {
	d := &Decoder{fallback: unicode.UTF8, htmlText: htmlText}
	if encodingName == "" {
		return d, nil
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encodingName, err)
	}
	d.fallback = enc
	return d, nil
}

// ValidEncoding reports whether name is a known encoding label.
func ValidEncoding(name string) bool {
	if name == "" {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

// ReadFile reads and decodes the file at path.
func (d *Decoder) ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return d.ReadText(f, filepath.Base(path))
}

// ReadText reads r to the end and decodes it. name is the file or entry
// name and only decides whether HTML text extraction applies.
func (d *Decoder) ReadText(r io.Reader, name string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	isHTML := d.htmlText && isHTMLName(name)

	enc := d.fallback
	if isHTML {
		if metaEnc := encodingFromMeta(raw); metaEnc != nil {
			enc = metaEnc
		}
	}

	text, err := decode(raw, enc)
	if err != nil {
		return "", err
	}
	if !isHTML {
		return text, nil
	}
	return htmlText(text)
}

func decode(raw []byte, enc encoding.Encoding) (string, error) {
	reader := transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(enc.NewDecoder()))
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func isHTMLName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// htmlText returns the visible text of an HTML document.
func htmlText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()
	return doc.Text(), nil
}

var (
	metaCharsetRe     = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s;>/]+)`)
	utf8BOM           = []byte{0xEF, 0xBB, 0xBF}
	metaSniffBoundary = 4096
)

// encodingFromMeta looks for a charset declaration in the head of an HTML
// document. It works on raw bytes so ASCII-compatible encodings are found
// before decoding.
func encodingFromMeta(raw []byte) encoding.Encoding {
	if bytes.HasPrefix(raw, utf8BOM) {
		return nil
	}
	head := raw
	if len(head) > metaSniffBoundary {
		head = head[:metaSniffBoundary]
	}
	m := metaCharsetRe.FindSubmatch(head)
	if len(m) < 2 {
		return nil
	}
	enc, err := htmlindex.Get(string(m[1]))
	if err != nil {
		return nil
	}
	return enc
}

// Contains reports whether text contains filter, comparing ordinally.
// Without caseSensitive both sides are upper-cased rune by rune first.
func Contains(text, filter string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(text, filter)
	}
	return strings.Contains(strings.ToUpper(text), strings.ToUpper(filter))
}
