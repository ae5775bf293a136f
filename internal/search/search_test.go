package search

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f4ah6o/fetchlog-go/internal/progress"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		ew, err := zw.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func newSearcher() *Searcher {
	return New().WithLogger(zerolog.Nop())
}

func names(records []MatchRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.DisplayName)
	}
	sort.Strings(out)
	return out
}

func TestSearch_RecursiveContentScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "ERROR: x")
	writeFile(t, filepath.Join(root, "b.log"), "ok")
	writeFile(t, filepath.Join(root, "sub", "c.log"), "error: y")

	req := Request{
		Roots:         []string{root},
		Recursive:     true,
		Extensions:    []string{".log"},
		ContentFilter: "ERROR",
	}

	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log", "c.log"}, names(results))

	for _, r := range results {
		assert.Equal(t, PlainFile, r.Origin)
		assert.Empty(t, r.ContainerPath)
	}
}

func TestSearch_CaseSensitiveContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "ERROR: x")
	writeFile(t, filepath.Join(root, "sub", "c.log"), "error: y")

	req := Request{Roots: []string{root}, Recursive: true, ContentFilter: "ERROR", CaseSensitive: true}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log"}, names(results))
}

func TestSearch_ShallowSkipsSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.log"), "x")

	results, err := newSearcher().Search(context.Background(), Request{Roots: []string{root}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log"}, names(results))
}

func TestSearch_IncludeExcludeScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cfg"), "")
	writeFile(t, filepath.Join(root, "temp_b.cfg"), "")
	writeFile(t, filepath.Join(root, "c.txt"), "")

	req := Request{
		Roots:           []string{root},
		IncludePatterns: []string{"*.cfg"},
		ExcludePatterns: []string{"temp_*"},
	}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cfg"}, names(results))
}

func TestSearch_ExtensionInputIsNormalized(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.LOG"), "")
	writeFile(t, filepath.Join(root, "b.txt"), "")

	req := Request{Roots: []string{root}, Extensions: []string{"LOG"}}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.LOG"}, names(results))
}

func TestSearch_ArchiveScenario(t *testing.T) {
	root := t.TempDir()
	zipPath := filepath.Join(root, "r.zip")
	writeZip(t, zipPath, map[string]string{"ok.txt": "no match", "hit.txt": "ERROR"})

	var rec progress.Recorder
	req := Request{Roots: []string{root}, SearchInArchives: true, ContentFilter: "ERROR"}
	results, err := newSearcher().Search(context.Background(), req, &rec)
	require.NoError(t, err)
	require.Len(t, results, 1)

	info, err := os.Stat(zipPath)
	require.NoError(t, err)

	got := results[0]
	assert.Equal(t, "r.zip", got.DisplayName)
	assert.Equal(t, ArchiveContainer, got.Origin)
	assert.Equal(t, zipPath, got.SourcePath)
	assert.Equal(t, got.SourcePath, got.ContainerPath)
	assert.Equal(t, info.Size(), got.SizeBytes)
	assert.True(t, rec.Contains("Found matches in ZIP: r.zip"))
}

func TestSearch_ArchiveWithoutMatchingEntryIsAbsent(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "logs.zip"), map[string]string{"ok.txt": "fine"})

	// The archive's own name satisfies the filters, but no entry does.
	req := Request{
		Roots:            []string{root},
		SearchInArchives: true,
		Extensions:       []string{".zip", ".txt"},
		IncludePatterns:  []string{"logs*", "ok*"},
		ContentFilter:    "ERROR",
	}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestSearch_ArchiveOneRecordForManyEntries(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "many.zip"), map[string]string{
		"a.log": "ERROR", "b.log": "ERROR", "c.log": "ERROR",
	})

	req := Request{Roots: []string{root}, SearchInArchives: true, Extensions: []string{".log"}}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "many.zip", results[0].DisplayName)
}

func TestSearch_ArchiveReportedOnceAcrossOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "r.zip"), map[string]string{"hit.txt": "ERROR"})

	req := Request{Roots: []string{root, root}, SearchInArchives: true}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_ArchivesAsPlainFilesWhenDisabled(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "r.zip"), map[string]string{"hit.txt": "ERROR"})

	req := Request{Roots: []string{root}, Extensions: []string{".zip"}}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, PlainFile, results[0].Origin)

	req = Request{Roots: []string{root}, Extensions: []string{".txt"}}
	results, err = newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_UnreadableArchiveIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.zip"), "not a zip at all")
	writeFile(t, filepath.Join(root, "a.log"), "ERROR")

	req := Request{Roots: []string{root}, SearchInArchives: true}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log"}, names(results))
}

func TestSearch_BinaryFilesNeverContentMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data.bin"), "\x00ERROR")
	writeFile(t, filepath.Join(root, "ctrl.dat"), "ERROR\x08")
	writeFile(t, filepath.Join(root, "tabs.dat"), "ERROR\tok")
	// Allow-listed extensions are never sniffed.
	writeFile(t, filepath.Join(root, "null.log"), "\x00ERROR")

	req := Request{Roots: []string{root}, ContentFilter: "ERROR"}
	results, err := newSearcher().Search(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"null.log", "tabs.dat"}, names(results))
}

func TestSearch_MissingRootContinues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "")
	missing := filepath.Join(t.TempDir(), "gone")

	var rec progress.Recorder
	results, err := newSearcher().Search(context.Background(), Request{Roots: []string{missing, root}}, &rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log"}, names(results))
	assert.Equal(t, []string{
		"Directory not found: " + missing,
		"Searching in: " + root,
		"Match found: a.log",
	}, rec.Lines())
}

func TestSearch_NoRoots(t *testing.T) {
	_, err := newSearcher().Search(context.Background(), Request{Roots: []string{" "}}, nil)
	assert.ErrorIs(t, err, ErrNoRoots)
}

func TestSearch_UnknownEncoding(t *testing.T) {
	_, err := newSearcher().Search(context.Background(), Request{Roots: []string{t.TempDir()}, Encoding: "klingon"}, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestSearch_CancelledBeforeStart(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.log"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newSearcher().Search(ctx, Request{Roots: []string{root}}, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestSearch_CancelledMidwayDiscardsMatches(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a.log", "b.log", "c.log", "d.log"} {
		writeFile(t, filepath.Join(root, n), "")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matches := 0
	sink := progress.Func(func(msg string) {
		if len(msg) > 5 && msg[:5] == "Match" {
			matches++
			if matches == 2 {
				cancel()
			}
		}
	})

	results, err := newSearcher().Search(ctx, Request{Roots: []string{root}}, sink)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, results)
	assert.Equal(t, 2, matches)
}

func TestSearch_CancelledWithEmptyRoot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSearcher().Search(ctx, Request{Roots: []string{t.TempDir()}}, nil)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1126, "1.1 KB"},
		{2359296, "2.25 MB"},
		{1073741824, "1 GB"},
		{1099511627776, "1 TB"},
		{1125899906842624, "1024 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestRecords(t *testing.T) {
	file := NewFileRecord("a.log", "/x/a.log", 2048)
	assert.Equal(t, PlainFile, file.Origin)
	assert.Empty(t, file.ContainerPath)
	assert.Equal(t, "2 KB", file.SizeHuman)

	arc := NewArchiveRecord("r.zip", "/x/r.zip", 10)
	assert.Equal(t, ArchiveContainer, arc.Origin)
	assert.Equal(t, arc.SourcePath, arc.ContainerPath)
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, []MatchRecord{NewArchiveRecord("r.zip", "/x/r.zip", 10)}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "ZIP", decoded[0]["type"])
	assert.Equal(t, "/x/r.zip", decoded[0]["container_path"])

	buf.Reset()
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatYAML(&buf, []MatchRecord{NewFileRecord("a.log", "/x/a.log", 1)}))
	assert.Contains(t, buf.String(), "name: a.log")
	assert.Contains(t, buf.String(), "type: File")
	assert.NotContains(t, buf.String(), "container_path")
}

func TestFormatResults(t *testing.T) {
	var buf bytes.Buffer
	FormatResults(&buf, nil)
	assert.Contains(t, buf.String(), "No files found")

	buf.Reset()
	FormatResults(&buf, []MatchRecord{
		NewFileRecord("a.log", "/x/a.log", 1),
		NewArchiveRecord("r.zip", "/x/r.zip", 2048),
	})
	out := buf.String()
	assert.Contains(t, out, "Found 2 file(s).")
	assert.Contains(t, out, "/x/a.log")
	assert.Contains(t, out, "2 KB")
}
