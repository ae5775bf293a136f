package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f4ah6o/fetchlog-go/internal/progress"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func collect(t *testing.T, w *Walker, roots []string, recursive bool) []string {
	t.Helper()
	var got []string
	for path, err := range w.Walk(roots, recursive) {
		require.NoError(t, err)
		got = append(got, path)
	}
	sort.Strings(got)
	return got
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.log"))
	touch(t, filepath.Join(root, "b.log"))
	touch(t, filepath.Join(root, "sub", "c.log"))
	touch(t, filepath.Join(root, "sub", "deep", "d.log"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))
	return root
}

func TestWalk_Recursive(t *testing.T) {
	root := fixture(t)
	w := New(nil, zerolog.Nop())

	got := collect(t, w, []string{root}, true)
	assert.Equal(t, []string{
		filepath.Join(root, "a.log"),
		filepath.Join(root, "b.log"),
		filepath.Join(root, "sub", "c.log"),
		filepath.Join(root, "sub", "deep", "d.log"),
	}, got)
}

func TestWalk_Shallow(t *testing.T) {
	root := fixture(t)
	w := New(nil, zerolog.Nop())

	got := collect(t, w, []string{root}, false)
	assert.Equal(t, []string{
		filepath.Join(root, "a.log"),
		filepath.Join(root, "b.log"),
	}, got)
}

func TestWalk_MissingRootIsReported(t *testing.T) {
	root := fixture(t)
	missing := filepath.Join(t.TempDir(), "nope")
	file := filepath.Join(root, "a.log")

	var rec progress.Recorder
	w := New(&rec, zerolog.Nop())

	got := collect(t, w, []string{missing, file, root}, false)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{
		"Directory not found: " + missing,
		"Directory not found: " + file,
		"Searching in: " + root,
	}, rec.Lines())
}

func TestWalk_MultipleRoots(t *testing.T) {
	first := fixture(t)
	second := t.TempDir()
	touch(t, filepath.Join(second, "z.txt"))

	got := collect(t, New(nil, zerolog.Nop()), []string{first, second}, true)
	assert.Len(t, got, 5)
	assert.Contains(t, got, filepath.Join(second, "z.txt"))
}

func TestWalk_StopsWhenConsumerBreaks(t *testing.T) {
	root := fixture(t)
	w := New(nil, zerolog.Nop())

	count := 0
	for range w.Walk([]string{root, root}, true) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestWalk_SymlinkedFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "target.log")
	touch(t, target)
	if err := os.Symlink(target, filepath.Join(root, "link.log")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(t.TempDir(), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got := collect(t, New(nil, zerolog.Nop()), []string{root}, true)
	assert.Equal(t, []string{filepath.Join(root, "link.log")}, got)
}
