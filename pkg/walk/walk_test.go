package walk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, it *Iterator) []string {
	t.Helper()
	var paths []string
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		paths = append(paths, e.Path)
	}
	require.NoError(t, it.Err())
	sort.Strings(paths)
	return paths
}

func TestWalkIncludesHiddenFilesByDefault(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "visible.txt"), "a")
	mustWrite(t, filepath.Join(dir, ".hidden.txt"), "b")

	it := Walk(context.Background(), dir, DefaultOptions())
	paths := collect(t, it)

	assert.Contains(t, paths, filepath.Join(dir, "visible.txt"))
	assert.Contains(t, paths, filepath.Join(dir, ".hidden.txt"))
}

func TestWalkCanExcludeHidden(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "visible.txt"), "a")
	mustWrite(t, filepath.Join(dir, ".hidden.txt"), "b")

	opts := DefaultOptions()
	opts.IncludeHidden = false
	it := Walk(context.Background(), dir, opts)
	paths := collect(t, it)

	assert.Contains(t, paths, filepath.Join(dir, "visible.txt"))
	assert.NotContains(t, paths, filepath.Join(dir, ".hidden.txt"))
}

func TestWalkHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, ".gitignore"), "ignored.txt\n")
	mustWrite(t, filepath.Join(dir, "ignored.txt"), "a")
	mustWrite(t, filepath.Join(dir, "kept.txt"), "b")

	it := Walk(context.Background(), dir, DefaultOptions())
	paths := collect(t, it)

	assert.Contains(t, paths, filepath.Join(dir, "kept.txt"))
	assert.NotContains(t, paths, filepath.Join(dir, "ignored.txt"))
}

func TestWalkStopIsCancelable(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		mustWrite(t, filepath.Join(dir, "f"+string(rune('a'+i%26))+".txt"), "x")
	}

	it := Walk(context.Background(), dir, DefaultOptions())
	it.Stop()
	for {
		if _, ok := it.Next(); !ok {
			break
		}
	}
}

func TestWalkYieldsOnlyRegularFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "sub", "nested.txt"), "x")

	it := Walk(context.Background(), dir, DefaultOptions())
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		assert.NotEqual(t, Directory, e.FileType)
	}
	require.NoError(t, it.Err())
}
