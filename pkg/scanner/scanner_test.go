package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/fileview"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMem(t *testing.T, content string) fileview.FileView {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	v, _, err := fileview.Open(path, int64(len(content)), fileview.DefaultPolicy(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestScanInMemoryMatchesSpecS1(t *testing.T) {
	v := openInMem(t, "one\ntwo pattern three\nthree\n")
	p, err := pattern.Compile("pattern", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.FullText, Config{ContextLines: 1})
	require.Len(t, out.Matches, 1)

	m := out.Matches[0]
	assert.Equal(t, 2, m.LineNumber)
	assert.Equal(t, 4, m.ColumnStart)
	assert.Equal(t, 11, m.ColumnEnd)
	assert.Equal(t, "two pattern three", m.Line)
	assert.Equal(t, "pattern", m.MatchedText)
	require.Len(t, m.ContextBefore, 1)
	assert.Equal(t, 1, m.ContextBefore[0].Number)
	assert.Equal(t, "one", m.ContextBefore[0].Text)
	require.Len(t, m.ContextAfter, 1)
	assert.Equal(t, 3, m.ContextAfter[0].Number)
	assert.Equal(t, "three", m.ContextAfter[0].Text)
}

func TestScanInMemoryBinaryGuardSkips(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		if i%2 == 0 {
			data[i] = 0
		} else {
			data[i] = 'x'
		}
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.dat")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	v, _, err := fileview.Open(path, int64(len(data)), fileview.DefaultPolicy(), nil)
	require.NoError(t, err)
	defer v.Close()

	p, err := pattern.Compile("x", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.FullText, Config{})
	assert.Empty(t, out.Matches)
	assert.Equal(t, "BinaryContent", out.SkipReason)
}

func TestScanInvertMatchEmitsNonMatchingLines(t *testing.T) {
	v := openInMem(t, "has needle\nno hit here\nanother needle\n")
	p, err := pattern.Compile("needle", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.FullText, Config{InvertMatch: true})
	require.Len(t, out.Matches, 1)
	assert.Equal(t, 2, out.Matches[0].LineNumber)
	assert.Equal(t, "", out.Matches[0].MatchedText)
	assert.Equal(t, 0, out.Matches[0].ColumnStart)
	assert.Equal(t, 0, out.Matches[0].ColumnEnd)
}

func TestScanMaxMatchesStopsEarly(t *testing.T) {
	v := openInMem(t, "x\nx\nx\nx\n")
	p, err := pattern.Compile("x", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.FullText, Config{MaxMatches: 2})
	assert.Len(t, out.Matches, 2)
}

func TestScanConditionalModeSkips(t *testing.T) {
	v := openInMem(t, "irrelevant")
	p, err := pattern.Compile("x", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.Filename, Config{})
	assert.Empty(t, out.Matches)
	assert.NotEmpty(t, out.SkipReason)
}

func TestScanStreamedMatchesWithContext(t *testing.T) {
	policy := fileview.Policy{SmallThreshold: 1, MmapCeiling: 1}
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	content := "one\ntwo pattern three\nthree\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	v, _, err := fileview.Open(path, int64(len(content)), policy, nil)
	require.NoError(t, err)
	defer v.Close()
	require.Equal(t, fileview.Streamed, v.Kind())

	p, err := pattern.Compile("pattern", pattern.Literal, pattern.Options{})
	require.NoError(t, err)

	out := Scan(v, p, classify.FullText, Config{ContextLines: 1})
	require.Len(t, out.Matches, 1)
	m := out.Matches[0]
	assert.Equal(t, 2, m.LineNumber)
	assert.Equal(t, "pattern", m.MatchedText)
	require.Len(t, m.ContextBefore, 1)
	assert.Equal(t, "one", m.ContextBefore[0].Text)
	require.Len(t, m.ContextAfter, 1)
	assert.Equal(t, "three", m.ContextAfter[0].Text)
}
