package rfgrep

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kh3rld/rfgrep/pkg/worker"
)

// TestMain lets this test binary double as the `<self> worker <path>
// <pattern>` subprocess the orchestrator launches under
// WithPerFileTimeout: Search/SearchToNDJSON resolve SelfPath via
// os.Executable(), which under `go test` is this very binary.
// Intercepting "worker" here before the testing machinery parses argv
// is the standard self-exec pattern for exercising worker-isolation
// end to end without a separately built CLI binary.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == "worker" {
		if err := worker.Run(os.Args[2], os.Args[3], os.Stdout); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// S1: literal pattern with one line of context on either side.
func TestSearchScenarioS1LiteralWithContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "one\ntwo pattern\nthree\n")

	matches, _, err := Search(context.Background(), "pattern", dir, WithContextLines(1))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, path, m.Path)
	assert.Equal(t, 2, m.LineNumber)
	assert.Equal(t, "two pattern", m.Line)
	assert.Equal(t, "pattern", m.MatchedText)
	assert.Equal(t, 4, m.ColumnStart)
	assert.Equal(t, 11, m.ColumnEnd)
	require.Len(t, m.ContextBefore, 1)
	assert.Equal(t, 1, m.ContextBefore[0].Number)
	assert.Equal(t, "one", m.ContextBefore[0].Text)
	require.Len(t, m.ContextAfter, 1)
	assert.Equal(t, 3, m.ContextAfter[0].Number)
	assert.Equal(t, "three", m.ContextAfter[0].Text)
}

// S2: regex anchoring across multiple lines in one file, in order.
func TestSearchScenarioS2RegexAnchoring(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "code.rs", "fn foo() {}\nfn bar() {}\n")

	matches, _, err := Search(context.Background(), `^fn \w+`, dir, WithRegex())
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, 1, matches[0].LineNumber)
	assert.Equal(t, 0, matches[0].ColumnStart)
	assert.Equal(t, 6, matches[0].ColumnEnd)
	assert.Equal(t, "fn foo", matches[0].MatchedText)

	assert.Equal(t, 2, matches[1].LineNumber)
	assert.Equal(t, 0, matches[1].ColumnStart)
	assert.Equal(t, 6, matches[1].ColumnEnd)
	assert.Equal(t, "fn bar", matches[1].MatchedText)
}

// S3: a file whose first half is all zero bytes produces zero matches
// even for a pattern that would otherwise match the ASCII tail. With
// the name big.bin it is skipped by the classifier, since .bin is on
// the never-search list.
func TestSearchScenarioS3BinaryContentSkipped(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 4096)
	copy(data[2048:], []byte("needle appears here in the tail of the file padding padding"))
	writeFile(t, dir, "big.bin", string(data))

	matches, _, err := Search(context.Background(), "needle", dir)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// S4: an image extension is never scanned FullText; either it yields
// no records or a Filename-mode match against the name itself.
func TestSearchScenarioS4ImageNeverFullText(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 1024)
	writeFile(t, dir, "img.jpg", string(data))

	matches, _, err := Search(context.Background(), "img", dir)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, "img.jpg", filepath.Base(m.Path))
	}
}

// S5: global max-matches truncates an aggregated search to exactly N
// records, drawn from the lexicographically earliest paths.
func TestSearchScenarioS5GlobalMaxMatchesTruncates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hit\n")
	writeFile(t, dir, "b.txt", "hit\n")
	writeFile(t, dir, "c.txt", "hit\n")

	matches, summary, err := Search(context.Background(), "hit", dir, WithMaxMatches(2))
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 2, summary.TotalMatches)

	paths := []string{filepath.Base(matches[0].Path), filepath.Base(matches[1].Path)}
	sort.Strings(paths)
	assert.Equal(t, []string{"a.txt", "b.txt"}, paths)
	for _, m := range matches {
		assert.Equal(t, 1, m.LineNumber)
	}
}

// S6: a file whose worker takes far longer than the per-file timeout
// yields zero records for that file instead of blocking the run.
// RFGREP_WORKER_SLEEP is inherited by every worker subprocess the
// orchestrator launches, so this scenario uses a single slow file
// rather than mixing in a fast one that would inherit the same
// simulated slowness.
func TestSearchScenarioS6WorkerTimeoutDropsSlowFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "slow.txt", "needle in the slow file\n")

	t.Setenv("RFGREP_WORKER_SLEEP", "5")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matches, _, err := Search(ctx, "needle", dir, WithPerFileTimeout(time.Second))
	require.NoError(t, err)
	assert.Empty(t, matches, "slow.txt should have been dropped by the per-file timeout")
}
