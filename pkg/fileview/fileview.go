// Package fileview implements C4: choosing a per-file read strategy
// and exposing content through a small FileView abstraction, grounded
// on the mmap pattern in the retrieved yara-style scanner
// (ScanFile/unix.Mmap) and the teacher's resource-cleanup conventions.
package fileview

import (
	"bufio"
	"io"
	"os"
	"unicode/utf8"

	"github.com/kh3rld/rfgrep/pkg/rfgerr"
)

// Kind identifies which FileView variant a view is.
type Kind int

const (
	InMemory Kind = iota
	Mapped
	Streamed
)

func (k Kind) String() string {
	switch k {
	case InMemory:
		return "in-memory"
	case Mapped:
		return "mapped"
	case Streamed:
		return "streamed"
	default:
		return "unknown"
	}
}

// Policy bounds strategy selection (spec §4.4).
type Policy struct {
	SmallThreshold int64 // default 1 MiB
	MmapCeiling    int64 // default 100 MiB
}

const (
	defaultSmallThreshold = 1 << 20        // 1 MiB
	defaultMmapCeiling    = 100 << 20      // 100 MiB
	mmapCeilingHardCap    = 1 << 30        // 1 GiB
	binaryGuardWindow     = 8 * 1024       // 8 KiB
	binaryGuardThreshold  = 0.30
)

// DefaultPolicy returns the spec's default thresholds.
func DefaultPolicy() Policy {
	return Policy{SmallThreshold: defaultSmallThreshold, MmapCeiling: defaultMmapCeiling}
}

// FileView is a logical read-only view over a file's contents
// (spec §3). Streamed views forbid whole-buffer access; InMemory and
// Mapped views forbid line-incremental reads and instead expose the
// full buffer.
type FileView interface {
	Kind() Kind
	Path() string
	// Bytes returns the full content buffer. Valid only for InMemory
	// and Mapped views; Streamed views return (nil, false).
	Bytes() ([]byte, bool)
	// Lines returns a line producer. Valid only for Streamed views;
	// InMemory and Mapped views return (nil, false).
	Lines() (LineReader, bool)
	// Close releases any OS handle or mapping held by this view. Safe
	// to call more than once.
	Close() error
}

// LineReader yields successive lines (without the trailing newline)
// from a Streamed view.
type LineReader interface {
	// Next returns the next line and true, or ("", false) at EOF or
	// on error (check Err after a false return).
	Next() (string, bool)
	Err() error
}

type memView struct {
	kind Kind
	path string
	data []byte
	rel  func() error
}

func (v *memView) Kind() Kind                    { return v.kind }
func (v *memView) Path() string                  { return v.path }
func (v *memView) Bytes() ([]byte, bool)          { return v.data, true }
func (v *memView) Lines() (LineReader, bool)      { return nil, false }
func (v *memView) Close() error {
	if v.rel == nil {
		return nil
	}
	rel := v.rel
	v.rel = nil
	return rel()
}

type streamView struct {
	path string
	f    *os.File
}

func (v *streamView) Kind() Kind           { return Streamed }
func (v *streamView) Path() string         { return v.path }
func (v *streamView) Bytes() ([]byte, bool) { return nil, false }

func (v *streamView) Lines() (LineReader, bool) {
	sc := bufio.NewScanner(v.f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &scannerLineReader{sc: sc}, true
}

func (v *streamView) Close() error {
	if v.f == nil {
		return nil
	}
	f := v.f
	v.f = nil
	return f.Close()
}

type scannerLineReader struct {
	sc *bufio.Scanner
}

func (r *scannerLineReader) Next() (string, bool) {
	if r.sc.Scan() {
		return r.sc.Text(), true
	}
	return "", false
}

func (r *scannerLineReader) Err() error { return r.sc.Err() }

// Open selects a read strategy for path per policy and returns a
// FileView (spec §4.4). size comes from a prior Stat so callers that
// already walked the directory needn't stat twice. The
// second return value is non-empty when Open silently downgraded its
// strategy (e.g. a Mapped candidate with an invalid UTF-8 prefix
// falling back to Streamed, per spec §4.4) — this is advisory, not an
// error, and callers that have a logger should surface it as a
// warning record rather than discard it.
func Open(path string, size int64, policy Policy, pool *Pool) (FileView, string, error) {
	ceiling := policy.MmapCeiling
	if ceiling <= 0 {
		ceiling = defaultMmapCeiling
	}
	if ceiling > mmapCeilingHardCap {
		ceiling = mmapCeilingHardCap
	}
	small := policy.SmallThreshold
	if small <= 0 {
		small = defaultSmallThreshold
	}

	switch {
	case size < small:
		v, err := openInMemory(path)
		return v, "", err
	case size < ceiling:
		return openMapped(path, size, pool)
	default:
		v, err := openStreamed(path)
		return v, "", err
	}
}

func openInMemory(path string) (FileView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rfgerr.Wrap(rfgerr.FileProcessing, path, err)
	}
	return &memView{kind: InMemory, path: path, data: data}, nil
}

func openStreamed(path string) (FileView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rfgerr.Wrap(rfgerr.FileProcessing, path, err)
	}
	return &streamView{path: path, f: f}, nil
}

// openMapped mmaps path via the pool (or directly if pool is nil),
// and falls back to Streamed on invalid UTF-8 per spec §4.4 (the
// caller-visible Kind will be Streamed in that case, not an error).
// The fallback is reported back via the warning string so callers can
// make it observable instead of it happening silently.
func openMapped(path string, size int64, pool *Pool) (FileView, string, error) {
	var (
		data []byte
		rel  func() error
		err  error
	)
	if pool != nil {
		data, rel, err = pool.get(path, size)
		if err == errMemoryPressure {
			v, oerr := openStreamed(path)
			return v, "", oerr
		}
	} else {
		data, rel, err = mmapFile(path, size)
	}
	if err != nil {
		return nil, "", rfgerr.Wrap(rfgerr.FileProcessing, path, err)
	}

	if !validUTF8Prefix(data) {
		if rel != nil {
			_ = rel()
		}
		v, oerr := openStreamed(path)
		if oerr != nil {
			return v, "", oerr
		}
		return v, "mapped view had an invalid UTF-8 prefix, fell back to streamed reading: " + path, nil
	}

	return &memView{kind: Mapped, path: path, data: data, rel: rel}, "", nil
}

// validUTF8Prefix checks a bounded prefix of data for valid UTF-8,
// matching the spec's "invalid UTF-8 in a Mapped region falls back to
// Streamed" rule without paying to validate an entire huge mapping.
func validUTF8Prefix(data []byte) bool {
	n := len(data)
	if n > binaryGuardWindow {
		n = binaryGuardWindow
		// Back off to a rune boundary so a character cut by the window
		// is not taken for invalid UTF-8.
		for i := 0; i < utf8.UTFMax-1 && n > 0 && !utf8.RuneStart(data[n]); i++ {
			n--
		}
	}
	return utf8.Valid(data[:n])
}

// BinaryGuard reports whether the first min(len(data), 8 KiB) of data
// is >30% null bytes (spec §4.5's classifier-independent safety net).
func BinaryGuard(data []byte) bool {
	n := len(data)
	if n > binaryGuardWindow {
		n = binaryGuardWindow
	}
	if n == 0 {
		return false
	}
	nulls := 0
	for _, b := range data[:n] {
		if b == 0 {
			nulls++
		}
	}
	return float64(nulls)/float64(n) > binaryGuardThreshold
}

var _ io.Closer = (*memView)(nil)
var _ io.Closer = (*streamView)(nil)
