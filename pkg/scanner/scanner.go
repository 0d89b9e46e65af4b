// Package scanner implements C5: turning a FileView plus a compiled
// pattern into an ordered list of result.MatchRecord, grounded on the
// teacher's ExtractContext/extractBefore/extractAfter
// (pkg/matcher/context.go) for context-line extraction and its
// chunked streaming reader (pkg/matcher/chunker.go) for the
// line-by-line ring-buffer approach used on Streamed views.
package scanner

import (
	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/fileview"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/kh3rld/rfgrep/pkg/result"
)

// Config controls scan behavior (spec §4.5).
type Config struct {
	InvertMatch  bool
	MaxMatches   int // 0 means unlimited
	ContextLines int
}

// Outcome is the result of scanning one file: either a list of
// matches, or a skip reason (e.g. BinaryContent) with no matches.
type Outcome struct {
	Matches    []result.MatchRecord
	SkipReason string
}

// Scan runs pattern against view under config (spec §4.5's `scan`
// operation). The caller supplies the classifier's decided Mode so modes
// requiring extraction this module doesn't implement (Filename,
// Metadata) can be skipped uniformly.
func Scan(view fileview.FileView, p *pattern.Pattern, mode classify.Mode, config Config) Outcome {
	switch mode {
	case classify.Filename, classify.Metadata:
		return Outcome{SkipReason: "conditional mode unsupported: no extraction backend configured"}
	}

	if data, ok := view.Bytes(); ok {
		return scanBuffer(view.Path(), data, p, config)
	}

	lr, ok := view.Lines()
	if !ok {
		return Outcome{SkipReason: "unreadable view"}
	}
	return scanStream(view.Path(), lr, p, config)
}

func scanBuffer(path string, data []byte, p *pattern.Pattern, config Config) Outcome {
	if fileview.BinaryGuard(data) {
		return Outcome{SkipReason: "BinaryContent"}
	}

	idx := newLineIndex(data)

	if config.InvertMatch {
		return scanBufferInverted(path, data, p, idx, config)
	}

	var matches []result.MatchRecord
	for _, span := range p.Algo.Search(data) {
		if config.MaxMatches > 0 && len(matches) >= config.MaxMatches {
			break
		}
		lineNo, lineStart, lineEnd := idx.locate(span.Start)
		line := string(data[lineStart:lineEnd])
		colStart := span.Start - lineStart
		colEnd := colStart + span.Len
		if colEnd > len(line) {
			colEnd = len(line)
		}

		before, after := idx.context(lineNo, config.ContextLines)
		matches = append(matches, result.MatchRecord{
			Path:          path,
			LineNumber:    lineNo,
			ColumnStart:   colStart,
			ColumnEnd:     colEnd,
			Line:          line,
			MatchedText:   string(data[span.Start:span.End()]),
			ContextBefore: before,
			ContextAfter:  after,
		})
	}
	return Outcome{Matches: matches}
}

func scanBufferInverted(path string, data []byte, p *pattern.Pattern, idx *lineIndex, config Config) Outcome {
	var matches []result.MatchRecord
	for lineNo := 1; lineNo <= idx.lineCount(); lineNo++ {
		if config.MaxMatches > 0 && len(matches) >= config.MaxMatches {
			break
		}
		start, end := idx.bounds(lineNo)
		line := data[start:end]
		if len(p.Algo.Search(line)) > 0 {
			continue
		}
		before, after := idx.context(lineNo, config.ContextLines)
		matches = append(matches, result.MatchRecord{
			Path:          path,
			LineNumber:    lineNo,
			ColumnStart:   0,
			ColumnEnd:     0,
			Line:          string(line),
			MatchedText:   "",
			ContextBefore: before,
			ContextAfter:  after,
		})
	}
	return Outcome{Matches: matches}
}

func scanStream(path string, lr fileview.LineReader, p *pattern.Pattern, config Config) Outcome {
	ring := newRingBuffer(config.ContextLines)
	var pending []*pendingRecord
	var matches []result.MatchRecord
	lineNo := 0

	flush := func(upTo int) {
		var remaining []*pendingRecord
		for _, pr := range pending {
			if pr.waitingFor <= upTo {
				matches = append(matches, pr.record)
				continue
			}
			remaining = append(remaining, pr)
		}
		pending = remaining
	}

	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		lineNo++

		for _, pr := range pending {
			if len(pr.record.ContextAfter) < pr.want {
				pr.record.ContextAfter = append(pr.record.ContextAfter, result.ContextLine{Number: lineNo, Text: line})
			}
		}
		flush(lineNo - config.ContextLines)

		if config.MaxMatches > 0 && len(matches)+len(pending) >= config.MaxMatches {
			ring.push(lineNo, line)
			continue
		}

		spans := p.Algo.Search([]byte(line))
		lineMatched := len(spans) > 0

		if config.InvertMatch {
			if !lineMatched {
				rec := result.MatchRecord{
					Path:          path,
					LineNumber:    lineNo,
					Line:          line,
					ContextBefore: ring.snapshot(),
				}
				enqueue(&pending, rec, config.ContextLines, lineNo)
			}
		} else {
			for _, span := range spans {
				colEnd := span.Start + span.Len
				if colEnd > len(line) {
					colEnd = len(line)
				}
				rec := result.MatchRecord{
					Path:          path,
					LineNumber:    lineNo,
					ColumnStart:   span.Start,
					ColumnEnd:     colEnd,
					Line:          line,
					MatchedText:   line[span.Start:colEnd],
					ContextBefore: ring.snapshot(),
				}
				enqueue(&pending, rec, config.ContextLines, lineNo)
			}
		}

		ring.push(lineNo, line)
	}
	if err := lr.Err(); err != nil {
		return Outcome{SkipReason: "FileProcessing: " + err.Error()}
	}

	flush(lineNo)
	matches = append(matches, drainPending(pending)...)
	return Outcome{Matches: matches}
}

type pendingRecord struct {
	record     result.MatchRecord
	want       int
	waitingFor int
}

func enqueue(pending *[]*pendingRecord, rec result.MatchRecord, contextLines, lineNo int) {
	*pending = append(*pending, &pendingRecord{record: rec, want: contextLines, waitingFor: lineNo + contextLines})
}

func drainPending(pending []*pendingRecord) []result.MatchRecord {
	out := make([]result.MatchRecord, 0, len(pending))
	for _, pr := range pending {
		out = append(out, pr.record)
	}
	return out
}

// ringBuffer holds the last N lines for Streamed context_before.
type ringBuffer struct {
	capacity int
	lines    []result.ContextLine
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &ringBuffer{capacity: capacity}
}

func (r *ringBuffer) push(lineNo int, text string) {
	if r.capacity == 0 {
		return
	}
	r.lines = append(r.lines, result.ContextLine{Number: lineNo, Text: text})
	if len(r.lines) > r.capacity {
		r.lines = r.lines[len(r.lines)-r.capacity:]
	}
}

func (r *ringBuffer) snapshot() []result.ContextLine {
	if len(r.lines) == 0 {
		return nil
	}
	out := make([]result.ContextLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// lineIndex lazily materializes line boundaries over an InMemory or
// Mapped buffer (spec §4.5: "a lazily materialised line index").
type lineIndex struct {
	data    []byte
	offsets []int // byte offset where each line starts; offsets[0] == 0
}

func newLineIndex(data []byte) *lineIndex {
	idx := &lineIndex{data: data, offsets: []int{0}}
	for i, b := range data {
		if b == '\n' {
			idx.offsets = append(idx.offsets, i+1)
		}
	}
	return idx
}

// lineCount reports the number of lines; a final newline ends the last
// line rather than starting an empty one.
func (idx *lineIndex) lineCount() int {
	n := len(idx.offsets)
	if n > 0 && idx.offsets[n-1] == len(idx.data) {
		return n - 1
	}
	return n
}

// locate returns the 1-based line number and [start,end) bounds of the
// line containing byte offset pos.
func (idx *lineIndex) locate(pos int) (lineNo, start, end int) {
	lo, hi := 0, len(idx.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	lineNo = lo + 1
	start, end = idx.bounds(lineNo)
	return
}

func (idx *lineIndex) bounds(lineNo int) (start, end int) {
	i := lineNo - 1
	start = idx.offsets[i]
	if i+1 < len(idx.offsets) {
		end = idx.offsets[i+1] - 1 // exclude the newline itself
	} else {
		end = len(idx.data)
	}
	if end < start {
		end = start
	}
	if end > len(idx.data) {
		end = len(idx.data)
	}
	return start, end
}

func (idx *lineIndex) context(lineNo, n int) (before, after []result.ContextLine) {
	if n <= 0 {
		return nil, nil
	}
	for l := lineNo - n; l < lineNo; l++ {
		if l < 1 {
			continue
		}
		start, end := idx.bounds(l)
		before = append(before, result.ContextLine{Number: l, Text: string(idx.data[start:end])})
	}
	for l := lineNo + 1; l <= lineNo+n; l++ {
		if l > idx.lineCount() {
			break
		}
		start, end := idx.bounds(l)
		after = append(after, result.ContextLine{Number: l, Text: string(idx.data[start:end])})
	}
	return before, after
}
