package orchestrator

import (
	"io"
	"sync"

	"github.com/kh3rld/rfgrep/pkg/result"
)

// Sink is the match consumer (spec §6.2). Exactly one writer calls
// Emit per MatchRecord (spec §5's "exactly one writer" shared-resource
// policy); Sink implementations must be safe for concurrent Emit
// calls from the worker pool.
type Sink interface {
	Emit(query string, m result.MatchRecord) error
}

// CollectorSink accumulates matches behind a mutex for the Aggregated
// sink mode; Sort/Truncate are applied by the caller after Wait.
type CollectorSink struct {
	mu      sync.Mutex
	matches []result.MatchRecord
}

func NewCollectorSink() *CollectorSink { return &CollectorSink{} }

func (s *CollectorSink) Emit(_ string, m result.MatchRecord) error {
	s.mu.Lock()
	s.matches = append(s.matches, m)
	s.mu.Unlock()
	return nil
}

// Matches returns the accumulated matches. Not safe to call
// concurrently with Emit.
func (s *CollectorSink) Matches() []result.MatchRecord { return s.matches }

// NDJSONSink streams one encoded MatchRecord per Emit call to w,
// through a bounded channel (spec §4.7 step 6: "capacity ≈ 1024")
// that provides backpressure: producers block once it fills.
// Callers must stop calling Emit before calling Close, and must not
// call Emit concurrently with Close — in the orchestrator's normal
// lifecycle all producer goroutines finish (via errgroup.Wait) before
// Close is invoked, so this is never a concurrent-access concern.
type NDJSONSink struct {
	ch   chan ndjsonItem
	done chan error
}

type ndjsonItem struct {
	query string
	match result.MatchRecord
}

// NewNDJSONSink starts a background writer draining into w.
func NewNDJSONSink(w io.Writer) *NDJSONSink {
	s := &NDJSONSink{
		ch:   make(chan ndjsonItem, 1024),
		done: make(chan error, 1),
	}
	go s.run(w)
	return s
}

func (s *NDJSONSink) run(w io.Writer) {
	for item := range s.ch {
		if err := result.EncodeNDJSON(w, item.query, item.match); err != nil {
			s.done <- err
			drain(s.ch)
			return
		}
	}
	s.done <- nil
}

func drain(ch chan ndjsonItem) {
	for range ch {
	}
}

// Emit blocks if the channel is full, giving backpressure on the
// worker pool (spec §5 backpressure semantics).
func (s *NDJSONSink) Emit(query string, m result.MatchRecord) error {
	s.ch <- ndjsonItem{query: query, match: m}
	return nil
}

// Close stops accepting new matches, waits for the writer goroutine to
// drain, and returns the first encode error (if any).
func (s *NDJSONSink) Close() error {
	close(s.ch)
	return <-s.done
}
