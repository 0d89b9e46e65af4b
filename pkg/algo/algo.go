// Package algo implements the concrete pattern-matching algorithms of
// C2: a single-needle literal scanner, a full regex engine, and an
// Aho-Corasick multi-pattern scanner. All three satisfy the Algorithm
// interface so the scanner can dispatch without a type switch on the
// hot loop (spec §9 "dynamic trait objects" design note — here
// realized as a small Go interface rather than a sum type, since Go
// has no sum types; the orchestrator still only ever constructs one
// concrete variant per Pattern, so there is no virtual-call fan-out).
package algo

// Span is a single match: a half-open byte range [Start, Start+Len).
type Span struct {
	Start int
	Len   int
}

// End returns the exclusive end offset of the span.
func (s Span) End() int { return s.Start + s.Len }

// Algorithm scans a byte buffer for non-overlapping matches, returned
// in non-decreasing byte order (spec §4.2 ordering contract).
type Algorithm interface {
	// Search returns every non-overlapping match in content. After a
	// match ending at e, the next search position is max(e, start+1).
	Search(content []byte) []Span
}

// nextStart implements the non-overlap cursor rule from spec §4.2:
// "after a match ending at e, the next search position is
// max(e, start+1)" so that degenerate empty matches still advance.
func nextStart(matchStart, matchEnd int) int {
	if matchEnd > matchStart {
		return matchEnd
	}
	return matchStart + 1
}
