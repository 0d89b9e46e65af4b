package algo

import (
	"sort"

	"github.com/cloudflare/ahocorasick"
)

// MultiPattern scans for a set of literal needles using Aho-Corasick
// as a fast presence pre-filter, grounded on the teacher's keyword
// prefilter (pkg/prefilter/prefilter.go): ahocorasick.Matcher.Match
// reports only which needles occur in content, not their byte
// offsets, so — exactly as the teacher's prefilter narrows rules down
// to the ones worth running a full pattern against — MultiPattern uses
// the Aho-Corasick hit set to skip needles that are provably absent,
// then recovers exact offsets for the needles that did hit via a
// direct literal scan. No other package in this module constructs a
// MultiPattern: the classifier does not use it, and the CLI has no
// flag that selects it.
type MultiPattern struct {
	matcher *ahocorasick.Matcher
	needles []string
}

// NewMultiPattern builds an Aho-Corasick matcher over needles. Needles
// must be non-empty; duplicates are permitted but wasteful.
func NewMultiPattern(needles []string) *MultiPattern {
	return &MultiPattern{
		matcher: ahocorasick.NewStringMatcher(needles),
		needles: needles,
	}
}

// Search implements Algorithm.
func (m *MultiPattern) Search(content []byte) []Span {
	hitIdx := m.matcher.Match(content)
	if len(hitIdx) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(hitIdx))
	var spans []Span
	for _, idx := range hitIdx {
		if seen[idx] || idx < 0 || idx >= len(m.needles) {
			continue
		}
		seen[idx] = true
		needle := m.needles[idx]
		if len(needle) == 0 {
			continue
		}
		lit := NewLiteralByte([]byte(needle), false)
		spans = append(spans, lit.Search(content)...)
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return deoverlap(spans)
}

// deoverlap drops matches that start before the previous kept match's
// next-allowed position, applying the non-overlap cursor rule across
// the merged stream of multiple needles' occurrences.
func deoverlap(sorted []Span) []Span {
	out := make([]Span, 0, len(sorted))
	next := 0
	for _, s := range sorted {
		if s.Start < next {
			continue
		}
		out = append(out, s)
		next = nextStart(s.Start, s.End())
	}
	return out
}
