package algo

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Regex scans with a full regular-expression engine. Grounded on the
// teacher's RegexpMatcher: compile with regexp2's RE2-compatible syntax
// option first, fall back to its default syntax when that fails to
// compile, and always set a MatchTimeout, since regexp2 backtracks in
// both modes and a pathological pattern could otherwise hang a worker.
type Regex struct {
	re *regexp2.Regexp
}

// NewRegex compiles text into a Regex algorithm. Multiline is always
// on: ^ and $ anchor to line boundaries within the scanned buffer, not
// just the start/end of the whole file, matching the line-oriented
// anchoring every grep-style tool in the corpus assumes (spec §8 S2).
func NewRegex(text string) (*Regex, error) {
	re, err := regexp2.Compile(text, regexp2.RE2|regexp2.Multiline)
	if err != nil {
		re, err = regexp2.Compile(text, regexp2.Multiline)
		if err != nil {
			return nil, fmt.Errorf("compiling regex %q: %w", text, err)
		}
	}
	re.MatchTimeout = 5 * time.Second
	return &Regex{re: re}, nil
}

// Search implements Algorithm.
func (r *Regex) Search(content []byte) []Span {
	s := string(content)
	var spans []Span

	// regexp2 reports Index and Length in runes; walk s forward to turn
	// them into byte offsets (matches arrive in increasing order).
	runePos, bytePos := 0, 0
	toByte := func(runeIdx int) int {
		for runePos < runeIdx && bytePos < len(s) {
			_, size := utf8.DecodeRuneInString(s[bytePos:])
			bytePos += size
			runePos++
		}
		return bytePos
	}

	match, err := r.re.FindStringMatch(s)
	for err == nil && match != nil {
		start := toByte(match.Index)
		end := toByte(match.Index + match.Length)
		spans = append(spans, Span{Start: start, Len: end - start})
		match, err = r.re.FindNextMatch(match)
	}
	return spans
}
