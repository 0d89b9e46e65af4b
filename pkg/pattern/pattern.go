// Package pattern implements C1: compiling textual patterns into a
// concrete Algorithm and caching compiled patterns by text key.
package pattern

import (
	"fmt"
	"regexp"

	"github.com/kh3rld/rfgrep/pkg/algo"
	"github.com/kh3rld/rfgrep/pkg/rfgerr"
)

// Mode selects how pattern text is interpreted.
type Mode int

const (
	// Literal matches text verbatim (byte/string needle).
	Literal Mode = iota
	// Word is Literal wrapped with word-boundary anchors, compiled as Regex.
	Word
	// Regex compiles text directly as a regular expression.
	Regex
)

func (m Mode) String() string {
	switch m {
	case Literal:
		return "literal"
	case Word:
		return "word"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// Pattern is an immutable value derived from (text, mode) that owns a
// compiled Algorithm (spec §3). It is safe to share read-only across
// workers.
type Pattern struct {
	Text string
	Mode Mode
	Algo algo.Algorithm
}

// Options influences algorithm selection within a mode (spec §4.2
// selection policy).
type Options struct {
	// UseBoyerMoore requests the Boyer-Moore literal scanner instead
	// of the default memchr-style search, per the algorithm hint.
	UseBoyerMoore bool
}

// Compile builds a Pattern for text under mode. The empty-pattern
// policy (spec §4.1) guarantees an empty Literal/Word pattern matches
// nothing and never loops; a Regex of "" is passed through to the
// regex engine as-is (an empty regex is valid and matches the empty
// string at every position, which the engine's iterator already
// advances past safely).
func Compile(text string, mode Mode, opts Options) (*Pattern, error) {
	switch mode {
	case Literal:
		return &Pattern{
			Text: text,
			Mode: mode,
			Algo: algo.NewLiteralByte([]byte(text), opts.UseBoyerMoore),
		}, nil

	case Word:
		if text == "" {
			return &Pattern{Text: text, Mode: mode, Algo: algo.NewLiteralByte(nil, false)}, nil
		}
		wrapped := `\b` + regexp.QuoteMeta(text) + `\b`
		a, err := algo.NewRegex(wrapped)
		if err != nil {
			return nil, rfgerr.Wrap(rfgerr.InvalidPattern, "", fmt.Errorf("word pattern %q: %w", text, err))
		}
		return &Pattern{Text: text, Mode: mode, Algo: a}, nil

	case Regex:
		a, err := algo.NewRegex(text)
		if err != nil {
			return nil, rfgerr.Wrap(rfgerr.InvalidPattern, "", err)
		}
		return &Pattern{Text: text, Mode: mode, Algo: a}, nil

	default:
		return nil, rfgerr.New(rfgerr.InvalidPattern, "")
	}
}

// Precompile is a shortcut for Regex-mode compilation, used by worker
// mode (C6) where the parent process has already chosen a pattern
// string (spec §4.1).
func Precompile(text string) (*Pattern, error) {
	return Compile(text, Regex, Options{})
}
