package result

import (
	"bufio"
	"encoding/json"
	"io"
)

// MarshalJSON renders a ContextLine as the [line_number, line] pair
// the wire schema in spec §6.2 calls for, not as a JSON object.
func (c ContextLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{c.Number, c.Text})
}

// UnmarshalJSON parses the [line_number, line] pair back into a ContextLine.
func (c *ContextLine) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &c.Number); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &c.Text)
}

// matchWire is the on-the-wire shape shared by both the aggregated
// "matches" array entries and (with Query added) the NDJSON stream.
type matchWire struct {
	Query         string        `json:"query,omitempty"`
	Path          string        `json:"path"`
	LineNumber    int           `json:"line_number"`
	Line          string        `json:"line"`
	MatchedText   string        `json:"matched_text"`
	ColumnStart   int           `json:"column_start"`
	ColumnEnd     int           `json:"column_end"`
	ContextBefore []ContextLine `json:"context_before"`
	ContextAfter  []ContextLine `json:"context_after"`
}

func toWire(query string, m MatchRecord) matchWire {
	before := m.ContextBefore
	if before == nil {
		before = []ContextLine{}
	}
	after := m.ContextAfter
	if after == nil {
		after = []ContextLine{}
	}
	return matchWire{
		Query:         query,
		Path:          m.Path,
		LineNumber:    m.LineNumber,
		Line:          m.Line,
		MatchedText:   m.MatchedText,
		ColumnStart:   m.ColumnStart,
		ColumnEnd:     m.ColumnEnd,
		ContextBefore: before,
		ContextAfter:  after,
	}
}

func (w matchWire) toRecord() MatchRecord {
	// toWire writes nil context as []; map it back to nil so records
	// round-trip equal.
	if len(w.ContextBefore) == 0 {
		w.ContextBefore = nil
	}
	if len(w.ContextAfter) == 0 {
		w.ContextAfter = nil
	}
	return MatchRecord{
		Path:          w.Path,
		LineNumber:    w.LineNumber,
		ColumnStart:   w.ColumnStart,
		ColumnEnd:     w.ColumnEnd,
		Line:          w.Line,
		MatchedText:   w.MatchedText,
		ContextBefore: w.ContextBefore,
		ContextAfter:  w.ContextAfter,
	}
}

// MarshalJSON renders a MatchRecord with no "query" field, used inside
// the aggregated output's "matches" array.
func (m MatchRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire("", m))
}

// UnmarshalJSON parses a MatchRecord back from its wire shape.
func (m *MatchRecord) UnmarshalJSON(data []byte) error {
	var w matchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = w.toRecord()
	return nil
}

// EncodeNDJSON writes one UTF-8 JSON object followed by "\n" for a
// single match, per spec §6.2's streaming schema. No pretty-printing,
// exactly one object per line.
func EncodeNDJSON(w io.Writer, query string, m MatchRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(toWire(query, m))
}

// DecodeNDJSON parses one NDJSON line back into (query, MatchRecord),
// supporting the round-trip law of spec §8 P2.
func DecodeNDJSON(line []byte) (query string, m MatchRecord, err error) {
	var w matchWire
	if err = json.Unmarshal(line, &w); err != nil {
		return "", MatchRecord{}, err
	}
	return w.Query, w.toRecord(), nil
}

// ScanNDJSON reads NDJSON lines from r, invoking fn for each decoded
// (query, MatchRecord) pair until EOF or fn returns a non-nil error.
func ScanNDJSON(r io.Reader, fn func(query string, m MatchRecord) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		query, m, err := DecodeNDJSON(line)
		if err != nil {
			return err
		}
		if err := fn(query, m); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Summary is the non-streaming aggregated mode's metadata envelope
// (spec §6.1/§6.2): query text, search root, and total match count.
type Summary struct {
	Query        string
	Root         string
	TotalMatches int
}

type aggregatedWire struct {
	Query        string        `json:"query"`
	Path         string        `json:"path"`
	TotalMatches int           `json:"total_matches"`
	Matches      []MatchRecord `json:"matches"`
}

// EncodeAggregated writes the non-streaming aggregated JSON shape from
// spec §6.2: {"query","path","total_matches","matches":[...]}.
func EncodeAggregated(w io.Writer, summary Summary, matches []MatchRecord) error {
	if matches == nil {
		matches = []MatchRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(aggregatedWire{
		Query:        summary.Query,
		Path:         summary.Root,
		TotalMatches: summary.TotalMatches,
		Matches:      matches,
	})
}
