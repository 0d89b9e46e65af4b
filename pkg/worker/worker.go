// Package worker implements C6: running a single file's scan in an
// isolated subprocess, invoked as `<self> worker <path> <pattern>`
// (spec §6.3). Grounded on the teacher's NDJSON request/response
// framing idea in its now-removed pkg/serve package (a persistent
// RPC loop reading/writing one JSON object per line) adapted here to
// a one-shot child process whose entire stdout is an NDJSON stream of
// result.MatchRecord.
package worker

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/fileview"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/kh3rld/rfgrep/pkg/result"
	"github.com/kh3rld/rfgrep/pkg/rfgerr"
	"github.com/kh3rld/rfgrep/pkg/scanner"
)

const (
	sleepEnvVar        = "RFGREP_WORKER_SLEEP"
	contextLinesEnvVar = "RFGREP_WORKER_CONTEXT_LINES"
	invertMatchEnvVar  = "RFGREP_WORKER_INVERT"
	maxMatchesEnvVar   = "RFGREP_WORKER_MAX_MATCHES"
)

// SleepFromEnv returns the duration requested by RFGREP_WORKER_SLEEP,
// used by tests to force slow workers and exercise timeout handling.
func SleepFromEnv() time.Duration {
	v := os.Getenv(sleepEnvVar)
	if v == "" {
		return 0
	}
	secs, err := time.ParseDuration(v + "s")
	if err != nil {
		return 0
	}
	return secs
}

// configFromEnv rebuilds the scanner.Config the parent orchestrator
// wanted applied, threaded across the process boundary via
// environment variables set by Launch (spec §4.6: the worker must
// apply the same ContextLines/InvertMatch/MaxMatches the in-process
// path would have).
func configFromEnv() scanner.Config {
	cfg := scanner.Config{ContextLines: 2}
	if v := os.Getenv(contextLinesEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v := os.Getenv(invertMatchEnvVar); v != "" {
		cfg.InvertMatch = v == "1"
	}
	if v := os.Getenv(maxMatchesEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxMatches = n
		}
	}
	return cfg
}

// Run scans path for patternText and writes one NDJSON MatchRecord
// line per match to w, in the worker subprocess's own process (spec
// §6.3: "writes zero or more NDJSON MatchRecord lines to stdout and
// nothing else"). It never writes partial/invalid JSON: each record
// is fully encoded before being flushed.
func Run(path, patternText string, w io.Writer) error {
	if d := SleepFromEnv(); d > 0 {
		time.Sleep(d)
	}

	p, err := pattern.Precompile(patternText)
	if err != nil {
		return rfgerr.Wrap(rfgerr.InvalidPattern, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return rfgerr.Wrap(rfgerr.FileProcessing, path, err)
	}

	view, warning, err := fileview.Open(path, info.Size(), fileview.DefaultPolicy(), nil)
	if err != nil {
		return err
	}
	defer view.Close()
	if warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}

	outcome := scanner.Scan(view, p, classify.FullText, configFromEnv())
	for _, m := range outcome.Matches {
		if err := result.EncodeNDJSON(w, patternText, m); err != nil {
			return rfgerr.Wrap(rfgerr.FileProcessing, path, err)
		}
	}
	return nil
}
