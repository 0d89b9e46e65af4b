// Package rfgrep provides a recursive content-search engine over a
// local filesystem tree.
//
// Given a pattern and a root directory, it walks every eligible file
// under the root, classifies it for safe scanning, adaptively reads
// its content, and produces an ordered list of matches: file path,
// line number, column span, matched text, and surrounding context.
//
// # Basic Usage
//
// Run a search and collect all matches:
//
//	matches, summary, err := rfgrep.Search(context.Background(), "TODO", "./src")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range matches {
//	    fmt.Printf("%s:%d: %s\n", m.Path, m.LineNumber, m.Line)
//	}
//
// # With Options
//
// Use regex mode, bound context, and cap the result:
//
//	matches, _, err := rfgrep.Search(ctx, `^func \w+`, ".",
//	    rfgrep.WithRegex(),
//	    rfgrep.WithContextLines(2),
//	    rfgrep.WithMaxMatches(100),
//	)
package rfgrep

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/orchestrator"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/kh3rld/rfgrep/pkg/result"
)

// Re-export the commonly used result types for convenience. Callers
// can depend on just "github.com/kh3rld/rfgrep" without reaching into
// subpackages.
type (
	// Match is a single search hit: path, line/column span, matched
	// text, and surrounding context lines.
	Match = result.MatchRecord

	// ContextLine is one line of context paired with its 1-based line
	// number in the source file.
	ContextLine = result.ContextLine

	// Summary describes the overall outcome of a Search call.
	Summary = result.Summary
)

// searchConfig holds the options accumulated by With* functions.
type searchConfig struct {
	mode           pattern.Mode
	contextLines   int
	invertMatch    bool
	maxMatches     int
	perFileTimeout time.Duration
	maxFileSize    int64
	safety         classify.SafetyPolicy
	strategy       classify.FileTypeStrategy
	includeExt     []string
	excludeExt     []string
	threads        int
	noIgnore       bool
	allowRoot      bool
}

// Option configures a Search call.
type Option func(*searchConfig)

// WithRegex interprets the pattern as a regular expression instead of
// a literal needle.
func WithRegex() Option {
	return func(c *searchConfig) { c.mode = pattern.Regex }
}

// WithWordBoundary matches the literal pattern only on word
// boundaries.
func WithWordBoundary() Option {
	return func(c *searchConfig) { c.mode = pattern.Word }
}

// WithContextLines sets how many lines of context to include before
// and after each match. Default is 0.
func WithContextLines(n int) Option {
	return func(c *searchConfig) { c.contextLines = n }
}

// WithInvertMatch emits one record per non-matching line instead of
// per match.
func WithInvertMatch() Option {
	return func(c *searchConfig) { c.invertMatch = true }
}

// WithMaxMatches stops the aggregated result at N records after
// sorting. Zero means unlimited.
func WithMaxMatches(n int) Option {
	return func(c *searchConfig) { c.maxMatches = n }
}

// WithPerFileTimeout scans each file in an isolated worker subprocess
// with a hard wall-clock timeout. Zero (the default) disables worker
// isolation and scans in-process.
func WithPerFileTimeout(d time.Duration) Option {
	return func(c *searchConfig) { c.perFileTimeout = d }
}

// WithMaxFileSize skips files larger than bytes, applied after the
// classifier's own size limits (it cannot raise them). Zero leaves
// only the classifier's built-in per-extension limits.
func WithMaxFileSize(bytes int64) Option {
	return func(c *searchConfig) { c.maxFileSize = bytes }
}

// WithSafetyPolicy selects the classifier's safety overlay.
func WithSafetyPolicy(p classify.SafetyPolicy) Option {
	return func(c *searchConfig) { c.safety = p }
}

// WithFileTypeStrategy selects which file categories the classifier
// accepts.
func WithFileTypeStrategy(s classify.FileTypeStrategy) Option {
	return func(c *searchConfig) { c.strategy = s }
}

// WithIncludeExt restricts scanning to files with these extensions.
func WithIncludeExt(exts ...string) Option {
	return func(c *searchConfig) { c.includeExt = exts }
}

// WithExcludeExt skips files with these extensions.
func WithExcludeExt(exts ...string) Option {
	return func(c *searchConfig) { c.excludeExt = exts }
}

// WithThreads sets the worker pool size. Zero means
// min(runtime.NumCPU(), 8).
func WithThreads(n int) Option {
	return func(c *searchConfig) { c.threads = n }
}

// WithNoIgnore disables .gitignore-style exclusion during directory
// enumeration.
func WithNoIgnore() Option {
	return func(c *searchConfig) { c.noIgnore = true }
}

// WithAllowRoot permits the search to run with effective UID 0 on
// Unix, bypassing the default refusal.
func WithAllowRoot() Option {
	return func(c *searchConfig) { c.allowRoot = true }
}

// Search compiles query under the options' mode (literal by default),
// walks root, and returns the fully sorted, capped list of matches
// plus a summary. Matches are ordered by (path, line_number,
// column_start, column_end) per the result model's total order.
//
// Search refuses to run as the root user on Unix unless WithAllowRoot
// is given; see pkg/rfgerr.RefusedAsRoot.
func Search(ctx context.Context, query, root string, opts ...Option) ([]Match, Summary, error) {
	cfg := searchConfig{mode: pattern.Literal}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := pattern.Compile(query, cfg.mode, pattern.Options{})
	if err != nil {
		return nil, Summary{}, fmt.Errorf("compiling pattern: %w", err)
	}

	selfPath, _ := os.Executable()

	orchCfg := orchestrator.Config{
		Root:              root,
		ContextLines:      cfg.contextLines,
		InvertMatch:       cfg.invertMatch,
		MaxMatchesPerFile: cfg.maxMatches,
		MaxMatchesGlobal:  cfg.maxMatches,
		PerFileTimeout:    cfg.perFileTimeout,
		MaxFileSize:       cfg.maxFileSize,
		IncludeExts:       cfg.includeExt,
		ExcludeExts:       cfg.excludeExt,
		Threads:           cfg.threads,
		AllowRoot:         cfg.allowRoot,
		Safety:            cfg.safety,
		Strategy:          cfg.strategy,
		NoIgnore:          cfg.noIgnore,
		SelfPath:          selfPath,
	}

	sink := orchestrator.NewCollectorSink()
	if _, err := orchestrator.Run(ctx, p, orchCfg, sink, nil); err != nil {
		return nil, Summary{}, err
	}

	matches := sink.Matches()
	result.Sort(matches)
	matches = result.Truncate(matches, cfg.maxMatches)

	summary := Summary{Query: query, Root: root, TotalMatches: len(matches)}
	return matches, summary, nil
}

// SearchToNDJSON runs the same pipeline as Search but streams one
// JSON object per match to w as it is produced (spec §6.2 streaming
// mode), instead of collecting and sorting. Output order across files
// is undefined; within a single file, matches are in (line, column)
// order.
func SearchToNDJSON(ctx context.Context, query, root string, w ndjsonWriter, opts ...Option) error {
	cfg := searchConfig{mode: pattern.Literal}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := pattern.Compile(query, cfg.mode, pattern.Options{})
	if err != nil {
		return fmt.Errorf("compiling pattern: %w", err)
	}

	selfPath, _ := os.Executable()

	orchCfg := orchestrator.Config{
		Root:              root,
		ContextLines:      cfg.contextLines,
		InvertMatch:       cfg.invertMatch,
		MaxMatchesPerFile: cfg.maxMatches,
		PerFileTimeout:    cfg.perFileTimeout,
		MaxFileSize:       cfg.maxFileSize,
		IncludeExts:       cfg.includeExt,
		ExcludeExts:       cfg.excludeExt,
		Threads:           cfg.threads,
		AllowRoot:         cfg.allowRoot,
		Safety:            cfg.safety,
		Strategy:          cfg.strategy,
		NoIgnore:          cfg.noIgnore,
		SelfPath:          selfPath,
	}

	sink := orchestrator.NewNDJSONSink(w)
	_, runErr := orchestrator.Run(ctx, p, orchCfg, sink, nil)
	closeErr := sink.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

// ndjsonWriter is the io.Writer subset SearchToNDJSON needs; declared
// locally to avoid importing io just for the parameter type.
type ndjsonWriter interface {
	Write(p []byte) (n int, err error)
}
