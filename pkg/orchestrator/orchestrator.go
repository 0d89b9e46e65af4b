// Package orchestrator implements C7: enumerating candidate files,
// applying the classifier, running the scanner (in-process or via an
// isolated worker), and collecting ordered results. Grounded on the
// teacher's FilesystemEnumerator.Enumerate two-phase
// walk-then-parallel-process structure (pkg/enum/filesystem.go),
// generalized from a fixed read-whole-file-then-callback model to one
// that dispatches into C3/C4/C5/C6.
package orchestrator

import (
	"context"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kh3rld/rfgrep/internal/rlog"
	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/fileview"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/kh3rld/rfgrep/pkg/result"
	"github.com/kh3rld/rfgrep/pkg/rfgerr"
	"github.com/kh3rld/rfgrep/pkg/scanner"
	"github.com/kh3rld/rfgrep/pkg/walk"
	"github.com/kh3rld/rfgrep/pkg/worker"
)

const minChunkSize = 50

// Config is the orchestrator's run configuration (spec §4.7).
type Config struct {
	Root             string
	ContextLines     int
	InvertMatch      bool
	MaxMatchesPerFile int
	MaxMatchesGlobal int
	PerFileTimeout   time.Duration
	MaxFileSize      int64 // 0 uses the classifier's per-extension defaults
	IncludeExts      []string
	ExcludeExts      []string
	Threads          int
	AllowRoot        bool
	Safety           classify.SafetyPolicy
	Strategy         classify.FileTypeStrategy
	NoIgnore         bool
	SelfPath         string // argv[0], needed to relaunch as `worker` subprocess
}

// Run executes a full search over cfg.Root, writing matches to sink
// and returning final metrics (spec §4.7's 8-step pipeline). When
// sink is a *CollectorSink, the caller is responsible for sorting and
// truncating per spec §4.8 after Run returns — Run itself only
// guarantees delivery, not final ordering, since NDJSON sinks are
// explicitly unordered across files.
func Run(ctx context.Context, p *pattern.Pattern, cfg Config, sink Sink, logger rlog.Logger) (*Metrics, error) {
	if logger == nil {
		logger = rlog.Noop{}
	}
	if !cfg.AllowRoot && runningAsRoot() {
		return nil, rfgerr.New(rfgerr.RefusedAsRoot, cfg.Root)
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
		if threads > 8 {
			threads = 8
		}
	}
	if threads < 1 {
		threads = 1
	}

	metrics := &Metrics{}
	pool := fileview.NewPool(10*time.Minute, 256<<20)

	walkOpts := walk.DefaultOptions()
	walkOpts.UseGitignore = !cfg.NoIgnore
	it := walk.Walk(ctx, cfg.Root, walkOpts)
	defer it.Stop()

	paths := make(chan walk.DirEntry, threads*2)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(paths)
		for {
			entry, ok := it.Next()
			if !ok {
				return it.Err()
			}
			if entry.FileType != walk.Regular {
				continue
			}
			if !extensionAllowed(entry.Path, cfg.IncludeExts, cfg.ExcludeExts) {
				continue
			}
			select {
			case paths <- entry:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for entry := range paths {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				processFile(gctx, entry, p, cfg, sink, pool, metrics, logger)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if err == context.Canceled {
			return metrics, nil
		}
		return metrics, rfgerr.Wrap(rfgerr.EnumerationError, cfg.Root, err)
	}
	return metrics, nil
}

func extensionAllowed(path string, include, exclude []string) bool {
	ext := strings.TrimPrefix(classify.Ext(path), ".")
	for _, e := range exclude {
		if strings.EqualFold(e, ext) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, e := range include {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func processFile(ctx context.Context, entry walk.DirEntry, p *pattern.Pattern, cfg Config, sink Sink, pool *fileview.Pool, metrics *Metrics, logger rlog.Logger) {
	decision := classify.Classify(entry.Path, entry.Size, classify.Default(), cfg.Safety, cfg.Strategy, func(n int) ([]byte, error) {
		return readHead(entry.Path, n)
	})
	if decision.Skip {
		metrics.incSkipped()
		logger.Debug("skip %s: %s", entry.Path, decision.Reason)
		return
	}
	if cfg.MaxFileSize > 0 && entry.Size > cfg.MaxFileSize {
		metrics.incSkipped()
		logger.Debug("skip %s: too large for --max-file-size", entry.Path)
		return
	}

	if cfg.PerFileTimeout > 0 && cfg.SelfPath != "" {
		// The worker always scans FullText, so skip the modes the
		// in-process scanner also skips.
		if decision.Mode == classify.Filename || decision.Mode == classify.Metadata {
			metrics.incSkipped()
			logger.Debug("skip %s: conditional mode unsupported", entry.Path)
			return
		}
		res := worker.Launch(ctx, cfg.SelfPath, entry.Path, p.Text, cfg.PerFileTimeout, worker.ScanConfig{
			ContextLines: cfg.ContextLines,
			InvertMatch:  cfg.InvertMatch,
			MaxMatches:   cfg.MaxMatchesPerFile,
		})
		if res.TimedOut {
			metrics.incTimeout()
			logger.Warn("worker timeout: %s", entry.Path)
		} else if res.Failed {
			metrics.incError()
			logger.Warn("worker failed: %s: %v", entry.Path, res.ExitErr)
		}
		for _, m := range res.Matches {
			_ = sink.Emit(p.Text, m)
		}
		if len(res.Matches) > 0 {
			metrics.incScanned()
		}
		return
	}

	view, warning, err := fileview.Open(entry.Path, entry.Size, fileview.DefaultPolicy(), pool)
	if err != nil {
		metrics.incError()
		logger.Warn("open failed: %s: %v", entry.Path, err)
		return
	}
	defer view.Close()
	if warning != "" {
		logger.Warn("%s", warning)
	}

	outcome := scanner.Scan(view, p, decision.Mode, scanner.Config{
		InvertMatch:  cfg.InvertMatch,
		MaxMatches:   cfg.MaxMatchesPerFile,
		ContextLines: cfg.ContextLines,
	})
	if outcome.SkipReason != "" {
		metrics.incSkipped()
		logger.Debug("skip %s: %s", entry.Path, outcome.SkipReason)
		return
	}

	metrics.incScanned()
	for _, m := range outcome.Matches {
		_ = sink.Emit(p.Text, m)
	}
}

func readHead(path string, n int) ([]byte, error) {
	return fileview.ReadHead(path, n)
}
