package worker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kh3rld/rfgrep/pkg/result"
)

// Result is what a launched worker produced before it exited,
// timed out, or failed (spec §4.6).
type Result struct {
	Matches     []result.MatchRecord
	TimedOut    bool
	Failed      bool
	ExitErr     error
}

// ScanConfig carries the subset of scanner.Config the orchestrator
// needs the isolated worker to apply, threaded across the process
// boundary since the worker subprocess only receives path and pattern
// as argv (spec §4.6).
type ScanConfig struct {
	ContextLines int
	InvertMatch  bool
	MaxMatches   int
}

// Launch runs selfPath worker path patternText as a child process,
// enforcing a hard wall-clock timeout (spec §4.6). On timeout the
// entire process group is killed; matches already flushed to stdout
// before the kill are kept. A non-zero exit before timeout is
// non-fatal: partial matches are accepted and Result.Failed is set so
// the orchestrator can record a warning.
func Launch(ctx context.Context, selfPath, path, patternText string, timeout time.Duration, scanCfg ScanConfig) Result {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, selfPath, "worker", path, patternText)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", contextLinesEnvVar, scanCfg.ContextLines),
		fmt.Sprintf("%s=%d", maxMatchesEnvVar, scanCfg.MaxMatches),
	)
	if scanCfg.InvertMatch {
		cmd.Env = append(cmd.Env, invertMatchEnvVar+"=1")
	}
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Failed: true, ExitErr: err}
	}

	var matches []result.MatchRecord
	scanErr := make(chan error, 1)

	if err := cmd.Start(); err != nil {
		return Result{Failed: true, ExitErr: err}
	}

	go func() {
		scanErr <- result.ScanNDJSON(stdout, func(_ string, m result.MatchRecord) error {
			matches = append(matches, m)
			return nil
		})
	}()

	// Read stdout to EOF before Wait, which closes the pipe.
	<-scanErr
	waitErr := cmd.Wait()

	res := Result{Matches: matches}
	if runCtx.Err() == context.DeadlineExceeded {
		killProcessGroup(cmd)
		res.TimedOut = true
		return res
	}
	if waitErr != nil {
		res.Failed = true
		res.ExitErr = waitErr
	}
	return res
}
