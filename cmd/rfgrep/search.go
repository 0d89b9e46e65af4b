package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kh3rld/rfgrep/internal/rlog"
	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/kh3rld/rfgrep/pkg/config"
	"github.com/kh3rld/rfgrep/pkg/orchestrator"
	"github.com/kh3rld/rfgrep/pkg/pattern"
	"github.com/kh3rld/rfgrep/pkg/result"
	"github.com/kh3rld/rfgrep/pkg/rfgerr"
)

const (
	exitMatches   = 0
	exitNoMatches = 1
	exitUsage     = 2
	exitIOError   = 3
	exitRefused   = 4
)

var (
	searchRegex      bool
	searchWord       bool
	searchContext    int
	searchInvert     bool
	searchMaxMatches int
	searchTimeout    int
	searchMaxSize    int64
	searchSafety     string
	searchStrategy   string
	searchInclude    []string
	searchExclude    []string
	searchThreads    int
	searchNDJSON     bool
	searchNoIgnore   bool
	searchAllowRoot  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern> [root]",
	Short: "Search a directory tree for a pattern",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "Interpret pattern as a regular expression")
	searchCmd.Flags().BoolVar(&searchWord, "word", false, "Match pattern on word boundaries")
	searchCmd.Flags().IntVar(&searchContext, "context", 0, "Lines of context before/after each match")
	searchCmd.Flags().BoolVar(&searchInvert, "invert", false, "Emit non-matching lines instead of matching ones")
	searchCmd.Flags().IntVar(&searchMaxMatches, "max-matches", 0, "Stop after N matches (0 means unlimited)")
	searchCmd.Flags().IntVar(&searchTimeout, "timeout", 0, "Per-file timeout in seconds (0 disables isolated workers)")
	searchCmd.Flags().Int64Var(&searchMaxSize, "max-file-size", 0, "Skip files larger than this many bytes (0 uses classifier defaults)")
	searchCmd.Flags().StringVar(&searchSafety, "safety", "default", "Safety policy: default, conservative, performance")
	searchCmd.Flags().StringVar(&searchStrategy, "file-type-strategy", "default", "File-type strategy: default, conservative, performance, comprehensive")
	searchCmd.Flags().StringSliceVar(&searchInclude, "include", nil, "Only scan files with these extensions")
	searchCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Skip files with these extensions")
	searchCmd.Flags().IntVar(&searchThreads, "threads", 0, "Worker pool size (0 means min(cores, 8))")
	searchCmd.Flags().BoolVar(&searchNDJSON, "ndjson", false, "Stream NDJSON matches instead of an aggregated JSON summary")
	searchCmd.Flags().BoolVar(&searchNoIgnore, "no-ignore", false, "Disable .gitignore exclusion")
	searchCmd.Flags().BoolVar(&searchAllowRoot, "allow-root", false, "Allow running as the root user")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	root := "."
	if len(args) == 2 {
		root = args[1]
	}

	fileCfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "loading config: %v\n", err)
		os.Exit(exitUsage)
	}

	applyFileConfig(cmd, fileCfg)

	mode := pattern.Literal
	if searchRegex {
		mode = pattern.Regex
	} else if searchWord {
		mode = pattern.Word
	}

	p, err := pattern.Default().Compile(query, mode, pattern.Options{})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid pattern: %v\n", err)
		os.Exit(exitUsage)
	}

	logger := rlog.New(rlog.LevelWarn, fileCfg.Color)

	selfPath, _ := os.Executable()

	cfg := orchestrator.Config{
		Root:              root,
		ContextLines:      searchContext,
		InvertMatch:       searchInvert,
		MaxMatchesPerFile: searchMaxMatches,
		PerFileTimeout:    time.Duration(searchTimeout) * time.Second,
		MaxFileSize:       searchMaxSize,
		IncludeExts:       searchInclude,
		ExcludeExts:       searchExclude,
		Threads:           searchThreads,
		AllowRoot:         searchAllowRoot,
		Safety:            safetyFromFlag(searchSafety),
		Strategy:          strategyFromFlag(searchStrategy),
		NoIgnore:          searchNoIgnore,
		SelfPath:          selfPath,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if searchNDJSON {
		sink := orchestrator.NewNDJSONSink(cmd.OutOrStdout())
		_, runErr := orchestrator.Run(ctx, p, cfg, sink, logger)
		closeErr := sink.Close()
		if runErr != nil {
			exitForError(cmd, runErr)
			return nil
		}
		if closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "writing output: %v\n", closeErr)
			os.Exit(exitIOError)
		}
		os.Exit(exitMatches)
		return nil
	}

	sink := orchestrator.NewCollectorSink()
	_, runErr := orchestrator.Run(ctx, p, cfg, sink, logger)
	if runErr != nil {
		exitForError(cmd, runErr)
		return nil
	}

	matches := sink.Matches()
	result.Sort(matches)
	matches = result.Truncate(matches, searchMaxMatches)

	summary := result.Summary{Query: query, Root: root, TotalMatches: len(matches)}
	if err := result.EncodeAggregated(cmd.OutOrStdout(), summary, matches); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "writing output: %v\n", err)
		os.Exit(exitIOError)
	}

	if len(matches) == 0 {
		os.Exit(exitNoMatches)
	}
	os.Exit(exitMatches)
	return nil
}

// applyFileConfig fills any flag the user did not explicitly set on
// the command line from the merged .rfgrep.yaml config, per the
// documented precedence (built-in defaults < config file < flags).
func applyFileConfig(cmd *cobra.Command, fileCfg config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("regex") {
		searchRegex = fileCfg.Regex
	}
	if !flags.Changed("word") {
		searchWord = fileCfg.Word
	}
	if !flags.Changed("context") {
		searchContext = fileCfg.ContextLines
	}
	if !flags.Changed("invert") {
		searchInvert = fileCfg.InvertMatch
	}
	if !flags.Changed("max-matches") {
		searchMaxMatches = fileCfg.MaxMatches
	}
	if !flags.Changed("timeout") {
		searchTimeout = fileCfg.PerFileTimeout
	}
	if !flags.Changed("max-file-size") {
		searchMaxSize = fileCfg.MaxFileSize
	}
	if !flags.Changed("safety") {
		searchSafety = fileCfg.Safety
	}
	if !flags.Changed("file-type-strategy") {
		searchStrategy = fileCfg.FileTypeStrategy
	}
	if !flags.Changed("include") {
		searchInclude = fileCfg.IncludeExts
	}
	if !flags.Changed("exclude") {
		searchExclude = fileCfg.ExcludeExts
	}
	if !flags.Changed("threads") {
		searchThreads = fileCfg.Threads
	}
	if !flags.Changed("ndjson") {
		searchNDJSON = fileCfg.NDJSON
	}
	if !flags.Changed("no-ignore") {
		searchNoIgnore = fileCfg.NoIgnore
	}
	if !flags.Changed("allow-root") {
		searchAllowRoot = fileCfg.AllowRoot
	}
}

func exitForError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
	var rfgErr *rfgerr.Error
	if asRfgErr(err, &rfgErr) {
		switch rfgErr.Kind {
		case rfgerr.RefusedAsRoot:
			os.Exit(exitRefused)
		case rfgerr.EnumerationError:
			os.Exit(exitIOError)
		}
	}
	os.Exit(exitIOError)
}

func asRfgErr(err error, target **rfgerr.Error) bool {
	e, ok := err.(*rfgerr.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

func safetyFromFlag(s string) classify.SafetyPolicy {
	switch s {
	case "conservative":
		return classify.SafetyConservative
	case "performance":
		return classify.SafetyPerformance
	default:
		return classify.SafetyDefault
	}
}

func strategyFromFlag(s string) classify.FileTypeStrategy {
	switch s {
	case "conservative":
		return classify.StrategyConservative
	case "performance":
		return classify.StrategyPerformance
	case "comprehensive":
		return classify.StrategyComprehensive
	default:
		return classify.StrategyDefault
	}
}
