// Command rfgrep is a recursive content-search tool: compile a
// pattern, walk a directory tree, classify and adaptively read each
// candidate file, and emit ordered matches. Grounded on the teacher's
// cobra root command structure (cmd/titus/root.go).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rfgrep",
	Short: "Recursive pattern search over a filesystem tree",
	Long:  "rfgrep searches files under a root directory for a literal, word-boundary, or regex pattern, producing ordered match records or a streaming NDJSON feed.",
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
