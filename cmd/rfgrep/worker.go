package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kh3rld/rfgrep/pkg/worker"
)

var workerCmd = &cobra.Command{
	Use:    "worker <path> <pattern>",
	Short:  "Scan a single file in isolation, writing NDJSON matches to stdout",
	Args:   cobra.ExactArgs(2),
	Hidden: true,
	RunE:   runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	return worker.Run(args[0], args[1], os.Stdout)
}
