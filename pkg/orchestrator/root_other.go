//go:build !unix

package orchestrator

// runningAsRoot is always false on platforms with no effective-UID-0
// concept (spec.md: "Windows has no such check").
func runningAsRoot() bool { return false }
