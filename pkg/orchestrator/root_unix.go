//go:build unix

package orchestrator

import "os"

// runningAsRoot reports whether the effective UID is 0 (spec §4.7
// root-safety: refuse unless allow_root is set).
func runningAsRoot() bool {
	return os.Geteuid() == 0
}
