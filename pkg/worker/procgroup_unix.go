//go:build unix

package worker

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so a
// timeout kill can take the whole group, not just the direct child
// (spec §4.6: "the entire worker process group is killed").
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
