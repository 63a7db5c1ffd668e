//go:build !windows

package mcp

import (
	"os/exec"
	"syscall"
)

// terminateProcess sends SIGTERM, the graceful half of the shutdown
// protocol in §4.1.1. SIGKILL is applied separately by Close if the process
// has not exited after the grace period.
func terminateProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
