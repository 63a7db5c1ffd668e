//go:build windows

package mcp

import "os/exec"

// terminateProcess on Windows has no SIGTERM equivalent; Close falls
// through to the SIGKILL-equivalent Process.Kill after the grace period.
func terminateProcess(cmd *exec.Cmd) error {
	return nil
}
