//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// killProcessGroup runs cmd in its own process group and kills the group on cancel
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID = the entire process group
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
