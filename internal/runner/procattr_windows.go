//go:build windows

package runner

import "os/exec"

// killProcessGroup keeps the default cancel on Windows; WaitDelay still bounds the wait
func killProcessGroup(cmd *exec.Cmd) {}
