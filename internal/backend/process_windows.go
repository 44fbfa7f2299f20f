// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Windows-specific process handling

//go:build windows

package backend

import (
	"os/exec"
)

// setPlatformProcessGroup is a no-op: Windows has no Unix-style process groups
func setPlatformProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup terminates the backend process
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// interruptProcessGroup falls back to Kill: a console-less process cannot
// receive Ctrl+C
func interruptProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
