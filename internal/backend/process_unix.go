// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Unix-specific process group handling for proper signal propagation

//go:build !windows

package backend

import (
	"os/exec"
	"syscall"
)

// setPlatformProcessGroup runs the backend in its own process group so that
// helpers it spawns are signalled with it.
func setPlatformProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcessGroup sends SIGKILL to the whole group. With Setpgid the group
// ID equals the leader's PID, which stays valid after the leader exits.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// interruptProcessGroup sends SIGINT to the group so the backend can stop cleanly
func interruptProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGINT); err != nil {
		return cmd.Process.Signal(syscall.SIGINT)
	}
	return nil
}
