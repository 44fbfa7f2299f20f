// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Local process backend with a deterministic locale

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// killGrace is how long an interrupted backend may take to exit
const killGrace = 3 * time.Second

// localeEnv pins the backend's text encoding
var localeEnv = []string{"LANG=C.UTF-8", "LC_ALL=C.UTF-8"}

// CommandBackend runs a generator process, writing the prompt to its stdin
// and returning its stdout
type CommandBackend struct {
	config *Config
}

// NewCommandBackend creates a command backend
func NewCommandBackend(config *Config) (*CommandBackend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Command == "" {
		return nil, ErrMissingCommand
	}
	return &CommandBackend{config: config}, nil
}

// Name returns the command's base name
func (b *CommandBackend) Name() string {
	return filepath.Base(b.config.Command)
}

// Argv returns the arguments passed to the command
func (b *CommandBackend) Argv() []string {
	args := append([]string(nil), b.config.Args...)
	if b.config.Model != "" {
		args = append(args, b.config.Model)
	}
	return args
}

// Generate runs the command to completion. A non-zero exit status yields a
// *BackendError carrying both output streams.
func (b *CommandBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.config.Command, b.Argv()...)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = Environment(os.Environ())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setPlatformProcessGroup(cmd)
	cmd.Cancel = func() error {
		return interruptProcessGroup(cmd)
	}
	cmd.WaitDelay = killGrace

	err := cmd.Run()
	if ctx.Err() != nil {
		// Reap anything the interrupt left behind in the group
		_ = killProcessGroup(cmd)
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %v", ErrTimeout, b.config.Timeout)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s interrupted: %w", b.Name(), ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &BackendError{
				Backend: b.Name(),
				Status:  exitErr.ExitCode(),
				Stderr:  stderr.String(),
				Stdout:  stdout.String(),
			}
		}
		return "", fmt.Errorf("failed to run %s: %w", b.config.Command, err)
	}

	return stdout.String(), nil
}

// Environment returns base with the locale variables forced to UTF-8
func Environment(base []string) []string {
	env := make([]string, 0, len(base)+len(localeEnv))
	for _, kv := range base {
		if strings.HasPrefix(kv, "LANG=") || strings.HasPrefix(kv, "LC_ALL=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, localeEnv...)
}
