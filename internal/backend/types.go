// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Backend types, configuration and errors

package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind identifies a backend implementation
type Kind string

const (
	// KindCommand runs a local generator process, prompt on stdin
	KindCommand Kind = "command"
	// KindOllama calls the Ollama HTTP API
	KindOllama Kind = "ollama"
	// KindGemini calls the Gemini API
	KindGemini Kind = "gemini"
	// KindReplay returns a previously captured response file
	KindReplay Kind = "replay"
)

// Defaults reproduce `ollama run <model>`
const (
	DefaultCommand = "ollama"
	DefaultModel   = "qwen3-coder:480b-cloud"

	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// DefaultArgs precede the model name on the command line
var DefaultArgs = []string{"run"}

// Backend errors
var (
	ErrUnknownBackend  = errors.New("unknown backend kind")
	ErrMissingCommand  = errors.New("command backend requires a command")
	ErrMissingResponse = errors.New("replay backend requires a response file")
	ErrTimeout         = errors.New("backend timed out")
)

// Backend turns a prompt into generated text. One call per step.
type Backend interface {
	// Name returns the backend name used in logs and errors
	Name() string
	// Generate runs the backend synchronously
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds backend settings
type Config struct {
	Kind         Kind          `mapstructure:"kind" yaml:"kind"`
	Command      string        `mapstructure:"command" yaml:"command,omitempty"`
	Args         []string      `mapstructure:"args" yaml:"args,omitempty"`
	Model        string        `mapstructure:"model" yaml:"model,omitempty"`
	Endpoint     string        `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Token        string        `mapstructure:"token" yaml:"token,omitempty"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"` // 0 = no timeout
	ResponseFile string        `mapstructure:"response_file" yaml:"response_file,omitempty"`
}

// DefaultConfig returns the command backend running ollama
func DefaultConfig() *Config {
	return &Config{
		Kind:    KindCommand,
		Command: DefaultCommand,
		Args:    append([]string(nil), DefaultArgs...),
		Model:   DefaultModel,
	}
}

// WithDefaults fills empty fields for the configured kind
func (c *Config) WithDefaults() *Config {
	if c.Kind == "" {
		c.Kind = KindCommand
	}
	switch c.Kind {
	case KindCommand:
		// A custom command receives the model only when one is configured
		if c.Command == "" {
			c.Command = DefaultCommand
			if c.Args == nil {
				c.Args = append([]string(nil), DefaultArgs...)
			}
			if c.Model == "" {
				c.Model = DefaultModel
			}
		}
	case KindOllama:
		if c.Model == "" {
			c.Model = DefaultModel
		}
	case KindGemini:
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}

// Validate checks the configuration for the selected kind
func (c *Config) Validate() error {
	switch c.Kind {
	case KindCommand:
		if c.Command == "" {
			return ErrMissingCommand
		}
	case KindReplay:
		if c.ResponseFile == "" {
			return ErrMissingResponse
		}
	case KindOllama, KindGemini:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Kind)
	}
	return nil
}

// BackendError reports a backend that completed with a failure status
type BackendError struct {
	Backend string
	Status  int
	Stderr  string
	Stdout  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed with code %d", e.Backend, e.Status)
}

// Details includes both captured output streams
func (e *BackendError) Details() string {
	return fmt.Sprintf("%s failed with code %d:\nSTDERR: %s\nSTDOUT: %s", e.Backend, e.Status, e.Stderr, e.Stdout)
}

// MaskToken returns a masked version of the token for display
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[REDACTED]"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// truncateForError shortens captured bodies in error messages
func truncateForError(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
