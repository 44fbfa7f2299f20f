// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Offline backends: captured response replay and in-memory stub

package backend

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// ReplayBackend returns the contents of a previously captured response, so a
// saved generation can be re-applied without calling a model
type ReplayBackend struct {
	path string
}

// NewReplayBackend creates a replay backend reading path on each call
func NewReplayBackend(config *Config) (*ReplayBackend, error) {
	if config == nil || config.ResponseFile == "" {
		return nil, ErrMissingResponse
	}
	return &ReplayBackend{path: config.ResponseFile}, nil
}

// Name returns the backend name
func (b *ReplayBackend) Name() string {
	return "replay"
}

// Generate ignores the prompt and returns the captured response
func (b *ReplayBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return "", fmt.Errorf("failed to read captured response: %w", err)
	}
	return string(data), nil
}

// Static is an in-memory backend returning a fixed text or error. It records
// every prompt it receives.
type Static struct {
	Text string
	Err  error

	mu      sync.Mutex
	prompts []string
}

// Name returns the backend name
func (s *Static) Name() string {
	return "static"
}

// Generate returns the configured text or error
func (s *Static) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Prompts returns the prompts received so far
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
