// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Ollama HTTP backend for local inference (no API key required)

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// OllamaBackend calls the Ollama generate API
type OllamaBackend struct {
	config   *Config
	endpoint string
	client   *http.Client
}

// NewOllamaBackend creates a new Ollama backend
func NewOllamaBackend(config *Config) (*OllamaBackend, error) {
	if config == nil {
		config = &Config{Kind: KindOllama}
		config.WithDefaults()
	}
	return &OllamaBackend{
		config:   config,
		endpoint: ollamaBaseURL(config),
		client:   &http.Client{Timeout: config.Timeout},
	}, nil
}

// ollamaBaseURL resolves the server address: config, then OLLAMA_HOST, then default
func ollamaBaseURL(config *Config) string {
	base := config.Endpoint
	if base == "" {
		base = os.Getenv("OLLAMA_HOST")
	}
	if base == "" {
		base = DefaultOllamaEndpoint
	}
	if !strings.HasPrefix(base, "http") {
		base = "http://" + base
	}
	base = strings.TrimSuffix(base, "/")
	return strings.TrimSuffix(base, "/api/generate")
}

// Name returns the backend name
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Endpoint returns the generate URL
func (b *OllamaBackend) Endpoint() string {
	return b.endpoint + "/api/generate"
}

// OllamaRequest is the request body for the generate API
type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaResponse is the non-streaming generate response
type OllamaResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Generate posts the prompt and returns the generated text. A non-200 status
// yields a *BackendError with the HTTP status and body.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(OllamaRequest{
		Model:  b.config.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || isClientTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("request failed (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{
			Backend: b.Name(),
			Status:  resp.StatusCode,
			Stderr:  truncateForError(string(data), 2000),
		}
	}

	var out OllamaResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != "" {
		return "", &BackendError{Backend: b.Name(), Status: resp.StatusCode, Stderr: out.Error}
	}
	return out.Response, nil
}

func isClientTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
