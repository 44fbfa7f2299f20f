// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Gemini API backend

package backend

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiBackend is a thin wrapper around the official genai client
type GeminiBackend struct {
	cli   *genai.Client
	model string
}

// NewGeminiBackend creates a Gemini backend. Without a configured token the
// client reads GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func NewGeminiBackend(ctx context.Context, config *Config) (*GeminiBackend, error) {
	if config == nil {
		config = &Config{Kind: KindGemini}
		config.WithDefaults()
	}

	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if config.Token != "" {
		cc.APIKey = config.Token
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiBackend{cli: cli, model: config.Model}, nil
}

// Name returns the backend name
func (g *GeminiBackend) Name() string {
	return "gemini:" + g.model
}

// Generate sends the prompt as a single user turn and returns the text parts
// of the first candidate
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
