// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for sanitizer and block extractor

package response_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/step-builder/internal/response"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"no marker", "hello\nworld\n", "hello\nworld\n"},
		{"single trailing marker", "hello\n---", "hello"},
		{"trailing marker with newline", "hello\n---\n", "hello"},
		{"repeated markers", "hello\n---\n  ---  \n---\n", "hello"},
		{"only markers", "---\n---\n", ""},
		{"crlf", "hello\r\n---\r\n", "hello"},
		{"marker followed by blank line", "hello\n---\n\n", "hello"},
		{"blank line between markers", "x\n---\n\n---", "x"},
		{"whitespace lines below marker", "hello\n---\n \t\n\n", "hello"},
		{"blank lines without marker", "hello\n\n\n", "hello\n\n\n"},
		{"marker not trailing", "---\nhello", "---\nhello"},
		{"file marker kept", "--- file: a.txt ---", "--- file: a.txt ---"},
		{"blank line before marker", "hello\n\n---", "hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, response.Sanitize(tt.raw))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"---",
		"a\n---",
		"a\n\n---\n",
		"a\r\n\r\n---\r\n",
		"--- file: x ---\ncontent\n---\n---",
		"text\n  ---\t\n",
		"\n\n---",
		"x\n---\n\n---",
		"--- file: output/a.txt ---\nhello\n---\n\n---\n",
		"a\n---\n \n\t\n",
	}

	for _, in := range inputs {
		once := response.Sanitize(in)
		twice := response.Sanitize(once)
		assert.Equal(t, once, twice, "input %q", in)

		lines := strings.Split(strings.TrimSuffix(once, "\n"), "\n")
		assert.NotEqual(t, response.DelimiterToken, strings.TrimSpace(lines[len(lines)-1]), "input %q", in)
	}
}

func TestExtract_Scenario(t *testing.T) {
	text := "--- file: output/a.txt ---\nhello\n--- file: ../evil.txt ---\nbad\n"

	proposals := response.Extract(text)

	require.Len(t, proposals, 2)
	assert.Equal(t, response.FileProposal{Path: "output/a.txt", Content: "hello"}, proposals[0])
	assert.Equal(t, response.FileProposal{Path: "../evil.txt", Content: "bad"}, proposals[1])
}

func TestExtract_PreservesOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Here are the files:\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "--- file: output/f%02d.txt ---\nbody %d\n\n", i, i)
	}

	proposals := response.Extract(sb.String())

	require.Len(t, proposals, 20)
	for i, p := range proposals {
		assert.Equal(t, fmt.Sprintf("output/f%02d.txt", i), p.Path)
		assert.Equal(t, fmt.Sprintf("body %d", i), p.Content)
	}
}

func TestExtract_PreservesInternalWhitespace(t *testing.T) {
	text := "--- file: output/main.go ---\npackage main\n\n\tfunc main() {}\n   \n\n"

	proposals := response.Extract(text)

	require.Len(t, proposals, 1)
	assert.Equal(t, "package main\n\n\tfunc main() {}", proposals[0].Content)
}

func TestExtract_TrimsPath(t *testing.T) {
	proposals := response.Extract("--- file:   output/spaced.txt   ---\nx\n")

	require.Len(t, proposals, 1)
	assert.Equal(t, "output/spaced.txt", proposals[0].Path)
}

func TestParse_DiscardsEmptyBlocks(t *testing.T) {
	text := strings.Join([]string{
		"--- file: output/empty.txt ---",
		"   ",
		"--- file: output/full.txt ---",
		"data",
		"--- file: output/adjacent.txt ---",
		"--- file: progress.json ---",
		"{}",
		"--- file: output/tail.txt ---",
	}, "\n")

	result := response.Parse(text)

	assert.Equal(t, []string{"output/full.txt", "progress.json"}, result.Paths())
	assert.Equal(t, []string{"output/empty.txt", "output/adjacent.txt", "output/tail.txt"}, result.Discarded)
	for _, p := range result.Proposals {
		assert.NotEmpty(t, strings.TrimSpace(p.Content))
	}
}

func TestParse_NoMarkers(t *testing.T) {
	result := response.Parse("I could not decide what to do.\n---\n")

	assert.True(t, result.Empty())
	assert.Empty(t, result.Proposals)
	assert.Empty(t, result.Discarded)
}

func TestParse_BlockCountMatchesNonEmptyBlocks(t *testing.T) {
	contents := []string{"a", "", "b\n", "  \n\t", "c d", ""}
	var sb strings.Builder
	nonEmpty := 0
	for i, c := range contents {
		fmt.Fprintf(&sb, "--- file: output/%d ---\n%s\n", i, c)
		if strings.TrimSpace(c) != "" {
			nonEmpty++
		}
	}

	result := response.Parse(sb.String())

	assert.Len(t, result.Proposals, nonEmpty)
	assert.Len(t, result.Discarded, len(contents)-nonEmpty)
}

// A marker line inside generated content starts a new block. The format has
// no escaping, so this split is accepted behavior.
func TestParse_MarkerInsideContentStartsNewBlock(t *testing.T) {
	text := "--- file: output/README.md ---\nUse this syntax:\n--- file: example.txt ---\nexample body\n"

	result := response.Parse(text)

	require.Len(t, result.Proposals, 2)
	assert.Equal(t, "Use this syntax:", result.Proposals[0].Content)
	assert.Equal(t, "example.txt", result.Proposals[1].Path)
	assert.Equal(t, "example body", result.Proposals[1].Content)
}

func TestParse_IgnoresMarkerNotAtLineStart(t *testing.T) {
	text := "--- file: output/doc.md ---\ninline --- file: x --- marker\n"

	proposals := response.Extract(text)

	require.Len(t, proposals, 1)
	assert.Equal(t, "inline --- file: x --- marker", proposals[0].Content)

	// A preamble on the first marker's line disqualifies that marker too
	proposals = response.Extract("Sure! --- file: output/a.txt ---\nhello")
	assert.Empty(t, proposals)

	proposals = response.Extract("Sure! --- file: output/a.txt ---\nhello\n--- file: output/b.txt ---\nworld")
	require.Len(t, proposals, 1)
	assert.Equal(t, "output/b.txt", proposals[0].Path)
}

func TestParse_SanitizedMarkersSeparatedByBlankLine(t *testing.T) {
	raw := "--- file: output/a.txt ---\nhello\n---\n\n---\n"

	proposals := response.Extract(response.Sanitize(raw))

	require.Len(t, proposals, 1)
	assert.Equal(t, "hello", proposals[0].Content)
}

func TestParse_CRLFMarkers(t *testing.T) {
	text := "--- file: output/win.txt ---\r\nline1\r\nline2\r\n"

	proposals := response.Extract(text)

	require.Len(t, proposals, 1)
	assert.Equal(t, "output/win.txt", proposals[0].Path)
	assert.Equal(t, "line1\r\nline2", proposals[0].Content)
}

func TestParse_SanitizedDanglingMarker(t *testing.T) {
	raw := "--- file: output/a.txt ---\nhello\n---\n"

	proposals := response.Extract(response.Sanitize(raw))

	require.Len(t, proposals, 1)
	assert.Equal(t, "hello", proposals[0].Content)
}
