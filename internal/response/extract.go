// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// File block extraction from sanitized backend output

package response

import (
	"strings"
	"unicode"
)

// marker locates one "--- file: <path> ---" line in the source text
type marker struct {
	start     int // offset of the marker line
	bodyStart int // offset just past the marker line terminator
	path      string
}

// Extract returns the non-empty file blocks of text in document order
func Extract(text string) []FileProposal {
	return Parse(text).Proposals
}

// Parse scans text for file blocks. Each block runs from its marker line to
// the line break before the next marker line, or to the end of text. A marker
// line inside a block's content always starts a new block: the format has no
// escaping.
func Parse(text string) *ParseResult {
	result := &ParseResult{
		Proposals: []FileProposal{},
		Discarded: []string{},
	}

	markers := findMarkers(text)
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			// The line break before the next marker belongs to neither block
			end = markers[i+1].start - 1
		}

		body := ""
		if m.bodyStart < end {
			body = text[m.bodyStart:end]
		}

		content := strings.TrimRightFunc(body, unicode.IsSpace)
		if strings.TrimSpace(content) == "" {
			result.Discarded = append(result.Discarded, m.path)
			continue
		}

		result.Proposals = append(result.Proposals, FileProposal{
			Path:    m.path,
			Content: content,
		})
	}

	return result
}

// findMarkers returns every marker line of text, in order
func findMarkers(text string) []marker {
	var markers []marker

	pos := 0
	for pos < len(text) {
		lineEnd := len(text)
		next := len(text)
		if nl := strings.IndexByte(text[pos:], '\n'); nl >= 0 {
			lineEnd = pos + nl
			next = lineEnd + 1
		}

		if path, ok := parseMarkerLine(text[pos:lineEnd]); ok {
			markers = append(markers, marker{
				start:     pos,
				bodyStart: next,
				path:      path,
			})
		}

		pos = next
	}

	return markers
}

// parseMarkerLine returns the trimmed path of a marker line
func parseMarkerLine(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if len(line) < len(MarkerPrefix)+1+len(MarkerSuffix) {
		return "", false
	}
	if !strings.HasPrefix(line, MarkerPrefix) || !strings.HasSuffix(line, MarkerSuffix) {
		return "", false
	}
	raw := line[len(MarkerPrefix) : len(line)-len(MarkerSuffix)]
	return strings.TrimSpace(raw), true
}
