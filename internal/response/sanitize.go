// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Removal of dangling section markers from backend output

package response

import "strings"

// Sanitize drops trailing lines that are a bare "---" token, repeatedly.
// Whitespace-only lines below such a token are dropped with it, so the
// result never ends in a bare token once its final line break is ignored.
// Input without such a trailing token is returned unchanged.
func Sanitize(raw string) string {
	lines := splitLines(raw)
	n := len(lines)
	for {
		k := n
		for k > 0 && strings.TrimSpace(lines[k-1]) == "" {
			k--
		}
		if k == 0 || strings.TrimSpace(lines[k-1]) != DelimiterToken {
			break
		}
		n = k - 1
	}
	if n == len(lines) {
		return raw
	}
	return strings.Join(lines[:n], "\n")
}

// splitLines splits on line breaks. "\r\n" counts as one break and a final
// line terminator does not produce an empty last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
