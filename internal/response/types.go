// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Response types and block delimiter grammar

package response

const (
	// DelimiterToken is the bare section marker backends sometimes leave dangling
	DelimiterToken = "---"

	// MarkerPrefix opens a file block marker line: "--- file: <path> ---"
	MarkerPrefix = "--- file: "
	// MarkerSuffix closes a file block marker line
	MarkerSuffix = " ---"
)

// FileProposal is a candidate file extracted from a backend response.
// Path is the literal marker capture (trimmed, never normalized).
type FileProposal struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ParseResult holds the outcome of extracting blocks from a response
type ParseResult struct {
	Proposals []FileProposal // non-empty blocks, in document order
	Discarded []string       // paths of blocks whose content was empty
}

// Empty reports whether no proposal was found
func (r *ParseResult) Empty() bool {
	return len(r.Proposals) == 0
}

// Paths returns the proposal paths in document order
func (r *ParseResult) Paths() []string {
	paths := make([]string, 0, len(r.Proposals))
	for _, p := range r.Proposals {
		paths = append(paths, p.Path)
	}
	return paths
}
