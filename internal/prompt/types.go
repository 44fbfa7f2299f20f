// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prompt document types and input errors

package prompt

import (
	"io/fs"
)

// Input names one document the prompt is assembled from
type Input struct {
	Name     string // section header, e.g. "project.md"
	Path     string // location on the assembler filesystem
	Template bool   // rendered first, without a header
}

// Section is one named block of the assembled prompt
type Section struct {
	Name     string
	Body     string
	Template bool
}

// Document is an ordered list of sections, fixed once assembled
type Document struct {
	sections []Section
}

// Sections returns a copy of the document sections
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// MissingInputError reports a required input document that does not exist
type MissingInputError struct {
	Name string
	Path string
}

func (e *MissingInputError) Error() string {
	return "Missing file: " + e.Path
}

// Unwrap lets errors.Is match fs.ErrNotExist
func (e *MissingInputError) Unwrap() error {
	return fs.ErrNotExist
}
