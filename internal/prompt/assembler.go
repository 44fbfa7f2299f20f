// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prompt assembly from fixed project documents

package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Assembler reads the input documents of a step and joins them into one prompt
type Assembler struct {
	fs     afero.Fs
	inputs []Input
}

// NewAssembler creates an assembler reading inputs from fs, in order
func NewAssembler(fs afero.Fs, inputs []Input) *Assembler {
	return &Assembler{
		fs:     fs,
		inputs: inputs,
	}
}

// Inputs returns the configured inputs
func (a *Assembler) Inputs() []Input {
	return a.inputs
}

// Missing lists the inputs that do not exist
func (a *Assembler) Missing() []Input {
	var missing []Input
	for _, in := range a.inputs {
		if ok, err := afero.Exists(a.fs, in.Path); err != nil || !ok {
			missing = append(missing, in)
		}
	}
	return missing
}

// Assemble reads every input. The first absent input aborts assembly with a
// *MissingInputError.
func (a *Assembler) Assemble() (*Document, error) {
	doc := &Document{sections: make([]Section, 0, len(a.inputs))}

	for _, in := range a.inputs {
		data, err := afero.ReadFile(a.fs, in.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
				return nil, &MissingInputError{Name: in.Name, Path: in.Path}
			}
			return nil, fmt.Errorf("failed to read %s: %w", in.Path, err)
		}
		doc.sections = append(doc.sections, Section{
			Name:     in.Name,
			Body:     string(data),
			Template: in.Template,
		})
	}

	return doc, nil
}

// Build assembles and renders the prompt in one call
func (a *Assembler) Build() (string, error) {
	doc, err := a.Assemble()
	if err != nil {
		return "", err
	}
	return doc.Render(), nil
}

// Render joins the sections. Template sections are emitted verbatim, every
// other section under a "--- <name> ---" header. The result is trimmed.
func (d *Document) Render() string {
	var sb strings.Builder

	for i, s := range d.sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if !s.Template {
			sb.WriteString(fmt.Sprintf("--- %s ---\n", s.Name))
		}
		sb.WriteString(s.Body)
	}

	return strings.TrimSpace(sb.String())
}
