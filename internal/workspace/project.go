// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project layout: paths, bootstrap and prompt inputs

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/prompt"
)

// New creates a project rooted at baseDir with the default layout.
// If baseDir is empty, uses current working directory.
func New(baseDir string) (*Project, error) {
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		baseDir = cwd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory %s: %w", baseDir, err)
	}

	p := &Project{BaseDir: abs}
	return p.WithDefaults(), nil
}

// WithDefaults fills empty layout fields
func (p *Project) WithDefaults() *Project {
	set := func(field *string, def string) {
		if strings.TrimSpace(*field) == "" {
			*field = def
		}
	}
	set(&p.OutputDir, DefaultOutputDir)
	set(&p.StateFile, DefaultStateFile)
	set(&p.LogFile, DefaultLogFile)
	set(&p.PromptFile, DefaultPromptFile)
	set(&p.ProjectFile, DefaultProjectFile)
	set(&p.RulesFile, DefaultRulesFile)

	// Whitelist roots are compared literally against proposed paths
	p.OutputDir = strings.TrimSuffix(filepath.ToSlash(p.OutputDir), "/")
	p.StateFile = filepath.ToSlash(p.StateFile)
	return p
}

// Validate checks the write whitelist of the layout. The run log must stay
// out of reach of generated files.
func (p *Project) Validate() error {
	if p.BaseDir == "" {
		return errors.New("project directory is not set")
	}
	policy := p.Policy()
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy.InWhitelist(path.Clean(filepath.ToSlash(p.LogFile))) {
		return fmt.Errorf("%w: run log %q is writable by generated files", guard.ErrInvalidPolicy, p.LogFile)
	}
	return nil
}

// Path resolves a layout-relative path against the project directory
func (p *Project) Path(rel string) string {
	return filepath.Join(p.BaseDir, filepath.FromSlash(rel))
}

// Policy returns the write whitelist of the project
func (p *Project) Policy() *guard.Policy {
	return &guard.Policy{
		OutputDir: p.OutputDir,
		StateFile: p.StateFile,
	}
}

// Inputs returns the prompt inputs in assembly order: the template first,
// then the project description, the rules and the state file
func (p *Project) Inputs() []prompt.Input {
	return []prompt.Input{
		{Name: filepath.Base(p.PromptFile), Path: p.Path(p.PromptFile), Template: true},
		{Name: filepath.Base(p.ProjectFile), Path: p.Path(p.ProjectFile)},
		{Name: filepath.Base(p.RulesFile), Path: p.Path(p.RulesFile)},
		{Name: filepath.Base(p.StateFile), Path: p.Path(p.StateFile)},
	}
}

// LogPath returns the absolute path of the run log
func (p *Project) LogPath() string {
	return p.Path(p.LogFile)
}

// Bootstrap creates the output and log directories
func (p *Project) Bootstrap(fs afero.Fs) error {
	dirs := []string{
		p.Path(p.OutputDir),
		filepath.Dir(p.LogPath()),
	}
	for _, dir := range dirs {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists checks if the project directory exists
func (p *Project) Exists() bool {
	info, err := os.Stat(p.BaseDir)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// String returns a string representation of the project
func (p *Project) String() string {
	return fmt.Sprintf("Project{BaseDir: %s, OutputDir: %s, StateFile: %s}", p.BaseDir, p.OutputDir, p.StateFile)
}
