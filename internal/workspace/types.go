// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project layout types/constants

package workspace

import "github.com/sony-level/step-builder/internal/guard"

// Default layout, relative to the project directory
const (
	DefaultOutputDir   = guard.DefaultOutputDir
	DefaultStateFile   = guard.DefaultStateFile
	DefaultPromptFile  = "agent/prompt.txt"
	DefaultProjectFile = "project.md"
	DefaultRulesFile   = "rules.json"
	DefaultLogFile     = "logs/run.log"

	RunIDPrefix = "st"
)

// Project describes where a step reads its inputs and writes its outputs.
// Every field except BaseDir is relative to BaseDir.
type Project struct {
	BaseDir     string `mapstructure:"-" yaml:"base_dir"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	StateFile   string `mapstructure:"state_file" yaml:"state_file"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	PromptFile  string `mapstructure:"prompt_file" yaml:"prompt_file"`
	ProjectFile string `mapstructure:"project_file" yaml:"project_file"`
	RulesFile   string `mapstructure:"rules_file" yaml:"rules_file"`
}
