// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Configuration: flags > environment > config file > defaults

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sony-level/step-builder/internal/backend"
	"github.com/sony-level/step-builder/internal/workspace"
)

// EnvPrefix prefixes every environment variable read by the builder
const EnvPrefix = "BUILDER"

// Config is the effective configuration of one invocation
type Config struct {
	Project    workspace.Project `mapstructure:"project" yaml:"project"`
	Backend    backend.Config    `mapstructure:"backend" yaml:"backend"`
	DryRun     bool              `mapstructure:"dry_run" yaml:"dry_run"`
	Verbose    bool              `mapstructure:"verbose" yaml:"verbose"`
	ConfigFile string            `mapstructure:"-" yaml:"config_file,omitempty"`
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"backend":       "backend.kind",
	"command":       "backend.command",
	"model":         "backend.model",
	"endpoint":      "backend.endpoint",
	"response-file": "backend.response_file",
	"timeout":       "backend.timeout",
	"output-dir":    "project.output_dir",
	"state-file":    "project.state_file",
	"dry-run":       "dry_run",
	"verbose":       "verbose",
}

// envKeys lists extra environment names accepted for a key, in priority order
var envKeys = map[string][]string{
	"backend.kind":          {"BUILDER_BACKEND", "BUILDER_BACKEND_KIND"},
	"backend.model":         {"BUILDER_MODEL", "BUILDER_BACKEND_MODEL"},
	"backend.command":       {"BUILDER_COMMAND", "BUILDER_BACKEND_COMMAND"},
	"backend.args":          {"BUILDER_BACKEND_ARGS"},
	"backend.endpoint":      {"BUILDER_ENDPOINT", "BUILDER_BACKEND_ENDPOINT"},
	"backend.token":         {"BUILDER_TOKEN", "BUILDER_BACKEND_TOKEN"},
	"backend.timeout":       {"BUILDER_TIMEOUT", "BUILDER_BACKEND_TIMEOUT"},
	"backend.response_file": {"BUILDER_RESPONSE_FILE", "BUILDER_BACKEND_RESPONSE_FILE"},
	"project.output_dir":    {"BUILDER_OUTPUT_DIR", "BUILDER_PROJECT_OUTPUT_DIR"},
	"project.state_file":    {"BUILDER_STATE_FILE", "BUILDER_PROJECT_STATE_FILE"},
	"project.log_file":      {"BUILDER_LOG_FILE", "BUILDER_PROJECT_LOG_FILE"},
	"project.prompt_file":   {"BUILDER_PROMPT_FILE", "BUILDER_PROJECT_PROMPT_FILE"},
	"project.project_file":  {"BUILDER_PROJECT_FILE", "BUILDER_PROJECT_PROJECT_FILE"},
	"project.rules_file":    {"BUILDER_RULES_FILE", "BUILDER_PROJECT_RULES_FILE"},
	"dry_run":               {"BUILDER_DRY_RUN"},
	"verbose":               {"BUILDER_VERBOSE"},
}

// configNames are searched in the project directory
var configNames = []string{".builder.yaml", ".builder.yml", ".builder.json"}

// RegisterFlags defines the configuration flags on fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("dir", ".", "Project directory")
	fs.String("config", "", "Config file (default: .builder.yaml in the project, then ~/.config/builder/config.yaml)")
	fs.String("backend", "", "Backend: command, ollama, gemini, replay (default: command)")
	fs.String("command", "", "Generator command for the command backend (default: ollama)")
	fs.String("model", "", "Model name (or env: BUILDER_MODEL)")
	fs.String("endpoint", "", "Endpoint for the ollama backend (or env: OLLAMA_HOST)")
	fs.String("response-file", "", "Captured response for the replay backend")
	fs.Duration("timeout", 0, "Backend timeout, 0 for none")
	fs.String("output-dir", "", "Writable output directory, relative to the project (default: output)")
	fs.String("state-file", "", "Writable state file, relative to the project (default: progress.json)")
	fs.Bool("dry-run", false, "Parse and check the response without writing files")
	fs.BoolP("verbose", "v", false, "Enable verbose output")
}

// Load resolves the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	dir, err := projectDir(flags)
	if err != nil {
		return nil, err
	}

	// .env never overrides the real environment
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envKeys {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := flagString(flags, "config")
	if explicit == "" {
		explicit = os.Getenv(EnvPrefix + "_CONFIG")
	}
	file := explicit
	if file == "" {
		file = findConfigFile(dir)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Project.BaseDir = dir
	cfg.Project.WithDefaults()
	cfg.Backend.WithDefaults()

	return cfg, nil
}

// Validate checks the backend selection and the write whitelist
func (c *Config) Validate() error {
	if err := c.Project.Validate(); err != nil {
		return err
	}
	return c.Backend.Validate()
}

// YAML renders the configuration with secrets masked
func (c *Config) YAML() (string, error) {
	masked := *c
	masked.Backend.Token = backend.MaskToken(c.Backend.Token)
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	return string(data), nil
}

// projectDir resolves the project directory from --dir, BUILDER_DIR or the working directory
func projectDir(flags *pflag.FlagSet) (string, error) {
	dir := flagString(flags, "dir")
	if flags == nil || !flags.Changed("dir") {
		if env := os.Getenv(EnvPrefix + "_DIR"); env != "" {
			dir = env
		}
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory %s: %w", dir, err)
	}
	return abs, nil
}

// findConfigFile returns the first existing config file: the project
// directory, then $XDG_CONFIG_HOME/builder, then ~/.config/builder
func findConfigFile(dir string) string {
	var candidates []string
	for _, name := range configNames {
		candidates = append(candidates, filepath.Join(dir, name))
	}

	var userDirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		userDirs = append(userDirs, filepath.Join(xdg, "builder"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		userDirs = append(userDirs, filepath.Join(home, ".config", "builder"))
	}
	for _, d := range userDirs {
		for _, ext := range []string{"yaml", "yml", "json"} {
			candidates = append(candidates, filepath.Join(d, "config."+ext))
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

func flagString(flags *pflag.FlagSet, name string) string {
	if flags == nil || flags.Lookup(name) == nil {
		return ""
	}
	s, _ := flags.GetString(name)
	return s
}
