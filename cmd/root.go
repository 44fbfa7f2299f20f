/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sony-level/step-builder/internal/config"
)

// logger is the diagnostics logger, built before any command runs
var logger = zap.NewNop()

// rootCmd represents the base command - runs one step without subcommand
var rootCmd = &cobra.Command{
	Use:   "builder",
	Short: "Run one generation step against a project",
	Long: `builder runs a single automation step: it assembles a prompt from the
project's documents, sends it to a generative backend, extracts the
"--- file: <path> ---" blocks from the response and writes only those
targeting the output directory or the state file.

Every response and every failure is appended to the run log.

Examples:
  builder
  builder --dir ./my-project
  builder --model llama3:8b --timeout 10m
  builder --backend replay --response-file saved.txt --dry-run
  builder parse saved.txt
  builder check output/app.go ../etc/passwd`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if env := os.Getenv(config.EnvPrefix + "_VERBOSE"); env == "1" || env == "true" {
			verbose = true
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeStep(cmd)
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// loadConfig resolves and validates the configuration for cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("dir", cfg.Project.BaseDir),
		zap.String("backend", string(cfg.Backend.Kind)),
		zap.String("model", cfg.Backend.Model),
		zap.String("config_file", cfg.ConfigFile),
	)
	return cfg, nil
}

func init() {
	// Persistent flags - available to all subcommands
	config.RegisterFlags(rootCmd.PersistentFlags())
}
