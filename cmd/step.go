/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sony-level/step-builder/internal/backend"
	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/prompt"
	"github.com/sony-level/step-builder/internal/runlog"
	"github.com/sony-level/step-builder/internal/step"
	"github.com/sony-level/step-builder/internal/vcs"
	"github.com/sony-level/step-builder/internal/workspace"
)

// stepCmd represents the step command
var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run one generation step (default command)",
	Long: `Assemble the prompt from agent/prompt.txt, project.md, rules.json and
progress.json, invoke the backend, and write the permitted file blocks
of its response.

Only paths under the output directory and the state file itself are
written. Unsafe or unauthorized paths are reported and skipped.

Examples:
  builder step
  builder step --dir ./my-project --verbose
  builder step --backend ollama --endpoint localhost:11434`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeStep(cmd)
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
}

func executeStep(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	project := &cfg.Project
	out := cmd.OutOrStdout()

	runID, err := workspace.GenerateRunID()
	if err != nil {
		return fmt.Errorf("failed to generate run ID: %w", err)
	}
	log := logger.With(zap.String("run_id", runID))

	osFs := afero.NewOsFs()
	if !cfg.DryRun {
		if err := project.Bootstrap(osFs); err != nil {
			return err
		}
	}

	b, err := backend.New(&cfg.Backend)
	if err != nil {
		return err
	}

	g, err := guard.NewOS(project.Policy(), project.BaseDir,
		guard.WithDryRun(cfg.DryRun),
		guard.WithLogger(log),
	)
	if err != nil {
		return err
	}

	runner, err := step.NewRunner(
		prompt.NewAssembler(osFs, project.Inputs()),
		b,
		g,
		runlog.New(osFs, project.LogPath()),
		step.WithLogger(log),
		step.WithRunID(runID),
	)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		fmt.Fprintln(out, warningStyle.Render("[DRY-RUN MODE] No files will be written."))
	}

	report, err := runner.Run(cmd.Context())

	var failure *backend.BackendError
	if errors.As(err, &failure) {
		return errors.New(failure.Details())
	}
	if report.Outcome == "" {
		return err
	}

	renderReport(out, report, writtenStates(project.BaseDir, report))
	if cfg.Verbose {
		renderSummary(out, report, project.LogPath())
	}
	return err
}

// writtenStates annotates written files with their git state, when available
func writtenStates(baseDir string, report *step.Report) map[string]vcs.FileState {
	if report.Result == nil || report.Result.DryRun || len(report.Written()) == 0 {
		return nil
	}
	states, err := vcs.Status(baseDir, report.Written())
	if err != nil {
		if !errors.Is(err, vcs.ErrNotRepository) {
			logger.Debug("git status unavailable", zap.Error(err))
		}
		return nil
	}
	return states
}
