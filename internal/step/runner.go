// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Single step orchestration: prompt, generate, parse, guard, log

package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sony-level/step-builder/internal/backend"
	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/prompt"
	"github.com/sony-level/step-builder/internal/response"
	"github.com/sony-level/step-builder/internal/runlog"
)

// Runner executes one step. Steps against the same project must not run concurrently.
type Runner struct {
	assembler *prompt.Assembler
	backend   backend.Backend
	guard     *guard.Guard
	log       *runlog.Logger
	logger    *zap.Logger
	runID     string
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunID tags diagnostics and the report with id
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner wires the step components together
func NewRunner(assembler *prompt.Assembler, b backend.Backend, g *guard.Guard, log *runlog.Logger, opts ...Option) (*Runner, error) {
	switch {
	case assembler == nil:
		return nil, errors.New("step requires a prompt assembler")
	case b == nil:
		return nil, errors.New("step requires a backend")
	case g == nil:
		return nil, errors.New("step requires a write guard")
	case log == nil:
		return nil, errors.New("step requires a run log")
	}

	r := &Runner{
		assembler: assembler,
		backend:   b,
		guard:     g,
		log:       log,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("run_id", r.runID))
	return r, nil
}

// Run executes the step. Input and backend failures are appended to the run
// log before being returned. A response without file blocks is reported as
// OutcomeNoProposals with a nil error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: r.runID, Backend: r.backend.Name()}
	defer func() {
		report.Duration = time.Since(start)
	}()

	text, err := r.assembler.Build()
	if err != nil {
		r.logger.Error("prompt assembly failed", zap.Error(err))
		return report, r.fail(err)
	}
	r.logger.Debug("prompt assembled", zap.Int("bytes", len(text)))

	r.logger.Info("invoking backend", zap.String("backend", r.backend.Name()))
	raw, err := r.backend.Generate(ctx, text)
	if err != nil {
		r.logger.Error("backend failed", zap.String("backend", r.backend.Name()), zap.Error(err))
		return report, r.fail(err)
	}

	cleaned := response.Sanitize(raw)
	if err := r.log.Append(cleaned); err != nil {
		return report, fmt.Errorf("failed to record response: %w", err)
	}

	parsed := response.Parse(cleaned)
	report.Proposals = parsed.Proposals
	report.Discarded = parsed.Discarded
	for _, p := range parsed.Discarded {
		r.logger.Debug("discarded empty block", zap.String("path", p))
	}

	if parsed.Empty() {
		report.Outcome = OutcomeNoProposals
		r.logger.Info("no file blocks in response")
		return report, nil
	}

	result, err := r.guard.Apply(parsed.Proposals)
	report.Result = result
	switch {
	case !result.Nothing():
		report.Outcome = OutcomeWritten
	case result.DryRun && result.Accepted():
		report.Outcome = OutcomeDryRun
	default:
		report.Outcome = OutcomeNothingWritten
	}
	r.logger.Info("step complete",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("written", len(result.Written)),
		zap.Int("planned", len(result.Planned)),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("failed", len(result.Failed)),
	)
	return report, err
}

// fail records err in the run log and returns it, joined with any logging failure
func (r *Runner) fail(err error) error {
	if logErr := r.log.AppendError(err); logErr != nil {
		return multierr.Append(err, fmt.Errorf("failed to record error: %w", logErr))
	}
	return err
}
