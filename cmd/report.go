/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sony-level/step-builder/internal/backend"
	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/step"
	"github.com/sony-level/step-builder/internal/vcs"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#8BC34A"}
	warningColor = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFC107"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E53935"}
	faintColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	faintStyle   = lipgloss.NewStyle().Foreground(faintColor)
)

// renderRejections prints one line per rejected proposal
func renderRejections(w io.Writer, rejected []*guard.RejectionError) {
	for _, r := range rejected {
		line := r.Message()
		if r.Detail != "" {
			line += faintStyle.Render(" (" + r.Detail + ")")
		}
		fmt.Fprintln(w, warningStyle.Render(line))
	}
}

// renderReport prints the outcome of a step. states may be nil when the
// project is not under version control.
func renderReport(w io.Writer, report *step.Report, states map[string]vcs.FileState) {
	if report.Outcome == step.OutcomeNoProposals {
		fmt.Fprintln(w, step.NothingMessage)
		return
	}

	renderRejections(w, report.Rejected())
	if report.Result != nil {
		for _, p := range report.Result.Failed {
			fmt.Fprintln(w, errorStyle.Render("Failed to write: "+p))
		}
	}

	if report.Outcome == step.OutcomeNothingWritten {
		fmt.Fprintln(w, warningStyle.Render("No files written."))
		return
	}

	if report.Outcome == step.OutcomeDryRun {
		fmt.Fprintln(w, headerStyle.Render("Would write (dry-run):"))
		for _, p := range report.Planned() {
			fmt.Fprintln(w, " - "+successStyle.Render(p))
		}
		return
	}

	fmt.Fprintln(w, headerStyle.Render("Written files:"))
	for _, p := range report.Written() {
		line := " - " + successStyle.Render(p)
		if state, ok := states[p]; ok {
			line += " " + faintStyle.Render("["+string(state)+"]")
		}
		fmt.Fprintln(w, line)
	}
}

// renderSummary prints run metadata below the report
func renderSummary(w io.Writer, report *step.Report, logPath string) {
	parts := []string{
		"run " + report.RunID,
		"backend " + report.Backend,
		fmt.Sprintf("%d proposal(s)", len(report.Proposals)),
	}
	if n := len(report.Discarded); n > 0 {
		parts = append(parts, fmt.Sprintf("%d empty block(s) skipped", n))
	}
	parts = append(parts, report.Duration.Round(time.Millisecond).String())
	fmt.Fprintln(w, faintStyle.Render(strings.Join(parts, " · ")))
	fmt.Fprintln(w, faintStyle.Render("log: "+logPath))
}

// renderDecision prints one guard decision
func renderDecision(w io.Writer, d guard.Decision, extra string) {
	if d.Allowed {
		fmt.Fprintf(w, "%s %s%s\n", successStyle.Render("allow"), d.Path, extra)
		return
	}
	fmt.Fprintf(w, "%s %s %s%s\n", warningStyle.Render("deny "), d.Path, faintStyle.Render("("+string(d.Reason)+")"), extra)
}

// renderChecks prints preflight results
func renderChecks(w io.Writer, checks []backend.Check) {
	for _, c := range checks {
		mark := successStyle.Render("✓")
		if !c.OK {
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(w, "  %s %s %s\n", mark, c.Name, faintStyle.Render(c.Detail))
	}
}
