// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Step outcome and report types

package step

import (
	"time"

	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/response"
)

// NothingMessage is printed when the response held no file blocks
const NothingMessage = "No files to write. Agent did nothing."

// Outcome classifies a completed step
type Outcome string

const (
	// OutcomeNoProposals means the response held no file blocks. Not a failure.
	OutcomeNoProposals Outcome = "no_proposals"
	// OutcomeNothingWritten means every proposal was rejected or failed
	OutcomeNothingWritten Outcome = "nothing_written"
	// OutcomeWritten means at least one file was written
	OutcomeWritten Outcome = "written"
	// OutcomeDryRun means at least one file passed the guard but nothing was written
	OutcomeDryRun Outcome = "dry_run"
)

// Report summarizes one step
type Report struct {
	RunID     string
	Outcome   Outcome
	Backend   string
	Proposals []response.FileProposal
	Discarded []string // paths of empty blocks
	Result    *guard.Result
	Duration  time.Duration
}

// Written returns the paths written, in processing order
func (r *Report) Written() []string {
	if r.Result == nil {
		return nil
	}
	return r.Result.Written
}

// Planned returns the paths a dry run accepted, in processing order
func (r *Report) Planned() []string {
	if r.Result == nil {
		return nil
	}
	return r.Result.Planned
}

// Rejected returns the rejected proposals, in processing order
func (r *Report) Rejected() []*guard.RejectionError {
	if r.Result == nil {
		return nil
	}
	return r.Result.Rejected
}
