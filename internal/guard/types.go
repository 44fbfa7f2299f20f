// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Write guard types and policy configuration

package guard

import (
	"errors"
	"fmt"
)

// Default whitelist roots, relative to the project directory
const (
	DefaultOutputDir = "output"
	DefaultStateFile = "progress.json"
)

// Reason classifies why a proposal was rejected
type Reason string

const (
	// ReasonNone marks an allowed proposal
	ReasonNone Reason = ""
	// ReasonUnsafePath is a traversal, absolute or drive/scheme marker
	ReasonUnsafePath Reason = "unsafe_path"
	// ReasonOutsideWhitelist is a path outside the writable destinations
	ReasonOutsideWhitelist Reason = "outside_whitelist"
)

// Rejection errors, matchable with errors.Is
var (
	ErrUnsafePath       = errors.New("unsafe path")
	ErrOutsideWhitelist = errors.New("path outside write whitelist")
	ErrInvalidPolicy    = errors.New("invalid write policy")
)

// Policy holds the writable destinations of a project
type Policy struct {
	OutputDir string // writable subtree
	StateFile string // singleton writable file
}

// DefaultPolicy returns the default write policy
func DefaultPolicy() *Policy {
	return &Policy{
		OutputDir: DefaultOutputDir,
		StateFile: DefaultStateFile,
	}
}

// Validate checks that both whitelist roots are themselves safe relative paths
func (p *Policy) Validate() error {
	if p.OutputDir == "" {
		return fmt.Errorf("%w: empty output directory", ErrInvalidPolicy)
	}
	if p.StateFile == "" {
		return fmt.Errorf("%w: empty state file", ErrInvalidPolicy)
	}
	if IsUnsafePath(p.OutputDir) {
		return fmt.Errorf("%w: unsafe output directory %q", ErrInvalidPolicy, p.OutputDir)
	}
	if IsUnsafePath(p.StateFile) {
		return fmt.Errorf("%w: unsafe state file %q", ErrInvalidPolicy, p.StateFile)
	}
	return nil
}

// Decision is the classification of one proposed path
type Decision struct {
	Path    string
	Allowed bool
	Reason  Reason
}

// Err returns the rejection as an error, or nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &RejectionError{Path: d.Path, Reason: d.Reason}
}

// RejectionError reports a proposal the guard refused to write
type RejectionError struct {
	Path   string
	Reason Reason
	Detail string // optional extra context
}

func (e *RejectionError) Error() string {
	msg := "rejected " + e.Path + ": " + string(e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap maps the rejection reason to its sentinel error
func (e *RejectionError) Unwrap() error {
	switch e.Reason {
	case ReasonUnsafePath:
		return ErrUnsafePath
	case ReasonOutsideWhitelist:
		return ErrOutsideWhitelist
	default:
		return nil
	}
}

// Message returns the human-readable line printed for a rejection
func (e *RejectionError) Message() string {
	switch e.Reason {
	case ReasonUnsafePath:
		return "Skipped unsafe path: " + e.Path
	case ReasonOutsideWhitelist:
		return "Skipped unauthorized path: " + e.Path
	default:
		return "Skipped path: " + e.Path
	}
}

// Result collects the outcome of applying a batch of proposals
type Result struct {
	Written  []string          // paths written, in processing order
	Planned  []string          // allowed paths a dry run would have written
	Rejected []*RejectionError // rejected proposals, in processing order
	Failed   []string          // allowed paths whose write failed
	DryRun   bool
}

// NewResult creates an empty result
func NewResult() *Result {
	return &Result{
		Written:  []string{},
		Planned:  []string{},
		Rejected: []*RejectionError{},
		Failed:   []string{},
	}
}

// Nothing reports whether the batch produced no writes
func (r *Result) Nothing() bool {
	return len(r.Written) == 0
}

// Accepted reports whether any proposal passed the guard, written or planned
func (r *Result) Accepted() bool {
	return len(r.Written) > 0 || len(r.Planned) > 0
}
