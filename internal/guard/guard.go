// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Path safety checks and sandboxed writes of file proposals

package guard

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sony-level/step-builder/internal/response"
)

// Guard validates proposed paths and writes the permitted ones
type Guard struct {
	policy *Policy
	fs     afero.Fs
	root   string // real directory behind fs, enables symlink containment checks
	dryRun bool
	logger *zap.Logger
}

// Option configures a Guard
type Option func(*Guard)

// WithRoot declares the real directory fs is rooted at. Writes through a
// symlink that leaves this directory are then rejected as unsafe.
func WithRoot(root string) Option {
	return func(g *Guard) {
		g.root = filepath.Clean(root)
	}
}

// WithDryRun makes Apply classify proposals without touching the filesystem
func WithDryRun(dryRun bool) Option {
	return func(g *Guard) {
		g.dryRun = dryRun
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a guard writing through fs. Proposal paths are relative to the
// root of fs. A nil policy uses DefaultPolicy.
func New(policy *Policy, fs afero.Fs, opts ...Option) (*Guard, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if fs == nil {
		return nil, fmt.Errorf("%w: nil filesystem", ErrInvalidPolicy)
	}

	g := &Guard{
		policy: policy,
		fs:     fs,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewOS creates a guard writing under the real directory root
func NewOS(policy *Policy, root string, opts ...Option) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory %s: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	fs := afero.NewBasePathFs(afero.NewOsFs(), abs)
	opts = append([]Option{WithRoot(abs)}, opts...)
	return New(policy, fs, opts...)
}

// Policy returns the guard's write policy
func (g *Guard) Policy() *Policy {
	return g.policy
}

// IsUnsafePath reports whether the literal path contains a parent-directory
// sequence, starts at a filesystem root, or carries a drive/scheme separator.
// No normalization happens before the check.
func IsUnsafePath(p string) bool {
	return strings.Contains(p, "..") ||
		strings.HasPrefix(p, "/") ||
		strings.HasPrefix(p, `\`) ||
		strings.Contains(p, ":")
}

// InWhitelist reports whether p is the state file or lies under the output directory
func (p *Policy) InWhitelist(rel string) bool {
	if rel == p.StateFile {
		return true
	}
	prefix := strings.TrimSuffix(p.OutputDir, "/") + "/"
	return strings.HasPrefix(rel, prefix) && len(rel) > len(prefix)
}

// Check classifies a proposed path without any I/O
func (g *Guard) Check(p string) Decision {
	if IsUnsafePath(p) {
		return Decision{Path: p, Reason: ReasonUnsafePath}
	}
	if !g.policy.InWhitelist(p) {
		return Decision{Path: p, Reason: ReasonOutsideWhitelist}
	}
	return Decision{Path: p, Allowed: true}
}

// Apply checks and writes each proposal in order. Rejections are recorded and
// never stop the batch. Write failures are recorded too and returned together
// once every proposal has been processed.
func (g *Guard) Apply(proposals []response.FileProposal) (*Result, error) {
	result := NewResult()
	result.DryRun = g.dryRun

	var errs error
	for _, p := range proposals {
		decision := g.Check(p.Path)
		if !decision.Allowed {
			g.reject(result, &RejectionError{Path: p.Path, Reason: decision.Reason})
			continue
		}

		if err := g.contained(p.Path); err != nil {
			g.reject(result, &RejectionError{Path: p.Path, Reason: ReasonUnsafePath, Detail: err.Error()})
			continue
		}

		if g.dryRun {
			result.Planned = append(result.Planned, p.Path)
			continue
		}

		if err := g.write(p); err != nil {
			g.logger.Error("write failed", zap.String("path", p.Path), zap.Error(err))
			result.Failed = append(result.Failed, p.Path)
			errs = multierr.Append(errs, fmt.Errorf("failed to write %s: %w", p.Path, err))
			continue
		}

		g.logger.Debug("wrote file", zap.String("path", p.Path), zap.Int("bytes", len(p.Content)))
		result.Written = append(result.Written, p.Path)
	}

	return result, errs
}

func (g *Guard) reject(result *Result, rej *RejectionError) {
	g.logger.Warn("rejected proposal",
		zap.String("path", rej.Path),
		zap.String("reason", string(rej.Reason)),
		zap.String("detail", rej.Detail),
	)
	result.Rejected = append(result.Rejected, rej)
}

// contained rejects paths that a symlink inside root redirects elsewhere
func (g *Guard) contained(rel string) error {
	if g.root == "" {
		return nil
	}
	native := filepath.FromSlash(rel)
	want := filepath.Join(g.root, native)
	got, err := securejoin.SecureJoin(g.root, native)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", rel, err)
	}
	if got != want {
		return fmt.Errorf("resolves through a symlink to %s", got)
	}
	return nil
}

// write creates missing parent directories then overwrites the target
func (g *Guard) write(p response.FileProposal) error {
	target := filepath.FromSlash(p.Path)
	if dir := path.Dir(p.Path); dir != "." {
		if err := g.fs.MkdirAll(filepath.FromSlash(dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return afero.WriteFile(g.fs, target, []byte(p.Content), 0644)
}
