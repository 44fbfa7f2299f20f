// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Read-only git status of files written by a step

package vcs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the project is not inside a git work tree
var ErrNotRepository = errors.New("not a git repository")

// FileState is the git state of one written file
type FileState string

const (
	StateUnchanged FileState = "unchanged"
	StateUntracked FileState = "untracked"
	StateAdded     FileState = "added"
	StateModified  FileState = "modified"
	StateDeleted   FileState = "deleted"
)

// Status reports the git state of paths (relative to baseDir, slash separated).
// Paths git does not mention are unchanged.
func Status(baseDir string, paths []string) (map[string]FileState, error) {
	repo, err := git.PlainOpenWithOptions(baseDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	prefix, err := relativeToRoot(wt.Filesystem.Root(), baseDir)
	if err != nil {
		return nil, err
	}

	states := make(map[string]FileState, len(paths))
	for _, p := range paths {
		key := filepath.ToSlash(filepath.Join(prefix, filepath.FromSlash(p)))
		states[p] = classify(status, key)
	}
	return states, nil
}

// relativeToRoot returns baseDir relative to the work tree root
func relativeToRoot(root, baseDir string) (string, error) {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve worktree root: %w", err)
	}
	resolvedBase, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	rel, err := filepath.Rel(resolvedRoot, resolvedBase)
	if err != nil {
		return "", fmt.Errorf("project directory outside worktree: %w", err)
	}
	return rel, nil
}

func classify(status git.Status, key string) FileState {
	fs, ok := status[key]
	if !ok {
		return StateUnchanged
	}
	switch {
	case fs.Worktree == git.Untracked:
		return StateUntracked
	case fs.Staging == git.Added:
		return StateAdded
	case fs.Worktree == git.Deleted || fs.Staging == git.Deleted:
		return StateDeleted
	case fs.Worktree == git.Modified || fs.Staging == git.Modified:
		return StateModified
	}
	return StateUnchanged
}
