// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Git status tests

package vcs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/step-builder/internal/vcs"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func commitAll(t *testing.T, repo *git.Repository) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddGlob("."))
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestStatus_NotRepository(t *testing.T) {
	_, err := vcs.Status(t.TempDir(), []string{"output/a.txt"})
	assert.ErrorIs(t, err, vcs.ErrNotRepository)
}

func TestStatus_States(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	writeFile(t, dir, "progress.json", `{"step":1}`)
	writeFile(t, dir, "output/kept.txt", "same")
	commitAll(t, repo)

	writeFile(t, dir, "progress.json", `{"step":2}`)
	writeFile(t, dir, "output/new.txt", "fresh")

	states, err := vcs.Status(dir, []string{"progress.json", "output/new.txt", "output/kept.txt"})
	require.NoError(t, err)

	assert.Equal(t, map[string]vcs.FileState{
		"progress.json":   vcs.StateModified,
		"output/new.txt":  vcs.StateUntracked,
		"output/kept.txt": vcs.StateUnchanged,
	}, states)
}

func TestStatus_ProjectInSubdirectory(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	writeFile(t, root, "README.md", "root")
	commitAll(t, repo)

	project := filepath.Join(root, "projects", "demo")
	writeFile(t, project, "output/a.txt", "a")

	states, err := vcs.Status(project, []string{"output/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, vcs.StateUntracked, states["output/a.txt"])
}
