// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Project layout tests

package workspace_test

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/step-builder/internal/guard"
	"github.com/sony-level/step-builder/internal/workspace"
)

func TestGenerateRunID(t *testing.T) {
	workspace.ResetRunIDState()

	runID, err := workspace.GenerateRunID()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^st-\d{8}-\d{4}-[a-f0-9]{3}$`), runID)
	assert.True(t, strings.HasPrefix(runID, workspace.RunIDPrefix+"-"))
}

func TestGenerateRunID_ThreadSafety(t *testing.T) {
	workspace.ResetRunIDState()

	const numGoroutines = 10
	const idsPerGoroutine = 20

	var wg sync.WaitGroup
	idChan := make(chan string, numGoroutines*idsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				runID, err := workspace.GenerateRunID()
				if err != nil {
					t.Errorf("GenerateRunID() error = %v", err)
					return
				}
				idChan <- runID
			}
		}()
	}
	wg.Wait()
	close(idChan)

	seen := make(map[string]bool)
	for id := range idChan {
		assert.False(t, seen[id], "duplicate run ID %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, numGoroutines*idsPerGoroutine)
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()

	p, err := workspace.New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, p.BaseDir)
	assert.Equal(t, "output", p.OutputDir)
	assert.Equal(t, "progress.json", p.StateFile)
	assert.Equal(t, filepath.Join(dir, "logs", "run.log"), p.LogPath())
	assert.True(t, p.Exists())
	assert.NoError(t, p.Validate())
}

func TestNew_EmptyUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	p, err := workspace.New("")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	actual, err := filepath.EvalSymlinks(p.BaseDir)
	require.NoError(t, err)
	assert.Equal(t, resolved, actual)
}

func TestProject_Inputs(t *testing.T) {
	p := (&workspace.Project{BaseDir: "/proj"}).WithDefaults()

	inputs := p.Inputs()
	require.Len(t, inputs, 4)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	assert.Equal(t, []string{"prompt.txt", "project.md", "rules.json", "progress.json"}, names)
	assert.True(t, inputs[0].Template)
	assert.False(t, inputs[1].Template)
	assert.Equal(t, filepath.Join("/proj", "agent", "prompt.txt"), inputs[0].Path)
}

func TestProject_Policy(t *testing.T) {
	p := (&workspace.Project{BaseDir: "/proj", OutputDir: "build/", StateFile: "state.json"}).WithDefaults()

	assert.Equal(t, &guard.Policy{OutputDir: "build", StateFile: "state.json"}, p.Policy())
}

func TestProject_ValidateRejectsUnsafeWhitelist(t *testing.T) {
	p := (&workspace.Project{BaseDir: "/proj", OutputDir: "../elsewhere"}).WithDefaults()
	assert.ErrorIs(t, p.Validate(), guard.ErrInvalidPolicy)

	p = (&workspace.Project{BaseDir: "/proj", StateFile: "/etc/state"}).WithDefaults()
	assert.ErrorIs(t, p.Validate(), guard.ErrInvalidPolicy)

	assert.Error(t, (&workspace.Project{}).WithDefaults().Validate())
}

func TestProject_ValidateRejectsWritableRunLog(t *testing.T) {
	p := (&workspace.Project{BaseDir: "/proj", StateFile: "logs/run.log"}).WithDefaults()
	assert.ErrorIs(t, p.Validate(), guard.ErrInvalidPolicy)

	p = (&workspace.Project{BaseDir: "/proj", OutputDir: "logs"}).WithDefaults()
	assert.ErrorIs(t, p.Validate(), guard.ErrInvalidPolicy)

	p = (&workspace.Project{BaseDir: "/proj", LogFile: "./output/run.log"}).WithDefaults()
	assert.ErrorIs(t, p.Validate(), guard.ErrInvalidPolicy)

	p = (&workspace.Project{BaseDir: "/proj", OutputDir: "logs/archive"}).WithDefaults()
	assert.NoError(t, p.Validate())
}

func TestProject_Bootstrap(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := (&workspace.Project{BaseDir: "/proj"}).WithDefaults()

	require.NoError(t, p.Bootstrap(fs))

	for _, dir := range []string{"/proj/output", "/proj/logs"} {
		ok, err := afero.DirExists(fs, filepath.FromSlash(dir))
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	// Idempotent
	require.NoError(t, p.Bootstrap(fs))
}
