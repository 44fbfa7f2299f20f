// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for run log

package runlog_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/step-builder/internal/runlog"
)

type detailedError struct{}

func (detailedError) Error() string   { return "short" }
func (detailedError) Details() string { return "long\nwith output" }

func fixedClock() func() time.Time {
	ts := time.Date(2026, 10, 19, 8, 30, 15, 123456000, time.Local)
	return func() time.Time { return ts }
}

func TestAppend_Format(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := runlog.New(fs, "logs/run.log")
	log.SetClock(fixedClock())

	require.NoError(t, log.Append("hello"))

	data, err := afero.ReadFile(fs, "logs/run.log")
	require.NoError(t, err)
	assert.Equal(t, "\n[2026-10-19 08:30:15.123456]\nhello\n", string(data))
}

func TestAppend_IsAppendOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "logs/run.log", []byte("previous content\n"), 0644))

	log := runlog.New(fs, "logs/run.log")
	log.SetClock(fixedClock())
	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(fmt.Sprintf("entry %d", i)))
	}

	data, err := afero.ReadFile(fs, "logs/run.log")
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "previous content\n"))
	assert.Equal(t, 3, strings.Count(text, "[2026-10-19 08:30:15.123456]"))
	assert.Less(t, strings.Index(text, "entry 0"), strings.Index(text, "entry 1"))
	assert.Less(t, strings.Index(text, "entry 1"), strings.Index(text, "entry 2"))
}

func TestAppendError(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := runlog.New(fs, "run.log")
	log.SetClock(fixedClock())

	require.NoError(t, log.AppendError(errors.New("boom")))
	require.NoError(t, log.AppendError(fmt.Errorf("wrapped: %w", detailedError{})))
	require.NoError(t, log.AppendError(nil))

	data, err := afero.ReadFile(fs, "run.log")
	require.NoError(t, err)
	assert.Equal(t,
		"\n[2026-10-19 08:30:15.123456]\nERROR: boom\n"+
			"\n[2026-10-19 08:30:15.123456]\nERROR: long\nwith output\n",
		string(data))
}

func TestNewOS_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "logs", "run.log")

	log := runlog.NewOS(path)
	require.NoError(t, log.Append("first"))
	require.NoError(t, log.Append("second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nfirst\n")
	assert.Contains(t, string(data), "\nsecond\n")
	assert.Equal(t, path, log.Path())
}
