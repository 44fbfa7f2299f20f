// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Append-only, timestamped run log

package runlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// TimestampLayout is the capture timestamp printed at the head of each entry
const TimestampLayout = "2006-01-02 15:04:05.000000"

// ErrorPrefix marks entries recording a failed step
const ErrorPrefix = "ERROR: "

// Entry is one record of the run log
type Entry struct {
	Timestamp time.Time
	Text      string
}

// String renders the entry exactly as it is appended to the log
func (e Entry) String() string {
	return fmt.Sprintf("\n[%s]\n%s\n", e.Timestamp.Format(TimestampLayout), e.Text)
}

// Logger appends entries to a single log file. Each Append opens, writes and
// closes the file; there is no cross-process locking.
type Logger struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// New creates a logger writing to path on fs
func New(fs afero.Fs, path string) *Logger {
	return &Logger{
		fs:   fs,
		path: path,
		now:  time.Now,
	}
}

// NewOS creates a logger writing to a real file
func NewOS(path string) *Logger {
	return New(afero.NewOsFs(), path)
}

// SetClock replaces the timestamp source (for testing)
func (l *Logger) SetClock(now func() time.Time) {
	l.now = now
}

// Path returns the log file path
func (l *Logger) Path() string {
	return l.path
}

// Append writes one timestamped entry at the end of the log
func (l *Logger) Append(text string) error {
	entry := Entry{Timestamp: l.now(), Text: text}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log %s: %w", l.path, err)
	}

	_, werr := f.WriteString(entry.String())
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to append to run log %s: %w", l.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close run log %s: %w", l.path, cerr)
	}
	return nil
}

// detailer is implemented by errors carrying more than a one-line message
type detailer interface {
	Details() string
}

// AppendError records a failed step. Errors exposing Details (such as backend
// failures) are logged with their captured output.
func (l *Logger) AppendError(err error) error {
	if err == nil {
		return nil
	}
	text := err.Error()
	var d detailer
	if errors.As(err, &d) {
		text = d.Details()
	}
	return l.Append(ErrorPrefix + text)
}
