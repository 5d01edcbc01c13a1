package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultFilePath is the diagnostics log file, relative to the working directory.
const DefaultFilePath = "logs/configurator.txt"

// maxLines bounds the in-memory history shown by the console overlay.
const maxLines = 500

// Logger stores diagnostic lines in memory (for the console overlay) and appends them
// to a file on disk. An optional echo writer (e.g. os.Stderr) receives every line too.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	echo  io.Writer
	now   func() time.Time
}

// New returns a Logger appending to path and ensures its directory exists.
// An empty path keeps lines in memory only.
func New(path string) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	return &Logger{lines: make([]string, 0), path: path, now: time.Now}
}

// SetEcho mirrors every logged line to w. Pass nil to disable.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	l.echo = w
	l.mu.Unlock()
}

// Log appends a line prefixed with [timestamp] to memory, the echo writer and the log file.
func (l *Logger) Log(line string) {
	stamped := "[" + l.now().Format("2006-01-02 15:04:05") + "] " + line

	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	if len(l.lines) > maxLines {
		l.lines = append(l.lines[:0:0], l.lines[len(l.lines)-maxLines:]...)
	}
	echo := l.echo
	l.mu.Unlock()

	if echo != nil {
		_, _ = io.WriteString(echo, stamped+"\n")
	}
	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
