package mocks

import (
	"fmt"
	"strings"
	"sync"
)

// Log levels recorded by BuildLog.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelFailure = "failure"
	LevelWarning = "warning"
)

// Entry is one recorded build log line.
type Entry struct {
	Level   string
	Message string
}

// BuildLog records build log output for assertions.
type BuildLog struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBuildLog creates an empty build log recorder.
func NewBuildLog() *BuildLog {
	return &BuildLog{}
}

func (l *BuildLog) record(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BuildLog) Info(format string, args ...interface{})    { l.record(LevelInfo, format, args) }
func (l *BuildLog) Success(format string, args ...interface{}) { l.record(LevelSuccess, format, args) }
func (l *BuildLog) Failure(format string, args ...interface{}) { l.record(LevelFailure, format, args) }
func (l *BuildLog) Warning(format string, args ...interface{}) { l.record(LevelWarning, format, args) }

// Entries returns every recorded entry in order.
func (l *BuildLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Messages returns the messages recorded at level.
func (l *BuildLog) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (l *BuildLog) Contains(level, substr string) bool {
	for _, m := range l.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
