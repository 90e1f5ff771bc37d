// Package store persists what plugins report about a build: individual
// build errors and named metadata values.
package store

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks a build error. Lower values are more severe.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityNormal
	SeverityLow
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityNormal:
		return "normal"
	case SeverityLow:
		return "low"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "critical":
		*s = SeverityCritical
	case "high":
		*s = SeverityHigh
	case "normal":
		*s = SeverityNormal
	case "low":
		*s = SeverityLow
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// BuildError is one problem a plugin found in a build.
type BuildError struct {
	BuildID   string    `json:"build_id"`
	Plugin    string    `json:"plugin"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	File      string    `json:"file,omitempty"`
	LineStart int       `json:"line_start,omitempty"`
	LineEnd   int       `json:"line_end,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorSink receives build errors.
type ErrorSink interface {
	WriteError(e BuildError) error
}

// MetaSink receives build metadata.
type MetaSink interface {
	WriteMeta(buildID, plugin, key string, value any) error
}

// Sink is both an ErrorSink and a MetaSink.
type Sink interface {
	ErrorSink
	MetaSink
}

// MetaKey returns the storage key of a plugin's metadata value.
func MetaKey(plugin, key string) string {
	return plugin + "-" + key
}
