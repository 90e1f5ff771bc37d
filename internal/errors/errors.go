// Package errors provides structured error types and exit codes for ciplug.
package errors

import (
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (tests failed, command failed, etc.)
	ExitConfigError      = 2 // Configuration error (invalid config, missing report, etc.)
	ExitEnvironmentError = 3 // Environment error (tool binary missing, unwritable artifacts, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
	KindFormat
)

// PluginError is the base error type for ciplug.
type PluginError struct {
	Kind    ErrorKind
	Message string
	Plugin  string // Plugin name if applicable
	Stage   string // Stage or sub-run label if applicable
	Cause   error  // Underlying error
}

func (e *PluginError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Plugin != "" && e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Plugin, e.Stage, msg)
	}
	if e.Plugin != "" {
		return fmt.Sprintf("[%s] %s", e.Plugin, msg)
	}
	return msg
}

func (e *PluginError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *PluginError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation, KindFormat:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *PluginError {
	return &PluginError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *PluginError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *PluginError {
	return &PluginError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *PluginError {
	return Config(fmt.Sprintf(format, args...))
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, message string) *PluginError {
	return &PluginError{
		Kind:    KindConfig,
		Message: message,
		Cause:   err,
	}
}

// Environment creates a new environment error.
func Environment(message string) *PluginError {
	return &PluginError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *PluginError {
	return Environment(fmt.Sprintf(format, args...))
}

// Format wraps a report format error.
func Format(err error, message string) *PluginError {
	return &PluginError{
		Kind:    KindFormat,
		Message: message,
		Cause:   err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *PluginError {
	return &PluginError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// PluginFailure creates an error for a specific plugin stage.
func PluginFailure(plugin, stage, message string) *PluginError {
	return &PluginError{
		Kind:    KindRuntime,
		Plugin:  plugin,
		Stage:   stage,
		Message: message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *PluginError {
	return &PluginError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if pe, ok := As(err); ok {
		return pe.ExitCode()
	}
	return ExitRuntimeError
}

// As finds the first PluginError in err's chain.
func As(err error) (*PluginError, bool) {
	for err != nil {
		if pe, ok := err.(*PluginError); ok {
			return pe, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
