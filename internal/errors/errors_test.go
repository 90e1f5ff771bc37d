package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPluginError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PluginError
		expected string
	}{
		{
			name:     "message only",
			err:      &PluginError{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with plugin",
			err:      &PluginError{Plugin: "php_unit", Message: "tests failed"},
			expected: "[php_unit] tests failed",
		},
		{
			name:     "with plugin and stage",
			err:      &PluginError{Plugin: "php_unit", Stage: "tests/Unit", Message: "report missing"},
			expected: "[php_unit] tests/Unit: report missing",
		},
		{
			name:     "stage without plugin not included",
			err:      &PluginError{Stage: "tests/Unit", Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "cause appended",
			err:      &PluginError{Message: "read report", Cause: errors.New("permission denied")},
			expected: "read report: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPluginError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &PluginError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}

	errNoCause := &PluginError{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestPluginError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"validation", KindValidation, ExitConfigError},
		{"format", KindFormat, ExitConfigError},
		{"environment", KindEnvironment, ExitEnvironmentError},
		{"not found", KindNotFound, ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &PluginError{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("original error")

	tests := []struct {
		name    string
		err     *PluginError
		kind    ErrorKind
		message string
		cause   error
	}{
		{"New", New("test error"), KindRuntime, "test error", nil},
		{"Newf", Newf("error %d: %s", 42, "details"), KindRuntime, "error 42: details", nil},
		{"Config", Config("invalid config"), KindConfig, "invalid config", nil},
		{"Configf", Configf("field %q: %s", "name", "is required"), KindConfig, `field "name": is required`, nil},
		{"WrapConfig", WrapConfig(cause, "load"), KindConfig, "load", cause},
		{"Environment", Environment("no phpunit"), KindEnvironment, "no phpunit", nil},
		{"Environmentf", Environmentf("%s missing", "phpunit"), KindEnvironment, "phpunit missing", nil},
		{"Format", Format(cause, "bad report"), KindFormat, "bad report", cause},
		{"Wrap", Wrap(cause, "wrapped message"), KindRuntime, "wrapped message", cause},
		{"NotFound", NotFound("report", "/tmp/x"), KindNotFound, "report not found: /tmp/x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
			if tt.err.Cause != tt.cause {
				t.Errorf("Cause = %v, want %v", tt.err.Cause, tt.cause)
			}
		})
	}
}

func TestPluginFailure(t *testing.T) {
	err := PluginFailure("php_unit", "coverage", "lines below threshold")

	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	expected := "[php_unit] coverage: lines below threshold"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"PluginError runtime", New("runtime"), ExitRuntimeError},
		{"PluginError config", Config("config"), ExitConfigError},
		{"PluginError validation", &PluginError{Kind: KindValidation}, ExitConfigError},
		{"wrapped PluginError", fmt.Errorf("outer: %w", Config("inner")), ExitConfigError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
