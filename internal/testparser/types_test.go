package testparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityPassing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		expected bool
	}{
		{SeverityPass, true},
		{SeveritySkipped, true},
		{SeverityFail, false},
		{SeverityError, false},
		{Severity("UNKNOWN RESULT TYPE: flaky"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.Passing())
		})
	}
}

func TestResultSetCounts(t *testing.T) {
	t.Parallel()

	rs := &ResultSet{Results: []Result{
		{Pass: true, Severity: SeverityPass},
		{Pass: true, Severity: SeveritySkipped},
		{Pass: false, Severity: SeverityFail},
		{Pass: false, Severity: SeverityError},
		{Pass: true, Severity: SeverityPass},
	}}

	assert.Equal(t, TestCounts{Passed: 2, Failed: 2, Skipped: 1, Total: 5}, rs.Counts())
}

func TestTestCountsAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		base     TestCounts
		add      *TestCounts
		expected TestCounts
	}{
		{
			name:     "add to zero",
			base:     TestCounts{},
			add:      &TestCounts{Passed: 10, Failed: 2, Skipped: 3, Total: 15},
			expected: TestCounts{Passed: 10, Failed: 2, Skipped: 3, Total: 15},
		},
		{
			name:     "add to existing",
			base:     TestCounts{Passed: 5, Failed: 1, Skipped: 2, Total: 8},
			add:      &TestCounts{Passed: 10, Failed: 2, Skipped: 3, Total: 15},
			expected: TestCounts{Passed: 15, Failed: 3, Skipped: 5, Total: 23},
		},
		{
			name:     "add nil",
			base:     TestCounts{Passed: 5, Failed: 1, Skipped: 2, Total: 8},
			add:      nil,
			expected: TestCounts{Passed: 5, Failed: 1, Skipped: 2, Total: 8},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.base
			got.Add(tt.add)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p, err := NewParser(FormatJSON, "/b")
	require.NoError(t, err)
	assert.IsType(t, &EventParser{}, p)
	assert.Equal(t, FormatJSON, p.Format())

	p, err = NewParser(FormatJUnit, "/b")
	require.NoError(t, err)
	assert.IsType(t, &JUnitParser{}, p)
	assert.Equal(t, FormatJUnit, p.Format())

	_, err = NewParser(Format(7), "/b")
	assert.Error(t, err)
}

func TestFormatString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "junit", FormatJUnit.String())
	assert.Equal(t, "Format(9)", Format(9).String())
}

func TestRootStripper(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		root     string
		input    string
		expected string
	}{
		{"empty root", "", "/var/build/a.php", "/var/build/a.php"},
		{"root without slash", "/var/build", "/var/build/src/a.php", "src/a.php"},
		{"root with slash", "/var/build/", "/var/build/src/a.php", "src/a.php"},
		{"sibling dir untouched", "/var/build", "/var/builder/a.php", "/var/builder/a.php"},
		{"multiple occurrences", "/b", "/b/x.php:1\n/b/y.php:2", "x.php:1\ny.php:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, newRootStripper(tt.root).strip(tt.input))
		})
	}
}
