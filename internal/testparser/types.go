// Package testparser turns PHPUnit report files into normalized test results.
//
// Two report formats are supported: the event stream written by --log-json
// and the JUnit XML document written by --log-junit. Both parsers share the
// Parser contract and produce a ResultSet.
package testparser

import (
	"errors"
	"fmt"
)

// Severity is the normalized verdict of a single test case.
type Severity string

// Known severities. The JUnit parser may additionally produce an
// "UNKNOWN RESULT TYPE: <name>" label for unrecognized verdict elements.
const (
	SeverityPass    Severity = "success"
	SeverityFail    Severity = "fail"
	SeverityError   Severity = "error"
	SeveritySkipped Severity = "skipped"
)

// Passing reports whether a severity counts as a passed test.
func (s Severity) Passing() bool {
	return s == SeverityPass || s == SeveritySkipped
}

var (
	// ErrInvalidFormat is returned when a report cannot be read or is not
	// recognizable as the expected format.
	ErrInvalidFormat = errors.New("invalid report format")

	// ErrUnexpectedStatus is returned when a report carries a test status
	// outside the known vocabulary.
	ErrUnexpectedStatus = errors.New("unexpected PHPUnit test status")
)

// Result is the normalized outcome of one test case.
type Result struct {
	Name     string   `json:"name,omitempty"`
	Pass     bool     `json:"pass"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Trace    []string `json:"trace"`
	Output   string   `json:"output"`
	File     string   `json:"file,omitempty"`
	Line     string   `json:"line,omitempty"`
}

// Finding is a non-passing result reduced to what the error sink stores.
type Finding struct {
	Name     string   `json:"name,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     string   `json:"line"`
}

// ResultSet holds everything extracted from one report.
type ResultSet struct {
	Results  []Result  `json:"results"`
	Failures int       `json:"failures"`
	Errors   []Finding `json:"errors"`

	// Diagnostics lists non-fatal problems met while reading the report.
	Diagnostics []string `json:"-"`
}

// Counts summarizes a result set by severity.
func (rs *ResultSet) Counts() TestCounts {
	var c TestCounts
	for _, r := range rs.Results {
		switch {
		case r.Severity == SeveritySkipped:
			c.Skipped++
		case r.Pass:
			c.Passed++
		default:
			c.Failed++
		}
	}
	c.Total = len(rs.Results)
	return c
}

// TestCounts holds aggregated test counts.
type TestCounts struct {
	Passed  int
	Failed  int
	Skipped int
	Total   int
}

// Add adds another TestCounts to this one, aggregating the counts.
func (tc *TestCounts) Add(other *TestCounts) {
	if other == nil {
		return
	}
	tc.Passed += other.Passed
	tc.Failed += other.Failed
	tc.Skipped += other.Skipped
	tc.Total += other.Total
}

// Parser defines the contract shared by both report formats.
type Parser interface {
	// Parse reads the report at path and returns a fresh result set.
	Parse(path string) (*ResultSet, error)
	// Format returns the report format handled by the parser.
	Format() Format
}

// Format selects one of the two report formats.
type Format int

const (
	FormatJSON Format = iota
	FormatJUnit
)

// String returns the log option suffix for the format ("json" or "junit").
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJUnit:
		return "junit"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// NewParser returns the parser for format f. buildRoot is stripped from
// file paths in traces and locations.
func NewParser(f Format, buildRoot string) (Parser, error) {
	switch f {
	case FormatJSON:
		return NewEventParser(buildRoot), nil
	case FormatJUnit:
		return NewJUnitParser(buildRoot), nil
	default:
		return nil, fmt.Errorf("unknown report format %d", int(f))
	}
}

// collector accumulates results during a single Parse call.
type collector struct {
	set *ResultSet
}

func newCollector() *collector {
	return &collector{set: &ResultSet{
		Results: []Result{},
		Errors:  []Finding{},
	}}
}

// add records one test case. Trace and location are only consulted for
// failing cases.
func (c *collector) add(name string, severity Severity, message, output string, trace func() []string, location func() (string, string)) {
	pass := severity.Passing()
	r := Result{
		Name:     name,
		Pass:     pass,
		Severity: severity,
		Message:  message,
		Trace:    []string{},
		Output:   output,
	}
	if !pass {
		r.Trace = trace()
		r.File, r.Line = location()
		c.set.Failures++
		c.set.Errors = append(c.set.Errors, Finding{
			Name:     name,
			Message:  message,
			Severity: severity,
			File:     r.File,
			Line:     r.Line,
		})
	}
	c.set.Results = append(c.set.Results, r)
}

func (c *collector) diagnostic(format string, args ...interface{}) {
	c.set.Diagnostics = append(c.set.Diagnostics, fmt.Sprintf(format, args...))
}
