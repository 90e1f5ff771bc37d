package testparser

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitParser_Mixed(t *testing.T) {
	t.Parallel()

	rs, err := NewJUnitParser("/var/build").Parse(filepath.Join("testdata", "junit_mixed.xml"))
	require.NoError(t, err)
	assertInvariants(t, rs)

	severities := make([]Severity, 0, len(rs.Results))
	for _, r := range rs.Results {
		severities = append(severities, r.Severity)
	}
	assert.Equal(t, []Severity{
		SeverityPass,
		SeverityFail,
		SeveritySkipped,
		SeverityPass,
		SeverityError,
		SeverityPass,
	}, severities)
	assert.Equal(t, 2, rs.Failures)

	divide := rs.Results[1]
	assert.Equal(t, `App\Tests\CalculatorTest::testDivide`, divide.Name)
	assert.Equal(t, "App\\Tests\\CalculatorTest::testDivide\nFailed asserting that 3 matches expected 2.", divide.Message)
	assert.Equal(t, []string{"tests/CalculatorTest.php:27"}, divide.Trace)
	assert.Equal(t, "dividing\n", divide.Output)
	assert.Equal(t, "tests/CalculatorTest.php", divide.File)
	assert.Equal(t, "24", divide.Line)

	boom := rs.Results[4]
	assert.Equal(t, []string{"src/Calculator.php:14", "tests/CalculatorTest.php:42"}, boom.Trace)
	assert.Equal(t, "40", boom.Line)

	assert.Empty(t, rs.Diagnostics)
}

func TestJUnitParser_EmptyReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"zero bytes", func(t *testing.T) string { return writeReport(t, "junit.xml", "") }},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.xml") }},
		{"whitespace", func(t *testing.T) string { return writeReport(t, "junit.xml", "\n\n  ") }},
		{"not xml", func(t *testing.T) string { return writeReport(t, "junit.xml", "PHP Fatal error: out of memory") }},
		{"no testcases", func(t *testing.T) string { return writeReport(t, "junit.xml", `<testsuites/>`) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rs, err := NewJUnitParser("").Parse(tt.path(t))
			require.NoError(t, err)
			assert.Empty(t, rs.Results)
			assert.Zero(t, rs.Failures)
			assert.Empty(t, rs.Errors)
		})
	}
}

func TestJUnitParser_QuoteEntityRecovery(t *testing.T) {
	t.Parallel()

	// The bare ampersand makes the strict parse fail, forcing recovery.
	path := writeReport(t, "junit.xml", `<?xml version="1.0" encoding="UTF-8"?>
<testsuites>
  <testsuite name="A">
    <testcase name="testQuote" class="A">
      <failure message="value with &quot;embedded&quot; quotes">Tom & Jerry</failure>
    </testcase>
    <testcase name="testOk" class="A"/>
  </testsuite>
</testsuites>`)

	rs, err := NewJUnitParser("").Parse(path)
	require.NoError(t, err)
	assertInvariants(t, rs)

	require.Len(t, rs.Results, 2)
	assert.Equal(t, "A::testQuote", rs.Results[0].Name)
	assert.Equal(t, SeverityFail, rs.Results[0].Severity)
	assert.Equal(t, "value with 'embedded' quotes", rs.Results[0].Message)
	assert.Equal(t, "A::testOk", rs.Results[1].Name)
	assert.NotEmpty(t, rs.Diagnostics)
}

func TestJUnitParser_InvalidUTF8(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "junit.xml", "<testsuites><testsuite name=\"A\">"+
		"<testcase name=\"testBytes\" class=\"A\"><failure>bad \xff\xfe bytes</failure></testcase>"+
		"</testsuite></testsuites>")

	rs, err := NewJUnitParser("").Parse(path)
	require.NoError(t, err)
	require.Len(t, rs.Results, 1)
	msg := rs.Results[0].Message
	assert.True(t, utf8.ValidString(msg), "message %q should be valid UTF-8", msg)
	assert.True(t, strings.HasPrefix(msg, "bad "), "message %q", msg)
	assert.True(t, strings.HasSuffix(msg, " bytes"), "message %q", msg)
	assert.Empty(t, rs.Diagnostics, "scrubbing should let the strict parse succeed")
}

func TestJUnitParser_IllegalControlCharacters(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "junit.xml", "<testsuites><testsuite name=\"A\">"+
		"<testcase name=\"testColor\" class=\"A\"><error type=\"E\">\x1b[31mred\x1b[0m</error></testcase>"+
		"</testsuite></testsuites>")

	rs, err := NewJUnitParser("").Parse(path)
	require.NoError(t, err)
	require.Len(t, rs.Results, 1)
	assert.Equal(t, SeverityError, rs.Results[0].Severity)
	assert.Equal(t, "[31mred[0m", rs.Results[0].Message)
}

func TestJUnitParser_TruncatedDocument(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "junit.xml", `<testsuites><testsuite name="A">
<testcase name="one" class="A"/>
<testcase name="two" class="A"><failure>broken</failure></testcase>
<testcase name="thr`)

	rs, err := NewJUnitParser("").Parse(path)
	require.NoError(t, err)
	assertInvariants(t, rs)
	require.GreaterOrEqual(t, len(rs.Results), 2)
	assert.Equal(t, "A::one", rs.Results[0].Name)
	assert.Equal(t, SeverityFail, rs.Results[1].Severity)
	assert.NotEmpty(t, rs.Diagnostics)
}

func TestJUnitParser_NestedSuites(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "junit.xml", `<testsuites>
  <testsuite name="all">
    <testsuite name="A"><testcase name="a1" class="A"/></testsuite>
    <testsuite name="B">
      <testsuite name="B::data"><testcase name="b1 with data set #0" classname="B"/></testsuite>
    </testsuite>
  </testsuite>
</testsuites>`)

	rs, err := NewJUnitParser("").Parse(path)
	require.NoError(t, err)
	require.Len(t, rs.Results, 2)
	assert.Equal(t, "A::a1", rs.Results[0].Name)
	assert.Equal(t, "B::b1 with data set #0", rs.Results[1].Name)
}

func TestJUnitParser_ResetBetweenCalls(t *testing.T) {
	t.Parallel()

	p := NewJUnitParser("")
	rs1, err := p.Parse(filepath.Join("testdata", "junit_mixed.xml"))
	require.NoError(t, err)
	require.Equal(t, 2, rs1.Failures)

	rs2, err := p.Parse(writeReport(t, "junit.xml", `<testsuites><testsuite><testcase name="x" class="X"/></testsuite></testsuites>`))
	require.NoError(t, err)
	assert.Len(t, rs2.Results, 1)
	assert.Zero(t, rs2.Failures)
	assert.Empty(t, rs2.Errors)
}

func TestJUnitSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		children []*xmlNode
		expected Severity
	}{
		{"no children", nil, SeverityPass},
		{"failure", []*xmlNode{{name: "failure"}}, SeverityFail},
		{"error", []*xmlNode{{name: "error"}}, SeverityError},
		{"risky error", []*xmlNode{errorNode(`PHPUnit\Framework\RiskyTestError`)}, SeverityPass},
		{"legacy risky error", []*xmlNode{errorNode(`PHPUnit_Framework_RiskyTestError`)}, SeverityPass},
		{"other error type", []*xmlNode{errorNode(`RuntimeException`)}, SeverityError},
		{"skipped", []*xmlNode{{name: "skipped"}}, SeveritySkipped},
		{"warning", []*xmlNode{{name: "warning"}}, SeverityPass},
		{"output only", []*xmlNode{{name: "system-out"}, {name: "system-err"}}, SeverityPass},
		{"output then failure", []*xmlNode{{name: "system-out"}, {name: "failure"}}, SeverityFail},
		{"first verdict wins", []*xmlNode{{name: "skipped"}, {name: "failure"}}, SeveritySkipped},
		{"unknown", []*xmlNode{{name: "flaky"}}, Severity("UNKNOWN RESULT TYPE: flaky")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := junitSeverity(&xmlNode{name: "testcase", children: tt.children})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJUnitMessageAndTrace(t *testing.T) {
	t.Parallel()

	p := NewJUnitParser("/srv/app")

	tests := []struct {
		name    string
		blob    string
		message string
		trace   []string
	}{
		{
			name:    "empty blob falls back to name",
			blob:    "",
			message: "A::test",
			trace:   []string{},
		},
		{
			name:    "no blank line",
			blob:    "Failed asserting that false is true.",
			message: "Failed asserting that false is true.",
			trace:   []string{},
		},
		{
			name:    "message and trace",
			blob:    "A::test\nFailed.\n\n/srv/app/tests/ATest.php:10\n/srv/app/src/A.php:5\n",
			message: "A::test\nFailed.",
			trace:   []string{"tests/ATest.php:10", "src/A.php:5"},
		},
		{
			name:    "diff in message uses last blank line for trace",
			blob:    "A::test\nFailed.\n--- Expected\n\n+++ Actual\n\n/srv/app/tests/ATest.php:10\n",
			message: "A::test\nFailed.\n--- Expected",
			trace:   []string{"tests/ATest.php:10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, junitMessage(tt.blob, "A::test"))
			assert.Equal(t, tt.trace, p.trace(tt.blob))
		})
	}
}

func TestMessageTrace_AttributeWins(t *testing.T) {
	t.Parallel()

	failure := &xmlNode{name: "failure", attrs: attrs("message", "from attribute")}
	failure.text.WriteString("from text")
	tc := &xmlNode{name: "testcase", children: []*xmlNode{{name: "system-out"}, failure}}

	assert.Equal(t, "from attribute", messageTrace(tc))
}

func errorNode(errType string) *xmlNode {
	return &xmlNode{name: "error", attrs: attrs("type", errType)}
}
