package testparser

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeReport writes content to a fresh file in a test temp dir.
func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// assertInvariants checks the properties every result set must hold.
func assertInvariants(t *testing.T, rs *ResultSet) {
	t.Helper()
	failing := 0
	for i, r := range rs.Results {
		if r.Pass != r.Severity.Passing() {
			t.Errorf("Results[%d]: pass=%v but severity=%q", i, r.Pass, r.Severity)
		}
		if !r.Pass {
			failing++
			if r.Message == "" {
				t.Errorf("Results[%d]: failing result has empty message", i)
			}
		} else if len(r.Trace) != 0 {
			t.Errorf("Results[%d]: passing result has trace %v", i, r.Trace)
		}
	}
	if rs.Failures != failing {
		t.Errorf("Failures = %d, want %d", rs.Failures, failing)
	}
	if len(rs.Errors) != rs.Failures {
		t.Errorf("len(Errors) = %d, want %d", len(rs.Errors), rs.Failures)
	}
}

func attrs(kv ...string) []xml.Attr {
	out := make([]xml.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, xml.Attr{Name: xml.Name{Local: kv[i]}, Value: kv[i+1]})
	}
	return out
}
