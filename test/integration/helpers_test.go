package integration

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func mustWrite(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

func replaceRoot(s, root string) string {
	return strings.ReplaceAll(s, "ROOT", root)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
