package testparser

import (
	"path/filepath"
	"strings"
)

// rootStripper removes the build root from absolute paths so findings point
// at project-relative files.
type rootStripper struct {
	prefix string
}

func newRootStripper(buildRoot string) rootStripper {
	if buildRoot == "" {
		return rootStripper{}
	}
	root := filepath.ToSlash(filepath.Clean(buildRoot))
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return rootStripper{prefix: root}
}

// strip removes every occurrence of the build root from s. Trace blobs
// contain several paths, so this is a replace rather than a prefix trim.
func (rs rootStripper) strip(s string) string {
	if rs.prefix == "" {
		return s
	}
	return strings.ReplaceAll(s, rs.prefix, "")
}
