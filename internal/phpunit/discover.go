package phpunit

import (
	"os"
	"path/filepath"
)

// configFileCandidates are probed in order by FindConfigFile.
var configFileCandidates = []string{
	"phpunit.xml",
	"phpunit.mysql.xml",
	"phpunit.pgsql.xml",
	"phpunit.xml.dist",
	"tests/phpunit.xml",
	"tests/phpunit.xml.dist",
}

// FindConfigFile returns the first conventional PHPUnit config file that
// exists under root, relative to root, or "" if there is none.
func FindConfigFile(root string) string {
	for _, name := range configFileCandidates {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		if err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}
