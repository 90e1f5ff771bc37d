package config

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoConfig is returned when no configuration file is found.
var ErrNoConfig = errors.New(DefaultFile + " not found in the current directory or any parent")

// Find walks up from the current working directory until it finds
// DefaultFile and returns its path.
func Find() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindFrom(cwd)
}

// FindFrom walks up from startDir until it finds DefaultFile.
func FindFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, DefaultFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}
