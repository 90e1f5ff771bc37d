package config

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Default configuration values, relative to the build path.
const (
	DefaultArtifactsDir = ".ciplug/artifacts"
	DefaultStoreDir     = ".ciplug/builds"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config, baseDir string) error {
	if err := applyBuildDefaults(&cfg.Build, baseDir); err != nil {
		return err
	}
	if cfg.PHPUnit == nil {
		cfg.PHPUnit = PluginOptions{}
	}
	return nil
}

func applyBuildDefaults(b *BuildConfig, baseDir string) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	if b.Path == "" {
		b.Path = baseDir
	} else if !filepath.IsAbs(b.Path) {
		b.Path = filepath.Join(baseDir, b.Path)
	}
	abs, err := filepath.Abs(b.Path)
	if err != nil {
		return fmt.Errorf("resolve build path: %w", err)
	}
	b.Path = abs

	b.Artifacts = resolve(b.Path, b.Artifacts, DefaultArtifactsDir)
	b.Store = resolve(b.Path, b.Store, DefaultStoreDir)

	if b.PublicArtifacts == nil {
		enabled := true
		b.PublicArtifacts = &enabled
	}
	return nil
}

func resolve(base, path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
