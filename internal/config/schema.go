// Package config provides loading and validation of .ciplug.yml files.
package config

// Config represents the complete .ciplug.yml configuration.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	PHPUnit PluginOptions `yaml:"phpunit"`
}

// BuildConfig describes the build the plugins run against.
type BuildConfig struct {
	ID              string            `yaml:"id,omitempty"`
	Path            string            `yaml:"path,omitempty"`
	Branch          string            `yaml:"branch,omitempty"`
	Artifacts       string            `yaml:"artifacts,omitempty"`
	PublicArtifacts *bool             `yaml:"public_artifacts,omitempty"` // default: true
	Store           string            `yaml:"store,omitempty"`
	Vars            map[string]string `yaml:"vars,omitempty"`
}

// PublicArtifactsEnabled reports whether plugins may publish artifacts.
func (b BuildConfig) PublicArtifactsEnabled() bool {
	return b.PublicArtifacts == nil || *b.PublicArtifacts
}

// PHPUnitKeys lists the options understood by the PHPUnit plugin.
var PHPUnitKeys = []string{
	"args",
	"coverage",
	"config",
	"directory",
	"directories",
	"path",
	"run_from",
	"executable",
	"required_classes_coverage",
	"required_methods_coverage",
	"required_lines_coverage",
}
