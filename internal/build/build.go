// Package build holds the context a plugin runs in: the build identity, its
// working copy, and where artifacts go.
package build

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/AndreyAkinshin/ciplug/internal/config"
)

// varPattern matches variable references in the format ${varname}.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// escapePlaceholder temporarily replaces escaped $${ during interpolation.
// NUL cannot appear in a shell command string, so it never collides with a
// variable value.
const escapePlaceholder = "\x00ESCAPED\x00"

// Build describes one build of a project.
type Build struct {
	ID              string
	Root            string
	Branch          string
	ArtifactsDir    string
	PublicArtifacts bool
	Vars            map[string]string
}

// New creates a build rooted at root with a random id.
func New(root string) *Build {
	return &Build{
		ID:              uuid.NewString(),
		Root:            root,
		PublicArtifacts: true,
	}
}

// FromConfig creates a build from a loaded configuration. Defaults are
// expected to have been applied.
func FromConfig(cfg config.BuildConfig) *Build {
	b := &Build{
		ID:              cfg.ID,
		Root:            cfg.Path,
		Branch:          cfg.Branch,
		ArtifactsDir:    cfg.Artifacts,
		PublicArtifacts: cfg.PublicArtifactsEnabled(),
		Vars:            make(map[string]string, len(cfg.Vars)),
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	for k, v := range cfg.Vars {
		b.Vars[k] = v
	}
	return b
}

// Path resolves p against the build root. Absolute paths are returned as-is.
func (b *Build) Path(p string) string {
	if p == "" {
		return b.Root
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.Root, p)
}

// Location returns the public artifact directory of a plugin for this build.
func (b *Build) Location(plugin string) string {
	dir := b.ArtifactsDir
	if dir == "" {
		dir = filepath.Join(b.Root, config.DefaultArtifactsDir)
	}
	return filepath.Join(dir, plugin, b.ID)
}

// Interpolate replaces ${var} references with build variables.
//
// Built-in variables are build_id, build_path (alias root), branch and
// artifacts; user variables come from the build configuration. Unknown
// references are left as-is and $${var} yields a literal ${var}.
func (b *Build) Interpolate(s string) string {
	result := strings.ReplaceAll(s, "$${", escapePlaceholder)

	vars := map[string]string{
		"build_id":   b.ID,
		"build_path": b.Root,
		"root":       b.Root,
		"branch":     b.Branch,
		"artifacts":  b.ArtifactsDir,
	}
	for k, v := range b.Vars {
		if _, builtin := vars[k]; !builtin {
			vars[k] = v
		}
	}

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})

	return strings.ReplaceAll(result, escapePlaceholder, "${")
}
