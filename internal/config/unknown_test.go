package config

import (
	"strings"
	"testing"
)

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestLoadWithWarnings_UnknownRootField(t *testing.T) {
	data := []byte("phpunit:\n  directory: tests\nunknown_field: value\n")

	cfg, warnings, err := LoadWithWarnings("test.yml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if cfg.PHPUnit.String("directory", "") != "tests" {
		t.Errorf("PHPUnit[directory] = %q, want %q", cfg.PHPUnit.String("directory", ""), "tests")
	}
	if !containsWarning(warnings, "unknown_field") {
		t.Errorf("Expected warning about unknown_field, got %v", warnings)
	}
}

func TestLoadWithWarnings_SchemaFieldIgnored(t *testing.T) {
	data := []byte("$schema: ./schema/config.schema.json\nphpunit: {}\n")

	_, warnings, err := LoadWithWarnings("test.yml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if containsWarning(warnings, "$schema") {
		t.Errorf("$schema should not produce a warning, got %v", warnings)
	}
}

func TestLoadWithWarnings_UnknownBuildField(t *testing.T) {
	data := []byte("build:\n  id: \"1\"\n  project: demo\n")

	_, warnings, err := LoadWithWarnings("test.yml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if !containsWarning(warnings, `"project" in build`) {
		t.Errorf("Expected warning about build.project, got %v", warnings)
	}
}

func TestLoadWithWarnings_UnknownPluginOption(t *testing.T) {
	data := []byte("phpunit:\n  args: --colors\n  log_dir: /tmp\n")

	_, warnings, err := LoadWithWarnings("test.yml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "log_dir") {
		t.Errorf("warnings = %v, want exactly one about log_dir", warnings)
	}
}

func TestLoadWithWarnings_NoUnknownFields(t *testing.T) {
	data := []byte("build:\n  branch: main\nphpunit:\n  coverage: true\n  run_from: app\n")

	_, warnings, err := LoadWithWarnings("test.yml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestLoadWithWarnings_InvalidYAML(t *testing.T) {
	_, _, err := LoadWithWarnings("test.yml", []byte("build: [oops"))
	if err == nil {
		t.Error("LoadWithWarnings() expected error for invalid YAML")
	}
}
