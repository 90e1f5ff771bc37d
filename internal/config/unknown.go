package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, detectUnknownFields(data), nil
}

// detectUnknownFields compares the raw document with known fields.
func detectUnknownFields(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(Config{}))
	for _, key := range sortedKeys(raw) {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	if build, ok := raw["build"].(map[string]any); ok {
		knownBuild := getYAMLFields(reflect.TypeOf(BuildConfig{}))
		for _, key := range sortedKeys(build) {
			if !knownBuild[key] {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in build (ignored)", key))
			}
		}
	}

	if opts, ok := raw["phpunit"].(map[string]any); ok {
		knownOpts := make(map[string]bool, len(PHPUnitKeys))
		for _, k := range PHPUnitKeys {
			knownOpts[k] = true
		}
		for _, key := range sortedKeys(opts) {
			if !knownOpts[key] {
				warnings = append(warnings, fmt.Sprintf("unknown option %q in phpunit (ignored)", key))
			}
		}
	}

	return warnings
}

// getYAMLFields returns the known YAML field names of a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
