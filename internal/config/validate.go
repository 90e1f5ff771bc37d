package config

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// varNamePattern matches names usable as ${name} build variables.
var varNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// reservedVars are provided by the build itself and cannot be overridden.
var reservedVars = map[string]bool{
	"build_id":   true,
	"build_path": true,
	"root":       true,
	"branch":     true,
	"artifacts":  true,
}

// RequiredCoverageKeys lists the coverage gate options.
var RequiredCoverageKeys = []string{
	"required_classes_coverage",
	"required_methods_coverage",
	"required_lines_coverage",
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateVars(cfg.Build.Vars); err != nil {
		return nil, err
	}

	coverageWarnings, err := validateCoverage(cfg.PHPUnit)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, coverageWarnings...)

	if cfg.PHPUnit.Has("directory") && cfg.PHPUnit.Has("directories") {
		warnings = append(warnings, `both "directory" and "directories" are set; "directories" wins`)
	}

	return warnings, nil
}

func validateVars(vars map[string]string) error {
	for name := range vars {
		if !varNamePattern.MatchString(name) {
			return &ValidationError{
				Field:   fmt.Sprintf("build.vars.%s", name),
				Message: "variable name must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$",
			}
		}
		if reservedVars[name] {
			return &ValidationError{
				Field:   fmt.Sprintf("build.vars.%s", name),
				Message: "is a built-in variable and cannot be overridden",
			}
		}
	}
	return nil
}

func validateCoverage(opts PluginOptions) ([]string, error) {
	var warnings []string
	for _, key := range RequiredCoverageKeys {
		if !opts.Has(key) {
			continue
		}
		if _, err := ParsePercentage(opts.String(key, "")); err != nil {
			return nil, &ValidationError{
				Field:   "phpunit." + key,
				Message: err.Error(),
			}
		}
		if !opts.Bool("coverage", false) {
			warnings = append(warnings, fmt.Sprintf("phpunit.%s is ignored unless coverage is enabled", key))
		}
	}
	return warnings, nil
}

// ParsePercentage parses a coverage percentage in the range [0, 100].
func ParsePercentage(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a decimal percentage, got %q", s)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("must be between 0 and 100, got %s", s)
	}
	return d, nil
}
