package phpunit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AndreyAkinshin/ciplug/internal/config"
	ciplugerrors "github.com/AndreyAkinshin/ciplug/internal/errors"
)

// Patterns for the summary figures of PHPUnit's --coverage-text report.
// The summary precedes the per-class figures, so the first match wins.
var (
	classesPattern = regexp.MustCompile(`Classes:\s*([^%\n]*)%`)
	methodsPattern = regexp.MustCompile(`Methods:\s*([^%\n]*)%`)
	linesPattern   = regexp.MustCompile(`Lines:\s*([^%\n]*)%`)
)

// ansiPattern matches terminal color sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// defaultCoverage is reported for a metric missing from the output.
const defaultCoverage = "0.00"

// Coverage holds the percentages of a coverage summary as printed.
type Coverage struct {
	Classes string `json:"classes"`
	Methods string `json:"methods"`
	Lines   string `json:"lines"`
}

// ExtractCoverage reads the coverage summary from tool output. Each metric
// that cannot be found is "0.00" on its own.
func ExtractCoverage(output string) Coverage {
	plain := ansiPattern.ReplaceAllString(output, "")
	return Coverage{
		Classes: findMetric(classesPattern, plain),
		Methods: findMetric(methodsPattern, plain),
		Lines:   findMetric(linesPattern, plain),
	}
}

func findMetric(re *regexp.Regexp, output string) string {
	m := re.FindStringSubmatch(output)
	if m == nil {
		return defaultCoverage
	}
	if v := strings.TrimSpace(m[1]); v != "" {
		return v
	}
	return defaultCoverage
}

func (c Coverage) metric(name string) string {
	switch name {
	case "classes":
		return c.Classes
	case "methods":
		return c.Methods
	default:
		return c.Lines
	}
}

// Shortfall is a coverage metric below its required value.
type Shortfall struct {
	Metric   string
	Required string
	Current  string
}

func (s Shortfall) String() string {
	return fmt.Sprintf("PHPUnit %s coverage: required %s%% > current %s%%", s.Metric, s.Required, s.Current)
}

// CheckCoverage compares current coverage with the required_*_coverage
// options. Values are compared as exact decimals. A current value that is
// not a number counts as zero; an invalid requirement is a config error.
func CheckCoverage(current Coverage, opts config.PluginOptions) ([]Shortfall, error) {
	var shortfalls []Shortfall
	for _, metric := range []string{"classes", "methods", "lines"} {
		key := "required_" + metric + "_coverage"
		if !opts.Has(key) {
			continue
		}
		raw := opts.String(key, "")
		required, err := config.ParsePercentage(raw)
		if err != nil {
			return nil, ciplugerrors.WrapConfig(err, key)
		}

		have, err := decimal.NewFromString(current.metric(metric))
		if err != nil {
			have = decimal.Zero
		}

		if required.GreaterThan(have) {
			shortfalls = append(shortfalls, Shortfall{
				Metric:   metric,
				Required: raw,
				Current:  current.metric(metric),
			})
		}
	}
	return shortfalls, nil
}
