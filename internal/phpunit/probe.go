package phpunit

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/AndreyAkinshin/ciplug/internal/testparser"
)

// versionPattern finds the version in "PHPUnit 9.6.13 by Sebastian Bergmann".
var versionPattern = regexp.MustCompile(`PHPUnit\s+v?(\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z.-]+)?)`)

// DetectFormat picks the report format from the output of
// "phpunit --log-json . --version". A tool that complains about the
// --log-json option no longer supports it, so its JUnit logger is used.
func DetectFormat(output string) testparser.Format {
	if strings.Contains(output, "--log-json") {
		return testparser.FormatJUnit
	}
	return testparser.FormatJSON
}

// ParseVersion extracts the PHPUnit version from tool output. It returns
// nil when the output carries no recognizable version.
func ParseVersion(output string) *semver.Version {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil
	}
	return v
}
