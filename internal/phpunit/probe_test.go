package phpunit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AndreyAkinshin/ciplug/internal/testparser"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   testparser.Format
	}{
		{"old tool", "PHPUnit 5.7.27 by Sebastian Bergmann and contributors.", testparser.FormatJSON},
		{"unknown option", "unrecognized option --log-json", testparser.FormatJUnit},
		{"newer wording", `Unknown option "--log-json"`, testparser.FormatJUnit},
		{"no output", "", testparser.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.output))
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"PHPUnit 9.6.13 by Sebastian Bergmann and contributors.", "9.6.13"},
		{"PHPUnit 5.7 by Sebastian Bergmann.", "5.7.0"},
		{"unrecognized option --log-json\nPHPUnit 10.5.0-RC1 by Sebastian Bergmann", "10.5.0-RC1"},
		{"command not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			v := ParseVersion(tt.output)
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			if assert.NotNil(t, v) {
				assert.Equal(t, tt.want, v.String())
			}
		})
	}
}
