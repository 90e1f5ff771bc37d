package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/ciplug/internal/errors"
	"github.com/AndreyAkinshin/ciplug/internal/testparser"
)

type parseOptions struct {
	format string
	root   string
}

func newParseCmd() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse <report>",
		Short: "Parse a PHPUnit report and print its results",
		Long: `Parse a PHPUnit --log-json or --log-junit report and print a results
table followed by a summary. The format is taken from --format, or from the
file extension (.xml is JUnit, anything else is JSON).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseReport(args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: json or junit")
	cmd.Flags().StringVar(&opts.root, "root", "", "build root stripped from file paths")
	return cmd
}

func parseReport(path string, opts *parseOptions) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NotFound("report", path)
	}
	format, err := reportFormat(path, opts.format)
	if err != nil {
		return err
	}

	parser, err := testparser.NewParser(format, opts.root)
	if err != nil {
		return errors.WrapConfig(err, "select report parser")
	}
	rs, err := parser.Parse(path)
	if err != nil {
		if stderrors.Is(err, testparser.ErrUnexpectedStatus) {
			return errors.WrapConfig(err, "parse report")
		}
		return errors.Format(err, "parse report")
	}
	printWarnings(path, rs.Diagnostics)

	if len(rs.Results) > 0 {
		out.Table([]string{"Test", "Result", "Location"}, resultRows(rs.Results))
	}
	printSummary(rs)

	if rs.Failures > 0 {
		return errors.Newf("%d of %d tests did not pass", rs.Failures, len(rs.Results))
	}
	return nil
}

// reportFormat resolves an explicit format name, or guesses from the
// report's file extension.
func reportFormat(path, name string) (testparser.Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return testparser.FormatJSON, nil
	case "junit", "xml":
		return testparser.FormatJUnit, nil
	case "":
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			return testparser.FormatJUnit, nil
		}
		return testparser.FormatJSON, nil
	default:
		return 0, errors.Configf("unknown report format %q (want json or junit)", name)
	}
}

func resultRows(results []testparser.Result) [][]string {
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		location := r.File
		if location != "" && r.Line != "" {
			location = fmt.Sprintf("%s:%s", r.File, r.Line)
		}
		rows = append(rows, []string{r.Name, title.String(string(r.Severity)), location})
	}
	return rows
}

// printSummary prints the result counts and the failing tests.
func printSummary(rs *testparser.ResultSet) {
	counts := rs.Counts()
	out.SummaryHeader("Test Summary")

	out.SummaryPassed("Passed", formatCount(counts.Passed))
	if counts.Failed > 0 {
		out.SummaryFailed("Failed", formatCount(counts.Failed))
	}
	if counts.Skipped > 0 {
		out.SummaryItem("Skipped", formatCount(counts.Skipped))
	}
	out.SummaryItem("Total", formatCount(counts.Total))

	if len(rs.Errors) == 0 {
		return
	}
	out.Println("")
	for _, f := range rs.Errors {
		out.SummaryFailed("  "+f.Name, firstLine(strings.TrimPrefix(f.Message, f.Name+"\n")))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
