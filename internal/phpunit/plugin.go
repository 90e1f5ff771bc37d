// Package phpunit runs PHPUnit for a build and records its results.
//
// The plugin probes the installed PHPUnit for the report format it supports,
// runs it once per test directory (or once per configuration file), parses
// each report with package testparser, and hands failures and metadata to
// the build store. Coverage percentages are read from the text report and
// can gate the build.
package phpunit

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/AndreyAkinshin/ciplug/internal/build"
	"github.com/AndreyAkinshin/ciplug/internal/config"
	ciplugerrors "github.com/AndreyAkinshin/ciplug/internal/errors"
	"github.com/AndreyAkinshin/ciplug/internal/logging"
	"github.com/AndreyAkinshin/ciplug/internal/runner"
	"github.com/AndreyAkinshin/ciplug/internal/store"
	"github.com/AndreyAkinshin/ciplug/internal/testparser"
)

// Name identifies the plugin in build errors and metadata keys.
const Name = "php_unit"

// Metadata keys written by the plugin.
const (
	MetaData     = "data"
	MetaErrors   = "errors"
	MetaCoverage = "coverage"
	MetaVersion  = "version"
)

// reportPrefix names the temporary report files.
const reportPrefix = "jLog_"

// binaryCandidates are searched when no executable is configured.
var binaryCandidates = []string{"vendor/bin/phpunit", "phpunit"}

// BuildLog is the textual log shown to the person watching the build.
type BuildLog interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Failure(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Deps are the collaborators of a Plugin. Nil fields get defaults: a
// system shell, an in-memory store, and a discarded log.
type Deps struct {
	Executor runner.Executor
	Errors   store.ErrorSink
	Meta     store.MetaSink
	Log      BuildLog
}

// Plugin runs PHPUnit for one build.
type Plugin struct {
	build   *build.Build
	opts    config.PluginOptions
	options *Options
	exec    runner.Executor
	errs    store.ErrorSink
	meta    store.MetaSink
	log     BuildLog

	binary    string
	reportDir string
	version   *semver.Version
	totals    testparser.TestCounts
}

// New creates the plugin for build b.
func New(b *build.Build, opts config.PluginOptions, deps Deps) (*Plugin, error) {
	if opts == nil {
		opts = config.PluginOptions{}
	}

	binary := opts.String("executable", "")
	if binary == "" {
		found, err := runner.FindBinary(b.Root, binaryCandidates...)
		if err != nil {
			return nil, ciplugerrors.Environmentf("PHPUnit executable not found: %v", err)
		}
		binary = found
	}

	p := &Plugin{
		build:   b,
		opts:    opts,
		options: NewOptions(opts, b.Location(Name), b.PublicArtifacts),
		exec:    deps.Executor,
		errs:    deps.Errors,
		meta:    deps.Meta,
		log:     deps.Log,
		binary:  binary,
	}
	if p.exec == nil {
		p.exec = runner.NewShell()
	}
	if p.errs == nil || p.meta == nil {
		mem := store.NewMemory()
		if p.errs == nil {
			p.errs = mem
		}
		if p.meta == nil {
			p.meta = mem
		}
	}
	if p.log == nil {
		p.log = nopLog{}
	}
	return p, nil
}

// Options returns the argument negotiator of the plugin.
func (p *Plugin) Options() *Options {
	return p.options
}

// Binary returns the PHPUnit executable the plugin runs.
func (p *Plugin) Binary() string {
	return p.binary
}

// Version returns the PHPUnit version found by the last probe, if any.
func (p *Plugin) Version() *semver.Version {
	return p.version
}

// SetReportDir sets where temporary report files are created. The default
// is the system temporary directory.
func (p *Plugin) SetReportDir(dir string) {
	p.reportDir = dir
}

// Execute runs PHPUnit once per configured directory, or else once per
// configuration file, and reports whether every run passed.
//
// A missing configuration, a missing report, an unknown test status, or an
// unusable artifact location aborts with an error.
func (p *Plugin) Execute(ctx context.Context) (bool, error) {
	dirs := p.options.Directories()
	configFiles := p.options.ConfigFiles(p.build.Root)
	if len(configFiles) == 0 && len(dirs) == 0 {
		p.log.Failure("PHPUnit: neither a configuration file nor a test directory found.")
		return false, ciplugerrors.Config("neither a PHPUnit configuration file nor a test directory found")
	}

	if !p.options.Coverage() {
		for _, key := range config.RequiredCoverageKeys {
			if p.opts.Has(key) {
				p.log.Warning("%s is ignored because coverage is disabled", key)
			}
		}
	}

	format := p.Probe(ctx)
	p.totals = testparser.TestCounts{}

	success := true
	if len(dirs) > 0 {
		for _, dir := range dirs {
			ok, err := p.runConfig(ctx, p.build.Path(dir), "", format)
			if err != nil {
				return false, err
			}
			success = success && ok
		}
	} else {
		target := ""
		if path := p.options.TestsPath(); path != "" {
			target = p.build.Path(path)
		}
		for _, cfg := range configFiles {
			ok, err := p.runConfig(ctx, target, cfg, format)
			if err != nil {
				return false, err
			}
			success = success && ok
		}
	}

	t := p.totals
	p.log.Info("PHPUnit total: %d tests, %d passed, %d failed, %d skipped", t.Total, t.Passed, t.Failed, t.Skipped)
	return success, nil
}

// Totals returns the test counts summed over the runs of the last Execute.
func (p *Plugin) Totals() testparser.TestCounts {
	return p.totals
}

// Probe asks PHPUnit which report format it supports. The version found in
// the output, if any, is logged and stored as metadata.
func (p *Plugin) Probe(ctx context.Context) testparser.Format {
	p.exec.Run(ctx, p.workDir(), "%s --log-json . --version", p.binary)
	output := p.exec.LastOutput()

	if v := ParseVersion(output); v != nil {
		p.version = v
		p.log.Info("PHPUnit %s", v)
		if err := p.meta.WriteMeta(p.build.ID, Name, MetaVersion, v.String()); err != nil {
			logging.Warn("PHPUnit", "store version: %v", err)
		}
	}

	format := DetectFormat(output)
	logging.Debug("PHPUnit", "using %s report format", format)
	return format
}

func (p *Plugin) runConfig(ctx context.Context, target, configFile string, format testparser.Format) (bool, error) {
	opts := p.options.Clone()

	report, err := p.newReportFile()
	if err != nil {
		return false, ciplugerrors.Environmentf("create PHPUnit report file: %v", err)
	}
	defer os.Remove(report)

	opts.AddArgument("log-"+format.String(), report)
	opts.RemoveArgument("configuration")
	if configFile != "" {
		opts.AddArgument("configuration", p.build.Path(configFile))
	}

	if opts.Coverage() && p.build.PublicArtifacts {
		if err := ensureWritable(opts.Location()); err != nil {
			return false, err
		}
	}

	arguments := p.build.Interpolate(opts.ArgumentString())
	var ok bool
	if target == "" {
		ok = p.exec.Run(ctx, p.workDir(), "%s %s", p.binary, arguments)
	} else {
		ok = p.exec.Run(ctx, p.workDir(), "%s %s %s", p.binary, arguments, quote(target))
	}
	output := p.exec.LastOutput()

	rs, err := p.processResults(report, format)
	var pe *ciplugerrors.PluginError
	switch {
	case err == nil:
		counts := rs.Counts()
		p.totals.Add(&counts)
		p.logSummary(counts, rs.Failures)
		if rs.Failures > 0 {
			ok = false
		}
	case errors.As(err, &pe) && pe.Kind == ciplugerrors.KindFormat:
		p.log.Failure("Could not read PHPUnit report: %v", err)
		ok = false
	default:
		return false, err
	}

	if !opts.Coverage() {
		return ok, nil
	}

	coverage := ExtractCoverage(output)
	if err := p.meta.WriteMeta(p.build.ID, Name, MetaCoverage, coverage); err != nil {
		return false, ciplugerrors.Wrap(err, "store coverage")
	}
	p.log.Info("PHPUnit coverage: classes %s%%, methods %s%%, lines %s%%",
		coverage.Classes, coverage.Methods, coverage.Lines)
	if p.build.PublicArtifacts {
		p.log.Success("Coverage report: %s", opts.Location())
	}

	shortfalls, err := CheckCoverage(coverage, p.opts)
	if err != nil {
		return false, err
	}
	for _, s := range shortfalls {
		p.log.Failure("%s", s)
		ok = false
	}
	return ok, nil
}

// processResults parses a report and records its results.
func (p *Plugin) processResults(report string, format testparser.Format) (*testparser.ResultSet, error) {
	if _, err := os.Stat(report); err != nil {
		return nil, ciplugerrors.Configf("log output file does not exist: %s", report)
	}

	parser, err := testparser.NewParser(format, p.build.Root)
	if err != nil {
		return nil, ciplugerrors.Wrap(err, "select report parser")
	}
	rs, err := parser.Parse(report)
	if err != nil {
		if errors.Is(err, testparser.ErrUnexpectedStatus) {
			return nil, ciplugerrors.WrapConfig(err, "parse PHPUnit report")
		}
		return nil, ciplugerrors.Format(err, "parse PHPUnit report")
	}
	for _, d := range rs.Diagnostics {
		logging.Warn("PHPUnit", "%s", d)
	}

	if err := p.meta.WriteMeta(p.build.ID, Name, MetaData, rs.Results); err != nil {
		return nil, ciplugerrors.Wrap(err, "store results")
	}
	if err := p.meta.WriteMeta(p.build.ID, Name, MetaErrors, rs.Failures); err != nil {
		return nil, ciplugerrors.Wrap(err, "store failure count")
	}

	for _, f := range rs.Errors {
		if err := p.errs.WriteError(p.buildError(f)); err != nil {
			return nil, ciplugerrors.Wrap(err, "store build error")
		}
	}
	return rs, nil
}

func (p *Plugin) buildError(f testparser.Finding) store.BuildError {
	severity := store.SeverityHigh
	if f.Severity == testparser.SeverityError {
		severity = store.SeverityCritical
	}

	message := f.Message
	if f.Name != "" && !strings.Contains(message, f.Name) {
		message = f.Name + "\n" + message
	}

	line, _ := strconv.Atoi(f.Line)
	return store.BuildError{
		BuildID:   p.build.ID,
		Plugin:    Name,
		Message:   message,
		Severity:  severity,
		File:      f.File,
		LineStart: line,
		LineEnd:   line,
	}
}

func (p *Plugin) logSummary(c testparser.TestCounts, failures int) {
	if failures == 0 {
		p.log.Success("PHPUnit: %d tests, %d passed, %d skipped", c.Total, c.Passed, c.Skipped)
		return
	}
	p.log.Failure("PHPUnit: %d tests, %d passed, %d failed, %d skipped", c.Total, c.Passed, c.Failed, c.Skipped)
}

func (p *Plugin) workDir() string {
	return p.build.Path(p.options.RunFrom())
}

func (p *Plugin) newReportFile() (string, error) {
	f, err := os.CreateTemp(p.reportDir, reportPrefix+"*")
	if err != nil {
		return "", err
	}
	return f.Name(), f.Close()
}

// ensureWritable creates dir if needed and checks that files can be
// created in it.
func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ciplugerrors.Environmentf("the location %s is not writable or does not exist: %v", dir, err)
	}
	f, err := os.CreateTemp(dir, ".ciplug-*")
	if err != nil {
		return ciplugerrors.Environmentf("the location %s is not writable or does not exist: %v", dir, err)
	}
	f.Close()
	return os.Remove(f.Name())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

type nopLog struct{}

func (nopLog) Info(string, ...interface{})    {}
func (nopLog) Success(string, ...interface{}) {}
func (nopLog) Failure(string, ...interface{}) {}
func (nopLog) Warning(string, ...interface{}) {}
