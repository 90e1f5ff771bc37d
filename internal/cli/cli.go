// Package cli provides the ciplug command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/ciplug/internal/build"
	"github.com/AndreyAkinshin/ciplug/internal/config"
	"github.com/AndreyAkinshin/ciplug/internal/errors"
	"github.com/AndreyAkinshin/ciplug/internal/logging"
	"github.com/AndreyAkinshin/ciplug/internal/output"
)

// Version is set at build time.
var Version = "dev"

// out is the shared build log writer for CLI commands.
var out = output.New()

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	ConfigSet  bool // --config was given explicitly
	Quiet      bool
	Verbose    bool
	Timeout    time.Duration
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		out.Errorln("ciplug: %v", err)
		return errors.GetExitCode(err)
	}
	return errors.ExitSuccess
}

func newRootCmd() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "ciplug",
		Short: "Run PHPUnit as a build step and record its results",
		Long: `ciplug runs PHPUnit for a build, parses its JSON or JUnit report,
stores failures and metadata for the build, and optionally gates the build
on code coverage.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigSet = cmd.Flags().Changed("config")
			return applyGlobalOptions(opts)
		},
	}
	root.SetVersionTemplate(`{{printf "ciplug %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFile, "configuration file")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "only print failures and warnings")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print diagnostic logs to stderr")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "abort PHPUnit runs after this duration (0 disables)")

	root.AddCommand(
		newRunCmd(opts),
		newParseCmd(),
		newProbeCmd(opts),
		newArgsCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func applyGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return errors.Config("--quiet and --verbose cannot be used together")
	}
	out.SetQuiet(opts.Quiet)
	if opts.Verbose {
		logging.Init(logging.LevelDebug, os.Stderr)
	}
	return nil
}

// withTimeout bounds ctx by the --timeout flag.
func withTimeout(ctx context.Context, opts *GlobalOptions) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// configPath returns the --config value, or the nearest DefaultFile found
// by walking up from the working directory when the flag was not set.
func configPath(opts *GlobalOptions) (string, error) {
	if opts.ConfigSet {
		return opts.ConfigPath, nil
	}
	path, err := config.Find()
	if err != nil {
		return "", err
	}
	logging.Debug("CLI", "using configuration %s", path)
	return path, nil
}

// loadConfig loads, validates, and applies defaults to the configuration
// file. Warnings are printed to the build log.
func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	path, err := configPath(opts)
	if err != nil {
		return nil, errors.WrapConfig(err, "locate configuration")
	}

	cfg, warnings, err := config.LoadAndValidate(path)
	for _, w := range warnings {
		out.Warning("%s", w)
	}
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.WrapConfig(err, path)
	}
	return cfg, nil
}

// loadBuild returns the configured build and plugin options. Without any
// configuration file, the working directory is the build root and no
// options are set.
func loadBuild(opts *GlobalOptions) (*build.Build, config.PluginOptions, error) {
	if _, err := configPath(opts); stderrors.Is(err, config.ErrNoConfig) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, errors.Environmentf("determine working directory: %v", err)
		}
		logging.Debug("CLI", "no %s found, using %s as build root", config.DefaultFile, wd)
		return build.New(wd), config.PluginOptions{}, nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	return build.FromConfig(cfg.Build), cfg.PHPUnit, nil
}

func printWarnings(prefix string, warnings []string) {
	for _, w := range warnings {
		out.Warning("%s: %s", prefix, w)
	}
}

func formatCount(n int) string {
	return fmt.Sprintf("%d", n)
}
