package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/ciplug/internal/build"
	"github.com/AndreyAkinshin/ciplug/internal/errors"
	"github.com/AndreyAkinshin/ciplug/internal/phpunit"
	"github.com/AndreyAkinshin/ciplug/internal/runner"
	"github.com/AndreyAkinshin/ciplug/internal/store"
)

type runOptions struct {
	buildID string
	branch  string
	stream  bool
}

func newRunCmd(global *GlobalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run PHPUnit for the configured build",
		Long: `Run PHPUnit once per configured test directory, or once per PHPUnit
configuration file, and record failures, results, and coverage in the
build store. The command fails when any test fails or a coverage
requirement is not met.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if opts.buildID != "" {
				cfg.Build.ID = opts.buildID
			}
			if opts.branch != "" {
				cfg.Build.Branch = opts.branch
			}

			b := build.FromConfig(cfg.Build)
			sink := store.NewFileStore(cfg.Build.Store)
			shell := runner.NewShell()
			if opts.stream && !global.Quiet {
				shell.Stream = cmd.OutOrStdout()
			}

			plugin, err := phpunit.New(b, cfg.PHPUnit, phpunit.Deps{
				Executor: shell,
				Errors:   sink,
				Meta:     sink,
				Log:      out,
			})
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), global)
			defer cancel()
			return executePlugin(ctx, plugin, b, sink.BuildDir(b.ID))
		},
	}

	cmd.Flags().StringVar(&opts.buildID, "build-id", "", "build id (overrides build.id)")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "branch name (overrides build.branch)")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "stream PHPUnit output while it runs")
	return cmd
}

// pluginRunner is the part of the plugin used by executePlugin.
type pluginRunner interface {
	Execute(ctx context.Context) (bool, error)
}

func executePlugin(ctx context.Context, p pluginRunner, b *build.Build, storeDir string) error {
	out.PluginStart(phpunit.Name, "test")

	ok, err := p.Execute(ctx)
	if err != nil {
		out.PluginFailed(phpunit.Name, "test", err)
		return err
	}
	if !ok {
		out.FinalFailure("Build %s failed", b.ID)
		out.Hint("Results: %s", storeDir)
		return errors.PluginFailure(phpunit.Name, "test", "tests failed")
	}

	out.PluginSuccess(phpunit.Name, "test")
	out.FinalSuccess("Build %s passed", b.ID)
	out.Hint("Results: %s", storeDir)
	return nil
}
