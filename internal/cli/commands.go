package cli

import (
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/ciplug/internal/phpunit"
	"github.com/AndreyAkinshin/ciplug/internal/runner"
	"github.com/AndreyAkinshin/ciplug/internal/store"
)

func newProbeCmd(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the report format and version of the installed PHPUnit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := loadBuild(global)
			if err != nil {
				return err
			}
			plugin, err := phpunit.New(b, opts, phpunit.Deps{
				Executor: runner.NewShell(),
				Meta:     store.NewMemory(),
			})
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd.Context(), global)
			defer cancel()
			format := plugin.Probe(ctx)

			out.Section("PHPUnit")
			out.SummaryItem("Executable", plugin.Binary())
			if v := plugin.Version(); v != nil {
				out.SummaryItem("Version", v.String())
			} else {
				out.SummaryItem("Version", "unknown")
			}
			out.SummaryItem("Report format", format.String())
			return nil
		},
	}
}

func newArgsCmd(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "args",
		Short: "Print the PHPUnit arguments derived from the configuration",
		Long: `Print the argument string passed to PHPUnit, after build variables are
interpolated. Report and per-run configuration arguments are added at run
time and are not shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := loadBuild(global)
			if err != nil {
				return err
			}
			options := phpunit.NewOptions(opts, b.Location(phpunit.Name), b.PublicArtifacts)
			out.Println("%s", b.Interpolate(options.ArgumentString()))
			return nil
		},
	}
}

func newValidateCmd(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(global); err != nil {
				return err
			}
			out.ValidationSuccess("configuration is valid")
			return nil
		},
	}
}
