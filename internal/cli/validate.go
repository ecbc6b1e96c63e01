package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario-file>",
		Short: "Validate a scenario file without running it",
		Long: `Validate a scenario YAML file.

Checks resource bounds, duplicate names, binding references, processing
times, and the critical/target designations. All violations are
reported, not just the first.

Example:
  voyager validate ./voyage.yaml
  voyager validate ./voyage.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenario(opts, args[0], cmd)
		},
	}

	return cmd
}

func validateScenario(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	sc, err := scenario.Load(path)
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitFailure, "scenario validation failed", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]any{
			"scenario":  sc.Name,
			"resources": len(sc.Resources),
			"units":     len(sc.Units),
		})
	}
	return out.Success(fmt.Sprintf("scenario %q is valid: %d resources, %d units", sc.Name, len(sc.Resources), len(sc.Units)))
}
