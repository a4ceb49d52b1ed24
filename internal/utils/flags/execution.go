// Package flags provides shared flag helpers for the CLI commands.
package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without making changes"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// BindExecutionFlags attaches the shared --dry-run and --yes flags to the
// command's persistent flag set so subcommands inherit them.
func BindExecutionFlags(command *cobra.Command) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()
	persistentFlagSet.Bool(DryRunFlagName, false, DryRunFlagUsage)
	persistentFlagSet.BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, false, AssumeYesFlagUsage)
}
