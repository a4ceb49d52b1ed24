package flags

import "github.com/spf13/cobra"

// ResolveBoolFlag reads a boolean flag from the command, consulting inherited
// flags when the command does not declare the flag itself.
func ResolveBoolFlag(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	if command.Flags().Lookup(flagName) != nil {
		if flagValue, flagError := command.Flags().GetBool(flagName); flagError == nil {
			return flagValue
		}
	}
	if command.InheritedFlags().Lookup(flagName) != nil {
		if flagValue, flagError := command.InheritedFlags().GetBool(flagName); flagError == nil {
			return flagValue
		}
	}

	return false
}

// ResolveDryRun reports whether the shared dry-run flag is enabled.
func ResolveDryRun(command *cobra.Command) bool {
	return ResolveBoolFlag(command, DryRunFlagName)
}

// ResolveAssumeYes reports whether the shared assume-yes flag is enabled.
func ResolveAssumeYes(command *cobra.Command) bool {
	return ResolveBoolFlag(command, AssumeYesFlagName)
}
