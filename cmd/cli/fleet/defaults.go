package fleet

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/packagemanager"
	flagutils "github.com/temirov/depbump/internal/utils/flags"
)

const (
	setManagerUseConstant                  = "set-package-manager <manager>"
	setManagerShortDescriptionConstant     = "Set the fallback package manager for repositories without a lockfile"
	setManagerDescriptionConstant          = "fallback package manager"
	setManagerConfirmationTemplateConstant = "Default package manager set to %s.\n"
	setMessageUseConstant                  = "set-commit-message <message>"
	setMessageShortDescriptionConstant     = "Set the default commit message for dependency updates"
	setMessageLongDescriptionConstant      = "set-commit-message stores the commit message used when the update command runs without --message. A blank message restores the built-in default."
	setterExpectedArgumentCountConstant    = 1
	setMessageConfirmationTemplateConstant = "Default commit message set to %q.\n"
)

// SetPackageManagerCommandBuilder assembles the fleet set-package-manager command.
type SetPackageManagerCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the fleet set-package-manager command.
func (builder *SetPackageManagerCommandBuilder) Build() (*cobra.Command, error) {
	managerChoices := []string{
		string(packagemanager.ManagerNpm),
		string(packagemanager.ManagerYarn),
		string(packagemanager.ManagerPnpm),
	}

	command := &cobra.Command{
		Use:   setManagerUseConstant,
		Short: setManagerShortDescriptionConstant,
		Long:  flagutils.FormatChoiceUsage(string(packagemanager.ManagerNpm), managerChoices, setManagerDescriptionConstant),
		Args:  cobra.ExactArgs(setterExpectedArgumentCountConstant),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *SetPackageManagerCommandBuilder) run(command *cobra.Command, arguments []string) error {
	parsedManager, parseError := packagemanager.ParseManager(arguments[0])
	if parseError != nil {
		return parseError
	}

	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	if _, setError := store.SetDefaultPackageManager(parsedManager); setError != nil {
		return setError
	}

	fmt.Fprintf(command.OutOrStdout(), setManagerConfirmationTemplateConstant, parsedManager)
	return nil
}

// SetCommitMessageCommandBuilder assembles the fleet set-commit-message command.
type SetCommitMessageCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the fleet set-commit-message command.
func (builder *SetCommitMessageCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   setMessageUseConstant,
		Short: setMessageShortDescriptionConstant,
		Long:  setMessageLongDescriptionConstant,
		Args:  cobra.ExactArgs(setterExpectedArgumentCountConstant),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *SetCommitMessageCommandBuilder) run(command *cobra.Command, arguments []string) error {
	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	updatedConfiguration, setError := store.SetDefaultCommitMessage(strings.TrimSpace(arguments[0]))
	if setError != nil {
		return setError
	}

	fmt.Fprintf(command.OutOrStdout(), setMessageConfirmationTemplateConstant, updatedConfiguration.DefaultCommitMessage)
	return nil
}
