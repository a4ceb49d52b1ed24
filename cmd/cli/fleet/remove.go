package fleet

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/fleet"
)

const (
	removeUseConstant                   = "remove <path>"
	removeShortDescriptionConstant      = "Remove a repository from the fleet"
	removeLongDescriptionConstant       = "remove drops a repository from the fleet configuration without touching its working tree."
	removeExpectedArgumentCountConstant = 1
	removeConfirmationTemplateConstant  = "Removed %s from the fleet (%d repositories remain).\n"
)

// RemoveCommandBuilder assembles the fleet remove command.
type RemoveCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the fleet remove command.
func (builder *RemoveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   removeUseConstant,
		Short: removeShortDescriptionConstant,
		Long:  removeLongDescriptionConstant,
		Args:  cobra.ExactArgs(removeExpectedArgumentCountConstant),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *RemoveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	repositoryPath := strings.TrimSpace(arguments[0])

	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	configuration, removeError := store.RemoveRepository(repositoryPath)
	if removeError != nil {
		return removeError
	}

	fmt.Fprintf(command.OutOrStdout(), removeConfirmationTemplateConstant, repositoryPath, len(configuration.Repositories))
	return nil
}
