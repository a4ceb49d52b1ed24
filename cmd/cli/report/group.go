// Package report assembles the read-only commands that inspect dependency state across the fleet.
package report

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/fleet"
)

const (
	groupUseConstant              = "report"
	groupShortDescriptionConstant = "Inspect dependency versions across the fleet"
	groupLongDescriptionConstant  = "report groups read-only subcommands that compare and list dependency declarations without modifying any repository."
)

// LoggerProvider supplies the logger shared across report subcommands.
type LoggerProvider func() *zap.Logger

// CommandGroupBuilder assembles the report command group.
type CommandGroupBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the report command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	compareBuilder := CompareCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store}
	compareCommand, compareError := compareBuilder.Build()
	if compareError == nil {
		command.AddCommand(compareCommand)
	}

	packagesBuilder := PackagesCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store}
	packagesCommand, packagesError := packagesBuilder.Build()
	if packagesError == nil {
		command.AddCommand(packagesCommand)
	}

	return command, nil
}

func resolveStore(existingStore *fleet.Store, configPathProvider func() string) (*fleet.Store, error) {
	configurationPath := ""
	if configPathProvider != nil {
		configurationPath = configPathProvider()
	}
	return dependencies.ResolveFleetStore(existingStore, configurationPath)
}
