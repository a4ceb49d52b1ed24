// Package fleet assembles the commands that manage the configured repository fleet.
package fleet

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/gitrepo"
)

const (
	groupUseConstant              = "fleet"
	groupShortDescriptionConstant = "Manage the repositories targeted by dependency updates"
	groupLongDescriptionConstant  = "fleet groups subcommands that add, remove, inspect, and configure the repositories dependency updates run against."
)

// LoggerProvider supplies the logger shared across fleet subcommands.
type LoggerProvider func() *zap.Logger

// CommandGroupBuilder assembles the fleet command group.
type CommandGroupBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
	GitExecutor             gitrepo.GitExecutor
}

// Build constructs the fleet command hierarchy.
func (builder *CommandGroupBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	addBuilder := AddCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store, GitExecutor: builder.GitExecutor}
	addCommand, addError := addBuilder.Build()
	if addError == nil {
		command.AddCommand(addCommand)
	}

	removeBuilder := RemoveCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store}
	removeCommand, removeError := removeBuilder.Build()
	if removeError == nil {
		command.AddCommand(removeCommand)
	}

	listBuilder := ListCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store, GitExecutor: builder.GitExecutor}
	listCommand, listError := listBuilder.Build()
	if listError == nil {
		command.AddCommand(listCommand)
	}

	cloneBuilder := CloneCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store, GitExecutor: builder.GitExecutor}
	cloneCommand, cloneError := cloneBuilder.Build()
	if cloneError == nil {
		command.AddCommand(cloneCommand)
	}

	managerBuilder := SetPackageManagerCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store}
	managerCommand, managerError := managerBuilder.Build()
	if managerError == nil {
		command.AddCommand(managerCommand)
	}

	messageBuilder := SetCommitMessageCommandBuilder{LoggerProvider: builder.LoggerProvider, FleetConfigPathProvider: builder.FleetConfigPathProvider, Store: builder.Store}
	messageCommand, messageError := messageBuilder.Build()
	if messageError == nil {
		command.AddCommand(messageCommand)
	}

	return command, nil
}

func resolveLogger(loggerProvider LoggerProvider) *zap.Logger {
	if loggerProvider == nil {
		return zap.NewNop()
	}
	loggerInstance := loggerProvider()
	if loggerInstance == nil {
		return zap.NewNop()
	}
	return loggerInstance
}

func resolveStore(existingStore *fleet.Store, configPathProvider func() string) (*fleet.Store, error) {
	configurationPath := ""
	if configPathProvider != nil {
		configurationPath = configPathProvider()
	}
	return dependencies.ResolveFleetStore(existingStore, configurationPath)
}
