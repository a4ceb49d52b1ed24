package fleet

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/gitrepo"
)

const (
	addUseConstant                   = "add <path>"
	addShortDescriptionConstant      = "Add a repository to the fleet"
	addLongDescriptionConstant       = "add registers a local git repository so dependency updates include it."
	addExpectedArgumentCountConstant = 1
	addConfirmationTemplateConstant  = "Added %s to the fleet (%d repositories configured).\n"
	originRemoteNameConstant         = "origin"
)

// AddCommandBuilder assembles the fleet add command.
type AddCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
	GitExecutor             gitrepo.GitExecutor
}

// Build constructs the fleet add command.
func (builder *AddCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   addUseConstant,
		Short: addShortDescriptionConstant,
		Long:  addLongDescriptionConstant,
		Args:  cobra.ExactArgs(addExpectedArgumentCountConstant),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *AddCommandBuilder) run(command *cobra.Command, arguments []string) error {
	repositoryPath := strings.TrimSpace(arguments[0])

	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	remoteURL := builder.lookupRemoteURL(command, repositoryPath)

	configuration, addError := store.AddRepository(repositoryPath, remoteURL)
	if addError != nil {
		return addError
	}

	fmt.Fprintf(command.OutOrStdout(), addConfirmationTemplateConstant, repositoryPath, len(configuration.Repositories))
	return nil
}

// lookupRemoteURL records the origin remote alongside the path when it can be
// resolved. A repository without an origin remote is still added.
func (builder *AddCommandBuilder) lookupRemoteURL(command *cobra.Command, repositoryPath string) string {
	logger := resolveLogger(builder.LoggerProvider)

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := dependencies.ResolveShellExecutor(nil, logger)
		if executorError != nil {
			return ""
		}
		gitExecutor = shellExecutor
	}

	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, gitExecutor, execshell.ExecutionModeLive, command.OutOrStdout())
	if managerError != nil {
		return ""
	}

	remoteURL, remoteError := repositoryManager.GetRemoteURL(command.Context(), repositoryPath, originRemoteNameConstant)
	if remoteError != nil {
		return ""
	}
	return canonicalizeRemoteURL(remoteURL)
}

// canonicalizeRemoteURL normalizes parseable remotes so the stored value is
// stable across equivalent spellings. Unparseable remotes are stored as-is.
func canonicalizeRemoteURL(remoteURL string) string {
	structuredRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return strings.TrimSpace(remoteURL)
	}
	formattedRemote, formatError := gitrepo.FormatRemoteURL(structuredRemote)
	if formatError != nil {
		return strings.TrimSpace(remoteURL)
	}
	return formattedRemote
}
