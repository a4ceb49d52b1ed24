package fleet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/gitrepo"
	"github.com/temirov/depbump/internal/packagemanager"
)

const (
	listUseConstant                = "list"
	listShortDescriptionConstant   = "List configured repositories with their status"
	listLongDescriptionConstant    = "list prints every configured repository with its current branch, worktree state, and detected package manager."
	listEmptyFleetNoticeConstant   = "No repositories configured in %s.\n"
	listEntryTemplateConstant      = "%s\tbranch=%s\tworktree=%s\tmanager=%s\n"
	worktreeCleanLabelConstant     = "clean"
	worktreeDirtyLabelConstant     = "dirty"
	statusUnavailableLabelConstant = "unavailable"
	managerUnknownLabelConstant    = "unknown"
)

// ListCommandBuilder assembles the fleet list command.
type ListCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
	GitExecutor             gitrepo.GitExecutor
}

// Build constructs the fleet list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	configuration, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	if len(configuration.Repositories) == 0 {
		fmt.Fprintf(command.OutOrStdout(), listEmptyFleetNoticeConstant, store.ConfigurationPath())
		return nil
	}

	repositoryManager, managerError := builder.resolveRepositoryManager(command)
	if managerError != nil {
		return managerError
	}

	for _, repositoryReference := range configuration.Repositories {
		branchLabel := statusUnavailableLabelConstant
		if currentBranch, branchError := repositoryManager.GetCurrentBranch(command.Context(), repositoryReference.Path); branchError == nil {
			branchLabel = currentBranch
		}

		worktreeLabel := statusUnavailableLabelConstant
		if worktreeClean, worktreeError := repositoryManager.CheckCleanWorktree(command.Context(), repositoryReference.Path); worktreeError == nil {
			worktreeLabel = worktreeDirtyLabelConstant
			if worktreeClean {
				worktreeLabel = worktreeCleanLabelConstant
			}
		}

		managerLabel := managerUnknownLabelConstant
		if detectedManager, managerDetected := packagemanager.DetectManager(repositoryReference.Path); managerDetected {
			managerLabel = string(detectedManager)
		}

		fmt.Fprintf(command.OutOrStdout(), listEntryTemplateConstant, repositoryReference.Path, branchLabel, worktreeLabel, managerLabel)
	}

	return nil
}

func (builder *ListCommandBuilder) resolveRepositoryManager(command *cobra.Command) (*gitrepo.RepositoryManager, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := dependencies.ResolveShellExecutor(nil, resolveLogger(builder.LoggerProvider))
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}
	return dependencies.ResolveRepositoryManager(nil, gitExecutor, execshell.ExecutionModeLive, command.OutOrStdout())
}
