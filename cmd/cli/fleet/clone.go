package fleet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/gitrepo"
	flagutils "github.com/temirov/depbump/internal/utils/flags"
)

const (
	cloneUseConstant                   = "clone <remote-url>"
	cloneShortDescriptionConstant      = "Clone a repository and optionally add it to the fleet"
	cloneLongDescriptionConstant       = "clone checks out a remote repository into the output directory and can register the clone in the fleet configuration."
	cloneExpectedArgumentCountConstant = 1
	cloneOutputFlagNameConstant        = "output"
	cloneOutputFlagUsageConstant       = "Directory to clone into (defaults to the repository name)."
	cloneAddFlagNameConstant           = "add"
	cloneAddFlagUsageConstant          = "Add the cloned repository to the fleet"
	cloneConfirmationTemplateConstant  = "Cloned %s into %s.\n"
	cloneAddedTemplateConstant         = "Added %s to the fleet.\n"
	blankRemoteURLMessageConstant      = "remote URL must not be blank"
)

// CloneCommandBuilder assembles the fleet clone command.
type CloneCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
	GitExecutor             gitrepo.GitExecutor
}

// Build constructs the fleet clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	var outputFlagValue string
	var addFlagValue bool

	command := &cobra.Command{
		Use:   cloneUseConstant,
		Short: cloneShortDescriptionConstant,
		Long:  cloneLongDescriptionConstant,
		Args:  cobra.ExactArgs(cloneExpectedArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, outputFlagValue, addFlagValue)
		},
	}

	command.Flags().StringVar(&outputFlagValue, cloneOutputFlagNameConstant, "", cloneOutputFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &addFlagValue, cloneAddFlagNameConstant, "", false, cloneAddFlagUsageConstant)

	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, arguments []string, outputFlagValue string, addFlagValue bool) error {
	remoteURL := strings.TrimSpace(arguments[0])
	if len(remoteURL) == 0 {
		return errors.New(blankRemoteURLMessageConstant)
	}

	targetPath, targetError := resolveCloneTarget(remoteURL, outputFlagValue)
	if targetError != nil {
		return targetError
	}

	repositoryManager, managerError := builder.resolveRepositoryManager(command)
	if managerError != nil {
		return managerError
	}

	if cloneError := repositoryManager.CloneRepository(command.Context(), remoteURL, targetPath); cloneError != nil {
		return cloneError
	}
	fmt.Fprintf(command.OutOrStdout(), cloneConfirmationTemplateConstant, remoteURL, targetPath)

	if !addFlagValue {
		return nil
	}

	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}
	if _, addError := store.AddRepository(targetPath, remoteURL); addError != nil {
		return addError
	}
	fmt.Fprintf(command.OutOrStdout(), cloneAddedTemplateConstant, targetPath)

	return nil
}

func resolveCloneTarget(remoteURL string, outputFlagValue string) (string, error) {
	trimmedOutput := strings.TrimSpace(outputFlagValue)
	if len(trimmedOutput) > 0 {
		return trimmedOutput, nil
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", parseError
	}
	return filepath.Clean(parsedRemote.Repository), nil
}

func (builder *CloneCommandBuilder) resolveRepositoryManager(command *cobra.Command) (*gitrepo.RepositoryManager, error) {
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
