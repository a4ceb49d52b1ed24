// Package update assembles the dependency update command.
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/dependencies"
	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/fleet"
	updateservice "github.com/temirov/depbump/internal/update"
	flagutils "github.com/temirov/depbump/internal/utils/flags"
)

const (
	commandUseConstant                      = "update <package> <version>"
	commandShortDescriptionConstant         = "Update a dependency across every configured repository"
	commandLongDescriptionConstant          = "update rewrites the dependency's version in each configured repository's manifest, refreshes the lockfile, and pushes the change on a dedicated branch."
	commandExpectedArgumentCountConstant    = 2
	packageNameArgumentIndexConstant        = 0
	requestedVersionArgumentIndexConstant   = 1
	messageFlagNameConstant                 = "message"
	messageFlagUsageConstant                = "Commit message for the update commit."
	pullRequestFlagNameConstant             = "pull-request"
	pullRequestFlagUsageConstant            = "Open a pull request for each pushed branch"
	blankPackageNameMessageConstant         = "package name must not be blank"
	blankVersionMessageConstant             = "version must not be blank"
	defaultCommitMessageTemplateConstant    = "chore: update %s to %s"
	summaryTemplateConstant                 = "Processed %d repositories: %d updated, %d unchanged, %d failed.\n"
	summaryAbortedNoticeConstant            = "Run aborted before the remaining repositories were processed.\n"
	authenticationPreflightTemplateConstant = "github cli authentication check failed: %w"
	configurationDryRunKeySuffixConstant    = ".dry_run"
	configurationAssumeYesKeySuffixConstant = ".assume_yes"
	configurationDraftKeySuffixConstant     = ".draft_prs"
)

// CommandConfiguration captures persisted settings for the update command.
type CommandConfiguration struct {
	DryRun            bool `mapstructure:"dry_run"`
	AssumeYes         bool `mapstructure:"assume_yes"`
	DraftPullRequests bool `mapstructure:"draft_prs"`
}

// DefaultConfigurationValues exposes baseline configuration for the update command.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationDryRunKeySuffixConstant:    false,
		configurationKeyPrefix + configurationAssumeYesKeySuffixConstant: false,
		configurationKeyPrefix + configurationDraftKeySuffixConstant:     false,
	}
}

// CommandBuilder assembles the update command with its collaborators.
type CommandBuilder struct {
	LoggerProvider          func() *zap.Logger
	ConfigurationProvider   func() CommandConfiguration
	FleetConfigPathProvider func() string
	Executor                *execshell.ShellExecutor
	FleetStore              *fleet.Store
	RepositoryUpdater       updateservice.RepositoryUpdater
}

// Build constructs the update command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var commitMessageFlagValue string
	var pullRequestFlagValue bool

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(commandExpectedArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, commitMessageFlagValue, pullRequestFlagValue)
		},
	}

	command.Flags().StringVar(&commitMessageFlagValue, messageFlagNameConstant, "", messageFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &pullRequestFlagValue, pullRequestFlagNameConstant, "", false, pullRequestFlagUsageConstant)
	flagutils.BindExecutionFlags(command)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, commitMessageFlagValue string, pullRequestFlagValue bool) error {
	packageName := strings.TrimSpace(arguments[packageNameArgumentIndexConstant])
	if len(packageName) == 0 {
		return errors.New(blankPackageNameMessageConstant)
	}
	requestedVersion := strings.TrimSpace(arguments[requestedVersionArgumentIndexConstant])
	if len(requestedVersion) == 0 {
		return errors.New(blankVersionMessageConstant)
	}

	configuration := builder.resolveConfiguration()
	dryRun := configuration.DryRun || flagutils.ResolveDryRun(command)
	assumeYes := configuration.AssumeYes || flagutils.ResolveAssumeYes(command)

	executionMode := execshell.ExecutionModeLive
	if dryRun {
		executionMode = execshell.ExecutionModeSimulate
	}

	commitMessage := strings.TrimSpace(commitMessageFlagValue)
	if len(commitMessage) == 0 {
		commitMessage = fmt.Sprintf(defaultCommitMessageTemplateConstant, packageName, requestedVersion)
	}

	logger := builder.resolveLogger()
	outputWriter := command.OutOrStdout()

	fleetStore, storeError := dependencies.ResolveFleetStore(builder.FleetStore, builder.resolveFleetConfigPath())
	if storeError != nil {
		return storeError
	}
	fleetConfiguration, loadError := fleetStore.Load()
	if loadError != nil {
		return loadError
	}

	repositoryUpdater, authenticationChecker, updaterError := builder.resolveRepositoryUpdater(logger, executionMode, outputWriter)
	if updaterError != nil {
		return updaterError
	}

	if pullRequestFlagValue && !dryRun && authenticationChecker != nil {
		authenticationError := authenticationChecker.CheckAuthentication(command.Context())
		if authenticationError != nil {
			return fmt.Errorf(authenticationPreflightTemplateConstant, authenticationError)
		}
	}

	continuationDecider := builder.resolveContinuationDecider(command, assumeYes)

	orchestrator, orchestratorError := updateservice.NewOrchestrator(updateservice.OrchestratorDependencies{
		Logger:              logger,
		RepositoryUpdater:   repositoryUpdater,
		ContinuationDecider: continuationDecider,
		Output:              outputWriter,
	})
	if orchestratorError != nil {
		return orchestratorError
	}

	repositoryPaths := make([]string, 0, len(fleetConfiguration.Repositories))
	for _, repositoryReference := range fleetConfiguration.Repositories {
		repositoryPaths = append(repositoryPaths, repositoryReference.Path)
	}

	requestTemplate := updateservice.Request{
		PackageName:       packageName,
		RequestedVersion:  requestedVersion,
		CommitMessage:     commitMessage,
		CreatePullRequest: pullRequestFlagValue,
		PullRequestDraft:  configuration.DraftPullRequests,
		DefaultManager:    fleetConfiguration.DefaultPackageManager,
	}

	summary, runError := orchestrator.Run(command.Context(), repositoryPaths, requestTemplate)
	if runError != nil {
		return runError
	}

	if summary.Processed > 0 {
		fmt.Fprintf(outputWriter, summaryTemplateConstant, summary.Processed, summary.Updated, summary.NoOps, len(summary.Failures))
	}
	if summary.Aborted {
		fmt.Fprint(outputWriter, summaryAbortedNoticeConstant)
	}

	return nil
}

// authenticationChecker is satisfied by githubcli.Client and gates pull
// request runs on valid GitHub CLI credentials.
type authenticationChecker interface {
	CheckAuthentication(executionContext context.Context) error
}

func (builder *CommandBuilder) resolveRepositoryUpdater(logger *zap.Logger, executionMode execshell.ExecutionMode, outputWriter io.Writer) (updateservice.RepositoryUpdater, authenticationChecker, error) {
	if builder.RepositoryUpdater != nil {
		return builder.RepositoryUpdater, nil, nil
	}

	shellExecutor, executorError := dependencies.ResolveShellExecutor(builder.Executor, logger)
	if executorError != nil {
		return nil, nil, executorError
	}

	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, shellExecutor, executionMode, outputWriter)
	if managerError != nil {
		return nil, nil, managerError
	}

	installRunner, installRunnerError := dependencies.ResolveInstallRunner(nil, shellExecutor, executionMode, outputWriter)
	if installRunnerError != nil {
		return nil, nil, installRunnerError
	}

	githubClient, githubClientError := dependencies.ResolveGitHubClient(nil, shellExecutor, executionMode, outputWriter)
	if githubClientError != nil {
		return nil, nil, githubClientError
	}

	workflowService, serviceError := updateservice.NewService(updateservice.ServiceDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		ManifestEditor:    dependencies.ResolveManifestEditor(nil, executionMode, outputWriter),
		InstallRunner:     installRunner,
		PullRequestClient: githubClient,
		Output:            outputWriter,
	})
	if serviceError != nil {
		return nil, nil, serviceError
	}

	return workflowService, githubClient, nil
}

func (builder *CommandBuilder) resolveContinuationDecider(command *cobra.Command, assumeYes bool) updateservice.ContinuationDecider {
	if assumeYes {
		return updateservice.AlwaysContinueDecider{}
	}
	return updateservice.NewIOContinuationDecider(command.InOrStdin(), command.OutOrStdout())
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveFleetConfigPath() string {
	if builder.FleetConfigPathProvider == nil {
		return ""
	}
	return builder.FleetConfigPathProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	loggerInstance := builder.LoggerProvider()
	if loggerInstance == nil {
		return zap.NewNop()
	}
	return loggerInstance
}
