package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/githubcli"
	"github.com/temirov/depbump/internal/gitrepo"
	"github.com/temirov/depbump/internal/manifest"
	"github.com/temirov/depbump/internal/packagemanager"
)

const (
	workingBranchPrefixConstant              = "update-"
	workingBranchSeparatorConstant           = "-"
	rangeOperatorCaretConstant               = "^"
	rangeOperatorTildeConstant               = "~"
	loggerRequiredMessageConstant            = "update service logger not configured"
	repositoryManagerRequiredMessageConstant = "update service repository manager not configured"
	manifestEditorRequiredMessageConstant    = "update service manifest editor not configured"
	installRunnerRequiredMessageConstant     = "update service install runner not configured"
	packageManagerUnresolvedTemplateConstant = "unable to resolve package manager for %s: no lockfile found and no default configured"
	commitSkippedNoticeTemplateConstant      = "Nothing to commit in %s\n"
	pullRequestWarningTemplateConstant       = "Warning: pull request for %s failed: %v\n"
	pullRequestFailedMessageConstant         = "pull request creation failed"
	pullRequestBodyTemplateConstant          = "Updates %s to %s."
	branchRestoreWarningMessageConstant      = "failed to restore original branch"
	updateAppliedMessageConstant             = "dependency update applied"
	updateNoOpMessageConstant                = "dependency not declared or already at requested version"
	logFieldRepositoryConstant               = "repository"
	logFieldPackageConstant                  = "package"
	logFieldVersionConstant                  = "version"
	logFieldBranchConstant                   = "branch"
	logFieldPullRequestURLConstant           = "pull_request_url"
	updateStatusUpdatedStringConstant        = "updated"
	updateStatusNoOpStringConstant           = "no-op"
)

// Validation errors for service construction.
var (
	ErrLoggerNotConfigured            = errors.New(loggerRequiredMessageConstant)
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerRequiredMessageConstant)
	ErrManifestEditorNotConfigured    = errors.New(manifestEditorRequiredMessageConstant)
	ErrInstallRunnerNotConfigured     = errors.New(installRunnerRequiredMessageConstant)
)

// UpdateStatus identifies how a repository run concluded.
type UpdateStatus string

// Update statuses.
const (
	UpdateStatusUpdated UpdateStatus = UpdateStatus(updateStatusUpdatedStringConstant)
	UpdateStatusNoOp    UpdateStatus = UpdateStatus(updateStatusNoOpStringConstant)
)

// RepositoryManager exposes the git operations the workflow requires.
type RepositoryManager interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	StageFiles(executionContext context.Context, repositoryPath string, candidateFiles []string) ([]string, error)
	Commit(executionContext context.Context, repositoryPath string, commitMessage string) (gitrepo.CommitOutcome, error)
	Push(executionContext context.Context, repositoryPath string, branchName string) error
}

// ManifestEditor rewrites dependency declarations inside repository manifests.
type ManifestEditor interface {
	ApplyVersionEdit(repositoryPath string, dependencyName string, requestedVersion string) (manifest.VersionEditResult, error)
}

// InstallRunner refreshes lockfiles through the repository's package manager.
type InstallRunner interface {
	Install(executionContext context.Context, repositoryPath string, manager packagemanager.Manager) error
}

// PullRequestClient opens pull requests for pushed update branches.
type PullRequestClient interface {
	CreatePullRequest(executionContext context.Context, options githubcli.PullRequestOptions) (string, error)
}

// ServiceDependencies bundles the collaborators required by Service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	ManifestEditor    ManifestEditor
	InstallRunner     InstallRunner
	PullRequestClient PullRequestClient
	Output            io.Writer
}

// Request describes one repository update invocation.
type Request struct {
	RepositoryPath    string
	PackageName       string
	RequestedVersion  string
	CommitMessage     string
	CreatePullRequest bool
	PullRequestDraft  bool
	DefaultManager    packagemanager.Manager
}

// Outcome reports the result of one repository update.
type Outcome struct {
	RepositoryPath string
	Status         UpdateStatus
	BranchName     string
	PullRequestURL string
}

// Service executes the dependency update workflow for a single repository.
type Service struct {
	logger            *zap.Logger
	repositoryManager RepositoryManager
	manifestEditor    ManifestEditor
	installRunner     InstallRunner
	pullRequestClient PullRequestClient
	output            io.Writer
}

// NewService constructs a Service after validating its dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.ManifestEditor == nil {
		return nil, ErrManifestEditorNotConfigured
	}
	if dependencies.InstallRunner == nil {
		return nil, ErrInstallRunnerNotConfigured
	}

	resolvedOutput := dependencies.Output
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}

	return &Service{
		logger:            dependencies.Logger,
		repositoryManager: dependencies.RepositoryManager,
		manifestEditor:    dependencies.ManifestEditor,
		installRunner:     dependencies.InstallRunner,
		pullRequestClient: dependencies.PullRequestClient,
		output:            resolvedOutput,
	}, nil
}

// DeriveBranchName builds the deterministic working branch name for an update,
// stripping range operators from the requested version.
func DeriveBranchName(packageName string, requestedVersion string) string {
	strippedVersion := strings.NewReplacer(rangeOperatorCaretConstant, "", rangeOperatorTildeConstant, "").Replace(requestedVersion)
	return workingBranchPrefixConstant + packageName + workingBranchSeparatorConstant + strippedVersion
}

// UpdateRepository drives one repository through the full update workflow.
func (service *Service) UpdateRepository(executionContext context.Context, request Request) (Outcome, error) {
	outcome := Outcome{RepositoryPath: request.RepositoryPath}

	originalBranch, originalBranchError := service.repositoryManager.GetCurrentBranch(executionContext, request.RepositoryPath)
	if originalBranchError != nil {
		return outcome, originalBranchError
	}

	workingBranch := DeriveBranchName(request.PackageName, request.RequestedVersion)
	outcome.BranchName = workingBranch

	if switchError := service.switchToWorkingBranch(executionContext, request.RepositoryPath, workingBranch); switchError != nil {
		return outcome, switchError
	}

	editResult, editError := service.manifestEditor.ApplyVersionEdit(request.RepositoryPath, request.PackageName, request.RequestedVersion)
	if editError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, editError)
	}

	if !editResult.DependencyFound || !editResult.Changed {
		service.logger.Info(
			updateNoOpMessageConstant,
			zap.String(logFieldRepositoryConstant, request.RepositoryPath),
			zap.String(logFieldPackageConstant, request.PackageName),
			zap.String(logFieldVersionConstant, request.RequestedVersion),
		)
		outcome.Status = UpdateStatusNoOp
		if restoreError := service.repositoryManager.CheckoutBranch(executionContext, request.RepositoryPath, originalBranch); restoreError != nil {
			return outcome, restoreError
		}
		return outcome, nil
	}

	resolvedManager, managerError := service.resolvePackageManager(request)
	if managerError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, managerError)
	}

	if installError := service.installRunner.Install(executionContext, request.RepositoryPath, resolvedManager); installError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, installError)
	}

	stagingCandidates := append([]string{manifest.ManifestFileName}, packagemanager.LockFileNames()...)
	if _, stagingError := service.repositoryManager.StageFiles(executionContext, request.RepositoryPath, stagingCandidates); stagingError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, stagingError)
	}

	commitOutcome, commitError := service.repositoryManager.Commit(executionContext, request.RepositoryPath, request.CommitMessage)
	if commitError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, commitError)
	}
	if commitOutcome == gitrepo.CommitOutcomeSkipped {
		fmt.Fprintf(service.output, commitSkippedNoticeTemplateConstant, request.RepositoryPath)
	}

	if pushError := service.repositoryManager.Push(executionContext, request.RepositoryPath, workingBranch); pushError != nil {
		return outcome, service.failAndRestore(executionContext, request.RepositoryPath, originalBranch, pushError)
	}

	if request.CreatePullRequest && service.pullRequestClient != nil {
		pullRequestURL, pullRequestError := service.pullRequestClient.CreatePullRequest(executionContext, githubcli.PullRequestOptions{
			RepositoryPath: request.RepositoryPath,
			BranchName:     workingBranch,
			Title:          request.CommitMessage,
			Body:           service.pullRequestBody(request),
			Draft:          request.PullRequestDraft,
		})
		if pullRequestError != nil {
			service.logger.Warn(
				pullRequestFailedMessageConstant,
				zap.String(logFieldRepositoryConstant, request.RepositoryPath),
				zap.Error(pullRequestError),
			)
			fmt.Fprintf(service.output, pullRequestWarningTemplateConstant, request.RepositoryPath, pullRequestError)
		} else {
			outcome.PullRequestURL = pullRequestURL
		}
	}

	if restoreError := service.repositoryManager.CheckoutBranch(executionContext, request.RepositoryPath, originalBranch); restoreError != nil {
		return outcome, restoreError
	}

	outcome.Status = UpdateStatusUpdated
	service.logger.Info(
		updateAppliedMessageConstant,
		zap.String(logFieldRepositoryConstant, request.RepositoryPath),
		zap.String(logFieldPackageConstant, request.PackageName),
		zap.String(logFieldVersionConstant, request.RequestedVersion),
		zap.String(logFieldBranchConstant, workingBranch),
		zap.String(logFieldPullRequestURLConstant, outcome.PullRequestURL),
	)

	return outcome, nil
}

func (service *Service) switchToWorkingBranch(executionContext context.Context, repositoryPath string, workingBranch string) error {
	branchExists, existenceError := service.repositoryManager.BranchExists(executionContext, repositoryPath, workingBranch)
	if existenceError != nil {
		return existenceError
	}

	if !branchExists {
		if createError := service.repositoryManager.CreateBranch(executionContext, repositoryPath, workingBranch); createError != nil {
			return createError
		}
	}

	return service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, workingBranch)
}

func (service *Service) resolvePackageManager(request Request) (packagemanager.Manager, error) {
	if detectedManager, managerDetected := packagemanager.DetectManager(request.RepositoryPath); managerDetected {
		return detectedManager, nil
	}
	if len(request.DefaultManager) > 0 {
		return request.DefaultManager, nil
	}
	return packagemanager.Manager(""), fmt.Errorf(packageManagerUnresolvedTemplateConstant, request.RepositoryPath)
}

func (service *Service) pullRequestBody(request Request) string {
	return fmt.Sprintf(pullRequestBodyTemplateConstant, request.PackageName, request.RequestedVersion)
}

// failAndRestore attempts to put the repository back on its original branch
// before surfacing the workflow error. The workflow error always wins.
func (service *Service) failAndRestore(executionContext context.Context, repositoryPath string, originalBranch string, workflowError error) error {
	if restoreError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, originalBranch); restoreError != nil {
		service.logger.Warn(
			branchRestoreWarningMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.String(logFieldBranchConstant, originalBranch),
			zap.Error(restoreError),
		)
	}
	return workflowError
}
