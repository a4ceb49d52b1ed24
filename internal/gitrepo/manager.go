package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	requiredValueMessageConstant             = "value required"
	executorNotConfiguredMessageConstant     = "repository manager git executor not configured"
	originRemoteNameConstant                 = "origin"
	revParseSubcommandConstant               = "rev-parse"
	showCurrentFlagConstant                  = "--show-current"
	detachedHeadMessageConstant              = "no branch is checked out (detached HEAD)"
	verifyFlagConstant                       = "--verify"
	quietFlagConstant                        = "--quiet"
	localBranchReferencePrefixConstant       = "refs/heads/"
	branchSubcommandConstant                 = "branch"
	checkoutSubcommandConstant               = "checkout"
	addSubcommandConstant                    = "add"
	diffSubcommandConstant                   = "diff"
	cachedFlagConstant                       = "--cached"
	commitSubcommandConstant                 = "commit"
	commitMessageFlagConstant                = "-m"
	pushSubcommandConstant                   = "push"
	setUpstreamFlagConstant                  = "--set-upstream"
	statusSubcommandConstant                 = "status"
	porcelainFlagConstant                    = "--porcelain"
	cloneSubcommandConstant                  = "clone"
	remoteSubcommandConstant                 = "remote"
	remoteGetURLSubcommandConstant           = "get-url"
	repositoryOperationErrorTemplateConstant = "%s in %s: %v"
	simulatedCreateBranchTemplateConstant    = "Would create branch %s in %s\n"
	simulatedCheckoutBranchTemplateConstant  = "Would check out branch %s in %s\n"
	simulatedStageFilesTemplateConstant      = "Would stage %s in %s\n"
	simulatedCommitTemplateConstant          = "Would commit staged changes in %s with message %q\n"
	simulatedPushTemplateConstant            = "Would push branch %s to %s from %s\n"
	simulatedCloneTemplateConstant           = "Would clone %s into %s\n"
	stagedFileListSeparatorConstant          = ", "
	operationGetCurrentBranchNameConstant    = "resolve current branch"
	operationBranchExistsNameConstant        = "check branch existence"
	operationCreateBranchNameConstant        = "create branch"
	operationCheckoutBranchNameConstant      = "check out branch"
	operationStageFilesNameConstant          = "stage files"
	operationDetectStagedChangesNameConstant = "detect staged changes"
	operationCommitNameConstant              = "commit staged changes"
	operationPushNameConstant                = "push branch"
	operationCheckCleanWorktreeNameConstant  = "inspect worktree"
	operationCloneRepositoryNameConstant     = "clone repository"
	operationGetRemoteURLNameConstant        = "resolve remote url"
	stagedChangesPresentExitCodeConstant     = 1
	commitOutcomeCommittedStringConstant     = "committed"
	commitOutcomeSkippedStringConstant       = "skipped"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitOutcome reports whether a commit was created or skipped.
type CommitOutcome string

// Commit outcomes.
const (
	CommitOutcomeCommitted CommitOutcome = CommitOutcome(commitOutcomeCommittedStringConstant)
	CommitOutcomeSkipped   CommitOutcome = CommitOutcome(commitOutcomeSkippedStringConstant)
)

// RepositoryOperationError wraps a git failure with repository context.
type RepositoryOperationError struct {
	RepositoryPath string
	Operation      string
	Cause          error
}

// Error describes the failed repository operation.
func (operationError RepositoryOperationError) Error() string {
	return fmt.Sprintf(repositoryOperationErrorTemplateConstant, operationError.Operation, operationError.RepositoryPath, operationError.Cause)
}

// Unwrap exposes the underlying git failure.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs repository-level git operations through a shell executor.
type RepositoryManager struct {
	executor         GitExecutor
	executionMode    execshell.ExecutionMode
	simulationOutput io.Writer
}

// NewRepositoryManager constructs a RepositoryManager after validating its executor.
func NewRepositoryManager(executor GitExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	resolvedOutput := simulationOutput
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}

	return &RepositoryManager{executor: executor, executionMode: executionMode, simulationOutput: resolvedOutput}, nil
}

// GetCurrentBranch resolves the branch currently checked out in the repository.
// A detached HEAD prints nothing, which is an error: the update workflow needs
// a real branch name to restore afterwards.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{branchSubcommandConstant, showCurrentFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationGetCurrentBranchNameConstant, Cause: executionError}
	}

	currentBranchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(currentBranchName) == 0 {
		return "", RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationGetCurrentBranchNameConstant, Cause: errors.New(detachedHeadMessageConstant)}
	}

	return currentBranchName, nil
}

// BranchExists reports whether a local branch with the provided name exists.
func (manager *RepositoryManager) BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, verifyFlagConstant, quietFlagConstant, localBranchReferencePrefixConstant + branchName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationBranchExistsNameConstant, Cause: executionError}
	}

	return true, nil
}

// CreateBranch creates a local branch without checking it out.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedCreateBranchTemplateConstant, branchName, repositoryPath)
		return nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{branchSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationCreateBranchNameConstant, Cause: executionError}
	}

	return nil
}

// CheckoutBranch switches the repository worktree to the provided branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedCheckoutBranchTemplateConstant, branchName, repositoryPath)
		return nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{checkoutSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationCheckoutBranchNameConstant, Cause: executionError}
	}

	return nil
}

// StageFiles stages the candidate files that exist in the repository and returns the staged names.
// Candidates missing from the worktree are silently ignored.
func (manager *RepositoryManager) StageFiles(executionContext context.Context, repositoryPath string, candidateFiles []string) ([]string, error) {
	presentFiles := make([]string, 0, len(candidateFiles))
	for _, candidateFile := range candidateFiles {
		candidatePath := filepath.Join(repositoryPath, candidateFile)
		if _, statError := os.Stat(candidatePath); statError != nil {
			continue
		}
		presentFiles = append(presentFiles, candidateFile)
	}

	if len(presentFiles) == 0 {
		return nil, nil
	}

	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedStageFilesTemplateConstant, strings.Join(presentFiles, stagedFileListSeparatorConstant), repositoryPath)
		return presentFiles, nil
	}

	commandArguments := append([]string{addSubcommandConstant}, presentFiles...)
	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationStageFilesNameConstant, Cause: executionError}
	}

	return presentFiles, nil
}

// HasStagedChanges reports whether the repository index differs from HEAD.
func (manager *RepositoryManager) HasStagedChanges(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{diffSubcommandConstant, cachedFlagConstant, quietFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == stagedChangesPresentExitCodeConstant {
			return true, nil
		}
		return false, RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationDetectStagedChangesNameConstant, Cause: executionError}
	}

	return false, nil
}

// Commit records staged changes with the provided message, skipping when nothing is staged.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, commitMessage string) (CommitOutcome, error) {
	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedCommitTemplateConstant, repositoryPath, commitMessage)
		return CommitOutcomeCommitted, nil
	}

	stagedChangesPresent, stagedDetectionError := manager.HasStagedChanges(executionContext, repositoryPath)
	if stagedDetectionError != nil {
		return CommitOutcomeSkipped, stagedDetectionError
	}
	if !stagedChangesPresent {
		return CommitOutcomeSkipped, nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{commitSubcommandConstant, commitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return CommitOutcomeSkipped, RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationCommitNameConstant, Cause: executionError}
	}

	return CommitOutcomeCommitted, nil
}

// Push publishes the branch to origin and configures upstream tracking.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, branchName string) error {
	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedPushTemplateConstant, branchName, originRemoteNameConstant, repositoryPath)
		return nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{pushSubcommandConstant, setUpstreamFlagConstant, originRemoteNameConstant, branchName},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationPushNameConstant, Cause: executionError}
	}

	return nil
}

// CheckCleanWorktree reports whether the repository has no uncommitted changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, porcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false, RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationCheckCleanWorktreeNameConstant, Cause: executionError}
	}

	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// CloneRepository clones the remote URL into the target path.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, targetPath string) error {
	if manager.executionMode.Simulated() {
		fmt.Fprintf(manager.simulationOutput, simulatedCloneTemplateConstant, remoteURL, targetPath)
		return nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{cloneSubcommandConstant, remoteURL, targetPath},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryOperationError{RepositoryPath: targetPath, Operation: operationCloneRepositoryNameConstant, Cause: executionError}
	}

	return nil
}

// GetRemoteURL resolves the URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	resolvedRemoteName := strings.TrimSpace(remoteName)
	if len(resolvedRemoteName) == 0 {
		resolvedRemoteName = originRemoteNameConstant
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteGetURLSubcommandConstant, resolvedRemoteName},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", RepositoryOperationError{RepositoryPath: repositoryPath, Operation: operationGetRemoteURLNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}
