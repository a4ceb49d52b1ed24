package githubcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	authSubcommandConstant                      = "auth"
	statusSubcommandConstant                    = "status"
	pullRequestSubcommandConstant               = "pr"
	createSubcommandConstant                    = "create"
	viewSubcommandConstant                      = "view"
	titleFlagConstant                           = "--title"
	bodyFlagConstant                            = "--body"
	draftFlagConstant                           = "--draft"
	headFlagConstant                            = "--head"
	jsonFlagConstant                            = "--json"
	jqFlagConstant                              = "--jq"
	pullRequestURLFieldConstant                 = "url"
	pullRequestURLQueryConstant                 = ".url"
	repositoryPathFieldNameConstant             = "repository_path"
	branchFieldNameConstant                     = "branch"
	titleFieldNameConstant                      = "title"
	requiredValueMessageConstant                = "value required"
	executorNotConfiguredMessageConstant        = "github cli executor not configured"
	pullRequestAlreadyExistsMarkerConstant      = "already exists"
	operationErrorMessageTemplateConstant       = "%s operation failed"
	operationErrorWithCauseTemplateConstant     = "%s operation failed: %s"
	invalidInputErrorTemplateConstant           = "%s: %s"
	simulatedPullRequestTemplateConstant        = "Would open pull request for branch %s in %s\n"
	simulatedPullRequestURLConstant             = "(simulated pull request)"
	checkAuthenticationOperationNameConstant    = OperationName("CheckAuthentication")
	createPullRequestOperationNameConstant      = OperationName("CreatePullRequest")
	resolveExistingPullRequestOperationConstant = OperationName("ResolveExistingPullRequest")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequestOptions configures CreatePullRequest invocations.
type PullRequestOptions struct {
	RepositoryPath string
	BranchName     string
	Title          string
	Body           string
	Draft          bool
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor         GitHubCommandExecutor
	executionMode    execshell.ExecutionMode
	simulationOutput io.Writer
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// NewClient constructs a GitHub CLI client honoring the execution mode.
func NewClient(executor GitHubCommandExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	resolvedOutput := simulationOutput
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}

	return &Client{executor: executor, executionMode: executionMode, simulationOutput: resolvedOutput}, nil
}

// CheckAuthentication verifies the GitHub CLI holds valid credentials.
func (client *Client) CheckAuthentication(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{authSubcommandConstant, statusSubcommandConstant},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: checkAuthenticationOperationNameConstant, Cause: executionError}
	}

	return nil
}

// CreatePullRequest opens a pull request for the branch and returns its URL.
// When a pull request for the branch already exists, the existing URL is
// resolved and returned instead of failing.
func (client *Client) CreatePullRequest(executionContext context.Context, options PullRequestOptions) (string, error) {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return "", InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.BranchName)) == 0 {
		return "", InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.Title)) == 0 {
		return "", InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if client.executionMode.Simulated() {
		fmt.Fprintf(client.simulationOutput, simulatedPullRequestTemplateConstant, options.BranchName, options.RepositoryPath)
		return simulatedPullRequestURLConstant, nil
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		headFlagConstant,
		options.BranchName,
		titleFlagConstant,
		options.Title,
		bodyFlagConstant,
		options.Body,
	}
	if options.Draft {
		commandArguments = append(commandArguments, draftFlagConstant)
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: options.RepositoryPath,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError == nil {
		return strings.TrimSpace(executionResult.StandardOutput), nil
	}

	commandFailure := execshell.CommandFailedError{}
	if errors.As(executionError, &commandFailure) && strings.Contains(commandFailure.Result.StandardError, pullRequestAlreadyExistsMarkerConstant) {
		return client.resolveExistingPullRequestURL(executionContext, options)
	}

	return "", OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
}

func (client *Client) resolveExistingPullRequestURL(executionContext context.Context, options PullRequestOptions) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			viewSubcommandConstant,
			options.BranchName,
			jsonFlagConstant,
			pullRequestURLFieldConstant,
			jqFlagConstant,
			pullRequestURLQueryConstant,
		},
		WorkingDirectory: options.RepositoryPath,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: resolveExistingPullRequestOperationConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}
