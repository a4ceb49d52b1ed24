package update

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	repositoryUpdaterRequiredMessageConstant   = "orchestrator repository updater not configured"
	continuationDeciderRequiredMessageConstant = "orchestrator continuation decider not configured"
	emptyFleetNoticeConstant                   = "No repositories configured; nothing to update.\n"
	repositoryFailureNoticeTemplateConstant    = "Repository %s failed: %v\n"
	continuationPromptConstant                 = "Continue with remaining repositories? [y/N]: "
	continuationAnswerYesShortConstant         = "y"
	continuationAnswerYesLongConstant          = "yes"
	repositoryFailureMessageConstant           = "repository update failed"
	runAbortedMessageConstant                  = "fleet run aborted after repository failure"
)

// Orchestrator validation errors.
var (
	ErrRepositoryUpdaterNotConfigured   = errors.New(repositoryUpdaterRequiredMessageConstant)
	ErrContinuationDeciderNotConfigured = errors.New(continuationDeciderRequiredMessageConstant)
)

// RepositoryUpdater runs the update workflow for a single repository.
type RepositoryUpdater interface {
	UpdateRepository(executionContext context.Context, request Request) (Outcome, error)
}

// ContinuationDecider decides whether a fleet run proceeds after one
// repository fails.
type ContinuationDecider interface {
	Decide(repositoryPath string, failure error) (bool, error)
}

// RepositoryFailure records a repository that could not be updated.
type RepositoryFailure struct {
	RepositoryPath string
	Failure        error
}

// Summary aggregates the results of a fleet run.
type Summary struct {
	Processed int
	Updated   int
	NoOps     int
	Failures  []RepositoryFailure
	Aborted   bool
}

// OrchestratorDependencies bundles the collaborators required by Orchestrator.
type OrchestratorDependencies struct {
	Logger              *zap.Logger
	RepositoryUpdater   RepositoryUpdater
	ContinuationDecider ContinuationDecider
	Output              io.Writer
}

// Orchestrator runs the update workflow across a repository fleet, isolating
// per-repository failures and consulting the continuation decider between
// repositories.
type Orchestrator struct {
	logger              *zap.Logger
	repositoryUpdater   RepositoryUpdater
	continuationDecider ContinuationDecider
	output              io.Writer
}

// NewOrchestrator constructs an Orchestrator after validating its dependencies.
func NewOrchestrator(dependencies OrchestratorDependencies) (*Orchestrator, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.RepositoryUpdater == nil {
		return nil, ErrRepositoryUpdaterNotConfigured
	}
	if dependencies.ContinuationDecider == nil {
		return nil, ErrContinuationDeciderNotConfigured
	}

	resolvedOutput := dependencies.Output
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}

	return &Orchestrator{
		logger:              dependencies.Logger,
		repositoryUpdater:   dependencies.RepositoryUpdater,
		continuationDecider: dependencies.ContinuationDecider,
		output:              resolvedOutput,
	}, nil
}

// Run processes every repository sequentially. A repository failure is
// recorded in the summary and routed through the continuation decider; a
// negative decision aborts the run with the remaining repositories untouched.
func (orchestrator *Orchestrator) Run(executionContext context.Context, repositoryPaths []string, requestTemplate Request) (Summary, error) {
	summary := Summary{}

	if len(repositoryPaths) == 0 {
		fmt.Fprint(orchestrator.output, emptyFleetNoticeConstant)
		return summary, nil
	}

	for repositoryIndex, repositoryPath := range repositoryPaths {
		repositoryRequest := requestTemplate
		repositoryRequest.RepositoryPath = repositoryPath

		outcome, updateError := orchestrator.repositoryUpdater.UpdateRepository(executionContext, repositoryRequest)
		summary.Processed++

		if updateError == nil {
			switch outcome.Status {
			case UpdateStatusUpdated:
				summary.Updated++
			case UpdateStatusNoOp:
				summary.NoOps++
			}
			continue
		}

		summary.Failures = append(summary.Failures, RepositoryFailure{RepositoryPath: repositoryPath, Failure: updateError})
		orchestrator.logger.Error(
			repositoryFailureMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryPath),
			zap.Error(updateError),
		)
		fmt.Fprintf(orchestrator.output, repositoryFailureNoticeTemplateConstant, repositoryPath, updateError)

		remainingRepositories := len(repositoryPaths) - repositoryIndex - 1
		if remainingRepositories == 0 {
			continue
		}

		continueRun, decisionError := orchestrator.continuationDecider.Decide(repositoryPath, updateError)
		if decisionError != nil {
			return summary, decisionError
		}
		if !continueRun {
			summary.Aborted = true
			orchestrator.logger.Warn(
				runAbortedMessageConstant,
				zap.String(logFieldRepositoryConstant, repositoryPath),
			)
			return summary, nil
		}
	}

	return summary, nil
}

// AlwaysContinueDecider continues past every failure without prompting.
type AlwaysContinueDecider struct{}

// Decide always continues.
func (AlwaysContinueDecider) Decide(string, error) (bool, error) {
	return true, nil
}

// IOContinuationDecider prompts on an output writer and reads the answer from
// an input reader. Only "y" and "yes" (case-insensitive) continue the run.
type IOContinuationDecider struct {
	input  *bufio.Reader
	output io.Writer
}

// NewIOContinuationDecider constructs an IOContinuationDecider reading from
// input and prompting on output.
func NewIOContinuationDecider(input io.Reader, output io.Writer) *IOContinuationDecider {
	resolvedInput := input
	if resolvedInput == nil {
		resolvedInput = os.Stdin
	}
	resolvedOutput := output
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}
	return &IOContinuationDecider{input: bufio.NewReader(resolvedInput), output: resolvedOutput}
}

// Decide prompts the user and interprets the answer.
func (decider *IOContinuationDecider) Decide(string, error) (bool, error) {
	fmt.Fprint(decider.output, continuationPromptConstant)

	answerLine, readError := decider.input.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return false, readError
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	switch normalizedAnswer {
	case continuationAnswerYesShortConstant, continuationAnswerYesLongConstant:
		return true, nil
	default:
		return false, nil
	}
}
