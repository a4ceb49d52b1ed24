package ui

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	startedMessagePrefixConstant   = "Running "
	completedMessagePrefixConstant = "Completed "
	exitCodeFailureInfixConstant   = " failed with exit code "
	executionFailureInfixConstant  = " failed: "
	workingDirectoryOpenConstant   = " (in "
	workingDirectoryCloseConstant  = ")"
	commandPartsSeparatorConstant  = " "
	standardErrorDelimiterConstant = ": "
	unknownFailureMessageConstant  = "unknown error"
)

// ConsoleCommandEventLogger renders command lifecycle events through a zap
// logger so users can follow the git, gh, and package manager invocations a
// run performs. It implements execshell.CommandEventObserver.
type ConsoleCommandEventLogger struct {
	logger *zap.Logger
}

// NewConsoleCommandEventLogger constructs an event logger; a nil zap logger
// silences the events.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger}
}

// CommandStarted logs the command about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.logger.Info(startedMessagePrefixConstant + describeCommand(command))
}

// CommandCompleted logs success at Info and nonzero exits at Warn with the
// captured standard error appended.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Info(completedMessagePrefixConstant + describeCommand(command))
		return
	}

	failureMessage := describeCommand(command) + exitCodeFailureInfixConstant + strconv.Itoa(result.ExitCode)
	if trimmedStandardError := strings.TrimSpace(result.StandardError); len(trimmedStandardError) > 0 {
		failureMessage += standardErrorDelimiterConstant + trimmedStandardError
	}
	eventLogger.logger.Warn(failureMessage)
}

// CommandExecutionFailed logs failures that happened before the command could
// produce a result, such as a missing binary.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	failureDescription := unknownFailureMessageConstant
	if failure != nil {
		failureDescription = failure.Error()
	}
	eventLogger.logger.Error(describeCommand(command) + executionFailureInfixConstant + failureDescription)
}

// describeCommand renders "git checkout main (in /path)" style labels.
func describeCommand(command execshell.ShellCommand) string {
	labelBuilder := strings.Builder{}
	labelBuilder.WriteString(string(command.Name))
	for _, argument := range command.Details.Arguments {
		labelBuilder.WriteString(commandPartsSeparatorConstant)
		labelBuilder.WriteString(argument)
	}

	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		labelBuilder.WriteString(workingDirectoryOpenConstant)
		labelBuilder.WriteString(workingDirectory)
		labelBuilder.WriteString(workingDirectoryCloseConstant)
	}
	return labelBuilder.String()
}
