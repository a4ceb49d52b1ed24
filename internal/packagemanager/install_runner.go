package packagemanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	installSubcommandConstant                   = "install"
	installRunnerExecutorMissingMessageConstant = "install runner shell executor not configured"
	installFailureTemplateConstant              = "%s install failed in %s: %w"
	simulatedInstallTemplateConstant            = "Would run %s install in %s\n"
)

// ErrInstallExecutorNotConfigured indicates the runner was constructed without an executor.
var ErrInstallExecutorNotConfigured = errors.New(installRunnerExecutorMissingMessageConstant)

// InstallExecutor exposes the shell execution needed to run package manager installs.
type InstallExecutor interface {
	Execute(executionContext context.Context, commandName execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InstallRunner refreshes lockfiles by running the repository's package manager install.
type InstallRunner struct {
	executor         InstallExecutor
	executionMode    execshell.ExecutionMode
	simulationOutput io.Writer
}

// NewInstallRunner constructs an InstallRunner after validating its executor.
func NewInstallRunner(executor InstallExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*InstallRunner, error) {
	if executor == nil {
		return nil, ErrInstallExecutorNotConfigured
	}

	resolvedOutput := simulationOutput
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}

	return &InstallRunner{executor: executor, executionMode: executionMode, simulationOutput: resolvedOutput}, nil
}

// Install runs the manager's install inside the repository to refresh its lockfile.
func (runner *InstallRunner) Install(executionContext context.Context, repositoryPath string, manager Manager) error {
	if runner.executionMode.Simulated() {
		fmt.Fprintf(runner.simulationOutput, simulatedInstallTemplateConstant, manager, repositoryPath)
		return nil
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{installSubcommandConstant},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := runner.executor.Execute(executionContext, manager.CommandName(), commandDetails)
	if executionError != nil {
		return fmt.Errorf(installFailureTemplateConstant, manager, repositoryPath, executionError)
	}

	return nil
}
