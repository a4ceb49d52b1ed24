package packagemanager_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/packagemanager"
)

type recordedInstallInvocation struct {
	commandName execshell.CommandName
	details     execshell.CommandDetails
}

type stubInstallExecutor struct {
	invocations    []recordedInstallInvocation
	executionError error
}

func (executor *stubInstallExecutor) Execute(_ context.Context, commandName execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, recordedInstallInvocation{commandName: commandName, details: details})
	return execshell.ExecutionResult{}, executor.executionError
}

func TestNewInstallRunnerRequiresExecutor(testInstance *testing.T) {
	installRunner, constructionError := packagemanager.NewInstallRunner(nil, execshell.ExecutionModeLive, nil)
	require.ErrorIs(testInstance, constructionError, packagemanager.ErrInstallExecutorNotConfigured)
	require.Nil(testInstance, installRunner)
}

func TestInstallRunnerInvokesManagerBinary(testInstance *testing.T) {
	testCases := []struct {
		name            string
		manager         packagemanager.Manager
		expectedCommand execshell.CommandName
	}{
		{name: "npm_install", manager: packagemanager.ManagerNpm, expectedCommand: execshell.CommandNpm},
		{name: "yarn_install", manager: packagemanager.ManagerYarn, expectedCommand: execshell.CommandYarn},
		{name: "pnpm_install", manager: packagemanager.ManagerPnpm, expectedCommand: execshell.CommandPnpm},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubInstallExecutor{}
			installRunner, constructionError := packagemanager.NewInstallRunner(executor, execshell.ExecutionModeLive, &bytes.Buffer{})
			require.NoError(testInstance, constructionError)

			repositoryPath := testInstance.TempDir()
			installError := installRunner.Install(context.Background(), repositoryPath, testCase.manager)
			require.NoError(testInstance, installError)
			require.Len(testInstance, executor.invocations, 1)
			require.Equal(testInstance, testCase.expectedCommand, executor.invocations[0].commandName)
			require.Equal(testInstance, []string{"install"}, executor.invocations[0].details.Arguments)
			require.Equal(testInstance, repositoryPath, executor.invocations[0].details.WorkingDirectory)
		})
	}
}

func TestInstallRunnerWrapsFailures(testInstance *testing.T) {
	executor := &stubInstallExecutor{executionError: execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandNpm},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}}
	installRunner, constructionError := packagemanager.NewInstallRunner(executor, execshell.ExecutionModeLive, &bytes.Buffer{})
	require.NoError(testInstance, constructionError)

	installError := installRunner.Install(context.Background(), testInstance.TempDir(), packagemanager.ManagerNpm)
	require.Error(testInstance, installError)
	commandFailure := execshell.CommandFailedError{}
	require.ErrorAs(testInstance, installError, &commandFailure)
}

func TestInstallRunnerSimulationSkipsExecution(testInstance *testing.T) {
	executor := &stubInstallExecutor{}
	simulationOutput := &bytes.Buffer{}
	installRunner, constructionError := packagemanager.NewInstallRunner(executor, execshell.ExecutionModeSimulate, simulationOutput)
	require.NoError(testInstance, constructionError)

	installError := installRunner.Install(context.Background(), testInstance.TempDir(), packagemanager.ManagerPnpm)
	require.NoError(testInstance, installError)
	require.Empty(testInstance, executor.invocations)
	require.Contains(testInstance, simulationOutput.String(), "Would run pnpm install")
}
