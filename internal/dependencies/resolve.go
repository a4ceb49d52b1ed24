// Package dependencies wires default collaborators for command builders,
// honoring caller-provided overrides for tests.
package dependencies

import (
	"io"

	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/execshell"
	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/githubcli"
	"github.com/temirov/depbump/internal/gitrepo"
	"github.com/temirov/depbump/internal/manifest"
	"github.com/temirov/depbump/internal/packagemanager"
	"github.com/temirov/depbump/internal/ui"
)

// ResolveShellExecutor returns the provided executor or constructs an
// OS-backed default that reports command events through the console logger.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	shellExecutor.SetEventObserver(ui.NewConsoleCommandEventLogger(logger))
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided manager or constructs one from the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, executor gitrepo.GitExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor, executionMode, simulationOutput)
}

// ResolveManifestEditor returns the provided editor or constructs a default.
func ResolveManifestEditor(existing *manifest.Editor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) *manifest.Editor {
	if existing != nil {
		return existing
	}
	return manifest.NewEditor(executionMode, simulationOutput)
}

// ResolveInstallRunner returns the provided runner or constructs one from the executor.
func ResolveInstallRunner(existing *packagemanager.InstallRunner, executor packagemanager.InstallExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*packagemanager.InstallRunner, error) {
	if existing != nil {
		return existing, nil
	}
	return packagemanager.NewInstallRunner(executor, executionMode, simulationOutput)
}

// ResolveGitHubClient returns the provided client or creates a GitHub CLI-backed implementation.
func ResolveGitHubClient(existing *githubcli.Client, executor githubcli.GitHubCommandExecutor, executionMode execshell.ExecutionMode, simulationOutput io.Writer) (*githubcli.Client, error) {
	if existing != nil {
		return existing, nil
	}
	return githubcli.NewClient(executor, executionMode, simulationOutput)
}

// ResolveFleetStore returns the provided store or opens one at the
// configuration path, falling back to the default location when the path is
// empty.
func ResolveFleetStore(existing *fleet.Store, configurationPath string) (*fleet.Store, error) {
	if existing != nil {
		return existing, nil
	}

	resolvedPath := configurationPath
	if len(resolvedPath) == 0 {
		defaultPath, defaultPathError := fleet.DefaultConfigurationPath()
		if defaultPathError != nil {
			return nil, defaultPathError
		}
		resolvedPath = defaultPath
	}
	return fleet.NewStore(resolvedPath)
}
