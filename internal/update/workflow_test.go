package update_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/depbump/internal/githubcli"
	"github.com/temirov/depbump/internal/gitrepo"
	"github.com/temirov/depbump/internal/manifest"
	"github.com/temirov/depbump/internal/packagemanager"
	"github.com/temirov/depbump/internal/update"
)

const (
	testPackageNameConstant      = "left-pad"
	testRequestedVersionConstant = "^1.2.3"
	testExpectedBranchConstant   = "update-left-pad-1.2.3"
	testOriginalBranchConstant   = "main"
	testCommitMessageConstant    = "chore: update left-pad to ^1.2.3"
	testPullRequestURLConstant   = "https://github.com/acme/widget/pull/7"
	testNpmLockFileNameConstant  = "package-lock.json"
	operationGetCurrentBranch    = "get-current-branch"
	operationBranchExists        = "branch-exists"
	operationCreateBranch        = "create-branch"
	operationCheckoutBranch      = "checkout-branch"
	operationStageFiles          = "stage-files"
	operationCommit              = "commit"
	operationPush                = "push"
	operationApplyVersionEdit    = "apply-version-edit"
	operationInstall             = "install"
	operationCreatePullRequest   = "create-pull-request"
)

type repositoryManagerStub struct {
	currentBranch      string
	currentBranchError error
	branchExists       bool
	branchExistsError  error
	createBranchError  error
	checkoutErrors     map[string]error
	stageError         error
	commitOutcome      gitrepo.CommitOutcome
	commitError        error
	pushError          error
	operations         []string
	checkedOutBranches []string
	stagedCandidates   []string
}

func (stub *repositoryManagerStub) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	stub.operations = append(stub.operations, operationGetCurrentBranch)
	return stub.currentBranch, stub.currentBranchError
}

func (stub *repositoryManagerStub) BranchExists(_ context.Context, _ string, _ string) (bool, error) {
	stub.operations = append(stub.operations, operationBranchExists)
	return stub.branchExists, stub.branchExistsError
}

func (stub *repositoryManagerStub) CreateBranch(_ context.Context, _ string, _ string) error {
	stub.operations = append(stub.operations, operationCreateBranch)
	return stub.createBranchError
}

func (stub *repositoryManagerStub) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	stub.operations = append(stub.operations, operationCheckoutBranch)
	stub.checkedOutBranches = append(stub.checkedOutBranches, branchName)
	if stub.checkoutErrors != nil {
		return stub.checkoutErrors[branchName]
	}
	return nil
}

func (stub *repositoryManagerStub) StageFiles(_ context.Context, _ string, candidateFiles []string) ([]string, error) {
	stub.operations = append(stub.operations, operationStageFiles)
	stub.stagedCandidates = candidateFiles
	return candidateFiles, stub.stageError
}

func (stub *repositoryManagerStub) Commit(_ context.Context, _ string, _ string) (gitrepo.CommitOutcome, error) {
	stub.operations = append(stub.operations, operationCommit)
	return stub.commitOutcome, stub.commitError
}

func (stub *repositoryManagerStub) Push(_ context.Context, _ string, _ string) error {
	stub.operations = append(stub.operations, operationPush)
	return stub.pushError
}

type manifestEditorStub struct {
	result     manifest.VersionEditResult
	editError  error
	operations []string
}

func (stub *manifestEditorStub) ApplyVersionEdit(_ string, _ string, _ string) (manifest.VersionEditResult, error) {
	stub.operations = append(stub.operations, operationApplyVersionEdit)
	return stub.result, stub.editError
}

type installRunnerStub struct {
	installError     error
	installedManager packagemanager.Manager
	operations       []string
}

func (stub *installRunnerStub) Install(_ context.Context, _ string, manager packagemanager.Manager) error {
	stub.operations = append(stub.operations, operationInstall)
	stub.installedManager = manager
	return stub.installError
}

type pullRequestClientStub struct {
	pullRequestURL   string
	pullRequestError error
	receivedOptions  githubcli.PullRequestOptions
	operations       []string
}

func (stub *pullRequestClientStub) CreatePullRequest(_ context.Context, options githubcli.PullRequestOptions) (string, error) {
	stub.operations = append(stub.operations, operationCreatePullRequest)
	stub.receivedOptions = options
	return stub.pullRequestURL, stub.pullRequestError
}

func newWorkflowFixture(testInstance *testing.T) (*repositoryManagerStub, *manifestEditorStub, *installRunnerStub, *pullRequestClientStub, *bytes.Buffer, *update.Service) {
	testInstance.Helper()

	repositoryManager := &repositoryManagerStub{currentBranch: testOriginalBranchConstant, commitOutcome: gitrepo.CommitOutcomeCommitted}
	manifestEditor := &manifestEditorStub{result: manifest.VersionEditResult{Changed: true, DependencyFound: true, PreviousVersion: "^1.0.0", DependencyClass: manifest.DependencyClassDirect}}
	installRunner := &installRunnerStub{}
	pullRequestClient := &pullRequestClientStub{pullRequestURL: testPullRequestURLConstant}
	outputBuffer := &bytes.Buffer{}

	service, serviceError := update.NewService(update.ServiceDependencies{
		Logger:            zap.NewNop(),
		RepositoryManager: repositoryManager,
		ManifestEditor:    manifestEditor,
		InstallRunner:     installRunner,
		PullRequestClient: pullRequestClient,
		Output:            outputBuffer,
	})
	require.NoError(testInstance, serviceError)

	return repositoryManager, manifestEditor, installRunner, pullRequestClient, outputBuffer, service
}

func newRepositoryWithLockFile(testInstance *testing.T, lockFileName string) string {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()
	if len(lockFileName) > 0 {
		require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, lockFileName), []byte("{}\n"), 0o644))
	}
	return repositoryPath
}

func baseRequest(repositoryPath string) update.Request {
	return update.Request{
		RepositoryPath:   repositoryPath,
		PackageName:      testPackageNameConstant,
		RequestedVersion: testRequestedVersionConstant,
		CommitMessage:    testCommitMessageConstant,
	}
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	repositoryManager := &repositoryManagerStub{}
	manifestEditor := &manifestEditorStub{}
	installRunner := &installRunnerStub{}

	testCases := []struct {
		name          string
		dependencies  update.ServiceDependencies
		expectedError error
	}{
		{
			name:          "missing_logger",
			dependencies:  update.ServiceDependencies{RepositoryManager: repositoryManager, ManifestEditor: manifestEditor, InstallRunner: installRunner},
			expectedError: update.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_repository_manager",
			dependencies:  update.ServiceDependencies{Logger: zap.NewNop(), ManifestEditor: manifestEditor, InstallRunner: installRunner},
			expectedError: update.ErrRepositoryManagerNotConfigured,
		},
		{
			name:          "missing_manifest_editor",
			dependencies:  update.ServiceDependencies{Logger: zap.NewNop(), RepositoryManager: repositoryManager, InstallRunner: installRunner},
			expectedError: update.ErrManifestEditorNotConfigured,
		},
		{
			name:          "missing_install_runner",
			dependencies:  update.ServiceDependencies{Logger: zap.NewNop(), RepositoryManager: repositoryManager, ManifestEditor: manifestEditor},
			expectedError: update.ErrInstallRunnerNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			serviceInstance, serviceError := update.NewService(testCase.dependencies)
			require.ErrorIs(testInstance, serviceError, testCase.expectedError)
			require.Nil(testInstance, serviceInstance)
		})
	}
}

func TestDeriveBranchName(testInstance *testing.T) {
	testCases := []struct {
		name             string
		packageName      string
		requestedVersion string
		expectedBranch   string
	}{
		{name: "caret_range", packageName: "left-pad", requestedVersion: "^1.2.3", expectedBranch: "update-left-pad-1.2.3"},
		{name: "tilde_range", packageName: "lodash", requestedVersion: "~4.17.21", expectedBranch: "update-lodash-4.17.21"},
		{name: "exact_version", packageName: "react", requestedVersion: "18.3.1", expectedBranch: "update-react-18.3.1"},
		{name: "scoped_package", packageName: "@types/node", requestedVersion: "^22.0.0", expectedBranch: "update-@types/node-22.0.0"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedBranch, update.DeriveBranchName(testCase.packageName, testCase.requestedVersion))
		})
	}
}

func TestUpdateRepositorySuccess(testInstance *testing.T) {
	repositoryManager, _, installRunner, pullRequestClient, _, service := newWorkflowFixture(testInstance)
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	repositoryRequest := baseRequest(repositoryPath)
	repositoryRequest.CreatePullRequest = true

	outcome, updateError := service.UpdateRepository(context.Background(), repositoryRequest)
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, update.UpdateStatusUpdated, outcome.Status)
	require.Equal(testInstance, testExpectedBranchConstant, outcome.BranchName)
	require.Equal(testInstance, testPullRequestURLConstant, outcome.PullRequestURL)
	require.Equal(testInstance, packagemanager.ManagerNpm, installRunner.installedManager)
	require.Equal(testInstance, testExpectedBranchConstant, pullRequestClient.receivedOptions.BranchName)
	require.Equal(testInstance, testCommitMessageConstant, pullRequestClient.receivedOptions.Title)

	require.Equal(testInstance, []string{
		operationGetCurrentBranch,
		operationBranchExists,
		operationCreateBranch,
		operationCheckoutBranch,
		operationStageFiles,
		operationCommit,
		operationPush,
		operationCheckoutBranch,
	}, repositoryManager.operations)
	require.Equal(testInstance, []string{testExpectedBranchConstant, testOriginalBranchConstant}, repositoryManager.checkedOutBranches)
	require.Contains(testInstance, repositoryManager.stagedCandidates, manifest.ManifestFileName)
	require.Contains(testInstance, repositoryManager.stagedCandidates, testNpmLockFileNameConstant)
}

func TestUpdateRepositoryReusesExistingBranch(testInstance *testing.T) {
	repositoryManager, _, _, _, _, service := newWorkflowFixture(testInstance)
	repositoryManager.branchExists = true
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.NoError(testInstance, updateError)
	require.NotContains(testInstance, repositoryManager.operations, operationCreateBranch)
	require.Contains(testInstance, repositoryManager.operations, operationCheckoutBranch)
}

func TestUpdateRepositoryNoOpRestoresBranch(testInstance *testing.T) {
	repositoryManager, manifestEditor, installRunner, pullRequestClient, _, service := newWorkflowFixture(testInstance)
	manifestEditor.result = manifest.VersionEditResult{Changed: false, DependencyFound: true, PreviousVersion: testRequestedVersionConstant}
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	outcome, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, update.UpdateStatusNoOp, outcome.Status)
	require.Empty(testInstance, installRunner.operations)
	require.Empty(testInstance, pullRequestClient.operations)
	require.NotContains(testInstance, repositoryManager.operations, operationCommit)
	require.Equal(testInstance, testOriginalBranchConstant, repositoryManager.checkedOutBranches[len(repositoryManager.checkedOutBranches)-1])
}

func TestUpdateRepositoryMissingDependencyIsNoOp(testInstance *testing.T) {
	_, manifestEditor, installRunner, _, _, service := newWorkflowFixture(testInstance)
	manifestEditor.result = manifest.VersionEditResult{Changed: false, DependencyFound: false}
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	outcome, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, update.UpdateStatusNoOp, outcome.Status)
	require.Empty(testInstance, installRunner.operations)
}

func TestUpdateRepositoryFallsBackToDefaultManager(testInstance *testing.T) {
	_, _, installRunner, _, _, service := newWorkflowFixture(testInstance)
	repositoryPath := newRepositoryWithLockFile(testInstance, "")

	repositoryRequest := baseRequest(repositoryPath)
	repositoryRequest.DefaultManager = packagemanager.ManagerYarn

	_, updateError := service.UpdateRepository(context.Background(), repositoryRequest)
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, packagemanager.ManagerYarn, installRunner.installedManager)
}

func TestUpdateRepositoryFailsWithoutResolvableManager(testInstance *testing.T) {
	repositoryManager, _, installRunner, _, _, service := newWorkflowFixture(testInstance)
	repositoryPath := newRepositoryWithLockFile(testInstance, "")

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.Error(testInstance, updateError)
	require.Contains(testInstance, updateError.Error(), "package manager")
	require.Empty(testInstance, installRunner.operations)
	require.Equal(testInstance, testOriginalBranchConstant, repositoryManager.checkedOutBranches[len(repositoryManager.checkedOutBranches)-1])
}

func TestUpdateRepositoryRestoresBranchOnInstallFailure(testInstance *testing.T) {
	repositoryManager, _, installRunner, _, _, service := newWorkflowFixture(testInstance)
	installFailure := errors.New("npm install failed")
	installRunner.installError = installFailure
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.ErrorIs(testInstance, updateError, installFailure)
	require.Equal(testInstance, testOriginalBranchConstant, repositoryManager.checkedOutBranches[len(repositoryManager.checkedOutBranches)-1])
	require.NotContains(testInstance, repositoryManager.operations, operationCommit)
}

func TestUpdateRepositoryOriginalErrorWinsOverRestoreFailure(testInstance *testing.T) {
	repositoryManager, _, _, _, _, service := newWorkflowFixture(testInstance)
	pushFailure := errors.New("push rejected")
	repositoryManager.pushError = pushFailure
	repositoryManager.checkoutErrors = map[string]error{testOriginalBranchConstant: errors.New("checkout failed")}
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.ErrorIs(testInstance, updateError, pushFailure)
}

func TestUpdateRepositoryCommitSkipStillPushes(testInstance *testing.T) {
	repositoryManager, _, _, _, outputBuffer, service := newWorkflowFixture(testInstance)
	repositoryManager.commitOutcome = gitrepo.CommitOutcomeSkipped
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	outcome, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, update.UpdateStatusUpdated, outcome.Status)
	require.Contains(testInstance, repositoryManager.operations, operationPush)
	require.Contains(testInstance, outputBuffer.String(), "Nothing to commit")
}

func TestUpdateRepositoryPullRequestFailureIsWarning(testInstance *testing.T) {
	_, _, _, pullRequestClient, outputBuffer, service := newWorkflowFixture(testInstance)
	pullRequestClient.pullRequestError = errors.New("gh pr create failed")
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	repositoryRequest := baseRequest(repositoryPath)
	repositoryRequest.CreatePullRequest = true

	outcome, updateError := service.UpdateRepository(context.Background(), repositoryRequest)
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, update.UpdateStatusUpdated, outcome.Status)
	require.Empty(testInstance, outcome.PullRequestURL)
	require.Contains(testInstance, outputBuffer.String(), "Warning: pull request")
}

func TestUpdateRepositorySkipsPullRequestWhenNotRequested(testInstance *testing.T) {
	_, _, _, pullRequestClient, _, service := newWorkflowFixture(testInstance)
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.NoError(testInstance, updateError)
	require.Empty(testInstance, pullRequestClient.operations)
}

func TestUpdateRepositoryFatalWhenCurrentBranchUnknown(testInstance *testing.T) {
	repositoryManager, manifestEditor, _, _, _, service := newWorkflowFixture(testInstance)
	branchFailure := errors.New("not a git repository")
	repositoryManager.currentBranchError = branchFailure
	repositoryPath := newRepositoryWithLockFile(testInstance, testNpmLockFileNameConstant)

	_, updateError := service.UpdateRepository(context.Background(), baseRequest(repositoryPath))
	require.ErrorIs(testInstance, updateError, branchFailure)
	require.Empty(testInstance, manifestEditor.operations)
}
