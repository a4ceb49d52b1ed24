package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depbump/internal/manifest"
)

const (
	testDependencyNameConstant   = "left-pad"
	testRequestedVersionConstant = "^2.0.0"
	testOriginalVersionConstant  = "^1.2.3"
	testManifestContentConstant  = `{
  "name": "example-service",
  "version": "0.4.1",
  "scripts": {
    "build": "tsc"
  },
  "dependencies": {
    "left-pad": "^1.2.3",
    "express": "~4.18.0"
  },
  "devDependencies": {
    "left-pad": "1.0.0",
    "jest": "^29.0.0"
  },
  "peerDependencies": {
    "react": ">=17"
  }
}
`
	testManifestWithoutTablesConstant = `{"name": "bare-package"}`
)

func writeManifestFixture(testInstance *testing.T, manifestContent string) string {
	testInstance.Helper()
	repositoryPath := testInstance.TempDir()
	manifestPath := filepath.Join(repositoryPath, manifest.ManifestFileName)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContent), 0o600))
	return repositoryPath
}

func TestLoadRepositoryDocumentExposesMetadata(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestContentConstant)

	manifestDocument, loadError := manifest.LoadRepositoryDocument(repositoryPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "example-service", manifestDocument.PackageName())
	require.Equal(testInstance, "0.4.1", manifestDocument.PackageVersion())
}

func TestDocumentDependencyVersionScansClassesInOrder(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestContentConstant)
	manifestDocument, loadError := manifest.LoadRepositoryDocument(repositoryPath)
	require.NoError(testInstance, loadError)

	testCases := []struct {
		name            string
		dependencyName  string
		expectedVersion string
		expectedClass   manifest.DependencyClass
		expectedFound   bool
	}{
		{
			name:            "direct_declaration_wins",
			dependencyName:  testDependencyNameConstant,
			expectedVersion: testOriginalVersionConstant,
			expectedClass:   manifest.DependencyClassDirect,
			expectedFound:   true,
		},
		{
			name:            "development_only_declaration",
			dependencyName:  "jest",
			expectedVersion: "^29.0.0",
			expectedClass:   manifest.DependencyClassDevelopment,
			expectedFound:   true,
		},
		{
			name:            "peer_only_declaration",
			dependencyName:  "react",
			expectedVersion: ">=17",
			expectedClass:   manifest.DependencyClassPeer,
			expectedFound:   true,
		},
		{
			name:           "absent_dependency",
			dependencyName: "lodash",
			expectedFound:  false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			declaredVersion, dependencyClass, dependencyFound := manifestDocument.DependencyVersion(testCase.dependencyName)
			require.Equal(testInstance, testCase.expectedFound, dependencyFound)
			if !testCase.expectedFound {
				return
			}
			require.Equal(testInstance, testCase.expectedVersion, declaredVersion)
			require.Equal(testInstance, testCase.expectedClass, dependencyClass)
		})
	}
}

func TestDocumentSetDependencyVersionUpdatesEveryDeclaration(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestContentConstant)
	manifestPath := filepath.Join(repositoryPath, manifest.ManifestFileName)

	manifestDocument, loadError := manifest.LoadDocument(manifestPath)
	require.NoError(testInstance, loadError)

	manifestChanged := manifestDocument.SetDependencyVersion(testDependencyNameConstant, testRequestedVersionConstant)
	require.True(testInstance, manifestChanged)
	require.NoError(testInstance, manifestDocument.Save(manifestPath))

	savedContents, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	savedFields := map[string]any{}
	require.NoError(testInstance, json.Unmarshal(savedContents, &savedFields))

	directTable := savedFields["dependencies"].(map[string]any)
	developmentTable := savedFields["devDependencies"].(map[string]any)
	require.Equal(testInstance, testRequestedVersionConstant, directTable[testDependencyNameConstant])
	require.Equal(testInstance, testRequestedVersionConstant, developmentTable[testDependencyNameConstant])

	require.Equal(testInstance, "~4.18.0", directTable["express"])
	scriptsTable := savedFields["scripts"].(map[string]any)
	require.Equal(testInstance, "tsc", scriptsTable["build"])
}

func TestDocumentSetDependencyVersionReportsNoChangeForIdenticalVersion(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestContentConstant)
	manifestDocument, loadError := manifest.LoadRepositoryDocument(repositoryPath)
	require.NoError(testInstance, loadError)

	manifestChanged := manifestDocument.SetDependencyVersion("react", ">=17")
	require.False(testInstance, manifestChanged)
}

func TestDocumentSetDependencyVersionIgnoresMissingTables(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestWithoutTablesConstant)
	manifestDocument, loadError := manifest.LoadRepositoryDocument(repositoryPath)
	require.NoError(testInstance, loadError)

	manifestChanged := manifestDocument.SetDependencyVersion(testDependencyNameConstant, testRequestedVersionConstant)
	require.False(testInstance, manifestChanged)
}

func TestDocumentListDependenciesSortsWithinClasses(testInstance *testing.T) {
	repositoryPath := writeManifestFixture(testInstance, testManifestContentConstant)
	manifestDocument, loadError := manifest.LoadRepositoryDocument(repositoryPath)
	require.NoError(testInstance, loadError)

	dependencyRecords := manifestDocument.ListDependencies()
	require.Equal(testInstance, []manifest.DependencyRecord{
		{Name: "express", Version: "~4.18.0", Class: manifest.DependencyClassDirect},
		{Name: testDependencyNameConstant, Version: testOriginalVersionConstant, Class: manifest.DependencyClassDirect},
		{Name: "jest", Version: "^29.0.0", Class: manifest.DependencyClassDevelopment},
		{Name: testDependencyNameConstant, Version: "1.0.0", Class: manifest.DependencyClassDevelopment},
		{Name: "react", Version: ">=17", Class: manifest.DependencyClassPeer},
	}, dependencyRecords)
}
