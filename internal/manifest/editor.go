package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	simulatedVersionEditTemplateConstant = "Would set %s to %s in %s\n"
)

// VersionEditResult summarizes the outcome of applying a version edit.
type VersionEditResult struct {
	Changed         bool
	PreviousVersion string
	DependencyClass DependencyClass
	DependencyFound bool
}

// Editor applies dependency version edits to repository manifests, honoring the execution mode.
type Editor struct {
	executionMode    execshell.ExecutionMode
	simulationOutput io.Writer
}

// NewEditor constructs an Editor for the provided execution mode.
func NewEditor(executionMode execshell.ExecutionMode, simulationOutput io.Writer) *Editor {
	resolvedOutput := simulationOutput
	if resolvedOutput == nil {
		resolvedOutput = os.Stdout
	}
	return &Editor{executionMode: executionMode, simulationOutput: resolvedOutput}
}

// ApplyVersionEdit rewrites the dependency's declared version in the repository's
// package.json. Simulated runs report the intended edit without touching the file.
func (editor *Editor) ApplyVersionEdit(repositoryPath string, dependencyName string, requestedVersion string) (VersionEditResult, error) {
	manifestPath := filepath.Join(repositoryPath, ManifestFileName)
	manifestDocument, loadError := LoadDocument(manifestPath)
	if loadError != nil {
		return VersionEditResult{}, loadError
	}

	previousVersion, dependencyClass, dependencyFound := manifestDocument.DependencyVersion(dependencyName)
	editResult := VersionEditResult{
		PreviousVersion: previousVersion,
		DependencyClass: dependencyClass,
		DependencyFound: dependencyFound,
	}
	if !dependencyFound {
		return editResult, nil
	}

	editResult.Changed = manifestDocument.SetDependencyVersion(dependencyName, requestedVersion)
	if !editResult.Changed {
		return editResult, nil
	}

	if editor.executionMode.Simulated() {
		fmt.Fprintf(editor.simulationOutput, simulatedVersionEditTemplateConstant, dependencyName, requestedVersion, manifestPath)
		return editResult, nil
	}

	if saveError := manifestDocument.Save(manifestPath); saveError != nil {
		return editResult, saveError
	}

	return editResult, nil
}
