package packagemanager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/depbump/internal/execshell"
)

const (
	managerNpmStringConstant            = "npm"
	managerYarnStringConstant           = "yarn"
	managerPnpmStringConstant           = "pnpm"
	npmLockFileNameConstant             = "package-lock.json"
	yarnLockFileNameConstant            = "yarn.lock"
	pnpmLockFileNameConstant            = "pnpm-lock.yaml"
	unknownManagerErrorTemplateConstant = "unknown package manager %q (expected npm, yarn, or pnpm)"
)

// Manager enumerates supported JavaScript package managers.
type Manager string

// Supported package managers.
const (
	ManagerNpm  Manager = Manager(managerNpmStringConstant)
	ManagerYarn Manager = Manager(managerYarnStringConstant)
	ManagerPnpm Manager = Manager(managerPnpmStringConstant)
)

// UnknownManagerError reports a manager name outside the supported set.
type UnknownManagerError struct {
	Input string
}

// Error describes the unsupported manager name.
func (unknownManager UnknownManagerError) Error() string {
	return fmt.Sprintf(unknownManagerErrorTemplateConstant, unknownManager.Input)
}

// ParseManager converts a textual manager name into a Manager.
func ParseManager(managerName string) (Manager, error) {
	switch strings.ToLower(strings.TrimSpace(managerName)) {
	case managerNpmStringConstant:
		return ManagerNpm, nil
	case managerYarnStringConstant:
		return ManagerYarn, nil
	case managerPnpmStringConstant:
		return ManagerPnpm, nil
	default:
		return Manager(""), UnknownManagerError{Input: managerName}
	}
}

// CommandName returns the binary invoked for the manager.
func (manager Manager) CommandName() execshell.CommandName {
	switch manager {
	case ManagerYarn:
		return execshell.CommandYarn
	case ManagerPnpm:
		return execshell.CommandPnpm
	default:
		return execshell.CommandNpm
	}
}

// LockFileName returns the lockfile the manager maintains.
func (manager Manager) LockFileName() string {
	switch manager {
	case ManagerYarn:
		return yarnLockFileNameConstant
	case ManagerPnpm:
		return pnpmLockFileNameConstant
	default:
		return npmLockFileNameConstant
	}
}

// LockFileNames lists every supported lockfile in detection order.
func LockFileNames() []string {
	return []string{pnpmLockFileNameConstant, yarnLockFileNameConstant, npmLockFileNameConstant}
}

// DetectManager inspects repository lockfiles and reports the manager in use.
// Detection prefers pnpm over yarn over npm when multiple lockfiles are present.
func DetectManager(repositoryPath string) (Manager, bool) {
	detectionOrder := []struct {
		lockFileName string
		manager      Manager
	}{
		{lockFileName: pnpmLockFileNameConstant, manager: ManagerPnpm},
		{lockFileName: yarnLockFileNameConstant, manager: ManagerYarn},
		{lockFileName: npmLockFileNameConstant, manager: ManagerNpm},
	}

	for _, detectionCandidate := range detectionOrder {
		lockFilePath := filepath.Join(repositoryPath, detectionCandidate.lockFileName)
		if _, statError := os.Stat(lockFilePath); statError == nil {
			return detectionCandidate.manager, true
		}
	}

	return Manager(""), false
}
