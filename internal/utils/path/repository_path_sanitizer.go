package pathutils

import (
	"path/filepath"
	"runtime"
	"strings"
)

const windowsOSNameConstant = "windows"

// RepositoryPathSanitizer normalizes repository path inputs before they are
// persisted or compared: whitespace trimmed, home shortcuts expanded, empty
// and duplicate entries dropped.
type RepositoryPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewRepositoryPathSanitizer constructs a sanitizer with the default home
// directory lookup.
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithExpander(nil)
}

// NewRepositoryPathSanitizerWithExpander constructs a sanitizer using the
// provided expander, falling back to the default when nil.
func NewRepositoryPathSanitizerWithExpander(homeExpander *HomeExpander) *RepositoryPathSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RepositoryPathSanitizer{homeExpander: homeExpander}
}

// Sanitize returns the cleaned path list, or nil when nothing survives.
// Duplicate detection compares cleaned paths, case-insensitively on Windows.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePaths []string) []string {
	var sanitizedPaths []string
	seenPaths := make(map[string]struct{}, len(candidatePaths))

	for _, candidatePath := range candidatePaths {
		trimmedPath := strings.TrimSpace(candidatePath)
		if len(trimmedPath) == 0 {
			continue
		}

		expandedPath := sanitizer.homeExpander.Expand(trimmedPath)
		comparisonKey := filepath.Clean(expandedPath)
		if runtime.GOOS == windowsOSNameConstant {
			comparisonKey = strings.ToLower(comparisonKey)
		}
		if _, alreadyPresent := seenPaths[comparisonKey]; alreadyPresent {
			continue
		}
		seenPaths[comparisonKey] = struct{}{}

		sanitizedPaths = append(sanitizedPaths, expandedPath)
	}

	return sanitizedPaths
}
