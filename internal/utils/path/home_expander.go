package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const tildePrefixConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites tilde-prefixed paths against the user's home
// directory. The home lookup runs once and is reused for later calls.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom lookup.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand resolves a leading "~" or "~/..." against the home directory. Paths
// without the prefix, and paths like "~user", are returned unchanged, as is
// the input when the home directory cannot be resolved.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildePrefixConstant) {
		return candidatePath
	}

	remainder := candidatePath[len(tildePrefixConstant):]
	if len(remainder) > 0 && !os.IsPathSeparator(remainder[0]) && remainder[0] != '/' {
		return candidatePath
	}

	expander.resolveOnce.Do(func() {
		homeDirectory, lookupError := expander.provider()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	if len(remainder) == 0 {
		return expander.homeDirectory
	}
	return filepath.Join(expander.homeDirectory, strings.TrimLeft(remainder, "/"+string(os.PathSeparator)))
}
