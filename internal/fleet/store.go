package fleet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/depbump/internal/packagemanager"
	pathutils "github.com/temirov/depbump/internal/utils/path"
)

const (
	// DefaultConfigurationRelativePath locates the fleet configuration under the user's home directory.
	DefaultConfigurationRelativePath = ".config/depbump/fleet.yaml"

	defaultCommitMessageConstant                = "chore: update dependencies"
	configurationLoadErrorTemplateConstant      = "failed to load fleet configuration: %w"
	configurationParseErrorTemplateConstant     = "failed to parse fleet configuration: %w"
	configurationEncodeErrorTemplateConstant    = "failed to encode fleet configuration: %w"
	configurationWriteErrorTemplateConstant     = "failed to write fleet configuration: %w"
	configurationDirectoryErrorTemplateConstant = "failed to create fleet configuration directory: %w"
	repositoryNotDirectoryTemplateConstant      = "repository path %s is not a directory"
	repositoryMissingGitTemplateConstant        = "repository path %s is not a git repository"
	repositoryAlreadyRegisteredTemplateConstant = "repository %s is already registered"
	repositoryNotRegisteredTemplateConstant     = "repository %s is not registered"
	configurationPathRequiredMessageConstant    = "fleet configuration path must be provided"
	gitMetadataDirectoryNameConstant            = ".git"
	configurationFilePermissionsConstant        = 0o600
	configurationDirectoryPermissionsConstant   = 0o755
)

// ErrConfigurationPathRequired indicates the store was constructed without a path.
var ErrConfigurationPathRequired = errors.New(configurationPathRequiredMessageConstant)

// RepositoryReference identifies one managed repository.
type RepositoryReference struct {
	Path      string `yaml:"path"`
	RemoteURL string `yaml:"remote_url,omitempty"`
}

// Configuration captures the persisted fleet state.
type Configuration struct {
	DefaultCommitMessage  string                 `yaml:"commit_message"`
	DefaultPackageManager packagemanager.Manager `yaml:"package_manager"`
	Repositories          []RepositoryReference  `yaml:"repositories"`
}

// Store loads and persists fleet configuration at a fixed path.
type Store struct {
	configurationPath string
	pathSanitizer     *pathutils.RepositoryPathSanitizer
}

// NewStore constructs a Store for the provided configuration path, expanding a leading tilde.
func NewStore(configurationPath string) (*Store, error) {
	trimmedPath := strings.TrimSpace(configurationPath)
	if len(trimmedPath) == 0 {
		return nil, ErrConfigurationPathRequired
	}

	expandedPath := pathutils.NewHomeExpander().Expand(trimmedPath)
	return &Store{
		configurationPath: expandedPath,
		pathSanitizer:     pathutils.NewRepositoryPathSanitizer(),
	}, nil
}

// DefaultConfigurationPath resolves the fleet configuration path under the user's home directory.
func DefaultConfigurationPath() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", homeError
	}
	return filepath.Join(homeDirectory, filepath.FromSlash(DefaultConfigurationRelativePath)), nil
}

// ConfigurationPath exposes the resolved configuration file location.
func (store *Store) ConfigurationPath() string {
	return store.configurationPath
}

// Load reads the fleet configuration, seeding defaults when no file exists yet.
func (store *Store) Load() (Configuration, error) {
	configurationContents, readError := os.ReadFile(store.configurationPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return defaultConfiguration(), nil
		}
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	loadedConfiguration := Configuration{}
	if unmarshalError := yaml.Unmarshal(configurationContents, &loadedConfiguration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	applyConfigurationDefaults(&loadedConfiguration)
	store.expandRepositoryPaths(&loadedConfiguration)

	return loadedConfiguration, nil
}

// Save persists the configuration, creating parent directories when needed.
func (store *Store) Save(configuration Configuration) error {
	encodedConfiguration, encodeError := yaml.Marshal(configuration)
	if encodeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplateConstant, encodeError)
	}

	configurationDirectory := filepath.Dir(store.configurationPath)
	if directoryError := os.MkdirAll(configurationDirectory, configurationDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(configurationDirectoryErrorTemplateConstant, directoryError)
	}

	if writeError := os.WriteFile(store.configurationPath, encodedConfiguration, configurationFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplateConstant, writeError)
	}

	return nil
}

// AddRepository validates the path and registers it with the fleet.
func (store *Store) AddRepository(repositoryPath string, remoteURL string) (Configuration, error) {
	sanitizedPaths := store.pathSanitizer.Sanitize([]string{repositoryPath})
	if len(sanitizedPaths) == 0 {
		return Configuration{}, fmt.Errorf(repositoryNotDirectoryTemplateConstant, repositoryPath)
	}
	resolvedPath := sanitizedPaths[0]

	pathInformation, statError := os.Stat(resolvedPath)
	if statError != nil || !pathInformation.IsDir() {
		return Configuration{}, fmt.Errorf(repositoryNotDirectoryTemplateConstant, resolvedPath)
	}

	gitMetadataPath := filepath.Join(resolvedPath, gitMetadataDirectoryNameConstant)
	if _, gitStatError := os.Stat(gitMetadataPath); gitStatError != nil {
		return Configuration{}, fmt.Errorf(repositoryMissingGitTemplateConstant, resolvedPath)
	}

	configuration, loadError := store.Load()
	if loadError != nil {
		return Configuration{}, loadError
	}

	for _, registeredRepository := range configuration.Repositories {
		if registeredRepository.Path == resolvedPath {
			return Configuration{}, fmt.Errorf(repositoryAlreadyRegisteredTemplateConstant, resolvedPath)
		}
	}

	// Registration order is the processing order, so new repositories append.
	configuration.Repositories = append(configuration.Repositories, RepositoryReference{
		Path:      resolvedPath,
		RemoteURL: strings.TrimSpace(remoteURL),
	})

	if saveError := store.Save(configuration); saveError != nil {
		return Configuration{}, saveError
	}

	return configuration, nil
}

// RemoveRepository deregisters a repository from the fleet.
func (store *Store) RemoveRepository(repositoryPath string) (Configuration, error) {
	sanitizedPaths := store.pathSanitizer.Sanitize([]string{repositoryPath})
	if len(sanitizedPaths) == 0 {
		return Configuration{}, fmt.Errorf(repositoryNotRegisteredTemplateConstant, repositoryPath)
	}
	resolvedPath := sanitizedPaths[0]

	configuration, loadError := store.Load()
	if loadError != nil {
		return Configuration{}, loadError
	}

	remainingRepositories := make([]RepositoryReference, 0, len(configuration.Repositories))
	repositoryRemoved := false
	for _, registeredRepository := range configuration.Repositories {
		if registeredRepository.Path == resolvedPath {
			repositoryRemoved = true
			continue
		}
		remainingRepositories = append(remainingRepositories, registeredRepository)
	}

	if !repositoryRemoved {
		return Configuration{}, fmt.Errorf(repositoryNotRegisteredTemplateConstant, resolvedPath)
	}

	configuration.Repositories = remainingRepositories
	if saveError := store.Save(configuration); saveError != nil {
		return Configuration{}, saveError
	}

	return configuration, nil
}

// SetDefaultPackageManager updates the fleet-wide fallback package manager.
func (store *Store) SetDefaultPackageManager(manager packagemanager.Manager) (Configuration, error) {
	configuration, loadError := store.Load()
	if loadError != nil {
		return Configuration{}, loadError
	}

	configuration.DefaultPackageManager = manager
	if saveError := store.Save(configuration); saveError != nil {
		return Configuration{}, saveError
	}

	return configuration, nil
}

// SetDefaultCommitMessage updates the fleet-wide commit message.
func (store *Store) SetDefaultCommitMessage(commitMessage string) (Configuration, error) {
	configuration, loadError := store.Load()
	if loadError != nil {
		return Configuration{}, loadError
	}

	configuration.DefaultCommitMessage = strings.TrimSpace(commitMessage)
	applyConfigurationDefaults(&configuration)
	if saveError := store.Save(configuration); saveError != nil {
		return Configuration{}, saveError
	}

	return configuration, nil
}

func defaultConfiguration() Configuration {
	return Configuration{
		DefaultCommitMessage:  defaultCommitMessageConstant,
		DefaultPackageManager: packagemanager.ManagerNpm,
		Repositories:          []RepositoryReference{},
	}
}

func applyConfigurationDefaults(configuration *Configuration) {
	if len(strings.TrimSpace(configuration.DefaultCommitMessage)) == 0 {
		configuration.DefaultCommitMessage = defaultCommitMessageConstant
	}
	if len(configuration.DefaultPackageManager) == 0 {
		configuration.DefaultPackageManager = packagemanager.ManagerNpm
	}
	if configuration.Repositories == nil {
		configuration.Repositories = []RepositoryReference{}
	}
}

func (store *Store) expandRepositoryPaths(configuration *Configuration) {
	homeExpander := pathutils.NewHomeExpander()
	for repositoryIndex := range configuration.Repositories {
		configuration.Repositories[repositoryIndex].Path = homeExpander.Expand(strings.TrimSpace(configuration.Repositories[repositoryIndex].Path))
	}
}
