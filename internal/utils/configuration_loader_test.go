package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depbump/internal/utils"
)

const (
	loaderTestEnvironmentPrefixConstant = "TESTDEPBUMP"
	loaderTestConfigurationName         = "config"
	loaderTestConfigurationType         = "yaml"
	loaderTestLogLevelKeyConstant       = "common.log_level"
	loaderTestConfigFileNameConstant    = "config.yaml"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
}

func writeLoaderConfigFile(testInstance *testing.T, directoryPath string, logLevel string) string {
	testInstance.Helper()
	configurationFilePath := filepath.Join(directoryPath, loaderTestConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common:\n  log_level: "+logLevel+"\n"), 0o600))
	return configurationFilePath
}

func newLoaderForDirectory(directoryPath string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(loaderTestConfigurationName, loaderTestConfigurationType, loaderTestEnvironmentPrefixConstant, []string{directoryPath})
}

func TestConfigurationLoaderAppliesDefaultsWithoutFile(testInstance *testing.T) {
	loader := newLoaderForDirectory(testInstance.TempDir())

	configuration := loaderTestConfiguration{}
	metadata, loadError := loader.LoadConfiguration("", map[string]any{loaderTestLogLevelKeyConstant: "info"}, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Empty(testInstance, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderFileOverridesDefaults(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := writeLoaderConfigFile(testInstance, configurationDirectory, "debug")
	loader := newLoaderForDirectory(configurationDirectory)

	configuration := loaderTestConfiguration{}
	metadata, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{loaderTestLogLevelKeyConstant: "info"}, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderEnvironmentOverridesFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := writeLoaderConfigFile(testInstance, configurationDirectory, "warn")
	loader := newLoaderForDirectory(configurationDirectory)

	testInstance.Setenv(loaderTestEnvironmentPrefixConstant+"_COMMON_LOG_LEVEL", "error")

	configuration := loaderTestConfiguration{}
	_, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{loaderTestLogLevelKeyConstant: "info"}, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
}

func TestConfigurationLoaderResolvesFileFromSearchPath(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := writeLoaderConfigFile(testInstance, configurationDirectory, "debug")
	loader := newLoaderForDirectory(configurationDirectory)

	configuration := loaderTestConfiguration{}
	metadata, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, loaderTestConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("common: [unclosed\n"), 0o600))
	loader := newLoaderForDirectory(configurationDirectory)

	configuration := loaderTestConfiguration{}
	_, loadError := loader.LoadConfiguration(configurationFilePath, nil, &configuration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}
