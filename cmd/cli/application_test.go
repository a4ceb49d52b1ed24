package cli

import (
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"

	updatecmd "github.com/temirov/depbump/cmd/cli/update"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: debug\n  log_format: console\ntools:\n  update:\n    dry_run: true\n    assume_yes: true\n    draft_prs: true\nfleet:\n  config_path: ~/fleets/frontend.yaml\n"
	testExpectedSubcommandCount       = 3
)

func writeConfigurationFile(testInstance *testing.T) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))
	return configurationPath
}

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, subcommand := range application.rootCommand.Commands() {
		registeredNames[subcommand.Name()] = true
	}

	require.True(testInstance, registeredNames["update"])
	require.True(testInstance, registeredNames["fleet"])
	require.True(testInstance, registeredNames["report"])
	require.GreaterOrEqual(testInstance, len(registeredNames), testExpectedSubcommandCount)
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.False(testInstance, application.configuration.Tools.Update.DryRun)
	require.Empty(testInstance, application.fleetConfigPath())
}

func TestInitializeConfigurationDecodesConfigurationFile(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeConfigurationFile(testInstance)

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.True(testInstance, application.configuration.Tools.Update.DryRun)
	require.True(testInstance, application.configuration.Tools.Update.AssumeYes)
	require.True(testInstance, application.configuration.Tools.Update.DraftPullRequests)
	require.Equal(testInstance, "~/fleets/frontend.yaml", application.fleetConfigPath())
}

func TestInitializeConfigurationHonorsFlagOverrides(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeConfigurationFile(testInstance)

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "warn"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))
	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
}

func TestUpdateConfigurationDecodesFromMap(testInstance *testing.T) {
	configurationValues := map[string]any{
		"dry_run":    true,
		"assume_yes": false,
		"draft_prs":  true,
	}

	var decodedConfiguration updatecmd.CommandConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &decodedConfiguration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(configurationValues))

	require.True(testInstance, decodedConfiguration.DryRun)
	require.False(testInstance, decodedConfiguration.AssumeYes)
	require.True(testInstance, decodedConfiguration.DraftPullRequests)
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "chatty"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.Error(testInstance, initializationError)
	require.Contains(testInstance, initializationError.Error(), "unable to create logger")
}
