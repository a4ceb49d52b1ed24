package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fleetcmd "github.com/temirov/depbump/cmd/cli/fleet"
	reportcmd "github.com/temirov/depbump/cmd/cli/report"
	updatecmd "github.com/temirov/depbump/cmd/cli/update"
	"github.com/temirov/depbump/internal/utils"
	flagutils "github.com/temirov/depbump/internal/utils/flags"
)

const (
	applicationNameConstant                 = "depbump"
	applicationShortDescriptionConstant     = "Bulk dependency updater for fleets of repositories"
	applicationLongDescriptionConstant      = "depbump rewrites a dependency's version across every configured repository, refreshing lockfiles and pushing each change on a dedicated branch."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatDescriptionConstant            = "log output format"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "DEPBUMP"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	updateConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".update"
	fleetConfigurationKeyConstant           = "fleet"
	fleetConfigPathConfigKeyConstant        = fleetConfigurationKeyConstant + ".config_path"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
	Fleet  ApplicationFleetConfiguration  `mapstructure:"fleet"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Update updatecmd.CommandConfiguration `mapstructure:"update"`
}

// ApplicationFleetConfiguration locates the fleet configuration file.
type ApplicationFleetConfiguration struct {
	ConfigPath string `mapstructure:"config_path"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(
			configurationNameConstant,
			configurationTypeConstant,
			environmentPrefixConstant,
			[]string{defaultConfigurationSearchPathConstant},
		),
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
	}
	application.rootCommand = application.buildRootCommand()
	return application
}

func (application *Application) buildRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}
	rootCommand.SetContext(context.Background())
	application.registerPersistentFlags(rootCommand)

	loggerProvider := func() *zap.Logger { return application.logger }
	subcommandBuilders := []func() (*cobra.Command, error){
		(&updatecmd.CommandBuilder{
			LoggerProvider: loggerProvider,
			ConfigurationProvider: func() updatecmd.CommandConfiguration {
				return application.configuration.Tools.Update
			},
			FleetConfigPathProvider: application.fleetConfigPath,
		}).Build,
		(&fleetcmd.CommandGroupBuilder{
			LoggerProvider:          loggerProvider,
			FleetConfigPathProvider: application.fleetConfigPath,
		}).Build,
		(&reportcmd.CommandGroupBuilder{
			LoggerProvider:          loggerProvider,
			FleetConfigPathProvider: application.fleetConfigPath,
		}).Build,
	}
	for _, buildSubcommand := range subcommandBuilders {
		subcommand, buildError := buildSubcommand()
		if buildError != nil {
			continue
		}
		rootCommand.AddCommand(subcommand)
	}

	return rootCommand
}

func (application *Application) registerPersistentFlags(rootCommand *cobra.Command) {
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(
			string(utils.LogFormatStructured),
			[]string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)},
			logFormatDescriptionConstant,
		),
	)
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(os.Args[1:]))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(
		application.configurationFilePath,
		application.configurationDefaults(),
		&application.configuration,
	)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) configurationDefaults() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		fleetConfigPathConfigKeyConstant: "",
	}
	for configurationKey, configurationValue := range updatecmd.DefaultConfigurationValues(updateConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

func (application *Application) fleetConfigPath() string {
	return strings.TrimSpace(application.configuration.Fleet.ConfigPath)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}
	if len(arguments) == 0 {
		return command.Help()
	}
	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}
	syncError := application.logger.Sync()
	if syncError == nil || errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL) {
		return nil
	}
	return syncError
}

// persistentFlagChanged walks from the invoked command up to the root so flag
// overrides parsed at any level are detected.
func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	for currentCommand := command; currentCommand != nil; currentCommand = currentCommand.Parent() {
		if currentCommand.PersistentFlags().Changed(flagName) {
			return true
		}
	}
	return false
}
