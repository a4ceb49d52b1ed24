package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depbump/internal/utils"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectBuildFailure bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "warn_structured", requestedLogLevel: utils.LogLevelWarn, requestedLogFormat: utils.LogFormatStructured},
		{name: "error_console", requestedLogLevel: utils.LogLevelError, requestedLogFormat: utils.LogFormatConsole},
		{name: "unknown_level", requestedLogLevel: utils.LogLevel("chatty"), requestedLogFormat: utils.LogFormatStructured, expectBuildFailure: true},
		{name: "unknown_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat("plain"), expectBuildFailure: true},
		{name: "blank_level", requestedLogLevel: utils.LogLevel(""), requestedLogFormat: utils.LogFormatStructured, expectBuildFailure: true},
	}

	loggerFactory := utils.NewLoggerFactory()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectBuildFailure {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}
