package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unknownLogLevelTemplateConstant  = "unsupported log level: %s"
	unknownLogFormatTemplateConstant = "unsupported log format: %s"
	jsonEncodingNameConstant         = "json"
	consoleEncodingNameConstant      = "console"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Accepted log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Accepted log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerFactory builds zap loggers from the configured level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested level and format.
// Structured output uses the production JSON encoder; console output uses the
// development encoder without stack traces.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch requestedLogLevel {
	case LogLevelDebug:
		zapLevel = zapcore.DebugLevel
	case LogLevelInfo:
		zapLevel = zapcore.InfoLevel
	case LogLevelWarn:
		zapLevel = zapcore.WarnLevel
	case LogLevelError:
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf(unknownLogLevelTemplateConstant, requestedLogLevel)
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLevel)

	switch requestedLogFormat {
	case LogFormatStructured:
		loggerConfiguration.Encoding = jsonEncodingNameConstant
	case LogFormatConsole:
		loggerConfiguration.Encoding = consoleEncodingNameConstant
		loggerConfiguration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		loggerConfiguration.DisableStacktrace = true
	default:
		return nil, fmt.Errorf(unknownLogFormatTemplateConstant, requestedLogFormat)
	}

	return loggerConfiguration.Build()
}
