package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.New("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// Slog converts l to the matching slog level.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.New("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// ParseLogFormat rejects unknown formats; blank input selects text.
func ParseLogFormat(raw string) (LogFormat, error) {
	return logFormatNormalizer.Parse(raw)
}
