package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvLogLevel overrides the logging level.
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogFormat overrides the logging format.
	EnvLogFormat = "LOG_FORMAT"
)

// Log output formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// LogLevel is a configuration-friendly logging level name.
type LogLevel string

// Supported logging levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ToSlogLevel converts the configured level to a slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	switch LogLevel(strings.ToLower(string(l))) {
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

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	Level  LogLevel `toml:"level"`
	Format string   `toml:"format"`
}

// Finalize applies defaults, loads environment overrides, and validates
// the logging configuration.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = LogLevelInfo
	}
	if c.Format == "" {
		c.Format = LogFormatJSON
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Format = v
	}
}

func (c *LoggingConfig) validate() error {
	switch LogLevel(strings.ToLower(string(c.Level))) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid level: %s", c.Level)
	}

	switch c.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("invalid format: %s", c.Format)
	}
	return nil
}

// Logger builds a slog.Logger according to the configuration.
func (c *LoggingConfig) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: c.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	if c.Format == LogFormatText {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
