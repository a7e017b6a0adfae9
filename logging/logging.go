package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v10"
)

// FormatText selects the human-readable text handler. Any other format selects JSON.
const FormatText = "text"

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoggerConfigFromEnv reads LOG_LEVEL and LOG_FORMAT from the process environment.
func LoggerConfigFromEnv() (LoggerConfig, error) {
	var config LoggerConfig

	err := env.Parse(&config)
	if err != nil {
		return LoggerConfig{}, fmt.Errorf("parsing logger config: %w", err)
	}

	return config, nil
}

// NewLogger creates a new slog.Logger writing to w.
// The level defaults to INFO if invalid or empty; the format defaults to JSON.
func NewLogger(config LoggerConfig, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{
		AddSource:   false,
		Level:       parseLevel(config.Level),
		ReplaceAttr: nil,
	}

	if strings.EqualFold(config.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, options))
	}

	return slog.New(slog.NewJSONHandler(w, options))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
