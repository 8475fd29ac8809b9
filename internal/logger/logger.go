package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

const loggerKey contextKey = "logger"

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Initialize sets up the global logger. format is "console" or "json".
func Initialize(level string, format string) {
	InitializeWriter(os.Stderr, level, format)
}

// InitializeWriter sets up the global logger writing to out
func InitializeWriter(out io.Writer, level string, format string) {
	output := out
	if format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logLevel := zerolog.InfoLevel
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	globalLogger = zerolog.New(output).With().Timestamp().Logger()
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &globalLogger
}

// FromContext retrieves logger from context
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
		return logger
	}
	return &globalLogger
}

// withLogger adds logger to context
func withLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRunID creates a logger tagged with the sync run ID
func WithRunID(ctx context.Context, runID string) context.Context {
	logger := FromContext(ctx).With().Str("run_id", runID).Logger()
	return withLogger(ctx, &logger)
}

// WithRegion creates a logger tagged with a region and variable
func WithRegion(ctx context.Context, region, variable string) context.Context {
	logger := FromContext(ctx).With().
		Str("region", region).
		Str("variable", variable).
		Logger()
	return withLogger(ctx, &logger)
}
