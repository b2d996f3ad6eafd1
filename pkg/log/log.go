// Package log wraps zerolog with the process-wide logger and the child
// loggers used throughout the worker pipeline to tag a record with worker
// identity, coordinator task uuid/id, and backend task id where available.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Use JSON or console output
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithWorker creates a child logger tagged with the worker's compressed
// public key, the identity every error record must carry per the error
// handling design.
func WithWorker(pubkey string) zerolog.Logger {
	return Logger.With().Str("worker", pubkey).Logger()
}

// WithTaskUUID tags a logger with the coordinator's task uuid.
func WithTaskUUID(l zerolog.Logger, uuid string) zerolog.Logger {
	return l.With().Str("task_uuid", uuid).Logger()
}

// WithTaskID tags a logger with the coordinator's logical task id.
func WithTaskID(l zerolog.Logger, taskID string) zerolog.Logger {
	return l.With().Str("task_id", taskID).Logger()
}

// WithBackendTaskID tags a logger with the proving backend's task id, when
// one has been assigned yet.
func WithBackendTaskID(l zerolog.Logger, backendTaskID string) zerolog.Logger {
	if backendTaskID == "" {
		return l
	}
	return l.With().Str("backend_task_id", backendTaskID).Logger()
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
