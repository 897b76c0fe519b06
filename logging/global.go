package logging

import (
	"log/slog"
	"os"
	"strings"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Close releases the rotating log file if one was opened
func (ls *LoggingService) Close() error {
	if ls == nil || ls.rotating == nil {
		return nil
	}
	return ls.rotating.Close()
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance
func InitLogger(logDir string) {
	logger, rotating := SetupLoggerWithOptions(logDir, slog.LevelInfo, 4, 100*1024*1024)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// InitLoggerWithOptions initializes the global logger with the configured
// environment, level, retention and file size limit
func InitLoggerWithOptions(logDir, env, logLevel string, retentionWeeks int, maxFileSize int64) {
	consoleLevel := GetConsoleLogLevel(env, logLevel, false)
	logger, rotating := SetupLoggerWithOptions(logDir, consoleLevel, retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// parseLogLevel maps a level string to a slog.Level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level for the given environment.
// Test runs stay quiet unless verbose; LOG_LEVEL overrides elsewhere.
func GetConsoleLogLevel(env, logLevel string, verbose bool) slog.Level {
	if env == "test" {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case "dev", "development":
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// GetFileLogLevel returns the level for the JSON file handler. Files always
// capture debug so incidents can be reconstructed after the fact.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		fallback.Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		fallback.Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		fallback.Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		fallback.Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
