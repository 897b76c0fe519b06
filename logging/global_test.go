package logging

import (
	"log/slog"
	"testing"
)

// ResetForTest re-initializes the global logging service against a temp
// directory and registers cleanup, keeping tests isolated from each other.
func ResetForTest(t *testing.T, logDir, env, logLevel string, retentionWeeks int, maxFileSize int64) {
	t.Helper()

	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}

	consoleLevel := GetConsoleLogLevel(env, logLevel, testing.Verbose())
	logger, rotating := SetupLoggerWithOptions(logDir, consoleLevel, retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{
		Logger:   logger,
		rotating: rotating,
	}
	slog.SetDefault(logger)

	t.Cleanup(func() {
		if DefaultLoggingService != nil {
			_ = DefaultLoggingService.Close()
			DefaultLoggingService = nil
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetConsoleLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		logLevelStr string
		verbose     bool
		expected    slog.Level
	}{
		{"dev defaults to info", "dev", "", false, slog.LevelInfo},
		{"test quiet defaults to error", "test", "", false, slog.LevelError},
		{"test verbose defaults to info", "test", "", true, slog.LevelInfo},
		{"prod defaults to warn", "prod", "", false, slog.LevelWarn},
		{"staging defaults to warn", "staging", "", false, slog.LevelWarn},
		{"prod with debug override", "prod", "debug", false, slog.LevelDebug},
		{"dev with error override", "dev", "error", false, slog.LevelError},
		{"test with debug override (ignored)", "test", "debug", false, slog.LevelError},
		{"test with debug override (ignored) verbose", "test", "debug", true, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetConsoleLogLevel(tt.env, tt.logLevelStr, tt.verbose)
			if got != tt.expected {
				t.Errorf("GetConsoleLogLevel(%v, %q, %v) = %v, want %v", tt.env, tt.logLevelStr, tt.verbose, got, tt.expected)
			}
		})
	}
}

func TestGetFileLogLevel(t *testing.T) {
	got := GetFileLogLevel()
	if got != slog.LevelDebug {
		t.Errorf("GetFileLogLevel() = %v, want %v", got, slog.LevelDebug)
	}
}
