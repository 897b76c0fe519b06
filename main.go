// Command psur-generator builds Periodic Safety Update Report sections from
// source documents and either serves the assembled report over HTTP or
// writes it to disk once, depending on RUN_MODE.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/openpv/psur-generator/config"
	"github.com/openpv/psur-generator/data"
	"github.com/openpv/psur-generator/logging"
	"github.com/openpv/psur-generator/psurgen"
	"github.com/openpv/psur-generator/scheduler"
	"github.com/openpv/psur-generator/server"
	"github.com/openpv/psur-generator/validation"
)

func init() {
	// Read the env variables from the working directory
	if err := godotenv.Load(); err != nil {
		// If failed, try loading from the executable directory. Relative
		// source document paths resolve against it as well.
		ex, exErr := os.Executable()
		if exErr != nil {
			logging.Error("Failed to get executable path", "error", exErr)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			logging.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}

		// A missing .env is fine, config falls back to defaults
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions("logs", cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer func() {
		if err := logging.DefaultLoggingService.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file:", err)
		}
	}()

	profile, err := psurgen.LoadProfile(cfg.ProfilePath)
	if err != nil {
		logging.Error("Failed to load product profile", "path", cfg.ProfilePath, "error", err)
		os.Exit(1)
	}
	generator := psurgen.NewGenerator(profile)

	if cfg.RunMode == config.RunModeOnce {
		if err := generateOnce(cfg, generator); err != nil {
			logging.Error("One-shot generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	serve(cfg, generator)
}

// generateOnce is the batch path: one synchronous generation run, validated
// and written to the configured output file.
func generateOnce(cfg *config.Config, generator *psurgen.Generator) error {
	logging.Info("Starting one-shot report generation", "output", cfg.OutputPath)
	start := time.Now()

	document, report, err := generator.Generate(cfg.GenerationInputs())
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	validator := validation.NewReportValidator()
	if err := validator.ValidateReport(document, report); err != nil {
		return fmt.Errorf("generated report failed validation: %w", err)
	}
	for _, finding := range validator.ReportQuality(report) {
		logging.Warn("Report quality finding", "finding", finding)
	}

	if err := os.WriteFile(cfg.OutputPath, document, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.OutputPath, err)
	}

	logging.Info("Report written",
		"path", cfg.OutputPath,
		"duration", time.Since(start).String(),
		"sections", len(report.Sections),
		"size_bytes", report.SizeBytes,
	)

	return nil
}

// serve runs the HTTP service: an initial generation in the background so the
// operational endpoints come up immediately, daily regeneration through the
// scheduler, and graceful shutdown on SIGINT/SIGTERM.
func serve(cfg *config.Config, generator *psurgen.Generator) {
	container := data.NewReportContainer()
	container.SetServerStartTime(time.Now())

	sched := scheduler.NewScheduler(container, generator, cfg.GenerationInputs(), cfg.ReportSchedule)

	go func() {
		if err := sched.Start(); err != nil {
			logging.Error("Failed to start the report scheduler", "error", err)
			os.Exit(1)
		}
	}()

	srv := server.NewServer(cfg, container, sched)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	sched.Stop()

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown finished with errors", "error", err)
	}
}
