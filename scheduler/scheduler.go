// Package scheduler provides automated report regeneration scheduling and
// health monitoring for the PSUR service. It handles cron-based generation
// runs and coordinates document swaps with the report container using
// dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/openpv/psur-generator/interfaces"
	"github.com/openpv/psur-generator/logging"
	"github.com/openpv/psur-generator/metrics"
	"github.com/openpv/psur-generator/psurgen/entities"
	"github.com/openpv/psur-generator/validation"
)

// Compile-time checks to ensure Scheduler implements the scheduling interfaces
var (
	_ interfaces.Scheduler        = (*Scheduler)(nil)
	_ interfaces.GenerationRunner = (*Scheduler)(nil)
)

// Scheduler handles report regeneration and health monitoring using dependency injection
type Scheduler struct {
	store     interfaces.ReportStore
	generator interfaces.ReportGenerator
	inputs    entities.GenerationInputs
	schedule  string
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// The schedule is a daily HH:MM time in the server's local zone.
func NewScheduler(store interfaces.ReportStore, generator interfaces.ReportGenerator, inputs entities.GenerationInputs, schedule string) *Scheduler {
	return &Scheduler{
		store:     store,
		generator: generator,
		inputs:    inputs,
		schedule:  schedule,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start runs an initial generation and schedules the daily regeneration
func (s *Scheduler) Start() error {
	// Initial generation
	if err := s.generate("startup"); err != nil {
		logging.Error("Failed to perform initial report generation", "error", err)
		return fmt.Errorf("initial report generation failed: %w", err)
	}

	// Regenerate daily at the configured time
	_, err := s.scheduler.Every(1).Days().At(s.schedule).Do(func() {
		if err := s.generate("schedule"); err != nil {
			logging.Error("Failed to regenerate report", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule regeneration", "error", err)
		return fmt.Errorf("failed to schedule regeneration: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// GenerateNow runs a generation pass outside the schedule, for the manual
// trigger endpoint. Concurrent runs are skipped, not queued.
func (s *Scheduler) GenerateNow(trigger string) error {
	return s.generate(trigger)
}

// generate performs a complete generation run and publishes the result
// only when it passes validation
func (s *Scheduler) generate(trigger string) error {
	// Prevent concurrent generations
	if !s.store.BeginGeneration() {
		logging.Info("Generation already in progress, skipping...")
		return nil
	}
	defer s.store.EndGeneration()

	logging.Info(fmt.Sprintf("Starting report generation at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	document, report, err := s.generator.Generate(s.inputs)
	metrics.RecordGeneration(trigger, report, err)
	if err != nil {
		logging.Error("Failed to generate report", "error", err, "trigger", trigger)
		return fmt.Errorf("failed to generate report: %w", err)
	}

	validator := validation.NewReportValidator()
	if err := validator.ValidateReport(document, report); err != nil {
		logging.Error("Generated report failed validation", "error", err, "trigger", trigger)
		return fmt.Errorf("generated report failed validation: %w", err)
	}

	// Log degraded sections and suspicious output
	if findings := validator.ReportQuality(report); len(findings) > 0 {
		logging.Warn("Report quality findings",
			"total", len(findings),
			"findings", findings,
		)
	}

	// Atomic swap using the injected store
	s.store.UpdateReport(document, report)

	elapsed := time.Since(start)
	logging.Info("Report generation completed",
		"duration", elapsed.String(),
		"sections", len(report.Sections),
		"size_bytes", report.SizeBytes,
		"trigger", trigger,
	)

	return nil
}

// startHealthMonitoring watches the age of the published report
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastGenerated := s.store.GetLastGenerated()
			if time.Since(lastGenerated) > 25*time.Hour {
				logging.Warn("Report hasn't been regenerated in over 25 hours")
			}
		}
	}()
}
