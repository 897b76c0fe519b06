// Package health provides health checking for the PSUR generator service.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/openpv/psur-generator/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store    interfaces.ReportStore
	schedule string // daily generation time, HH:MM
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.ReportStore, schedule string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:    store,
		schedule: schedule,
	}
}

// HealthCheck returns HTTP-specific health data with stricter thresholds
// Used by /health HTTP endpoint
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	document := h.store.GetDocument()
	report := h.store.GetReport()
	lastGenerated := h.store.GetLastGenerated()
	generating := h.store.IsGenerating()

	reportAge := time.Since(lastGenerated)

	failedSections := 0
	fullSections := 0
	if report != nil {
		failedSections = report.SectionCount(interfaces.SectionFailed)
		fullSections = report.SectionCount(interfaces.SectionFull)
	}

	// Determine health status and HTTP code. The report regenerates once a
	// day, so anything older than two cycles means the scheduler is stuck.
	switch {
	case len(document) == 0 || report == nil:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case reportAge > 48*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case reportAge > 25*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case failedSections > 0:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case generating && reportAge > 6*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	// Build response data (no system metrics, only report-related fields)
	data = map[string]any{
		"last_generated":   lastGenerated.Format(time.RFC3339),
		"report_age_hours": math.Round(reportAge.Hours()*10) / 10,
		"size_bytes":       len(document),
		"sections_full":    fullSections,
		"sections_failed":  failedSections,
		"is_generating":    generating,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled generation time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	at, err := time.Parse("15:04", h.schedule)
	if err != nil {
		at, _ = time.Parse("15:04", "06:00")
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())

	// If today's slot already passed, the next run is tomorrow
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
