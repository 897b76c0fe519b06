// Package interfaces defines core abstractions for the PSUR generator
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/openpv/psur-generator/psurgen/entities"
)

// Section statuses as recorded in a GenerationReport. The first three
// mirror the extraction outcomes; skipped and failed exist only at the
// report level.
const (
	SectionFull    = "full"
	SectionPartial = "partial"
	SectionEmpty   = "empty"
	SectionSkipped = "skipped"
	SectionFailed  = "failed"
)

// SectionResult records how one report section fared during generation.
type SectionResult struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Status   string        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration"`
}

// GenerationReport summarizes one generation run: per-section outcomes,
// warnings collected along the way, and the output size.
type GenerationReport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Duration    time.Duration   `json:"duration"`
	Sections    []SectionResult `json:"sections"`
	Warnings    []string        `json:"warnings,omitempty"`
	SizeBytes   int             `json:"sizeBytes"`
}

// AddSection appends a section result.
func (r *GenerationReport) AddSection(res SectionResult) {
	r.Sections = append(r.Sections, res)
}

// AddWarning appends a warning message.
func (r *GenerationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// SectionCount tallies sections by status.
func (r *GenerationReport) SectionCount(status string) int {
	n := 0
	for _, s := range r.Sections {
		if s.Status == status {
			n++
		}
	}
	return n
}

// ReportStore defines the contract for report storage operations.
// It provides thread-safe access to the generated document and its
// generation report with atomic operations for zero-downtime updates.
type ReportStore interface {
	// Report retrieval methods
	GetDocument() []byte
	GetReport() *GenerationReport
	GetLastGenerated() time.Time
	IsGenerating() bool
	GetServerStartTime() time.Time

	// Report update methods
	UpdateReport(document []byte, report *GenerationReport)
	BeginGeneration() bool
	EndGeneration()
}

// ReportGenerator defines the contract for assembling a report from the
// configured source documents.
type ReportGenerator interface {
	// Generate runs every configured pipeline and returns the document
	// bytes together with the per-section generation report.
	Generate(inputs entities.GenerationInputs) ([]byte, *GenerationReport, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated report regeneration and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// GenerationRunner triggers an on-demand generation run. The run itself
// guards against concurrent executions.
type GenerationRunner interface {
	GenerateNow(trigger string) error
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// ServeHTTP implements the http.Handler interface
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// Specific endpoint handlers
	ServeReport(w http.ResponseWriter, r *http.Request)
	ReportStatus(w http.ResponseWriter, r *http.Request)
	TriggerGenerate(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status together with the
	// HTTP status code the /health endpoint should answer with
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled regeneration time
	CalculateNextUpdate() time.Time
}

// ReportValidator defines the contract for validating a generated report
// before it is published to the store.
type ReportValidator interface {
	// ValidateReport checks that the generated document is usable
	ValidateReport(document []byte, report *GenerationReport) error

	// ReportQuality flags degraded sections and suspicious output
	ReportQuality(report *GenerationReport) []string
}
