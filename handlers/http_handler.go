// Package handlers provides HTTP request handlers for the PSUR service.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/openpv/psur-generator/interfaces"
	"github.com/openpv/psur-generator/logging"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store         interfaces.ReportStore
	runner        interfaces.GenerationRunner
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.ReportStore, runner interfaces.GenerationRunner, healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		store:         store,
		runner:        runner,
		healthChecker: healthChecker,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// This is a placeholder - the actual routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// HealthResponseImpl defines the structure for consistent JSON ordering
type HealthResponseImpl struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	UptimeHuman   string                 `json:"uptime_human"`
	NextUpdate    string                 `json:"next_update"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// ServeReport serves the latest generated document as a Word download
func (h *HTTPHandlerImpl) ServeReport(w http.ResponseWriter, r *http.Request) {
	document := h.store.GetDocument()
	if len(document) == 0 {
		RespondWithError(w, http.StatusServiceUnavailable, "No report has been generated yet")
		return
	}

	lastGenerated := h.store.GetLastGenerated()
	filename := fmt.Sprintf("PSUR_%s.docx", lastGenerated.Format("2006-01-02"))

	w.Header().Set("Content-Type", DocxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(document)))
	w.Header().Set("Last-Modified", lastGenerated.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(document); err != nil {
		logging.Warn("Failed to write report response", "error", err)
	}
}

// ReportStatus returns the generation report for the published document
func (h *HTTPHandlerImpl) ReportStatus(w http.ResponseWriter, r *http.Request) {
	report := h.store.GetReport()
	if report == nil {
		RespondWithError(w, http.StatusServiceUnavailable, "No generation has completed yet")
		return
	}

	response := map[string]interface{}{
		"report":          report,
		"is_generating":   h.store.IsGenerating(),
		"next_generation": h.healthChecker.CalculateNextUpdate().Format(time.RFC3339),
	}

	RespondWithJSON(w, http.StatusOK, response)
}

// TriggerGenerate starts a regeneration in the background unless one is
// already running
func (h *HTTPHandlerImpl) TriggerGenerate(w http.ResponseWriter, r *http.Request) {
	if h.store.IsGenerating() {
		RespondWithError(w, http.StatusConflict, "A generation is already in progress")
		return
	}

	go func() {
		if err := h.runner.GenerateNow("manual"); err != nil {
			logging.Error("Manual report generation failed", "error", err)
		}
	}()

	RespondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "generation started",
	})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// Get memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Calculate uptime
	uptime := time.Since(h.store.GetServerStartTime())

	status, data, httpStatus := h.healthChecker.HealthCheck()

	response := HealthResponseImpl{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   formatUptimeHuman(uptime),
		NextUpdate:    h.healthChecker.CalculateNextUpdate().Format(time.RFC3339),
		Data:          data,
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}
