// Package data provides thread-safe storage for the generated PSUR document.
// It includes the ReportContainer struct with atomic operations for
// zero-downtime report swaps and thread-safe access to the latest
// generation report.
package data

import (
	"sync/atomic"
	"time"

	"github.com/openpv/psur-generator/interfaces"
	"github.com/openpv/psur-generator/logging"
)

// Compile-time check to ensure ReportContainer implements ReportStore
var _ interfaces.ReportStore = (*ReportContainer)(nil)

// ReportContainer holds the latest generated document with atomic pointers
// for zero-downtime updates
type ReportContainer struct {
	document        atomic.Value // []byte
	report          atomic.Value // *interfaces.GenerationReport
	lastGenerated   atomic.Value // time.Time
	generating      atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewReportContainer creates a new ReportContainer with empty data
func NewReportContainer() *ReportContainer {
	rc := &ReportContainer{}
	rc.document.Store(make([]byte, 0))
	rc.report.Store((*interfaces.GenerationReport)(nil))
	rc.lastGenerated.Store(time.Time{})
	rc.serverStartTime.Store(time.Time{}) // Initialize with zero value
	return rc
}

// Thread-safe getters with type check

// GetDocument returns the latest generated document bytes
func (rc *ReportContainer) GetDocument() []byte {
	if v := rc.document.Load(); v != nil {
		if document, ok := v.([]byte); ok {
			return document
		}
	}

	logging.Warn("Document is empty or invalid")
	return []byte{}
}

// GetReport returns the latest generation report, nil before the first run
func (rc *ReportContainer) GetReport() *interfaces.GenerationReport {
	if v := rc.report.Load(); v != nil {
		if report, ok := v.(*interfaces.GenerationReport); ok {
			return report
		}
	}

	logging.Warn("Generation report is empty or invalid")
	return nil
}

// GetLastGenerated returns the timestamp of the last successful generation
func (rc *ReportContainer) GetLastGenerated() time.Time {
	if v := rc.lastGenerated.Load(); v != nil {
		if lastGenerated, ok := v.(time.Time); ok {
			return lastGenerated
		}
	}

	logging.Warn("Could not get the last generated value")
	return time.Time{}
}

// IsGenerating returns true if a generation run is currently in progress
func (rc *ReportContainer) IsGenerating() bool {
	return rc.generating.Load()
}

// SetServerStartTime sets the server start time
func (rc *ReportContainer) SetServerStartTime(startTime time.Time) {
	rc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (rc *ReportContainer) GetServerStartTime() time.Time {
	if v := rc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateReport atomically swaps in a new document and its report
func (rc *ReportContainer) UpdateReport(document []byte, report *interfaces.GenerationReport) {
	// Atomic swap (zero downtime replacement)
	rc.document.Store(document)
	rc.report.Store(report)
	rc.lastGenerated.Store(time.Now())
}

// BeginGeneration marks the start of a generation run
// Returns true if generation can proceed, false if another run is in progress
func (rc *ReportContainer) BeginGeneration() bool {
	return rc.generating.CompareAndSwap(false, true)
}

// EndGeneration marks the end of a generation run
func (rc *ReportContainer) EndGeneration() {
	rc.generating.Store(false)
}
