// Package validation checks generated reports before they are published.
package validation

import (
	"bytes"
	"fmt"

	"github.com/openpv/psur-generator/interfaces"
	"github.com/openpv/psur-generator/logging"
)

var (
	// DOCX files are ZIP archives, so a generated report must start with
	// the local file header magic.
	zipMagic = []byte{'P', 'K', 0x03, 0x04}

	// Every generation run records these sections, in this order, even
	// when a section is skipped or failed.
	requiredSections = []string{"5.2", "5.3", "6.3", "15"}

	knownStatuses = map[string]bool{
		interfaces.SectionFull:    true,
		interfaces.SectionPartial: true,
		interfaces.SectionEmpty:   true,
		interfaces.SectionSkipped: true,
		interfaces.SectionFailed:  true,
	}
)

// Documents below this size are structurally suspect: even an all-skipped
// report carries the cover page, styles and numbering parts.
const minDocumentBytes = 1024

// ReportValidatorImpl implements the interfaces.ReportValidator interface
type ReportValidatorImpl struct{}

// NewReportValidator creates a new report validator
func NewReportValidator() interfaces.ReportValidator {
	return &ReportValidatorImpl{}
}

// ValidateReport checks that a generated document and its report are
// structurally sound before the store swaps them in
func (v *ReportValidatorImpl) ValidateReport(document []byte, report *interfaces.GenerationReport) error {
	if len(document) == 0 {
		return fmt.Errorf("document is empty")
	}

	if !bytes.HasPrefix(document, zipMagic) {
		return fmt.Errorf("document is not a DOCX archive")
	}

	if len(document) < minDocumentBytes {
		return fmt.Errorf("document too small to be a valid report: %d bytes", len(document))
	}

	if report == nil {
		return fmt.Errorf("generation report is nil")
	}

	if report.GeneratedAt.IsZero() {
		return fmt.Errorf("generation report has no timestamp")
	}

	if report.SizeBytes != len(document) {
		return fmt.Errorf("report size %d does not match document size %d", report.SizeBytes, len(document))
	}

	// Check for duplicate and unknown section entries
	seen := make(map[string]bool)
	for _, section := range report.Sections {
		if seen[section.ID] {
			return fmt.Errorf("duplicate section entry: %s", section.ID)
		}
		seen[section.ID] = true

		if !knownStatuses[section.Status] {
			return fmt.Errorf("unknown status %q for section %s", section.Status, section.ID)
		}
	}

	// Every run must account for all four sections
	for _, id := range requiredSections {
		if !seen[id] {
			return fmt.Errorf("missing section entry: %s", id)
		}
	}

	return nil
}

// ReportQuality flags degraded sections and suspicious output. Findings are
// advisory: the report is still published, but operators see what fell short.
func (v *ReportValidatorImpl) ReportQuality(report *interfaces.GenerationReport) []string {
	var findings []string

	if report == nil {
		return []string{"no generation report available"}
	}

	fullCount := 0
	for _, section := range report.Sections {
		switch section.Status {
		case interfaces.SectionFull:
			fullCount++
		case interfaces.SectionPartial:
			findings = append(findings, fmt.Sprintf("section %s is partial: %s", section.ID, section.Reason))
		case interfaces.SectionEmpty:
			findings = append(findings, fmt.Sprintf("section %s produced no data: %s", section.ID, section.Reason))
		case interfaces.SectionSkipped:
			findings = append(findings, fmt.Sprintf("section %s was skipped: %s", section.ID, section.Reason))
		case interfaces.SectionFailed:
			findings = append(findings, fmt.Sprintf("section %s failed: %s", section.ID, section.Reason))
		}
	}

	if len(report.Sections) > 0 && fullCount == 0 {
		findings = append(findings, "no section produced full data")
	}

	if report.SizeBytes > 0 && report.SizeBytes < 4096 {
		findings = append(findings, fmt.Sprintf("generated document is unusually small: %d bytes", report.SizeBytes))
	}

	findings = append(findings, report.Warnings...)

	if len(findings) > 0 {
		logging.Warn("Report quality findings detected",
			"count", len(findings),
			"full_sections", fullCount,
		)
	}

	return findings
}
