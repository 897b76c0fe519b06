// Package psurgen assembles Periodic Safety Update Report documents from
// heterogeneous source files: Word tables located by keyword or marker,
// sales spreadsheets, and pipe-delimited tabulations recovered from RTF
// narratives. Four independent pipelines feed four section writers that
// append to one output document in fixed order; a failure in one section
// never blocks the others.
package psurgen

import (
	"fmt"
	"time"

	"github.com/openpv/psur-generator/docx"
	"github.com/openpv/psur-generator/interfaces"
	"github.com/openpv/psur-generator/logging"
	"github.com/openpv/psur-generator/psurgen/entities"
)

// Section identifiers and titles as they appear in the generation report.
const (
	sectionDemographics      = "5.2"
	sectionDemographicsTitle = "Cumulative Subject Exposure in Clinical Trials"
	sectionExposure          = "5.3"
	sectionExposureTitle     = "Cumulative and Interval Patient Exposure from Marketing Experience"
	sectionTabulations       = "6.3"
	sectionTabulationsTitle  = "Summary Tabulations from Post-Marketing Data Sources"
	sectionSignals           = "15"
	sectionSignalsTitle      = "Overview of Signals: New, Ongoing or Closed"
)

// Generator assembles the full report for one product profile.
type Generator struct {
	profile *Profile
	ddd     *DDDResolver
}

// Compile-time interface check
var _ interfaces.ReportGenerator = (*Generator)(nil)

func NewGenerator(profile *Profile) *Generator {
	return &Generator{
		profile: profile,
		ddd:     NewDDDResolver(),
	}
}

// Profile returns the active product profile.
func (g *Generator) Profile() *Profile {
	return g.profile
}

// Generate runs every configured pipeline in section order and returns the
// assembled document. Pipelines whose input paths are unset are skipped;
// a section that fails is recorded in the report and the remaining sections
// still render. Only serialization of the final document can fail the run
// as a whole.
func (g *Generator) Generate(inputs entities.GenerationInputs) ([]byte, *interfaces.GenerationReport, error) {
	start := time.Now()
	report := &interfaces.GenerationReport{GeneratedAt: start}

	logging.Info("Starting report generation", "medicine", g.profile.Medicine)

	b := docx.NewBuilder()
	writeCoverAndTOC(b, g.profile)

	wroteChapter5 := false

	if inputs.DemographicsDoc == "" {
		skipSection(report, sectionDemographics, sectionDemographicsTitle, "no demographics document configured")
	} else {
		runSection(report, sectionDemographics, sectionDemographicsTitle, func() (entities.Outcome, error) {
			summary := g.buildDemographics(report, inputs.DemographicsDoc)
			writeDemographicsSection(b, summary)
			wroteChapter5 = true
			return summary.Outcome, nil
		})
	}

	if inputs.SalesDoc == "" {
		skipSection(report, sectionExposure, sectionExposureTitle, "no sales document configured")
	} else {
		runSection(report, sectionExposure, sectionExposureTitle, func() (entities.Outcome, error) {
			result := g.buildExposure(report, inputs)
			writeExposureSection(b, result, g.profile, wroteChapter5)
			wroteChapter5 = true
			return result.Outcome, nil
		})
	}

	if inputs.CumulativeSheet == "" || inputs.CumulativeNarrative == "" {
		skipSection(report, sectionTabulations, sectionTabulationsTitle, "no tabulation source pair configured")
	} else {
		runSection(report, sectionTabulations, sectionTabulationsTitle, func() (entities.Outcome, error) {
			data, err := g.buildTabulations(report, inputs)
			if err != nil {
				return entities.Outcome{}, err
			}
			writeTabulationsSection(b, g.profile.Medicine, g.profile.MedDRAVersions, data)
			return data.Cumulative.Outcome, nil
		})
	}

	if inputs.SignalDoc == "" {
		skipSection(report, sectionSignals, sectionSignalsTitle, "no signal document configured")
	} else {
		runSection(report, sectionSignals, sectionSignalsTitle, func() (entities.Outcome, error) {
			table := g.buildSignals(report, inputs.SignalDoc)
			writeSignalsSection(b, table)
			return table.Outcome, nil
		})
	}

	data, err := b.Bytes()
	if err != nil {
		return nil, report, fmt.Errorf("serialize report: %w", err)
	}

	report.Duration = time.Since(start)
	report.SizeBytes = len(data)
	logging.Info("Report generation finished",
		"duration", report.Duration,
		"sizeBytes", report.SizeBytes,
		"sections", len(report.Sections),
		"warnings", len(report.Warnings))
	return data, report, nil
}

// buildDemographics locates and summarizes the clinical-trial demographics
// table. An unreadable document degrades to the not-found defaults, the
// same as a document without the table.
func (g *Generator) buildDemographics(report *interfaces.GenerationReport, path string) entities.DemographicsSummary {
	var raw entities.RawTable
	doc, err := docx.ReadFile(path)
	if err != nil {
		logging.Warn("Could not read demographics document", "path", path, "error", err)
		report.AddWarning(fmt.Sprintf("demographics document unreadable: %v", err))
	} else {
		matcher := docx.TableMatcher{Keywords: g.profile.DemographicsKeywords}
		if rows, found := docx.FindTableByKeywords(doc, matcher); found {
			raw = entities.RawTable{Rows: rows}
		}
	}
	return SummarizeDemographics(raw, g.profile.Medicine, g.profile.ReportingPeriod)
}

// buildExposure resolves the DDD value, locates the sales table after its
// marker paragraph, and runs the exposure pipeline. Workbook problems only
// cost the local lookup; the resolver still tries the remote index when a
// drug code is known.
func (g *Generator) buildExposure(report *interfaces.GenerationReport, inputs entities.GenerationInputs) entities.ExposureResult {
	var workbook [][]string
	if inputs.DDDWorkbook != "" {
		rows, err := LoadSheetRows(inputs.DDDWorkbook)
		if err != nil {
			logging.Warn("Could not read DDD workbook", "path", inputs.DDDWorkbook, "error", err)
			report.AddWarning(fmt.Sprintf("DDD workbook unreadable: %v", err))
		} else {
			workbook = rows
		}
	}
	ddd := g.ddd.Resolve(workbook, g.profile.Medicine)
	if ddd.Found {
		logging.Info("Resolved DDD value", "value", ddd.Value, "source", ddd.Source)
	} else {
		logging.Warn("No DDD value resolved", "medicine", g.profile.Medicine)
	}

	doc, err := docx.ReadFile(inputs.SalesDoc)
	if err != nil {
		logging.Warn("Could not read sales document", "path", inputs.SalesDoc, "error", err)
		report.AddWarning(fmt.Sprintf("sales document unreadable: %v", err))
		return entities.ExposureResult{Outcome: entities.Empty("sales document unreadable"), DDD: ddd}
	}

	rows, found := docx.FindTableAfterMarker(doc, g.profile.SalesMarker)
	if !found {
		return entities.ExposureResult{Outcome: entities.Empty("no sales table after marker paragraph"), DDD: ddd}
	}
	if !ddd.Found {
		return entities.ExposureResult{Outcome: entities.Empty("no DDD value resolved"), DDD: ddd}
	}

	return ComputeExposure(entities.RawTable{Rows: rows}, ddd, g.profile.ExposureConfig())
}

// buildTabulations extracts and summarizes the cumulative narrative, plus
// the interval narrative when configured. Failing to extract the cumulative
// narrative text is the one hard failure of this section; spreadsheet and
// interval problems degrade with warnings.
func (g *Generator) buildTabulations(report *interfaces.GenerationReport, inputs entities.GenerationInputs) (TabulationSectionData, error) {
	cfg := g.profile.TabulationConfig()

	cumulativeText, err := ExtractText(inputs.CumulativeNarrative)
	if err != nil {
		return TabulationSectionData{}, fmt.Errorf("extract cumulative narrative: %w", err)
	}
	data := TabulationSectionData{Cumulative: SummarizeTabulation(cumulativeText, cfg)}

	if rows, err := LoadSheetRows(inputs.CumulativeSheet); err != nil {
		logging.Warn("Could not read cumulative line listing", "path", inputs.CumulativeSheet, "error", err)
		report.AddWarning(fmt.Sprintf("cumulative line listing unreadable: %v", err))
	} else {
		data.CumulativeICSR = DataRowCount(rows)
		data.HaveICSRCounts = true
	}

	if inputs.IntervalNarrative != "" {
		intervalText, err := ExtractText(inputs.IntervalNarrative)
		if err != nil {
			logging.Warn("Could not extract interval narrative", "path", inputs.IntervalNarrative, "error", err)
			report.AddWarning(fmt.Sprintf("interval narrative unreadable: %v", err))
		} else {
			interval := SummarizeTabulation(intervalText, cfg)
			data.Interval = &interval
			if inputs.IntervalSheet != "" {
				if rows, err := LoadSheetRows(inputs.IntervalSheet); err != nil {
					logging.Warn("Could not read interval line listing", "path", inputs.IntervalSheet, "error", err)
					report.AddWarning(fmt.Sprintf("interval line listing unreadable: %v", err))
				} else {
					data.IntervalICSR = DataRowCount(rows)
				}
			}
		}
	}
	return data, nil
}

// buildSignals extracts the safety-signal table. An unreadable document
// degrades to the not-found outcome.
func (g *Generator) buildSignals(report *interfaces.GenerationReport, path string) entities.SignalTable {
	doc, err := docx.ReadFile(path)
	if err != nil {
		logging.Warn("Could not read signal document", "path", path, "error", err)
		report.AddWarning(fmt.Sprintf("signal document unreadable: %v", err))
		return entities.SignalTable{Outcome: entities.Empty("signal document unreadable")}
	}
	return ExtractSignals(doc, g.profile.SignalHeaders)
}

// writeCoverAndTOC writes the title page and the table-of-contents field.
func writeCoverAndTOC(b *docx.Builder, p *Profile) {
	lines := []string{p.Medicine}
	if p.ReportingPeriod != "" {
		lines = append(lines, "Reporting Period: "+p.ReportingPeriod)
	}
	if p.DrugCode != "" {
		lines = append(lines, "Drug Code: "+p.DrugCode)
	}
	version := p.VersionStatus
	if p.VersionDate != "" {
		version += ", " + p.VersionDate
	}
	lines = append(lines, "Version: "+version)

	b.Cover("Periodic Safety Update Report", lines)
	b.TOC()
}

// runSection executes one section pipeline, recording its outcome and
// runtime. Panics and hard errors become failed entries; neither stops the
// remaining sections.
func runSection(report *interfaces.GenerationReport, id, title string, fn func() (entities.Outcome, error)) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Section generation panicked", "section", id, "panic", r)
			report.AddSection(interfaces.SectionResult{
				ID:       id,
				Title:    title,
				Status:   interfaces.SectionFailed,
				Reason:   fmt.Sprintf("panic: %v", r),
				Duration: time.Since(start),
			})
			report.AddWarning(fmt.Sprintf("section %s panicked: %v", id, r))
		}
	}()

	outcome, err := fn()
	if err != nil {
		logging.Error("Section generation failed", "section", id, "error", err)
		report.AddSection(interfaces.SectionResult{
			ID:       id,
			Title:    title,
			Status:   interfaces.SectionFailed,
			Reason:   err.Error(),
			Duration: time.Since(start),
		})
		report.AddWarning(fmt.Sprintf("section %s failed: %v", id, err))
		return
	}

	report.AddSection(interfaces.SectionResult{
		ID:       id,
		Title:    title,
		Status:   string(outcome.Status),
		Reason:   outcome.Reason,
		Duration: time.Since(start),
	})
	logging.Info("Section generated", "section", id, "status", outcome.Status, "reason", outcome.Reason)
}

func skipSection(report *interfaces.GenerationReport, id, title, reason string) {
	report.AddSection(interfaces.SectionResult{
		ID:     id,
		Title:  title,
		Status: interfaces.SectionSkipped,
		Reason: reason,
	})
	logging.Info("Section skipped", "section", id, "reason", reason)
}
