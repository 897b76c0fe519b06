package psurgen

import (
	"fmt"
	"strings"

	"github.com/openpv/psur-generator/docx"
	"github.com/openpv/psur-generator/psurgen/entities"
)

const exposureChapterHeading = "5 ESTIMATED EXPOSURE AND USE PATTERNS"

// writeDemographicsSection renders section 5.2 from the demographics
// summary. A not-found summary still produces the section with an explicit
// fallback paragraph so the chapter structure stays complete.
func writeDemographicsSection(b *docx.Builder, d entities.DemographicsSummary) {
	b.Heading1(exposureChapterHeading)
	b.Heading2("5.2 Cumulative Subject Exposure in Clinical Trials")

	if d.IsEmpty() {
		b.Paragraph(fmt.Sprintf(
			"No clinical trial demographics data was available for %s for the reporting period %s.",
			d.Medicine, d.ReportingPeriod,
		))
		return
	}

	b.Paragraph(fmt.Sprintf(
		"A total of %d clinical studies were conducted with %s during the reporting period %s. The pooled safety population comprised %d subjects.",
		d.Studies, d.Medicine, d.ReportingPeriod, d.TotalSubjects,
	))
	b.Paragraph(fmt.Sprintf("Across these studies, %s; %s; %s.", d.GenderText, d.AgeText, d.RaceText))
	b.LeadIn("Clinical trial demographics:")
	b.TableWithHeaderRows(d.Table.Rows, 2)
}

// writeExposureSection renders section 5.3 from the computed exposure
// result. Anything short of a full result falls back to narrative only;
// partial figures are never rendered as tables.
func writeExposureSection(b *docx.Builder, res entities.ExposureResult, p *Profile, wroteChapter bool) {
	if !wroteChapter {
		b.Heading1(exposureChapterHeading)
	}
	b.Heading2("5.3 Cumulative and Interval Patient Exposure from Marketing Experience")

	if !res.IsFull() {
		b.Paragraph(fmt.Sprintf(
			"Sales-based exposure data could not be established for %s for this reporting period: either no cumulative sales table was available or no defined daily dose (DDD) could be resolved for the product.",
			p.Medicine,
		))
		b.Paragraph("Patient exposure estimates will be provided in a future report once the underlying data is available.")
		return
	}

	b.Paragraph(fmt.Sprintf(
		"Patient exposure to %s has been estimated from sales data using the defined daily dose (DDD) methodology. A DDD of %d mg and a treatment duration of 365 days per patient year were assumed: patients exposure (PTY) = sales figure (mg) / (DDD x 365).",
		p.Medicine, int(res.DDD.Value),
	))
	if p.ReportDate != "" {
		b.Paragraph(fmt.Sprintf("Figures reflect cumulative sales data available as of %s.", p.ReportDate))
	}

	b.LeadIn(fmt.Sprintf("Patient exposure in %s:", p.Place))
	b.Table(res.CountryTable.Columns, res.CountryTable.DisplayRows())
	b.LeadIn("Patient exposure in the rest of the world:")
	b.Table(res.NonCountryTable.Columns, res.NonCountryTable.DisplayRows())

	b.Paragraph(fmt.Sprintf(
		"The estimated cumulative patient exposure to %s is %d PTY: %d PTY in %s and %d PTY in the rest of the world.",
		p.Medicine, res.CombinedTotal, res.CountryTotal, p.Place, res.NonCountryTotal,
	))
}

// TabulationSectionData bundles what section 6 renders: the cumulative
// narrative, the optional interval narrative, and the ICSR row counts
// recovered from the line-listing spreadsheets.
type TabulationSectionData struct {
	Cumulative     entities.TabulationSummary
	Interval       *entities.TabulationSummary
	CumulativeICSR int
	IntervalICSR   int
	HaveICSRCounts bool
}

// writeTabulationsSection renders chapter 6. The fixed regulatory prose
// frames the generated narratives; only the narrative paragraphs vary with
// the source data.
func writeTabulationsSection(b *docx.Builder, medicine, meddraVersions string, data TabulationSectionData) {
	b.Heading1("6 DATA IN SUMMARY TABULATIONS")

	b.Heading2("6.1 Reference Information")
	b.Paragraph(fmt.Sprintf(
		"The Medical Dictionary for Regulatory Activities (MedDRA) versions from %s were valid in the reporting period of this PSUR and were used for coding adverse events. The summary tabulations are sorted alphabetically by primary System Organ Class (SOC) and Preferred Term (PT) level.",
		meddraVersions,
	))

	b.Heading2("6.2 Cumulative Summary Tabulations of Serious Adverse Events from Clinical Trials")
	b.Paragraph(fmt.Sprintf(
		"No information was available as no clinical trials have been conducted by the MAH since obtaining MA for %s.",
		medicine,
	))

	b.Heading2("6.3 Cumulative and interval summary tabulations from Post-Marketing Data Sources")
	b.Paragraph("The Safety Database was searched for all individual case safety reports (ICSRs) (also called cases) meeting the criteria mentioned below.")
	b.Paragraph("Serious and non-serious Adverse Drug Reactions (ADRs) from spontaneous ICSRs, including reports from healthcare professionals, consumers, scientific literature and regulatory authorities.")
	b.Paragraph("Note: As described in ICH Guideline E2D, spontaneously reported AEs usually imply at least a suspicion of causality by the reporter and should be considered to be adverse reactions for regulatory reporting purposes.")
	b.BulletItem("Serious adverse reactions from non-interventional studies and from any other non-interventional solicited sources.")
	b.BulletItem("From initial MA worldwide by the MAH to the data lock point (DLP) of this report (= cumulative data set)")
	b.BulletItem("Received during the period of this report (= interval data set)")

	if data.HaveICSRCounts {
		sentence := fmt.Sprintf("The search retrieved %d ICSRs for the cumulative period", data.CumulativeICSR)
		if data.Interval != nil {
			sentence += fmt.Sprintf(" and %d ICSRs for the interval period", data.IntervalICSR)
		}
		b.Paragraph(sentence + ".")
	}

	b.LeadIn("Cumulative summary tabulations:")
	for _, paragraph := range data.Cumulative.Paragraphs {
		b.Paragraph(paragraph)
	}
	if data.Interval != nil {
		b.LeadIn("Interval summary tabulations:")
		for _, paragraph := range data.Interval.Paragraphs {
			b.Paragraph(paragraph)
		}
	}

	b.Paragraph("No patterns or clusters were observed from these cases.")
	b.EmptyParagraph()
	b.Paragraph(fmt.Sprintf(
		"A single table of summary tabulation of serious and non-serious reactions is presented side-by-side and is organized by MedDRA SOC. A summary tabulation of adverse reactions for %s as extracted from the company safety database has been appended as Appendix 20.3 (Table B).",
		strings.ToLower(medicine),
	))
}

// writeSignalsSection renders section 15, the signal overview table and the
// closed-signal sentence.
func writeSignalsSection(b *docx.Builder, sig entities.SignalTable) {
	b.Heading1("15 OVERVIEW OF SIGNALS: NEW, ONGOING OR CLOSED")

	if sig.IsEmpty() {
		b.Paragraph("No safety-signal evaluation data was available for this reporting period.")
		return
	}

	b.Paragraph("The table below summarizes the safety signals that were new, ongoing or closed during the reporting period.")
	b.Table(sig.DisplayHeader(), sig.DisplayRows())

	if len(sig.ClosedTerms) > 0 {
		b.Paragraph(fmt.Sprintf(
			"The following signals were closed during the reporting period: %s.",
			strings.Join(sig.ClosedTerms, ", "),
		))
	} else {
		b.Paragraph("No signals were closed during the reporting period.")
	}
}
