package psurgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openpv/psur-generator/psurgen/entities"
)

// Column names of the clinical-trial demographics table in source order.
// Source tables may carry fewer columns; the leading subset is used as-is.
var demographicsColumns = []string{
	"Molecule/Product", "Study Number", "Study Title", "Test product name",
	"Active comparator name", "Test Product", "Active Comparator", "Placebo", "Total",
	"Male", "Female", "<18 years", "18-65 years", ">65 years",
	"Asian", "Black", "Caucasian", "Other", "Unknown",
}

var demographicsNumericColumns = map[string]bool{
	"Test Product": true, "Active Comparator": true, "Placebo": true, "Total": true,
	"Male": true, "Female": true, "<18 years": true, "18-65 years": true, ">65 years": true,
	"Asian": true, "Black": true, "Caucasian": true, "Other": true, "Unknown": true,
}

var demographicsAgeColumns = []string{"<18 years", "18-65 years", ">65 years"}
var demographicsRaceColumns = []string{"Asian", "Black", "Caucasian", "Other", "Unknown"}

// SummarizeDemographics aggregates a located demographics table into the
// counts and distribution sentences of the clinical-trial exposure section.
// Tables with fewer than three rows (two header rows plus data) count as
// not found and yield the unknown-distribution defaults.
func SummarizeDemographics(raw entities.RawTable, medicine, period string) entities.DemographicsSummary {
	summary := entities.DemographicsSummary{
		Medicine:        medicine,
		ReportingPeriod: period,
		GenderText:      "gender distribution unknown",
		AgeText:         "age distribution unknown",
		RaceText:        "racial distribution unknown",
	}

	if !raw.HasMinimumRows(3) {
		summary.Outcome = entities.Empty("demographics table not found")
		return summary
	}

	width := len(raw.Rows[0])
	if width > len(demographicsColumns) {
		width = len(demographicsColumns)
	}
	header := demographicsColumns[:width]
	data := raw.Rows[2:]

	sums := make(map[string]int, len(header))
	for colIdx, name := range header {
		if !demographicsNumericColumns[name] {
			continue
		}
		total := 0
		for _, row := range data {
			if colIdx < len(row) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx]), 64); err == nil {
					total += int(v)
				}
			}
		}
		sums[name] = total
	}

	summary.Outcome = entities.Full()
	summary.Studies = len(data)
	summary.TotalSubjects = sums["Total"]
	summary.Table = raw

	if columnPresent(header, "Male") || columnPresent(header, "Female") {
		summary.GenderText = fmt.Sprintf("%d were male, %d were female", sums["Male"], sums["Female"])
	}
	if parts := distributionParts(header, sums, demographicsAgeColumns, "%d in %s"); len(parts) > 0 {
		summary.AgeText = "age distribution: " + strings.Join(parts, ", ")
	}
	if parts := distributionParts(header, sums, demographicsRaceColumns, "%d %s"); len(parts) > 0 {
		summary.RaceText = "racial distribution: " + strings.Join(parts, ", ")
	}
	return summary
}

func columnPresent(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

// distributionParts renders "count unit" fragments for the present columns
// with a nonzero count, in the given column order.
func distributionParts(header []string, sums map[string]int, columns []string, format string) []string {
	var parts []string
	for _, name := range columns {
		if !columnPresent(header, name) {
			continue
		}
		if count := sums[name]; count > 0 {
			parts = append(parts, fmt.Sprintf(format, count, name))
		}
	}
	return parts
}
