package psurgen

import (
	"strings"
	"testing"

	"github.com/openpv/psur-generator/psurgen/entities"
)

func demographicsFixture() entities.RawTable {
	// Positional layout: the first 19 columns map to the canonical names
	// regardless of what the source header cells say.
	return entities.RawTable{Rows: [][]string{
		{"Molecule/Product", "Study Number", "Study Title", "Test product name",
			"Active comparator name", "Test Product", "Active Comparator", "Placebo", "Total",
			"Male", "Female", "<18 years", "18-65 years", ">65 years",
			"Asian", "Black", "Caucasian", "Other", "Unknown"},
		{"", "", "", "", "", "N", "N", "N", "N", "N", "N", "N", "N", "N", "N", "N", "N", "N", "N"},
		{"Esomeprazole", "ST-01", "Bioequivalence study", "Test A", "Comp A",
			"24", "24", "0", "48", "30", "18", "0", "46", "2", "12", "4", "30", "2", "0"},
		{"Esomeprazole", "ST-02", "Food effect study", "Test B", "Comp B",
			"18", "0", "18", "36", "20", "16", "0", "36", "0", "6", "2", "26", "2", "0"},
	}}
}

func TestSummarizeDemographics(t *testing.T) {
	summary := SummarizeDemographics(demographicsFixture(), "Esomeprazole", "Jan 2024 - Dec 2024")

	if !summary.IsFull() {
		t.Fatalf("Expected full outcome, got %s (%s)", summary.Status, summary.Reason)
	}
	if summary.Studies != 2 {
		t.Errorf("Expected 2 studies, got %d", summary.Studies)
	}
	if summary.TotalSubjects != 84 {
		t.Errorf("Expected 84 total subjects, got %d", summary.TotalSubjects)
	}
	if summary.GenderText != "50 were male, 34 were female" {
		t.Errorf("Unexpected gender text: %s", summary.GenderText)
	}
	if summary.AgeText != "age distribution: 82 in 18-65 years, 2 in >65 years" {
		t.Errorf("Unexpected age text: %s", summary.AgeText)
	}
	if summary.RaceText != "racial distribution: 18 Asian, 6 Black, 56 Caucasian, 4 Other" {
		t.Errorf("Unexpected race text: %s", summary.RaceText)
	}
	if summary.Table.IsEmpty() {
		t.Error("Expected the source table to be carried for rendering")
	}
}

// TestSummarizeDemographicsTooFewRows checks the not-found path: fewer than
// three rows means the table never had data under its two header rows.
func TestSummarizeDemographicsTooFewRows(t *testing.T) {
	raw := entities.RawTable{Rows: [][]string{
		{"Molecule/Product", "Study Number"},
		{"", ""},
	}}

	summary := SummarizeDemographics(raw, "Esomeprazole", "2024")
	if !summary.IsEmpty() {
		t.Fatalf("Expected empty outcome, got %s", summary.Status)
	}
	if summary.GenderText != "gender distribution unknown" {
		t.Errorf("Expected unknown gender default, got %q", summary.GenderText)
	}
	if summary.AgeText != "age distribution unknown" {
		t.Errorf("Expected unknown age default, got %q", summary.AgeText)
	}
	if summary.RaceText != "racial distribution unknown" {
		t.Errorf("Expected unknown race default, got %q", summary.RaceText)
	}
}

// TestSummarizeDemographicsNarrowTable drops the gender and race columns:
// the distributions beyond the table width stay unknown.
func TestSummarizeDemographicsNarrowTable(t *testing.T) {
	raw := entities.RawTable{Rows: [][]string{
		{"Molecule/Product", "Study Number", "Study Title", "Test product name",
			"Active comparator name", "Test Product", "Active Comparator", "Placebo", "Total"},
		{"", "", "", "", "", "N", "N", "N", "N"},
		{"Esomeprazole", "ST-01", "Study", "Test", "Comp", "10", "10", "0", "20"},
	}}

	summary := SummarizeDemographics(raw, "Esomeprazole", "2024")
	if !summary.IsFull() {
		t.Fatalf("Expected full outcome, got %s", summary.Status)
	}
	if summary.TotalSubjects != 20 {
		t.Errorf("Expected 20 subjects, got %d", summary.TotalSubjects)
	}
	if summary.GenderText != "gender distribution unknown" {
		t.Errorf("Expected unknown gender for a table without gender columns, got %q", summary.GenderText)
	}
	if summary.AgeText != "age distribution unknown" {
		t.Errorf("Expected unknown age for a table without age columns, got %q", summary.AgeText)
	}
}

// TestSummarizeDemographicsUnparseableCells checks that non-numeric cells
// contribute zero instead of failing the section.
func TestSummarizeDemographicsUnparseableCells(t *testing.T) {
	raw := demographicsFixture()
	raw.Rows[2][8] = "forty-eight"
	raw.Rows[2][9] = "1,234"

	summary := SummarizeDemographics(raw, "Esomeprazole", "2024")
	if !summary.IsFull() {
		t.Fatalf("Expected full outcome, got %s", summary.Status)
	}
	// ST-01 Total and Male drop out of the sums
	if summary.TotalSubjects != 36 {
		t.Errorf("Expected 36 subjects with one unparseable total, got %d", summary.TotalSubjects)
	}
	if !strings.HasPrefix(summary.GenderText, "20 were male") {
		t.Errorf("Expected unparseable male count to contribute zero, got %q", summary.GenderText)
	}
}
