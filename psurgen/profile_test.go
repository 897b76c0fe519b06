package psurgen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	if p.Medicine != "Esomeprazole" {
		t.Errorf("Expected default medicine Esomeprazole, got %q", p.Medicine)
	}
	if p.Country != "eu&uk" || p.Place != "EU & UK" {
		t.Errorf("Expected eu&uk region defaults, got %q / %q", p.Country, p.Place)
	}
	if len(p.EUUKCodes) != 3 {
		t.Errorf("Expected 3 reference-state codes, got %d", len(p.EUUKCodes))
	}
	if len(p.SignalHeaders) != 8 {
		t.Errorf("Expected 8 signal headers, got %d", len(p.SignalHeaders))
	}
	if len(p.DosageForms) == 0 {
		t.Error("Expected default dosage-form mappings")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadProfileEmptyPath(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("Error loading empty-path profile: %v", err)
	}
	if p.Medicine != "Esomeprazole" {
		t.Errorf("Expected defaults for empty path, got medicine %q", p.Medicine)
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	content := `medicine: Olanzapine
place: Sweden
country: se
reporting_period: "01 Jan 2024 to 31 Dec 2024"
drug_code: N05AH03
dosage_forms:
  - match: Zipola
    form: Film coated Tablet
`
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Error writing profile fixture: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("Error loading profile: %v", err)
	}

	if p.Medicine != "Olanzapine" {
		t.Errorf("Expected medicine Olanzapine, got %q", p.Medicine)
	}
	if p.Country != "se" || p.Place != "Sweden" {
		t.Errorf("Expected country override, got %q / %q", p.Country, p.Place)
	}
	if p.DrugCode != "N05AH03" {
		t.Errorf("Expected drug code N05AH03, got %q", p.DrugCode)
	}
	if len(p.DosageForms) != 1 || p.DosageForms[0].Match != "Zipola" {
		t.Errorf("Expected single dosage mapping from file, got %v", p.DosageForms)
	}
	// Untouched fields keep their defaults
	if p.SalesMarker == "" {
		t.Error("Expected default sales marker to survive a partial profile")
	}
	if len(p.SignalHeaders) != 8 {
		t.Errorf("Expected default signal headers, got %d", len(p.SignalHeaders))
	}
}

func TestLoadProfileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("medicine: [unclosed"), 0o644); err != nil {
		t.Fatalf("Error writing fixture: %v", err)
	}

	if _, err := LoadProfile(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected an error for a missing profile file")
	}
}

func TestValidateSignalHeaderCount(t *testing.T) {
	p := DefaultProfile()
	p.SignalHeaders = p.SignalHeaders[:5]

	if err := p.Validate(); err == nil {
		t.Error("Expected validation to reject a truncated signal header list")
	}
}
