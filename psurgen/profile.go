package psurgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openpv/psur-generator/psurgen/entities"
)

// Profile carries the product-specific configuration of a report run: the
// identity lines for the cover page, the reporting region, and every lookup
// table the extractors match against. Fields omitted from the profile file
// keep the defaults below.
type Profile struct {
	Medicine        string `yaml:"medicine"`
	Place           string `yaml:"place"`
	Country         string `yaml:"country"`
	ReportDate      string `yaml:"report_date"`
	ReportingPeriod string `yaml:"reporting_period"`
	VersionStatus   string `yaml:"version_status"`
	VersionDate     string `yaml:"version_date"`
	DrugCode        string `yaml:"drug_code"`
	MedDRAVersions  string `yaml:"meddra_versions"`

	// CountryAliases extends the target-country match; EUUKCodes is the
	// fixed reference-state proxy used when Country normalizes to "eu&uk".
	CountryAliases []string `yaml:"country_aliases"`
	EUUKCodes      []string `yaml:"eu_uk_codes"`

	DosageForms []entities.DosageMapping `yaml:"dosage_forms"`

	DemographicsKeywords []string `yaml:"demographics_keywords"`
	SalesMarker          string   `yaml:"sales_marker"`
	TabulationStart      string   `yaml:"tabulation_start_marker"`
	TabulationEnd        string   `yaml:"tabulation_end_marker"`
	SignalHeaders        []string `yaml:"signal_headers"`
}

// DefaultProfile returns the configuration shipped with the generator.
func DefaultProfile() *Profile {
	p := &Profile{}
	p.applyDefaults()
	return p
}

// LoadProfile reads a YAML profile; an empty path yields the defaults.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p := &Profile{}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

func (p *Profile) applyDefaults() {
	if p.Medicine == "" {
		p.Medicine = "Esomeprazole"
	}
	if p.Place == "" {
		p.Place = "EU & UK"
	}
	if p.Country == "" {
		p.Country = "eu&uk"
	}
	if p.VersionStatus == "" {
		p.VersionStatus = "Draft"
	}
	if p.MedDRAVersions == "" {
		p.MedDRAVersions = "24.1 to 27.1"
	}
	if len(p.EUUKCodes) == 0 {
		p.EUUKCodes = []string{"uk", "se", "dk"}
	}
	if len(p.DosageForms) == 0 {
		p.DosageForms = []entities.DosageMapping{
			{Match: "Esomeprazole", Form: "Gastro-resistant"},
			{Match: "JUBIGORD 20", Form: "Gastro-resistant"},
			{Match: "JUBIGORD 40", Form: "Gastro-resistant"},
			{Match: "Esomeprazol", Form: "Gastro-resistant"},
			{Match: "JUBIUM", Form: "Gastro-resistant"},
			{Match: "Zipola 5", Form: "Film coated Tablet"},
			{Match: "Zipola 10", Form: "Film coated Tablet"},
			{Match: "Jubilonz OD10", Form: "Oro dispersible tablet"},
			{Match: "Jubilonz OD5", Form: "Oro dispersible tablet"},
			{Match: "SCHIZOLANZ", Form: "Oro dispersible tablet"},
			{Match: "Olanzapine film coated tablets", Form: "Film coated Tablet"},
			{Match: "Olanzapine", Form: "Film coated Tablet"},
		}
	}
	if len(p.DemographicsKeywords) == 0 {
		p.DemographicsKeywords = []string{
			"Molecular Product", "Study Number", "Test Product Name",
			"Active comparator name", "TestProduct", "Active Comparator",
			"Placebo", "Total", "Gender", "Age", "Racial",
		}
	}
	if p.SalesMarker == "" {
		p.SalesMarker = "Cumulative sales data sale required"
	}
	if p.TabulationStart == "" {
		p.TabulationStart = "Summary Tabulation"
	}
	if p.TabulationEnd == "" {
		p.TabulationEnd = "End of Report"
	}
	if len(p.SignalHeaders) == 0 {
		p.SignalHeaders = []string{
			"Signal term",
			"Date detected (month/ year)",
			"Status (ongoing or closed)",
			"Date closed (for closed signals) (month/ year)",
			"Source of signal",
			"Reason for evaluation & summary of key data",
			"Method of signal evaluation",
			"Action(s) taken or planned",
		}
	}
}

// Validate rejects profiles that would make the extractors inoperable.
func (p *Profile) Validate() error {
	if p.Medicine == "" {
		return fmt.Errorf("medicine must not be empty")
	}
	if p.Country == "" {
		return fmt.Errorf("country must not be empty")
	}
	if len(p.SignalHeaders) != 8 {
		return fmt.Errorf("signal_headers must list the 8 expected columns, got %d", len(p.SignalHeaders))
	}
	if len(p.EUUKCodes) == 0 {
		return fmt.Errorf("eu_uk_codes must not be empty")
	}
	if p.SalesMarker == "" {
		return fmt.Errorf("sales_marker must not be empty")
	}
	return nil
}
