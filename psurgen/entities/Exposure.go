package entities

// DDDValue is the resolved defined daily dose for the reported medicine.
// A zero value means the lookup chain found nothing and the exposure
// section must fall back.
type DDDValue struct {
	Value  float64 `json:"value"`
	Found  bool    `json:"found"`
	Source string  `json:"source,omitempty"`
}

const (
	DDDSourceWorkbook = "workbook"
	DDDSourceRemote   = "remote"
)

// DosageMapping maps a product-name substring to its dosage form. Order
// matters: the first matching entry wins.
type DosageMapping struct {
	Match string `yaml:"match" json:"match"`
	Form  string `yaml:"form" json:"form"`
}

// ExposureResult carries the partitioned sales-exposure tables for the
// target reporting region and the rest of the world, each ending in a
// synthetic Total row.
type ExposureResult struct {
	Outcome
	CountryTable    Frame
	NonCountryTable Frame
	CountryTotal    int
	NonCountryTotal int
	CombinedTotal   int
	DDD             DDDValue
}
