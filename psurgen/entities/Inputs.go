package entities

// GenerationInputs names the source documents of one report run. Every path
// is optional: a pipeline whose required path is unset is skipped entirely,
// not run against empty data.
type GenerationInputs struct {
	// DemographicsDoc is the Word document carrying the clinical-trial
	// demographics table, located by header keywords.
	DemographicsDoc string `json:"demographicsDoc,omitempty"`

	// SalesDoc is the Word document carrying the cumulative sales table,
	// located by the marker paragraph preceding it. DDDWorkbook is the
	// optional spreadsheet mapping drug names to DDD values and codes.
	SalesDoc    string `json:"salesDoc,omitempty"`
	DDDWorkbook string `json:"dddWorkbook,omitempty"`

	// The tabulation section needs the spreadsheet and narrative pair of
	// the cumulative period; the interval pair is optional on top.
	CumulativeSheet     string `json:"cumulativeSheet,omitempty"`
	CumulativeNarrative string `json:"cumulativeNarrative,omitempty"`
	IntervalSheet       string `json:"intervalSheet,omitempty"`
	IntervalNarrative   string `json:"intervalNarrative,omitempty"`

	// SignalDoc is the Word document carrying the safety-signal table,
	// identified by its expected column headers.
	SignalDoc string `json:"signalDoc,omitempty"`
}

// HasAny reports whether at least one pipeline can run.
func (in GenerationInputs) HasAny() bool {
	return in.DemographicsDoc != "" ||
		in.SalesDoc != "" ||
		(in.CumulativeSheet != "" && in.CumulativeNarrative != "") ||
		in.SignalDoc != ""
}
