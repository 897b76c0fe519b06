package entities

// SignalRecord is one row of the safety-signal table.
type SignalRecord struct {
	Term         string `json:"term"`
	DateDetected string `json:"dateDetected"`
	Status       string `json:"status"`
	DateClosed   string `json:"dateClosed"`
	Source       string `json:"source"`
	Reason       string `json:"reason"`
	Method       string `json:"method"`
	Actions      string `json:"actions"`
}

// SignalTable is the set of signal records found in the designated document
// table, with the closed-signal terms pre-filtered.
type SignalTable struct {
	Outcome
	Records     []SignalRecord
	ClosedTerms []string
}

// DisplayHeader names the three columns rendered in the report.
func (t SignalTable) DisplayHeader() []string {
	return []string{"Signal term", "Date detected (month/ year)", "Status (ongoing or closed)"}
}

// DisplayRows renders the three-column signal overview table.
func (t SignalTable) DisplayRows() [][]string {
	rows := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []string{r.Term, r.DateDetected, r.Status})
	}
	return rows
}
