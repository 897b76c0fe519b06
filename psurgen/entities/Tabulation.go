package entities

// SOCRow is one parsed line of the pipe-delimited summary tabulation.
// Label is the sub-disease (preferred-term level) name; group subtotal rows
// carry the literal "SubTotal" label.
type SOCRow struct {
	SOC   string
	Label string
	No    string
	Yes   string
	Total int
}

// SOCTable is the reconstructed two-level tabulation plus the two scalar
// counts recovered from the tail of the source text.
type SOCTable struct {
	Rows      []SOCRow
	Labeled   int
	Unlabeled int
}

// GrandTotal returns the final row, which anchors the serious/non-serious
// counts. ok is false for an empty table.
func (t SOCTable) GrandTotal() (SOCRow, bool) {
	if len(t.Rows) == 0 {
		return SOCRow{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// TabulationSummary is the narrative derived from one period's tabulation.
// Paragraphs holds four entries for a full ranking and a single fallback
// sentence otherwise.
type TabulationSummary struct {
	Outcome
	Paragraphs []string
	Serious    int
	NonSerious int
	Total      int
	Labeled    int
	Unlabeled  int
}

// Text joins the narrative paragraphs for single-block rendering.
func (s TabulationSummary) Text() string {
	out := ""
	for i, p := range s.Paragraphs {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
