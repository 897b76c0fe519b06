package psurgen

import (
	"strings"

	"github.com/openpv/psur-generator/docx"
	"github.com/openpv/psur-generator/psurgen/entities"
)

// ExtractSignals finds the safety-signal table in a document: the first
// table whose normalized header cells contain all the expected headers, in
// any order and with extra columns allowed. Values are read through a
// header-to-position map so column order in the source does not matter.
func ExtractSignals(doc *docx.Document, expectedHeaders []string) entities.SignalTable {
	normExpected := make([]string, len(expectedHeaders))
	for i, h := range expectedHeaders {
		normExpected[i] = normalizeHeader(h)
	}

	for _, table := range doc.Tables() {
		if len(table) == 0 {
			continue
		}
		positions := make(map[string]int, len(table[0]))
		for i, cell := range table[0] {
			positions[normalizeHeader(cell)] = i
		}
		if !containsAll(positions, normExpected) {
			continue
		}

		var records []entities.SignalRecord
		var closed []string
		for _, row := range table[1:] {
			values := make([]string, len(normExpected))
			empty := true
			for i, header := range normExpected {
				idx := positions[header]
				if idx < len(row) {
					values[i] = collapseSpace(row[idx])
				}
				if values[i] != "" {
					empty = false
				}
			}
			if empty {
				continue
			}

			record := entities.SignalRecord{
				Term:         values[0],
				DateDetected: values[1],
				Status:       values[2],
				DateClosed:   values[3],
				Source:       values[4],
				Reason:       values[5],
				Method:       values[6],
				Actions:      values[7],
			}
			records = append(records, record)
			if strings.ToLower(strings.TrimSpace(record.Status)) == "closed" {
				closed = append(closed, record.Term)
			}
		}

		table := entities.SignalTable{Records: records, ClosedTerms: closed}
		if len(records) == 0 {
			table.Outcome = entities.Partial("signal table contains no rows")
		} else {
			table.Outcome = entities.Full()
		}
		return table
	}

	return entities.SignalTable{Outcome: entities.Empty("signal table not found")}
}

// normalizeHeader canonicalizes a header cell for comparison: newlines to
// spaces, lowercased, "&" spelled out, whitespace runs collapsed.
func normalizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", "and")
	return collapseSpace(s)
}

// collapseSpace squeezes all whitespace runs, including non-breaking
// spaces, to single spaces and trims the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAll(positions map[string]int, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := positions[w]; !ok {
			return false
		}
	}
	return true
}
