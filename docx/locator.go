package docx

import "strings"

// TableMatcher declares how a target table is recognized: any of the
// keywords appearing (case-insensitive substring) in the concatenated cell
// text of the first ScanRows rows.
type TableMatcher struct {
	Keywords []string
	ScanRows int
}

func (m TableMatcher) scanRows() int {
	if m.ScanRows <= 0 {
		return 3
	}
	return m.ScanRows
}

// FindTableByKeywords scans body tables in document order and returns the
// first one whose leading rows match the keyword set. The whole table is
// extracted with cells trimmed and a duplicated header row collapsed. The
// second return value is false when no table matches.
func FindTableByKeywords(doc *Document, matcher TableMatcher) ([][]string, bool) {
	for _, table := range doc.Tables() {
		limit := matcher.scanRows()
		if limit > len(table) {
			limit = len(table)
		}
		for _, row := range table[:limit] {
			rowText := joinTrimmed(row)
			if matchesAny(rowText, matcher.Keywords) {
				return extractTable(table), true
			}
		}
	}
	return nil, false
}

// FindTableAfterMarker locates a paragraph containing the marker text
// (case-insensitive substring) and returns the first body table positioned
// after it. Body blocks are walked in document order, counting paragraphs
// until a table is seen past the marker's paragraph index.
func FindTableAfterMarker(doc *Document, marker string) ([][]string, bool) {
	markerIdx := -1
	for i, text := range doc.Paragraphs() {
		if containsFold(text, marker) {
			markerIdx = i
			break
		}
	}
	if markerIdx < 0 {
		return nil, false
	}

	paraCount := 0
	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockParagraph:
			paraCount++
		case BlockTable:
			if paraCount > markerIdx {
				return extractTable(block.Table), true
			}
		}
	}
	return nil, false
}

// extractTable trims every cell and collapses a duplicated first/second
// header row, a common artifact of vertically merged header cells.
func extractTable(table [][]string) [][]string {
	rows := make([][]string, len(table))
	for i, row := range table {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = strings.TrimSpace(c)
		}
		rows[i] = cells
	}
	if len(rows) > 1 && equalRows(rows[0], rows[1]) {
		rows = append(rows[:1], rows[2:]...)
	}
	return rows
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinTrimmed(row []string) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = strings.TrimSpace(c)
	}
	return strings.Join(parts, " ")
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsFold(text, kw) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
