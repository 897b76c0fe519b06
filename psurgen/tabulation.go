package psurgen

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/openpv/psur-generator/psurgen/entities"
)

// TabulationConfig bounds the tabulation region inside the extracted text.
// Both markers match case-insensitively as substrings; the region runs from
// the first start-marker occurrence to the first end-marker occurrence
// strictly after it.
type TabulationConfig struct {
	StartMarker string
	EndMarker   string
}

// TabulationConfig derives the marker pair from the profile.
func (p *Profile) TabulationConfig() TabulationConfig {
	return TabulationConfig{
		StartMarker: p.TabulationStart,
		EndMarker:   p.TabulationEnd,
	}
}

// ParseSOCTable reconstructs the two-level System Organ Class tabulation
// from pipe-delimited plain text. The labeled/unlabeled scalar counts come
// from the tail of the whole text and are recovered even when no table
// region can be found; ok reports whether a table was reconstructed.
func ParseSOCTable(text string, cfg TabulationConfig) (table entities.SOCTable, ok bool) {
	table.Labeled, table.Unlabeled = tailCounts(text)

	region, found := markerRegion(text, cfg.StartMarker, cfg.EndMarker)
	if !found {
		return table, false
	}

	lines := strings.Split(region, "\n")
	headerIdx := -1
	for i, line := range lines {
		if containsFold(line, "System Organ Class") && containsFold(line, "Preferred Term") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return table, false
	}

	subIdx := -1
	for i := headerIdx + 1; i < len(lines); i++ {
		tokens := pipeTokens(lines[i])
		if hasToken(tokens, "No") && hasToken(tokens, "Yes") && hasToken(tokens, "Total") {
			subIdx = i
			break
		}
	}
	if subIdx < 0 {
		return table, false
	}

	currentSOC := ""
	var rows []entities.SOCRow
	for _, line := range lines[subIdx+1:] {
		tokens := pipeTokens(line)
		switch len(tokens) {
		case 5:
			currentSOC = tokens[0]
			rows = append(rows, entities.SOCRow{
				SOC:   currentSOC,
				Label: tokens[1],
				No:    tokens[2],
				Yes:   tokens[3],
				Total: coerceInt(tokens[4]),
			})
		case 4:
			rows = append(rows, entities.SOCRow{
				SOC:   currentSOC,
				Label: tokens[0],
				No:    tokens[1],
				Yes:   tokens[2],
				Total: coerceInt(tokens[3]),
			})
		}
	}

	// The first parsed row repeats the header labels.
	if len(rows) > 0 {
		rows = rows[1:]
	}
	table.Rows = rows
	return table, true
}

// SummarizeTabulation derives the narrative for one period. Every parse
// failure degrades to a shorter but always-present text; the summarizer
// never fails the report.
func SummarizeTabulation(text string, cfg TabulationConfig) entities.TabulationSummary {
	table, ok := ParseSOCTable(text, cfg)
	summary := entities.TabulationSummary{
		Labeled:   table.Labeled,
		Unlabeled: table.Unlabeled,
	}

	if !ok {
		summary.Outcome = entities.Empty("no tabulation table found in source text")
		summary.Paragraphs = []string{countOnlySentence(table.Labeled, table.Unlabeled)}
		return summary
	}

	grand, ok := table.GrandTotal()
	if !ok {
		summary.Outcome = entities.Empty("tabulation table had no data rows")
		summary.Paragraphs = []string{countOnlySentence(table.Labeled, table.Unlabeled)}
		return summary
	}

	summary.Serious = coerceInt(grand.Yes)
	summary.NonSerious = coerceInt(grand.No)
	summary.Total = grand.Total

	if summary.Total == 0 {
		summary.Outcome = entities.Partial("tabulation grand total is zero")
		summary.Paragraphs = []string{shortSummarySentence(summary)}
		return summary
	}

	body := table.Rows[:len(table.Rows)-1]
	var subtotals []entities.SOCRow
	for _, row := range body {
		if strings.EqualFold(strings.TrimSpace(row.Label), "SubTotal") {
			subtotals = append(subtotals, row)
		}
	}
	if len(subtotals) < 3 {
		summary.Outcome = entities.Partial("fewer than three organ-class groups in tabulation")
		summary.Paragraphs = []string{shortSummarySentence(summary)}
		return summary
	}

	sort.SliceStable(subtotals, func(i, j int) bool {
		return subtotals[i].Total > subtotals[j].Total
	})
	top := subtotals[:3]

	paragraphs := []string{
		fmt.Sprintf(
			"A total of %d cases were reported during the period, of which %d were serious and %d were non-serious. %d of the reported events were labeled and %d were unlabeled.",
			summary.Total, summary.Serious, summary.NonSerious, summary.Labeled, summary.Unlabeled,
		),
	}
	ranks := []string{"most", "second most", "third most"}
	for i, group := range top {
		share := int(math.Round(float64(group.Total) / float64(maxInt(summary.Total, 1)) * 100))
		sentence := fmt.Sprintf(
			"The %s frequently reported System Organ Class was %s with %d cases (%d%% of all reported cases).",
			ranks[i], group.SOC, group.Total, share,
		)
		if terms := topTerms(body, group.SOC); terms != "" {
			sentence += " The leading preferred terms were " + terms + "."
		}
		paragraphs = append(paragraphs, sentence)
	}

	summary.Outcome = entities.Full()
	summary.Paragraphs = paragraphs
	return summary
}

// topTerms renders the top sub-rows of a group as "Term (count)" fragments,
// ranked by Total descending with original order breaking ties.
func topTerms(body []entities.SOCRow, soc string) string {
	var subs []entities.SOCRow
	for _, row := range body {
		if row.SOC == soc && !strings.EqualFold(strings.TrimSpace(row.Label), "SubTotal") {
			subs = append(subs, row)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Total > subs[j].Total
	})
	if len(subs) > 4 {
		subs = subs[:4]
	}

	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		parts = append(parts, fmt.Sprintf("%s (%d)", s.Label, s.Total))
	}
	return strings.Join(parts, ", ")
}

func countOnlySentence(labeled, unlabeled int) string {
	return fmt.Sprintf(
		"%d labeled and %d unlabeled events were retrieved from the safety database for the period.",
		labeled, unlabeled,
	)
}

func shortSummarySentence(s entities.TabulationSummary) string {
	return fmt.Sprintf(
		"A total of %d cases (%d serious and %d non-serious) were retrieved from the safety database; %d events were labeled and %d were unlabeled.",
		s.Total, s.Serious, s.NonSerious, s.Labeled, s.Unlabeled,
	)
}

// tailCounts recovers the labeled/unlabeled scalars from the last non-blank
// line of the text: the first two purely numeric pipe tokens, in order.
// Absent tokens default to zero.
func tailCounts(text string) (labeled, unlabeled int) {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		var numbers []int
		for _, token := range pipeTokens(lines[i]) {
			if isDigits(token) {
				if v, err := strconv.Atoi(token); err == nil {
					numbers = append(numbers, v)
				}
			}
			if len(numbers) == 2 {
				break
			}
		}
		if len(numbers) > 0 {
			labeled = numbers[0]
		}
		if len(numbers) > 1 {
			unlabeled = numbers[1]
		}
		return labeled, unlabeled
	}
	return 0, 0
}

// markerRegion cuts the text between the first start-marker occurrence and
// the first end-marker occurrence after it, both case-insensitive.
func markerRegion(text, start, end string) (string, bool) {
	if start == "" || end == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	si := strings.Index(lower, strings.ToLower(start))
	if si < 0 {
		return "", false
	}
	from := si + len(start)
	ei := strings.Index(lower[from:], strings.ToLower(end))
	if ei < 0 {
		return "", false
	}
	return text[from : from+ei], true
}

// pipeTokens splits a line on pipes and keeps the trimmed non-blank tokens.
func pipeTokens(line string) []string {
	raw := strings.Split(line, "|")
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func coerceInt(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
