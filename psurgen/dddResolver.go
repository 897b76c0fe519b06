package psurgen

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/openpv/psur-generator/logging"
	"github.com/openpv/psur-generator/psurgen/entities"
)

const dddIndexURL = "https://atcddd.fhi.no/atc_ddd_index/"

// DDDResolver resolves a defined daily dose for a medicine, first from a
// local lookup workbook and, failing that, from the public ATC/DDD index.
// The remote call is best effort: one request, short timeout, any failure
// surfaces as a not-found value.
type DDDResolver struct {
	client  *http.Client
	baseURL string
}

func NewDDDResolver() *DDDResolver {
	return &DDDResolver{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				// The index host serves an incomplete chain; certificate
				// verification is disabled on this non-critical path.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
			},
		},
		baseURL: dddIndexURL,
	}
}

// Resolve looks the medicine up in the workbook rows. A row matches on
// case-insensitive equality of its Drug Name cell; the first match wins.
// When the matched row has no usable DDD Value, its Drug Code feeds the
// remote lookup. No workbook match means no remote attempt.
func (r *DDDResolver) Resolve(workbook [][]string, medicine string) entities.DDDValue {
	value, code, ok := lookupWorkbook(workbook, medicine)
	if ok {
		return entities.DDDValue{Value: value, Found: true, Source: entities.DDDSourceWorkbook}
	}
	if code == "" {
		return entities.DDDValue{}
	}
	return r.fetchRemote(code)
}

func lookupWorkbook(rows [][]string, medicine string) (value float64, code string, ok bool) {
	if len(rows) < 2 {
		return 0, "", false
	}
	nameIdx := headerIndex(rows[0], "Drug Name")
	valueIdx := headerIndex(rows[0], "DDD Value")
	codeIdx := headerIndex(rows[0], "Drug Code")
	if nameIdx < 0 {
		return 0, "", false
	}

	for _, row := range rows[1:] {
		if nameIdx >= len(row) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[nameIdx]), strings.TrimSpace(medicine)) {
			continue
		}
		if valueIdx >= 0 && valueIdx < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64); err == nil {
				return v, "", true
			}
		}
		if codeIdx >= 0 && codeIdx < len(row) {
			return 0, strings.TrimSpace(row[codeIdx]), false
		}
		return 0, "", false
	}
	return 0, "", false
}

func headerIndex(header []string, name string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i
		}
	}
	return -1
}

func (r *DDDResolver) fetchRemote(code string) entities.DDDValue {
	lookupURL := r.baseURL + "?code=" + url.QueryEscape(code)
	resp, err := r.client.Get(lookupURL)
	if err != nil {
		logging.Warn("DDD index request failed", "code", code, "error", err)
		return entities.DDDValue{}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close DDD index response body", "error", err)
		}
	}()

	if resp.StatusCode >= 400 {
		logging.Warn("DDD index returned error status", "code", code, "status", resp.StatusCode)
		return entities.DDDValue{}
	}

	value, ok := parseDDDFromHTML(resp.Body)
	if !ok {
		logging.Warn("DDD index page had no usable value", "code", code)
		return entities.DDDValue{}
	}
	return entities.DDDValue{Value: value, Found: true, Source: entities.DDDSourceRemote}
}

// parseDDDFromHTML scans the index page for right-aligned table cells and
// returns the first one whose text is numeric (digits with at most one
// decimal point).
func parseDDDFromHTML(body io.Reader) (float64, bool) {
	root, err := html.Parse(body)
	if err != nil {
		return 0, false
	}

	var value float64
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "td" && attrValue(n, "align") == "right" {
			text := strings.TrimSpace(nodeText(n))
			if isNumericToken(text) {
				if v, err := strconv.ParseFloat(text, 64); err == nil {
					value = v
					found = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return value, found
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// isNumericToken accepts digit strings with at most one decimal point.
func isNumericToken(s string) bool {
	stripped := strings.Replace(s, ".", "", 1)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
