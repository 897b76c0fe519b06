package psurgen

import (
	"archive/zip"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadSheetRows reads a spreadsheet into raw string rows, dispatching on the
// file extension. XLSX workbooks contribute their first sheet; CSV files are
// read whole. Cell values keep their stored textual form.
func LoadSheetRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readWorkbookRows(path)
	case ".csv":
		return readCSVRows(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DataRowCount reports how many rows carry data beyond the header row.
// Rows whose cells are all blank do not count.
func DataRowCount(rows [][]string) int {
	if len(rows) < 2 {
		return 0
	}
	n := 0
	for _, row := range rows[1:] {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				n++
				break
			}
		}
	}
	return n
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func readWorkbookRows(path string) ([][]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer zr.Close()

	var sheetFile *zip.File
	var sharedFile *zip.File
	sheetNum := -1
	for _, f := range zr.File {
		if f.Name == "xl/sharedStrings.xml" {
			sharedFile = f
			continue
		}
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			if n := sheetNumber(f.Name); sheetNum == -1 || (n != -1 && n < sheetNum) {
				sheetFile = f
				sheetNum = n
			}
		}
	}
	if sheetFile == nil {
		return nil, fmt.Errorf("workbook %s has no worksheet", path)
	}

	var shared []string
	if sharedFile != nil {
		rc, err := sharedFile.Open()
		if err != nil {
			return nil, fmt.Errorf("open shared strings: %w", err)
		}
		shared, err = parseSharedStrings(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse shared strings: %w", err)
		}
	}

	rc, err := sheetFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open worksheet: %w", err)
	}
	defer rc.Close()

	rows, err := parseWorksheet(rc, shared)
	if err != nil {
		return nil, fmt.Errorf("parse worksheet: %w", err)
	}
	return rows, nil
}

func sheetNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "xl/worksheets/sheet"), ".xml")
	n, err := strconv.Atoi(base)
	if err != nil {
		return -1
	}
	return n
}

// parseSharedStrings collects each <si> entry, concatenating the <t> runs of
// rich-text entries into one string.
func parseSharedStrings(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var shared []string
	var cur strings.Builder
	inEntry := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inEntry = true
				cur.Reset()
			case "t":
				inText = inEntry
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				shared = append(shared, cur.String())
				inEntry = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return shared, nil
}

// parseWorksheet walks sheet XML and materializes the cell grid. Cell
// references position values at their true column so that gaps survive as
// empty strings; shared-string cells are resolved through the shared table.
func parseWorksheet(r io.Reader, shared []string) ([][]string, error) {
	dec := xml.NewDecoder(r)

	var rows [][]string
	var cur []string
	var val strings.Builder
	inRow := false
	inCell := false
	inValue := false
	colCursor := 0
	cellRef := ""
	cellType := ""

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				cur = []string{}
				colCursor = 0
			case "c":
				if !inRow {
					break
				}
				inCell = true
				cellRef = ""
				cellType = ""
				val.Reset()
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "r":
						cellRef = a.Value
					case "t":
						cellType = a.Value
					}
				}
			case "v":
				inValue = inCell
			case "t":
				// inline string runs live under <is>
				inValue = inCell && cellType == "inlineStr"
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				rows = append(rows, cur)
				inRow = false
			case "c":
				if !inCell {
					break
				}
				idx := colCursor
				if cellRef != "" {
					if n := columnIndex(cellRef); n >= 0 {
						idx = n
					}
				}
				for len(cur) < idx {
					cur = append(cur, "")
				}
				text := val.String()
				if cellType == "s" {
					text = resolveShared(shared, text)
				}
				if idx < len(cur) {
					cur[idx] = text
				} else {
					cur = append(cur, text)
				}
				colCursor = idx + 1
				inCell = false
			case "v", "t":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				val.Write(t)
			}
		}
	}
	return rows, nil
}

func resolveShared(shared []string, raw string) string {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 0 || idx >= len(shared) {
		return ""
	}
	return shared[idx]
}

// columnIndex converts the letter prefix of an A1-style reference to a
// zero-based column number, -1 when the reference has no letters.
func columnIndex(ref string) int {
	n := 0
	seen := false
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		n = n*26 + int(c-'A'+1)
		seen = true
	}
	if !seen {
		return -1
	}
	return n - 1
}
