// Package docx handles the Word-format input and output surfaces of the
// report generator. The reader recovers body blocks (paragraphs and tables,
// in document order) from word/document.xml; the locator finds target tables
// by header keywords or marker paragraphs; the builder assembles the output
// report document.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BlockKind discriminates body-level blocks.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
)

// Block is one body-level element. Text is set for paragraphs, Table for
// tables. Table cells are expanded to the full column grid: horizontally
// merged cells repeat their text per spanned column, vertically merged
// continuation cells inherit the text above them, matching how Word itself
// reports the grid.
type Block struct {
	Kind  BlockKind
	Text  string
	Table [][]string
}

// Document is the parsed body of a .docx file.
type Document struct {
	Blocks []Block
}

// Paragraphs returns the body paragraph texts in document order, including
// empty paragraphs. Marker searches rely on the positional indices.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == BlockParagraph {
			out = append(out, b.Text)
		}
	}
	return out
}

// Tables returns the body-level tables in document order.
func (d *Document) Tables() [][][]string {
	var out [][][]string
	for _, b := range d.Blocks {
		if b.Kind == BlockTable {
			out = append(out, b.Table)
		}
	}
	return out
}

// Text joins all body paragraphs with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs(), "\n")
}

// ReadFile opens a .docx archive from disk.
func ReadFile(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	defer r.Close()
	return readArchive(&r.Reader)
}

// ReadBytes parses a .docx archive held in memory.
func ReadBytes(data []byte) (*Document, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	return readArchive(r)
}

func readArchive(r *zip.Reader) (*Document, error) {
	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

// pendingCell is a table cell before grid expansion.
type pendingCell struct {
	text      strings.Builder
	gridSpan  int
	vContinue bool
	paraCount int
}

func parseDocumentXML(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	doc := &Document{}

	var (
		tableDepth int
		inText     bool
		inRun      bool
		inCellPr   bool

		paraText  strings.Builder
		inPara    bool
		cell      *pendingCell
		rowCells  []*pendingCell
		tableRows [][]string
		prevRow   []string
	)

	appendText := func(s string) {
		if cell != nil {
			cell.text.WriteString(s)
		} else if inPara {
			paraText.WriteString(s)
		}
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					tableRows = nil
					prevRow = nil
				}
			case "tr":
				if tableDepth == 1 {
					rowCells = nil
				}
			case "tc":
				if tableDepth == 1 {
					cell = &pendingCell{gridSpan: 1}
				}
			case "tcPr":
				inCellPr = cell != nil && tableDepth == 1
			case "gridSpan":
				if inCellPr && cell != nil {
					if n, err := strconv.Atoi(attrVal(t, "val")); err == nil && n > 1 {
						cell.gridSpan = n
					}
				}
			case "vMerge":
				if inCellPr && cell != nil {
					val := attrVal(t, "val")
					cell.vContinue = val == "" || val == "continue"
				}
			case "p":
				if cell != nil {
					if cell.paraCount > 0 {
						cell.text.WriteString("\n")
					}
				} else if tableDepth == 0 {
					inPara = true
					paraText.Reset()
				}
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// Run-level tab characters only; w:tabs stop definitions
				// inside paragraph properties carry the same local name.
				if inRun {
					appendText("\t")
				}
			case "br", "cr":
				if inRun {
					appendText("\n")
				}
			}

		case xml.CharData:
			if inText {
				appendText(string(t))
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "tcPr":
				inCellPr = false
			case "p":
				if cell != nil {
					cell.paraCount++
				} else if inPara && tableDepth == 0 {
					inPara = false
					doc.Blocks = append(doc.Blocks, Block{Kind: BlockParagraph, Text: paraText.String()})
				}
			case "tc":
				if tableDepth == 1 && cell != nil {
					rowCells = append(rowCells, cell)
					cell = nil
				}
			case "tr":
				if tableDepth == 1 {
					expanded := expandRow(rowCells, prevRow)
					tableRows = append(tableRows, expanded)
					prevRow = expanded
					rowCells = nil
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 {
					doc.Blocks = append(doc.Blocks, Block{Kind: BlockTable, Table: tableRows})
					tableRows = nil
					prevRow = nil
				}
			}
		}
	}

	return doc, nil
}

// expandRow turns pending cells into a grid row. Horizontal merges repeat
// the cell text per spanned column; vertical continuations copy from the row
// above at the same grid position.
func expandRow(cells []*pendingCell, prevRow []string) []string {
	var row []string
	for _, c := range cells {
		text := c.text.String()
		for i := 0; i < c.gridSpan; i++ {
			idx := len(row)
			if c.vContinue && idx < len(prevRow) {
				row = append(row, prevRow[idx])
			} else {
				row = append(row, text)
			}
		}
	}
	return row
}

func attrVal(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
