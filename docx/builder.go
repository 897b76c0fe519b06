package docx

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Builder assembles the output report document section by section.
type Builder struct {
	doc *document.Document
}

func NewBuilder() *Builder {
	return &Builder{doc: document.New()}
}

func (b *Builder) styled(style, text string) {
	para := b.doc.AddParagraph()
	para.SetStyle(style)
	para.AddRun().AddText(text)
}

func (b *Builder) Heading1(text string) {
	b.styled("Heading1", text)
}

func (b *Builder) Heading2(text string) {
	b.styled("Heading2", text)
}

func (b *Builder) Paragraph(text string) {
	b.doc.AddParagraph().AddRun().AddText(text)
}

func (b *Builder) EmptyParagraph() {
	b.doc.AddParagraph()
}

// BulletItem renders a list item. The default document carries no list
// styles, so bullets are inlined.
func (b *Builder) BulletItem(text string) {
	b.doc.AddParagraph().AddRun().AddText("• " + text)
}

// LeadIn writes a bold, underlined lead-in line such as the tabulation
// block labels.
func (b *Builder) LeadIn(text string) {
	para := b.doc.AddParagraph()
	run := para.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetUnderline(wml.ST_UnderlineSingle, color.Auto)
	run.AddText(text)
}

// Table renders a full-width bordered table with a single bold header row.
func (b *Builder) Table(header []string, rows [][]string) {
	all := make([][]string, 0, len(rows)+1)
	if len(header) > 0 {
		all = append(all, header)
	}
	all = append(all, rows...)
	headerRows := 0
	if len(header) > 0 {
		headerRows = 1
	}
	b.TableWithHeaderRows(all, headerRows)
}

// TableWithHeaderRows renders rows as a bordered table, bolding the first
// headerRows rows. Used for source tables that keep their two-level headers.
func (b *Builder) TableWithHeaderRows(rows [][]string, headerRows int) {
	table := b.doc.AddTable()
	table.Properties().SetWidthPercent(100)
	table.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 0.5*measurement.Point)

	for i, row := range rows {
		tr := table.AddRow()
		for _, text := range row {
			cell := tr.AddCell()
			run := cell.AddParagraph().AddRun()
			if i < headerRows {
				run.Properties().SetBold(true)
			}
			run.AddText(text)
		}
	}
}

// Cover writes a centered title page: the report title in large bold type
// followed by the subtitle lines.
func (b *Builder) Cover(title string, lines []string) {
	para := b.doc.AddParagraph()
	para.Properties().SetAlignment(wml.ST_JcCenter)
	run := para.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetSize(24 * measurement.Point)
	run.AddText(title)

	for _, line := range lines {
		p := b.doc.AddParagraph()
		p.Properties().SetAlignment(wml.ST_JcCenter)
		r := p.AddRun()
		r.Properties().SetSize(12 * measurement.Point)
		r.AddText(line)
	}
	b.doc.AddParagraph()
}

// TOC inserts a table-of-contents field that Word populates when the
// document is opened.
func (b *Builder) TOC() {
	b.styled("Heading1", "Table of Contents")
	para := b.doc.AddParagraph()
	para.AddRun().AddFieldWithFormatting("TOC", `\o "1-3" \h \z \u`, true)
	b.doc.Settings.SetUpdateFieldsOnOpen(true)
}

// Bytes serializes the document.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile writes the document to disk.
func (b *Builder) SaveFile(path string) error {
	if err := b.doc.SaveToFile(path); err != nil {
		return fmt.Errorf("save document to %s: %w", path, err)
	}
	return nil
}
