package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders course outlines into a printable PDF document.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// OutlineSection is a titled group of entries, one per module.
type OutlineSection struct {
	Title       string
	Description string
	Entries     []string
}

// RenderOutline creates a PDF with a title page header and one block per section.
func (r *PDFRenderer) RenderOutline(title, subtitle string, sections []OutlineSection) ([]byte, error) {
	if title == "" {
		return nil, fmt.Errorf("outline requires a title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	if subtitle != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 8, subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for i, section := range sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d. %s", i+1, section.Title), "", 1, "", false, 0, "")
		if section.Description != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, section.Description, "", "", false)
		}
		pdf.SetFont("Arial", "", 10)
		for _, entry := range section.Entries {
			pdf.CellFormat(0, 6, "   - "+entry, "", 1, "", false, 0, "")
		}
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTable creates a PDF document with an optional title and table body.
func (r *PDFRenderer) RenderTable(table Table, title string) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(table.Headers))
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		for i := range table.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
