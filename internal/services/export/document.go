package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const ReportTitle = "Reconciliation Report"

var fontStyles = map[opKind]string{
	opDocTitle:     "",
	opSectionTitle: "U",
	opHeaderCell:   "B",
	opBodyCell:     "",
}

// RenderDocument writes the sections as a paginated A4 PDF. Layout is planned
// first without touching the backend; the plan is then drawn op by op.
func RenderDocument(w io.Writer, sections []Section) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(A4.Margin, A4.Margin, A4.Margin)
	pdf.SetAutoPageBreak(false, A4.Margin)
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator("bank-reconciliation-backend", true)

	// Core fonts are cp1252; descriptions from bank feeds are UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// SplitLines works on the translated single-byte text; SplitText would
	// decode it as UTF-8 again.
	measure := func(kind opKind, text string, width float64) int {
		setFont(pdf, kind)
		return len(pdf.SplitLines([]byte(tr(text)), width))
	}

	ops, err := layoutDocument(sections, A4, measure)
	if err != nil {
		return err
	}

	pdf.AddPage()
	for _, op := range ops {
		if op.Kind == opPageBreak {
			pdf.AddPage()
			continue
		}
		setFont(pdf, op.Kind)
		pdf.SetXY(op.X, op.Y)
		pdf.MultiCell(op.Width, lineHeight(op.Kind), tr(op.Text), "", op.Align, false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("draw document: %w", err)
	}
	return pdf.Output(w)
}

func setFont(pdf *fpdf.Fpdf, kind opKind) {
	pdf.SetFont("Helvetica", fontStyles[kind], fontSizes[kind])
}

// unencodable counts body cells holding runes outside cp1252. The core fonts
// cannot draw them, so they are lost in the document.
func unencodable(sections []Section) int {
	enc := charmap.Windows1252.NewEncoder()
	n := 0
	for _, s := range sections {
		cells, err := s.Cells(DocumentPlaceholder)
		if err != nil {
			continue
		}
		for _, row := range cells {
			for _, text := range row {
				if _, err := enc.String(text); err != nil {
					n++
				}
			}
		}
	}
	return n
}
