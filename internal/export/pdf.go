package export

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rotisserie/eris"

	"agencypulse/server/internal/models"
)

// WritePDF renders the property report as a landscape A3 table: title block,
// generation timestamp and the shared 25-column schema with fixed widths.
func WritePDF(w io.Writer, properties []models.PropertyDetails, generatedAt time.Time) error {
	headers, rows := table(properties, PropertyColumns())
	return writePDFTable(w, "Property Report", headers, rows, generatedAt)
}

// WriteCommissionPDF renders the agency commission rollup.
func WriteCommissionPDF(w io.Writer, m models.PropertyMetrics, generatedAt time.Time) error {
	return writePDFTable(w, "Commission Report", commissionHeaders, commissionTable(m), generatedAt)
}

func writePDFTable(w io.Writer, title string, headers []string, rows [][]string, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A3", "")
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Generated "+generatedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range headers {
		pdf.CellFormat(colWidth, 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 6)
	for _, row := range rows {
		for _, value := range row {
			pdf.CellFormat(colWidth, 5, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "pdf: render table")
	}
	return nil
}
