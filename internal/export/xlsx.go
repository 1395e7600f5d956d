package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"agencypulse/server/internal/models"
)

// WriteXLSX writes the property report as a single-sheet workbook: metadata
// rows, the shared header row, then data rows.
func WriteXLSX(w io.Writer, properties []models.PropertyDetails, generatedAt time.Time) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Property Report")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().Value = "Property Report"
	metaRow := sheet.AddRow()
	metaRow.AddCell().Value = "Generated"
	metaRow.AddCell().Value = generatedAt.Format(time.RFC3339)
	sheet.AddRow()

	headers, rows := table(properties, PropertyColumns())

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}
	for _, row := range rows {
		dataRow := sheet.AddRow()
		for _, value := range row {
			dataRow.AddCell().Value = value
		}
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}
