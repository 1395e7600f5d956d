package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"agencypulse/server/internal/models"
)

// WriteCSV writes the property report: two metadata rows, the shared header
// row, then one row per property. An empty collection yields a well-formed
// header-only file.
func WriteCSV(w io.Writer, properties []models.PropertyDetails, generatedAt time.Time) error {
	headers, rows := table(properties, PropertyColumns())

	cw := csv.NewWriter(w)
	meta := [][]string{
		{"Property Report"},
		{"Generated", generatedAt.Format(time.RFC3339)},
	}
	for _, row := range append(meta, headers) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write header")
		}
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return nil
}

// WriteCommissionCSV writes the admin commission report grouped by agency and
// period.
func WriteCommissionCSV(w io.Writer, m models.PropertyMetrics, generatedAt time.Time) error {
	cw := csv.NewWriter(w)
	meta := [][]string{
		{"Commission Report"},
		{"Generated", generatedAt.Format(time.RFC3339)},
	}
	for _, row := range append(meta, commissionHeaders) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write commission header")
		}
	}
	for _, row := range commissionTable(m) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write commission row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush commission report")
	}
	return nil
}
