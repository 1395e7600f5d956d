package export

import (
	"html/template"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"agencypulse/server/internal/models"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2rem; color: #1f2933; }
h1 { font-size: 1.4rem; margin-bottom: 0.2rem; }
p.meta { color: #6b7280; font-size: 0.8rem; margin-top: 0; }
table { border-collapse: collapse; width: 100%; font-size: 0.72rem; }
th, td { border: 1px solid #d1d5db; padding: 4px 6px; text-align: left; }
th { background: #f3f4f6; }
tr:nth-child(even) td { background: #fafafa; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.Generated}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// WriteHTML writes the property report as a standalone styled document built
// on the shared column schema. An empty collection produces a header-only
// table.
func WriteHTML(w io.Writer, properties []models.PropertyDetails, generatedAt time.Time) error {
	headers, rows := table(properties, PropertyColumns())

	data := struct {
		Title     string
		Generated string
		Headers   []string
		Rows      [][]string
	}{
		Title:     "Property Report",
		Generated: generatedAt.Format(time.RFC1123),
		Headers:   headers,
		Rows:      rows,
	}

	if err := htmlReport.Execute(w, data); err != nil {
		return eris.Wrap(err, "html: execute report template")
	}
	return nil
}
