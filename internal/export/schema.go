// Package export serializes the reporting aggregate into downloadable
// artifacts. All backends consume the single column projection defined here,
// so the report schema cannot drift between formats.
package export

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"agencypulse/server/internal/models"
)

// Column is one projected report column: a header and an accessor that
// formats the value for tabular output.
type Column struct {
	Header string
	Value  func(p *models.PropertyDetails) string
}

const notAvailable = "N/A"

func money(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func count(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v)
}

func area(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

func day(v *time.Time) string {
	if v == nil {
		return notAvailable
	}
	return v.Format("2006-01-02")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func text(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}

// PropertyColumns is the fixed 25-column property report schema shared by the
// PDF, CSV, XLSX and HTML backends.
func PropertyColumns() []Column {
	return []Column{
		{"ID", func(p *models.PropertyDetails) string { return strconv.FormatInt(p.ID, 10) }},
		{"Street Number", func(p *models.PropertyDetails) string { return text(p.StreetNumber) }},
		{"Street Name", func(p *models.PropertyDetails) string { return text(p.StreetName) }},
		{"Suburb", func(p *models.PropertyDetails) string { return text(p.Suburb) }},
		{"Postcode", func(p *models.PropertyDetails) string { return text(p.Postcode) }},
		{"Category", func(p *models.PropertyDetails) string { return text(p.Category) }},
		{"Property Type", func(p *models.PropertyDetails) string { return text(p.PropertyType) }},
		{"Price", func(p *models.PropertyDetails) string { return money(p.Price) }},
		{"Sold Price", func(p *models.PropertyDetails) string { return money(p.SoldPrice) }},
		{"Expected Price", func(p *models.PropertyDetails) string { return money(p.ExpectedPrice) }},
		{"Commission %", func(p *models.PropertyDetails) string { return money(p.Commission) }},
		{"Commission Earned", func(p *models.PropertyDetails) string {
			return strconv.FormatFloat(p.CommissionEarned, 'f', 2, 64)
		}},
		{"Agent", func(p *models.PropertyDetails) string { return text(p.AgentName) }},
		{"Agency", func(p *models.PropertyDetails) string { return text(p.AgencyName) }},
		{"Bedrooms", func(p *models.PropertyDetails) string { return count(p.Bedrooms) }},
		{"Bathrooms", func(p *models.PropertyDetails) string { return count(p.Bathrooms) }},
		{"Garage Spaces", func(p *models.PropertyDetails) string { return count(p.GarageSpaces) }},
		{"Floor Area", func(p *models.PropertyDetails) string { return area(p.FloorArea) }},
		{"Land Size", func(p *models.PropertyDetails) string { return area(p.LandSize) }},
		{"Listed Date", func(p *models.PropertyDetails) string { return day(p.ListedDate) }},
		{"Sold Date", func(p *models.PropertyDetails) string { return day(p.SoldDate) }},
		{"Flood Risk", func(p *models.PropertyDetails) string { return yesNo(p.FloodRisk) }},
		{"Bushfire Risk", func(p *models.PropertyDetails) string { return yesNo(p.BushfireRisk) }},
		{"Contract Status", func(p *models.PropertyDetails) string { return text(p.ContractStatus) }},
		{"Features", func(p *models.PropertyDetails) string {
			if len(p.Features) == 0 {
				return notAvailable
			}
			return strings.Join(p.Features, "; ")
		}},
	}
}

// table projects a property collection through a column set into header +
// data rows.
func table(properties []models.PropertyDetails, columns []Column) (headers []string, rows [][]string) {
	headers = make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}

	rows = make([][]string, 0, len(properties))
	for i := range properties {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = c.Value(&properties[i])
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// commissionHeaders is the schema of the agency commission report.
var commissionHeaders = []string{"Agency", "Period", "Commission Earned"}

// commissionTable flattens the per-agency per-period rollup into rows ordered
// by agency (first-seen) then period.
func commissionTable(m models.PropertyMetrics) [][]string {
	rows := make([][]string, 0, len(m.CommissionByAgency))
	for _, agency := range m.AgencyOrder {
		periods, ok := m.CommissionByAgency[agency]
		if !ok {
			continue
		}
		keys := make([]string, 0, len(periods))
		for period := range periods {
			keys = append(keys, period)
		}
		sort.Strings(keys)
		for _, period := range keys {
			rows = append(rows, []string{
				agency,
				period,
				strconv.FormatFloat(periods[period], 'f', 2, 64),
			})
		}
	}
	return rows
}
