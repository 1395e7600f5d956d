// Package charts maps the PropertyMetrics aggregate into renderer-agnostic
// series/label structures for the reporting screens.
package charts

import (
	"sort"

	"agencypulse/server/internal/models"
)

// ChartData is the chart-library-agnostic shape consumed by the front end.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

// palette is cycled by index across every chart.
var palette = []string{
	"#2563eb", "#16a34a", "#dc2626", "#d97706", "#7c3aed",
	"#0891b2", "#db2777", "#65a30d", "#9333ea", "#ea580c",
}

func colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// BuildHeatmapSeries renders listing and sale counts per suburb in first-seen
// suburb order. Returns nil when there is nothing to chart, signaling the
// caller to render a placeholder instead of an empty chart.
func BuildHeatmapSeries(m models.PropertyMetrics) *ChartData {
	if len(m.ListingsBySuburb) == 0 {
		return nil
	}

	listed := make([]float64, 0, len(m.SuburbOrder))
	sold := make([]float64, 0, len(m.SuburbOrder))
	for _, suburb := range m.SuburbOrder {
		c := m.ListingsBySuburb[suburb]
		if c == nil {
			c = &models.CategoryCounts{}
		}
		listed = append(listed, float64(c.Listed))
		sold = append(sold, float64(c.Sold))
	}

	return &ChartData{
		Labels: m.SuburbOrder,
		Datasets: []Dataset{
			{Label: "Listed", Data: listed, Colors: colors(len(listed))},
			{Label: "Sold", Data: sold, Colors: colors(len(sold))},
		},
	}
}

// BuildPriceTrendSeries renders one line per suburb over the union of period
// buckets in chronological order. Periods a suburb has no data for carry zero.
func BuildPriceTrendSeries(m models.PropertyMetrics) *ChartData {
	if len(m.PriceTrendBySuburb) == 0 {
		return nil
	}

	periodSet := make(map[string]struct{})
	for _, periods := range m.PriceTrendBySuburb {
		for period := range periods {
			periodSet[period] = struct{}{}
		}
	}
	periods := make([]string, 0, len(periodSet))
	for period := range periodSet {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	datasets := make([]Dataset, 0, len(m.PriceTrendBySuburb))
	for i, suburb := range m.SuburbOrder {
		trend, ok := m.PriceTrendBySuburb[suburb]
		if !ok {
			continue
		}
		data := make([]float64, len(periods))
		for j, period := range periods {
			data[j] = trend[period]
		}
		datasets = append(datasets, Dataset{
			Label:  suburb,
			Data:   data,
			Colors: []string{palette[i%len(palette)]},
		})
	}

	return &ChartData{Labels: periods, Datasets: datasets}
}

// BuildCommissionSeries renders total earned commission per agency in
// first-seen agency order, for the commission breakdown pie.
func BuildCommissionSeries(m models.PropertyMetrics) *ChartData {
	if len(m.CommissionByAgency) == 0 {
		return nil
	}

	labels := make([]string, 0, len(m.CommissionByAgency))
	totals := make([]float64, 0, len(m.CommissionByAgency))
	for _, agency := range m.AgencyOrder {
		periods, ok := m.CommissionByAgency[agency]
		if !ok {
			continue
		}
		var total float64
		for _, amount := range periods {
			total += amount
		}
		labels = append(labels, agency)
		totals = append(totals, total)
	}

	return &ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Commission earned", Data: totals, Colors: colors(len(totals))},
		},
	}
}
