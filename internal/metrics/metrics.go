// Package metrics derives the PropertyMetrics aggregate from a property
// collection: grouped listing/sale counts, average prices, naive trend
// projections, commission rollups and market comparison tables.
package metrics

import (
	"sort"
	"strings"
	"time"

	"agencypulse/server/config"
	"agencypulse/server/internal/commission"
	"agencypulse/server/internal/models"
)

// UnknownName is the grouping key for records missing an agent or agency.
const UnknownName = "Unknown"

// periodLayout buckets dated values by calendar month; lexicographic order of
// the keys is chronological order.
const periodLayout = "2006-01"

// UnknownPeriod buckets commission from sales with no recorded sold date.
const UnknownPeriod = "unknown"

// accumulator maintains per-key category counters and a running price mean in
// first-seen key order.
type accumulator struct {
	counts   map[string]*models.CategoryCounts
	order    []string
	priceSum map[string]float64
	priceN   map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		counts:   make(map[string]*models.CategoryCounts),
		priceSum: make(map[string]float64),
		priceN:   make(map[string]int),
	}
}

func (a *accumulator) touch(key string) *models.CategoryCounts {
	c, ok := a.counts[key]
	if !ok {
		c = &models.CategoryCounts{}
		a.counts[key] = c
		a.order = append(a.order, key)
	}
	return c
}

func (a *accumulator) addPrice(key string, p *models.PropertyDetails) {
	// Records with neither a sold nor an asking price stay out of the
	// average's denominator; they are not treated as zero.
	if price, ok := p.SalePrice(); ok {
		a.priceSum[key] += price
		a.priceN[key]++
	}
}

func (a *accumulator) averages() map[string]float64 {
	avg := make(map[string]float64, len(a.priceN))
	for key, n := range a.priceN {
		if n > 0 {
			avg[key] = a.priceSum[key] / float64(n)
		}
	}
	return avg
}

// nameKey lower-cases agent/agency names for grouping; missing names fall
// into a shared Unknown bucket.
func nameKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UnknownName
	}
	return strings.ToLower(trimmed)
}

// streetKey leaves street values as entered; only the empty case is bucketed.
func streetKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UnknownName
	}
	return trimmed
}

// Compute builds the full aggregate in a single pass plus grouped reductions.
// It is defensive throughout: absent fields contribute neutral values rather
// than errors, and the function never fails on well-typed input. agencyName is
// the operator agency used as the comparison baseline.
func Compute(properties []models.PropertyDetails, predict PredictFn, agencyName string) models.PropertyMetrics {
	if predict == nil {
		predict = LinearPredict
	}
	ourAgency := nameKey(agencyName)

	bySuburb := newAccumulator()
	byStreetName := newAccumulator()
	byStreetNumber := newAccumulator()
	byAgent := newAccumulator()
	byAgency := newAccumulator()

	type bucket struct {
		sum float64
		n   int
	}
	trend := make(map[string]map[string]*bucket)

	commissionRollup := make(map[string]map[string]float64)

	// Per-suburb agent listing tallies for the "top lister" table, with
	// first-seen agent order preserved per suburb for tie-breaking.
	suburbAgentCounts := make(map[string]map[string]int)
	suburbAgentOrder := make(map[string][]string)
	ourListingsBySuburb := make(map[string]int)

	agentEarned := make(map[string]float64)
	var ourEarned float64

	totalListings := 0
	totalSales := 0
	var salePriceSum float64
	var salePriceN int

	details := make([]models.PropertyDetails, 0, len(properties))

	for i := range properties {
		p := properties[i]
		comm := commission.Calculate(&p)
		p.CommissionEarned = comm.EarnedAmount
		details = append(details, p)

		suburb := config.NormalizeSuburb(p.Suburb)
		street := streetKey(p.StreetName)
		number := streetKey(p.StreetNumber)
		agent := nameKey(p.AgentName)
		agency := nameKey(p.AgencyName)

		listed := p.Category == models.CategoryListing
		sold := p.Category == models.CategorySold

		for _, g := range []struct {
			acc *accumulator
			key string
		}{
			{bySuburb, suburb},
			{byStreetName, street},
			{byStreetNumber, number},
			{byAgent, agent},
			{byAgency, agency},
		} {
			c := g.acc.touch(g.key)
			if listed {
				c.Listed++
			}
			if sold {
				c.Sold++
			}
			g.acc.addPrice(g.key, &p)
		}

		if listed {
			totalListings++
			agents, ok := suburbAgentCounts[suburb]
			if !ok {
				agents = make(map[string]int)
				suburbAgentCounts[suburb] = agents
			}
			if _, seen := agents[agent]; !seen {
				suburbAgentOrder[suburb] = append(suburbAgentOrder[suburb], agent)
			}
			agents[agent]++
			if agency == ourAgency {
				ourListingsBySuburb[suburb]++
			}
		}

		if sold {
			totalSales++
			if price, ok := p.SalePrice(); ok {
				salePriceSum += price
				salePriceN++
			}

			period := UnknownPeriod
			if p.SoldDate != nil {
				period = p.SoldDate.Format(periodLayout)
			}

			if comm.EarnedAmount > 0 {
				periods, ok := commissionRollup[agency]
				if !ok {
					periods = make(map[string]float64)
					commissionRollup[agency] = periods
				}
				periods[period] += comm.EarnedAmount

				agentEarned[agent] += comm.EarnedAmount
				if agency == ourAgency {
					ourEarned += comm.EarnedAmount
				}
			}
		}

		if date := trendDate(&p); date != nil {
			if price, ok := p.SalePrice(); ok {
				period := date.Format(periodLayout)
				periods, ok := trend[suburb]
				if !ok {
					periods = make(map[string]*bucket)
					trend[suburb] = periods
				}
				b, ok := periods[period]
				if !ok {
					b = &bucket{}
					periods[period] = b
				}
				b.sum += price
				b.n++
			}
		}
	}

	m := models.PropertyMetrics{
		ListingsBySuburb:       bySuburb.counts,
		ListingsByStreetName:   byStreetName.counts,
		ListingsByStreetNumber: byStreetNumber.counts,
		ListingsByAgent:        byAgent.counts,
		ListingsByAgency:       byAgency.counts,

		SuburbOrder:       bySuburb.order,
		StreetNameOrder:   byStreetName.order,
		StreetNumberOrder: byStreetNumber.order,
		AgentOrder:        byAgent.order,
		AgencyOrder:       byAgency.order,

		AvgPriceBySuburb:     bySuburb.averages(),
		AvgPriceByStreetName: byStreetName.averages(),
		AvgPriceByAgent:      byAgent.averages(),
		AvgPriceByAgency:     byAgency.averages(),

		PredictedPriceBySuburb: make(map[string]models.PricePrediction),
		PriceTrendBySuburb:     make(map[string]map[string]float64),
		CommissionByAgency:     commissionRollup,

		TopListersBySuburb: make(map[string]models.LeaderEntry),

		PropertyDetails: details,

		TotalListings: totalListings,
		TotalSales:    totalSales,
	}

	if salePriceN > 0 {
		m.OverallAvgSalePrice = salePriceSum / float64(salePriceN)
	}

	for suburb, periods := range trend {
		keys := make([]string, 0, len(periods))
		for period := range periods {
			keys = append(keys, period)
		}
		sort.Strings(keys)

		averaged := make(map[string]float64, len(periods))
		series := make([]float64, 0, len(keys))
		for _, period := range keys {
			b := periods[period]
			avg := b.sum / float64(b.n)
			averaged[period] = avg
			series = append(series, avg)
		}
		m.PriceTrendBySuburb[suburb] = averaged
		m.PredictedPriceBySuburb[suburb] = predict(series)
	}

	// Top selection uses strict greater-than against a running maximum seeded
	// at zero/empty, so the first-encountered group wins ties. Order-dependent
	// but kept for compatibility with the established reports.
	for _, suburb := range bySuburb.order {
		top := models.LeaderEntry{OurCount: ourListingsBySuburb[suburb]}
		for _, agent := range suburbAgentOrder[suburb] {
			if count := suburbAgentCounts[suburb][agent]; count > top.Count {
				top.Name = agent
				top.Count = count
			}
		}
		m.TopListersBySuburb[suburb] = top
	}

	earner := models.CommissionLeader{OurAmount: ourEarned}
	for _, agent := range byAgent.order {
		if amount := agentEarned[agent]; amount > earner.Amount {
			earner.Name = agent
			earner.Amount = amount
		}
	}
	m.TopCommissionEarner = earner

	ourSold := 0
	if c, ok := byAgency.counts[ourAgency]; ok {
		ourSold = c.Sold
	}

	topAgent := models.LeaderEntry{OurCount: ourSold}
	for _, agent := range byAgent.order {
		if c := byAgent.counts[agent]; c.Sold > topAgent.Count {
			topAgent.Name = agent
			topAgent.Count = c.Sold
		}
	}
	m.TopAgentBySales = topAgent

	topAgency := models.LeaderEntry{OurCount: ourSold}
	for _, agency := range byAgency.order {
		if c := byAgency.counts[agency]; c.Sold > topAgency.Count {
			topAgency.Name = agency
			topAgency.Count = c.Sold
		}
	}
	m.TopAgencyBySales = topAgency

	return m
}

// trendDate picks the date that places a record on the price timeline: the
// sold date when present, otherwise the listed date.
func trendDate(p *models.PropertyDetails) *time.Time {
	if p.SoldDate != nil {
		return p.SoldDate
	}
	return p.ListedDate
}
