// Package filter narrows a property collection with the five-field predicate
// set used by the reporting screens, and derives autocompletion suggestions.
package filter

import (
	"sort"
	"strings"

	"agencypulse/server/config"
	"agencypulse/server/internal/models"
)

// Apply retains the properties matching every constrained field. Within one
// field any candidate value may match (OR); across fields all must match
// (AND). Comparison is case-insensitive; suburbs are normalized on both sides
// before comparing.
func Apply(properties []models.PropertyDetails, filters models.Filters) []models.PropertyDetails {
	if filters.Empty() {
		return properties
	}

	filtered := make([]models.PropertyDetails, 0, len(properties))
	for _, p := range properties {
		if matches(&p, filters) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// PreviewCount reports how many properties would survive the filters without
// committing a new filtered list, for immediate feedback before confirmation.
func PreviewCount(properties []models.PropertyDetails, filters models.Filters) int {
	if filters.Empty() {
		return len(properties)
	}

	count := 0
	for _, p := range properties {
		if matches(&p, filters) {
			count++
		}
	}
	return count
}

func matches(p *models.PropertyDetails, f models.Filters) bool {
	return matchesSuburb(p.Suburb, f.Suburbs) &&
		matchesField(p.StreetName, f.StreetNames) &&
		matchesField(p.StreetNumber, f.StreetNumbers) &&
		matchesField(p.AgentName, f.Agents) &&
		matchesField(p.AgencyName, f.AgencyNames)
}

func matchesSuburb(value string, candidates []string) bool {
	if len(candidates) == 0 {
		return true
	}
	normalized := config.NormalizeSuburb(value)
	for _, c := range candidates {
		if strings.EqualFold(config.NormalizeSuburb(c), normalized) {
			return true
		}
	}
	return false
}

func matchesField(value string, candidates []string) bool {
	if len(candidates) == 0 {
		return true
	}
	for _, c := range candidates {
		if strings.EqualFold(c, value) {
			return true
		}
	}
	return false
}

// Suggest collects the distinct non-empty values of each filterable field
// across the unfiltered base collection, sorted lexicographically.
func Suggest(properties []models.PropertyDetails) models.Suggestions {
	suburbs := make(map[string]struct{})
	streetNames := make(map[string]struct{})
	streetNumbers := make(map[string]struct{})
	agents := make(map[string]struct{})
	agencies := make(map[string]struct{})

	for _, p := range properties {
		// Empty suburbs stay out of the suggestion list; they would otherwise
		// surface as the normalizer's "Unknown" placeholder.
		if strings.TrimSpace(p.Suburb) != "" {
			collect(suburbs, config.NormalizeSuburb(p.Suburb))
		}
		collect(streetNames, p.StreetName)
		collect(streetNumbers, p.StreetNumber)
		collect(agents, p.AgentName)
		collect(agencies, p.AgencyName)
	}

	return models.Suggestions{
		Suburbs:       sorted(suburbs),
		StreetNames:   sorted(streetNames),
		StreetNumbers: sorted(streetNumbers),
		Agents:        sorted(agents),
		AgencyNames:   sorted(agencies),
	}
}

func collect(set map[string]struct{}, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	set[value] = struct{}{}
}

func sorted(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
