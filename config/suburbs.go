package config

import (
	"fmt"
	"strings"
)

// Suburb represents an allow-listed suburb configuration
type Suburb struct {
	Name     string
	Postcode string
}

// UnknownSuburb is the grouping key used when a record carries no suburb at all.
const UnknownSuburb = "Unknown"

// SupportedSuburbs is the list of suburbs the agency operates in. Free-text
// suburb values from listings are mapped onto these via the alias table below.
var SupportedSuburbs = []Suburb{
	{Name: "Kenmore", Postcode: "4069"},
	{Name: "Kenmore Hills", Postcode: "4069"},
	{Name: "Chapel Hill", Postcode: "4069"},
	{Name: "Fig Tree Pocket", Postcode: "4069"},
	{Name: "Pullenvale", Postcode: "4069"},
	{Name: "Brookfield", Postcode: "4069"},
	{Name: "Pinjarra Hills", Postcode: "4069"},
	{Name: "Moggill", Postcode: "4070"},
	{Name: "Bellbowrie", Postcode: "4070"},
	{Name: "Anstead", Postcode: "4070"},
}

// suburbAliases maps trimmed, lower-cased free-text variants to the canonical
// "Name POSTCODE" label. Built once at init from SupportedSuburbs: the bare
// name, with postcode, and with/without the state code.
var suburbAliases = buildSuburbAliases()

func buildSuburbAliases() map[string]string {
	aliases := make(map[string]string)
	for _, s := range SupportedSuburbs {
		canonical := fmt.Sprintf("%s %s", s.Name, s.Postcode)
		name := strings.ToLower(s.Name)
		variants := []string{
			name,
			name + " " + s.Postcode,
			name + " qld",
			name + " qld " + s.Postcode,
			name + ", qld",
			name + ", qld " + s.Postcode,
			name + " queensland",
			strings.ToLower(canonical),
		}
		for _, v := range variants {
			aliases[v] = canonical
		}
	}

	// Keep NormalizeSuburb idempotent over its own "no suburb" output.
	aliases[strings.ToLower(UnknownSuburb)] = UnknownSuburb

	return aliases
}

// NormalizeSuburb maps a free-text suburb string to its canonical grouping
// label. Unrecognized suburbs pass through trimmed and lower-cased rather than
// being rejected; empty input maps to UnknownSuburb. Never fails.
func NormalizeSuburb(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return UnknownSuburb
	}
	if canonical, ok := suburbAliases[trimmed]; ok {
		return canonical
	}
	return trimmed
}

// SuburbNames returns the canonical labels of all supported suburbs
func SuburbNames() []string {
	names := make([]string, len(SupportedSuburbs))
	for i, s := range SupportedSuburbs {
		names[i] = fmt.Sprintf("%s %s", s.Name, s.Postcode)
	}
	return names
}

// IsKnownSuburb reports whether the input resolves to an allow-listed suburb
func IsKnownSuburb(raw string) bool {
	_, ok := suburbAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ok && NormalizeSuburb(raw) != UnknownSuburb
}
