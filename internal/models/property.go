package models

import "time"

// Property categories as stored in the properties table.
const (
	CategoryListing    = "Listing"
	CategorySold       = "Sold"
	CategoryUnderOffer = "Under Offer"
)

// SameStreetSale is a comparable sold property on the subject's street,
// carried for valuation context.
type SameStreetSale struct {
	Address   string     `json:"address"`
	SoldPrice *float64   `json:"sold_price"`
	SoldDate  *time.Time `json:"sold_date"`
}

// PastRecord is a historical listing/sale event for the same property.
type PastRecord struct {
	Category string     `json:"category"`
	Price    *float64   `json:"price"`
	Date     *time.Time `json:"date"`
}

type PropertyDetails struct {
	ID               int64            `json:"id"`
	StreetNumber     string           `json:"street_number"`
	StreetName       string           `json:"street_name"`
	Suburb           string           `json:"suburb"`
	Postcode         string           `json:"postcode"`
	Category         string           `json:"category"`
	PropertyType     string           `json:"property_type"`
	Price            *float64         `json:"price"`
	SoldPrice        *float64         `json:"sold_price"`
	ExpectedPrice    *float64         `json:"expected_price"`
	Commission       *float64         `json:"commission"`
	CommissionEarned float64          `json:"commission_earned"`
	AgentName        string           `json:"agent_name"`
	AgencyName       string           `json:"agency_name"`
	Bedrooms         *int             `json:"bedrooms"`
	Bathrooms        *int             `json:"bathrooms"`
	GarageSpaces     *int             `json:"garage_spaces"`
	FloorArea        *float64         `json:"floor_area"`
	LandSize         *float64         `json:"land_size"`
	ListedDate       *time.Time       `json:"listed_date"`
	SoldDate         *time.Time       `json:"sold_date"`
	FloodRisk        bool             `json:"flood_risk"`
	BushfireRisk     bool             `json:"bushfire_risk"`
	ContractStatus   string           `json:"contract_status"`
	Features         []string         `json:"features"`
	SameStreetSales  []SameStreetSale `json:"same_street_sales"`
	PastRecords      []PastRecord     `json:"past_records"`
	CreatedAt        time.Time        `json:"created_at"`
}

// SalePrice returns the price used for averages: sold price when present,
// otherwise the asking price. The boolean reports whether either was set.
func (p *PropertyDetails) SalePrice() (float64, bool) {
	if p.SoldPrice != nil {
		return *p.SoldPrice, true
	}
	if p.Price != nil {
		return *p.Price, true
	}
	return 0, false
}

// CategoryCounts tracks listing and sale tallies for one group key. The two
// counters are independent; nothing reconciles them.
type CategoryCounts struct {
	Listed int `json:"listed"`
	Sold   int `json:"sold"`
}

// PricePrediction is a naive one-period-ahead projection for a suburb.
type PricePrediction struct {
	Predicted float64 `json:"predicted"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

// LeaderEntry pairs a "top" group with the operator agency's own stat for the
// same measure.
type LeaderEntry struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	OurCount int    `json:"our_count"`
}

// CommissionLeader is the global top commission earner vs the operator's own
// earned total.
type CommissionLeader struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	OurAmount float64 `json:"our_amount"`
}

// PropertyMetrics is the derived aggregate consumed by the reporting, chart
// and export endpoints. It is a value object: rebuilt wholesale on every
// recompute, never patched in place.
type PropertyMetrics struct {
	ListingsBySuburb       map[string]*CategoryCounts `json:"listings_by_suburb"`
	ListingsByStreetName   map[string]*CategoryCounts `json:"listings_by_street_name"`
	ListingsByStreetNumber map[string]*CategoryCounts `json:"listings_by_street_number"`
	ListingsByAgent        map[string]*CategoryCounts `json:"listings_by_agent"`
	ListingsByAgency       map[string]*CategoryCounts `json:"listings_by_agency"`

	// First-seen key order per group map. Go maps do not preserve insertion
	// order, so the aggregator records it here for chart label ordering.
	SuburbOrder       []string `json:"suburb_order"`
	StreetNameOrder   []string `json:"street_name_order"`
	StreetNumberOrder []string `json:"street_number_order"`
	AgentOrder        []string `json:"agent_order"`
	AgencyOrder       []string `json:"agency_order"`

	AvgPriceBySuburb     map[string]float64 `json:"avg_price_by_suburb"`
	AvgPriceByStreetName map[string]float64 `json:"avg_price_by_street_name"`
	AvgPriceByAgent      map[string]float64 `json:"avg_price_by_agent"`
	AvgPriceByAgency     map[string]float64 `json:"avg_price_by_agency"`

	PredictedPriceBySuburb map[string]PricePrediction    `json:"predicted_price_by_suburb"`
	PriceTrendBySuburb     map[string]map[string]float64 `json:"price_trend_by_suburb"`
	CommissionByAgency     map[string]map[string]float64 `json:"commission_by_agency"`

	TopListersBySuburb  map[string]LeaderEntry `json:"top_listers_by_suburb"`
	TopCommissionEarner CommissionLeader       `json:"top_commission_earner"`
	TopAgentBySales     LeaderEntry            `json:"top_agent_by_sales"`
	TopAgencyBySales    LeaderEntry            `json:"top_agency_by_sales"`

	PropertyDetails []PropertyDetails `json:"property_details"`

	TotalListings       int     `json:"total_listings"`
	TotalSales          int     `json:"total_sales"`
	OverallAvgSalePrice float64 `json:"overall_avg_sale_price"`
}

// Filters holds the five parallel predicate lists. An empty list means "no
// constraint on this field", never "exclude all".
type Filters struct {
	Suburbs       []string `json:"suburbs"`
	StreetNames   []string `json:"street_names"`
	StreetNumbers []string `json:"street_numbers"`
	Agents        []string `json:"agents"`
	AgencyNames   []string `json:"agency_names"`
}

// Empty reports whether no field carries a constraint.
func (f Filters) Empty() bool {
	return len(f.Suburbs) == 0 && len(f.StreetNames) == 0 &&
		len(f.StreetNumbers) == 0 && len(f.Agents) == 0 && len(f.AgencyNames) == 0
}

// Suggestions are the distinct per-field values offered for autocompletion,
// always derived from the unfiltered base collection.
type Suggestions struct {
	Suburbs       []string `json:"suburbs"`
	StreetNames   []string `json:"street_names"`
	StreetNumbers []string `json:"street_numbers"`
	Agents        []string `json:"agents"`
	AgencyNames   []string `json:"agency_names"`
}
