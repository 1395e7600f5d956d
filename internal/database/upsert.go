package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agencypulse/server/internal/models"
)

var propertyUpsertColumns = []string{
	"street_number", "street_name", "suburb", "postcode",
	"category", "property_type",
	"price", "sold_price", "expected_price", "commission",
	"agent_name", "agency_name",
	"bedrooms", "bathrooms", "garage_spaces", "floor_area", "land_size",
	"listed_date", "sold_date", "flood_risk", "bushfire_risk",
	"contract_status", "features", "same_street_sales", "past_records",
}

func propertyRow(p *models.PropertyDetails) map[string]interface{} {
	row := map[string]interface{}{
		"street_number":     p.StreetNumber,
		"street_name":       p.StreetName,
		"suburb":            p.Suburb,
		"postcode":          p.Postcode,
		"category":          p.Category,
		"property_type":     p.PropertyType,
		"price":             nullFloat(p.Price),
		"sold_price":        nullFloat(p.SoldPrice),
		"expected_price":    nullFloat(p.ExpectedPrice),
		"commission":        nullFloat(p.Commission),
		"agent_name":        p.AgentName,
		"agency_name":       p.AgencyName,
		"bedrooms":          nullInt(p.Bedrooms),
		"bathrooms":         nullInt(p.Bathrooms),
		"garage_spaces":     nullInt(p.GarageSpaces),
		"floor_area":        nullFloat(p.FloorArea),
		"land_size":         nullFloat(p.LandSize),
		"listed_date":       nullDate(p.ListedDate),
		"sold_date":         nullDate(p.SoldDate),
		"flood_risk":        boolInt(p.FloodRisk),
		"bushfire_risk":     boolInt(p.BushfireRisk),
		"contract_status":   p.ContractStatus,
		"features":          marshalJSON(p.Features),
		"same_street_sales": marshalJSON(p.SameStreetSales),
		"past_records":      marshalJSON(p.PastRecords),
	}
	if p.ID != 0 {
		row["id"] = p.ID
	}
	return row
}

// UpsertProperties writes an import batch inside the supplied transaction.
// Records carrying an id replace any existing row with that id; records
// without one are inserted fresh.
func UpsertProperties(tx *gorm.DB, batch []*models.PropertyDetails) error {
	var inserts []map[string]interface{}
	var upserts []map[string]interface{}
	for _, p := range batch {
		if p == nil {
			continue
		}
		if p.ID != 0 {
			upserts = append(upserts, propertyRow(p))
		} else {
			inserts = append(inserts, propertyRow(p))
		}
	}

	if len(upserts) > 0 {
		err := tx.Table(TableProperties).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(propertyUpsertColumns),
		}).Create(upserts).Error
		if err != nil {
			return fmt.Errorf("failed to upsert properties: %w", err)
		}
	}

	if len(inserts) > 0 {
		if err := tx.Table(TableProperties).Create(inserts).Error; err != nil {
			return fmt.Errorf("failed to insert properties: %w", err)
		}
	}

	return nil
}
