package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"agencypulse/server/internal/feed"
	"agencypulse/server/internal/models"
)

// Table names used for change feed events.
const (
	TableProperties = "properties"
	TableActivity   = "activity_log"
)

type Database struct {
	db  *sql.DB
	hub *feed.Hub
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// SetHub attaches the change feed. Every committed mutation publishes an
// event; a nil hub disables notification.
func (d *Database) SetHub(hub *feed.Hub) {
	d.hub = hub
}

func (d *Database) notify(table, op string, rowID int64) {
	if d.hub == nil {
		return
	}
	// Best effort: a saturated feed must not fail the write that caused it.
	_ = d.hub.Publish(models.ChangeEvent{
		Table:      table,
		Op:         op,
		RowID:      rowID,
		OccurredAt: time.Now(),
	})
}

// ListOptions narrows and orders a property fetch at the storage layer. The
// in-memory filter engine remains the canonical filter; these predicates
// exist for screens that want the store to pre-narrow large fetches.
type ListOptions struct {
	Suburbs    []string
	Category   string
	StreetLike string
	MinPrice   *float64
	MaxPrice   *float64
}

const propertyColumns = `
        id, street_number, street_name, suburb, postcode,
        category, property_type,
        price, sold_price, expected_price, commission,
        agent_name, agency_name,
        bedrooms, bathrooms, garage_spaces, floor_area, land_size,
        COALESCE(listed_date, '') as listed_date,
        COALESCE(sold_date, '') as sold_date,
        flood_risk, bushfire_risk, contract_status,
        features, same_street_sales, past_records,
        COALESCE(created_at, CURRENT_TIMESTAMP) as created_at`

// GetAllProperties returns the full collection ordered by listing date,
// newest first, optionally narrowed by opts.
func (d *Database) GetAllProperties(opts ListOptions) ([]models.PropertyDetails, error) {
	query := "SELECT " + propertyColumns + " FROM properties WHERE 1=1"
	var args []interface{}

	if len(opts.Suburbs) > 0 {
		placeholders := make([]string, len(opts.Suburbs))
		for i, s := range opts.Suburbs {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(s))
		}
		query += " AND LOWER(suburb) IN (" + strings.Join(placeholders, ", ") + ")"
	}
	if opts.Category != "" {
		query += " AND category = ?"
		args = append(args, opts.Category)
	}
	if opts.StreetLike != "" {
		query += " AND LOWER(street_name) LIKE '%' || LOWER(?) || '%'"
		args = append(args, opts.StreetLike)
	}
	if opts.MinPrice != nil {
		query += " AND COALESCE(sold_price, price) >= ?"
		args = append(args, *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		query += " AND COALESCE(sold_price, price) <= ?"
		args = append(args, *opts.MaxPrice)
	}

	query += " ORDER BY COALESCE(listed_date, created_at) DESC, id DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.PropertyDetails
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// GetProperty returns one property by id, or nil when it does not exist.
func (d *Database) GetProperty(id int64) (*models.PropertyDetails, error) {
	row := d.db.QueryRow("SELECT "+propertyColumns+" FROM properties WHERE id = ?", id)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertProperty stores a new record and returns its id.
func (d *Database) InsertProperty(p *models.PropertyDetails) (int64, error) {
	result, err := d.db.Exec(`
        INSERT INTO properties
        (street_number, street_name, suburb, postcode, category, property_type,
         price, sold_price, expected_price, commission,
         agent_name, agency_name,
         bedrooms, bathrooms, garage_spaces, floor_area, land_size,
         listed_date, sold_date, flood_risk, bushfire_risk, contract_status,
         features, same_street_sales, past_records)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, propertyArgs(p)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get property id: %w", err)
	}

	d.notify(TableProperties, models.ChangeInsert, id)
	return id, nil
}

// UpdateProperty forwards a whole record; partial updates are not supported,
// matching the screens that edit and resubmit complete rows.
func (d *Database) UpdateProperty(id int64, p *models.PropertyDetails) error {
	args := append(propertyArgs(p), id)
	result, err := d.db.Exec(`
        UPDATE properties SET
            street_number = ?, street_name = ?, suburb = ?, postcode = ?,
            category = ?, property_type = ?,
            price = ?, sold_price = ?, expected_price = ?, commission = ?,
            agent_name = ?, agency_name = ?,
            bedrooms = ?, bathrooms = ?, garage_spaces = ?, floor_area = ?, land_size = ?,
            listed_date = ?, sold_date = ?, flood_risk = ?, bushfire_risk = ?,
            contract_status = ?, features = ?, same_street_sales = ?, past_records = ?
        WHERE id = ?
    `, args...)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("property not found: %d", id)
	}

	d.notify(TableProperties, models.ChangeUpdate, id)
	return nil
}

// DeleteProperty removes a record by id.
func (d *Database) DeleteProperty(id int64) error {
	result, err := d.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("property not found: %d", id)
	}

	d.notify(TableProperties, models.ChangeDelete, id)
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// propertyArgs flattens a record into the insert/update parameter order.
func propertyArgs(p *models.PropertyDetails) []interface{} {
	return []interface{}{
		p.StreetNumber, p.StreetName, p.Suburb, p.Postcode,
		p.Category, p.PropertyType,
		nullFloat(p.Price), nullFloat(p.SoldPrice), nullFloat(p.ExpectedPrice), nullFloat(p.Commission),
		p.AgentName, p.AgencyName,
		nullInt(p.Bedrooms), nullInt(p.Bathrooms), nullInt(p.GarageSpaces),
		nullFloat(p.FloorArea), nullFloat(p.LandSize),
		nullDate(p.ListedDate), nullDate(p.SoldDate),
		boolInt(p.FloodRisk), boolInt(p.BushfireRisk), p.ContractStatus,
		marshalJSON(p.Features), marshalJSON(p.SameStreetSales), marshalJSON(p.PastRecords),
	}
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.Format("2006-01-02")
}

func boolInt(v bool) interface{} {
	if v {
		return 1
	}
	return 0
}

func marshalJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(data)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(s scanner) (*models.PropertyDetails, error) {
	var p models.PropertyDetails
	var streetNumber, streetName, suburb, postcode sql.NullString
	var category, propertyType, agentName, agencyName, contractStatus sql.NullString
	var price, soldPrice, expectedPrice, commission, floorArea, landSize sql.NullFloat64
	var bedrooms, bathrooms, garageSpaces sql.NullInt64
	var floodRisk, bushfireRisk sql.NullInt64
	var listedDate, soldDate, createdAt sql.NullString
	var features, sameStreetSales, pastRecords sql.NullString

	err := s.Scan(
		&p.ID,
		&streetNumber, &streetName, &suburb, &postcode,
		&category, &propertyType,
		&price, &soldPrice, &expectedPrice, &commission,
		&agentName, &agencyName,
		&bedrooms, &bathrooms, &garageSpaces, &floorArea, &landSize,
		&listedDate, &soldDate,
		&floodRisk, &bushfireRisk, &contractStatus,
		&features, &sameStreetSales, &pastRecords,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if streetNumber.Valid {
		p.StreetNumber = streetNumber.String
	}
	if streetName.Valid {
		p.StreetName = streetName.String
	}
	if suburb.Valid {
		p.Suburb = suburb.String
	}
	if postcode.Valid {
		p.Postcode = postcode.String
	}
	if category.Valid {
		p.Category = category.String
	}
	if propertyType.Valid {
		p.PropertyType = propertyType.String
	}
	if agentName.Valid {
		p.AgentName = agentName.String
	}
	if agencyName.Valid {
		p.AgencyName = agencyName.String
	}
	if contractStatus.Valid {
		p.ContractStatus = contractStatus.String
	}

	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	if soldPrice.Valid {
		v := soldPrice.Float64
		p.SoldPrice = &v
	}
	if expectedPrice.Valid {
		v := expectedPrice.Float64
		p.ExpectedPrice = &v
	}
	if commission.Valid {
		v := commission.Float64
		p.Commission = &v
	}
	if floorArea.Valid {
		v := floorArea.Float64
		p.FloorArea = &v
	}
	if landSize.Valid {
		v := landSize.Float64
		p.LandSize = &v
	}

	if bedrooms.Valid {
		v := int(bedrooms.Int64)
		p.Bedrooms = &v
	}
	if bathrooms.Valid {
		v := int(bathrooms.Int64)
		p.Bathrooms = &v
	}
	if garageSpaces.Valid {
		v := int(garageSpaces.Int64)
		p.GarageSpaces = &v
	}

	p.FloodRisk = floodRisk.Valid && floodRisk.Int64 != 0
	p.BushfireRisk = bushfireRisk.Valid && bushfireRisk.Int64 != 0

	if listedDate.Valid && listedDate.String != "" {
		if t, err := time.Parse("2006-01-02", listedDate.String); err == nil {
			p.ListedDate = &t
		}
	}
	if soldDate.Valid && soldDate.String != "" {
		if t, err := time.Parse("2006-01-02", soldDate.String); err == nil {
			p.SoldDate = &t
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, createdAt.String); err == nil {
				p.CreatedAt = t
				break
			}
		}
	}

	if features.Valid && features.String != "" {
		_ = json.Unmarshal([]byte(features.String), &p.Features)
	}
	if sameStreetSales.Valid && sameStreetSales.String != "" {
		_ = json.Unmarshal([]byte(sameStreetSales.String), &p.SameStreetSales)
	}
	if pastRecords.Valid && pastRecords.String != "" {
		_ = json.Unmarshal([]byte(pastRecords.String), &p.PastRecords)
	}

	return &p, nil
}
