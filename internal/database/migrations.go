package database

import "fmt"

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			street_number TEXT,
			street_name TEXT,
			suburb TEXT,
			postcode TEXT,
			category TEXT,
			property_type TEXT,
			price REAL,
			sold_price REAL,
			expected_price REAL,
			commission REAL,
			agent_name TEXT,
			agency_name TEXT,
			bedrooms INTEGER,
			bathrooms INTEGER,
			garage_spaces INTEGER,
			floor_area REAL,
			land_size REAL,
			listed_date TEXT,
			sold_date TEXT,
			flood_risk INTEGER DEFAULT 0,
			bushfire_risk INTEGER DEFAULT 0,
			contract_status TEXT,
			features TEXT,
			same_street_sales TEXT,
			past_records TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create properties table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'agent',
			agency_name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS activity_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_email TEXT NOT NULL,
			action TEXT NOT NULL,
			notes TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create activity_log table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_suburb
		ON properties(suburb);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_category
		ON properties(category);
	`)
	if err != nil {
		return err
	}

	return nil
}
