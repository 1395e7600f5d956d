package database

import (
	"database/sql"
	"fmt"
	"time"

	"agencypulse/server/internal/models"
)

// GetProfileByEmail returns the profile for an email, or nil when absent.
func (d *Database) GetProfileByEmail(email string) (*models.Profile, error) {
	row := d.db.QueryRow(`
		SELECT id, email, password_hash, role, agency_name,
		       COALESCE(created_at, CURRENT_TIMESTAMP)
		FROM profiles
		WHERE LOWER(email) = LOWER(?)
	`, email)
	return scanProfile(row)
}

// GetProfileByID returns the profile keyed by the authenticated user id.
func (d *Database) GetProfileByID(id int64) (*models.Profile, error) {
	row := d.db.QueryRow(`
		SELECT id, email, password_hash, role, agency_name,
		       COALESCE(created_at, CURRENT_TIMESTAMP)
		FROM profiles
		WHERE id = ?
	`, id)
	return scanProfile(row)
}

// InsertProfile stores a new account and returns its id.
func (d *Database) InsertProfile(p *models.Profile) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO profiles (email, password_hash, role, agency_name)
		VALUES (?, ?, ?, ?)
	`, p.Email, p.PasswordHash, p.Role, p.AgencyName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get profile id: %w", err)
	}
	return id, nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	var agencyName sql.NullString
	var createdAt sql.NullString

	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Role, &agencyName, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if agencyName.Valid {
		p.AgencyName = agencyName.String
	}
	if createdAt.Valid && createdAt.String != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, createdAt.String); err == nil {
				p.CreatedAt = t
				break
			}
		}
	}

	return &p, nil
}
