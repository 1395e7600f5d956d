package database

import (
	"database/sql"
	"fmt"
	"time"

	"agencypulse/server/internal/models"
)

// GetActivityEntries returns an agent's logged activity, newest first. An
// empty email returns every agent's entries (admin view).
func (d *Database) GetActivityEntries(agentEmail string) ([]models.ActivityEntry, error) {
	query := `
		SELECT id, agent_email, action, COALESCE(notes, ''),
		       COALESCE(created_at, CURRENT_TIMESTAMP)
		FROM activity_log
		WHERE (? = '' OR LOWER(agent_email) = LOWER(?))
		ORDER BY created_at DESC, id DESC
	`
	rows, err := d.db.Query(query, agentEmail, agentEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var createdAt sql.NullString
		if err := rows.Scan(&e.ID, &e.AgentEmail, &e.Action, &e.Notes, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid && createdAt.String != "" {
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
				if t, err := time.Parse(layout, createdAt.String); err == nil {
					e.CreatedAt = t
					break
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertActivityEntry stores one activity row and returns its id.
func (d *Database) InsertActivityEntry(e *models.ActivityEntry) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO activity_log (agent_email, action, notes)
		VALUES (?, ?, ?)
	`, e.AgentEmail, e.Action, e.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get activity entry id: %w", err)
	}

	d.notify(TableActivity, models.ChangeInsert, id)
	return id, nil
}

// DeleteActivityEntry removes one activity row. agentEmail scopes the delete
// so an agent cannot remove another agent's entries; empty bypasses the scope
// (admin).
func (d *Database) DeleteActivityEntry(id int64, agentEmail string) error {
	result, err := d.db.Exec(`
		DELETE FROM activity_log
		WHERE id = ? AND (? = '' OR LOWER(agent_email) = LOWER(?))
	`, id, agentEmail, agentEmail)
	if err != nil {
		return fmt.Errorf("failed to delete activity entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("activity entry not found: %d", id)
	}

	d.notify(TableActivity, models.ChangeDelete, id)
	return nil
}
