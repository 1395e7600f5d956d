package models

import "time"

// Roles stored on profiles and carried in token claims.
const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Profile is the account record keyed by the authenticated user id.
type Profile struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AgencyName   string    `json:"agency_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityEntry is one row in an agent's activity log.
type ActivityEntry struct {
	ID         int64     `json:"id"`
	AgentEmail string    `json:"agent_email"`
	Action     string    `json:"action"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
