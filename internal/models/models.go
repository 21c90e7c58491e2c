package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Level is a stored layout. Layout holds the JSONB document.
type Level struct {
	ID        int             `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Mode      string          `db:"mode" json:"mode"`
	Layout    json.RawMessage `db:"layout" json:"layout"`
	Version   int             `db:"version" json:"version"`
	UpdatedBy sql.NullString  `db:"updated_by" json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// EditorAccount may publish levels
type EditorAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	KeyHash     string         `db:"key_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// EditorAudit records an editor action
type EditorAudit struct {
	ID        int             `db:"id" json:"id"`
	Editor    string          `db:"editor" json:"editor"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// SessionResult is written when a simulation session closes
type SessionResult struct {
	ID        int            `db:"id" json:"id"`
	Token     string         `db:"token" json:"token"`
	Mode      string         `db:"mode" json:"mode"`
	LevelName sql.NullString `db:"level_name" json:"level_name,omitempty"`
	Status    string         `db:"status" json:"status"`
	Score     int            `db:"score" json:"score"`
	Steps     int64          `db:"steps" json:"steps"`
	Shots     int            `db:"shots" json:"shots"`
	Reason    string         `db:"reason" json:"reason"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	ClosedAt  time.Time      `db:"closed_at" json:"closed_at"`
}
