package models

import "time"

// HistoryTurn is one turn of the conversation log.
type HistoryTurn struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// SessionRecord is the database row for a persisted session. Scratch state,
// history and cursor are stored as JSON so the schema does not chase the
// conversation's free-form keys.
type SessionRecord struct {
	Phone     string    `gorm:"primaryKey" json:"phone"`
	SessionID string    `json:"session_id"`
	State     string    `gorm:"type:jsonb" json:"state"`
	History   string    `gorm:"type:jsonb" json:"history"`
	Cursor    string    `gorm:"type:jsonb" json:"cursor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
