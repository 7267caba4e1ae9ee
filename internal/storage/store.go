package storage

import "github.com/zoi-aqua/aquabot-backend/internal/models"

// Cursor identifies the session's active flow and the capture step awaiting
// the next inbound message. A zero Cursor means the session is idle. A session
// has at most one cursor, so at most one capture can be interested in the next
// message.
type Cursor struct {
	Flow string `json:"flow"`
	Key  string `json:"key"`
}

// Awaiting reports whether a capture step is pending for this cursor.
func (c Cursor) Awaiting() bool {
	return c.Flow != "" && c.Key != ""
}

// SessionStore keeps per-sender conversational state: a free-form scratch map,
// an ordered conversation history and the flow cursor. Sessions are created
// lazily on first touch and live for the process lifetime. Implementations
// must be safe for concurrent access and make Set/AppendHistory atomic per
// session.
type SessionStore interface {
	// Get returns the scratch value for key, or false if absent.
	Get(sessionID, key string) (interface{}, bool)

	// Set merges the patch into scratch state (shallow upsert).
	Set(sessionID string, patch map[string]interface{}) error

	// History returns the ordered conversation log.
	History(sessionID string) []models.HistoryTurn

	// AppendHistory appends one turn to the conversation log.
	AppendHistory(sessionID string, turn models.HistoryTurn) error

	// Cursor returns the session's flow cursor (zero when idle).
	Cursor(sessionID string) Cursor

	// SetCursor replaces the session's flow cursor.
	SetCursor(sessionID string, cur Cursor) error
}
