package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// DatabaseStore persists sessions to PostgreSQL via GORM. It is the
// substitutable persistence layer: same contract as MemoryStore, but sessions
// survive a process restart. Reads and writes go through a store-level mutex
// so per-session read-modify-write stays atomic.
type DatabaseStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewDatabaseStore creates a database-backed session store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates the sessions table.
func (d *DatabaseStore) Migrate() error {
	return d.db.AutoMigrate(&models.SessionRecord{})
}

func (d *DatabaseStore) load(sessionID string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := d.db.First(&rec, "phone = ?", sessionID).Error
	if err == gorm.ErrRecordNotFound {
		rec = models.SessionRecord{
			Phone:     sessionID,
			SessionID: uuid.NewString(),
			State:     "{}",
			History:   "[]",
			Cursor:    "{}",
		}
		return &rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return &rec, nil
}

func (d *DatabaseStore) save(rec *models.SessionRecord) error {
	return d.db.Save(rec).Error
}

func (d *DatabaseStore) Get(sessionID, key string) (interface{}, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		log.Printf("❌ Session load failed: %v", err)
		return nil, false
	}

	state := map[string]interface{}{}
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return nil, false
	}
	value, ok := state[key]
	return value, ok
}

func (d *DatabaseStore) Set(sessionID string, patch map[string]interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		return err
	}

	state := map[string]interface{}{}
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return fmt.Errorf("corrupt session state for %s: %w", sessionID, err)
	}
	for k, v := range patch {
		state[k] = v
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	rec.State = string(raw)
	return d.save(rec)
}

func (d *DatabaseStore) History(sessionID string) []models.HistoryTurn {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		log.Printf("❌ Session load failed: %v", err)
		return nil
	}

	var history []models.HistoryTurn
	if err := json.Unmarshal([]byte(rec.History), &history); err != nil {
		return nil
	}
	return history
}

func (d *DatabaseStore) AppendHistory(sessionID string, turn models.HistoryTurn) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		return err
	}

	var history []models.HistoryTurn
	if err := json.Unmarshal([]byte(rec.History), &history); err != nil {
		return fmt.Errorf("corrupt session history for %s: %w", sessionID, err)
	}
	history = append(history, turn)

	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	rec.History = string(raw)
	return d.save(rec)
}

func (d *DatabaseStore) Cursor(sessionID string) Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		log.Printf("❌ Session load failed: %v", err)
		return Cursor{}
	}

	var cur Cursor
	if err := json.Unmarshal([]byte(rec.Cursor), &cur); err != nil {
		return Cursor{}
	}
	return cur
}

func (d *DatabaseStore) SetCursor(sessionID string, cur Cursor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.load(sessionID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	rec.Cursor = string(raw)
	return d.save(rec)
}
