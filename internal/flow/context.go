package flow

import (
	"context"
	"log"

	"github.com/zoi-aqua/aquabot-backend/internal/models"
	"github.com/zoi-aqua/aquabot-backend/internal/storage"
)

// Message is one outbound message. MediaURL is optional.
type Message struct {
	Body     string
	MediaURL string
}

// Ctx is handed to every step body. It buffers outbound messages, exposes the
// session's scratch state and history, and records the body's control-flow
// requests (Await, Goto) for the engine to resolve after the body returns.
type Ctx struct {
	ctx       context.Context
	SessionID string
	Text      string // raw inbound text of this turn

	store storage.SessionStore

	out      []Message
	awaitKey string
	gotoFlow string
}

// Context returns the turn's context, which bounds every external call made
// from a step body.
func (c *Ctx) Context() context.Context {
	return c.ctx
}

// Say buffers an outbound text message.
func (c *Ctx) Say(body string) {
	c.out = append(c.out, Message{Body: body})
}

// SayMedia buffers an outbound message with an attached media URL.
func (c *Ctx) SayMedia(body, mediaURL string) {
	c.out = append(c.out, Message{Body: body, MediaURL: mediaURL})
}

// Get reads a scratch-state value.
func (c *Ctx) Get(key string) (interface{}, bool) {
	return c.store.Get(c.SessionID, key)
}

// GetString reads a scratch-state value as a string, returning "" when absent
// or of another type.
func (c *Ctx) GetString(key string) string {
	value, ok := c.store.Get(c.SessionID, key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Set merges the patch into scratch state.
func (c *Ctx) Set(patch map[string]interface{}) {
	if err := c.store.Set(c.SessionID, patch); err != nil {
		log.Printf("❌ Failed to update session %s: %v", c.SessionID, err)
	}
}

// History returns the session's conversation log.
func (c *Ctx) History() []models.HistoryTurn {
	return c.store.History(c.SessionID)
}

// AppendHistory appends one turn to the conversation log.
func (c *Ctx) AppendHistory(role, content string) {
	err := c.store.AppendHistory(c.SessionID, models.HistoryTurn{Role: role, Content: content})
	if err != nil {
		log.Printf("❌ Failed to append history for %s: %v", c.SessionID, err)
	}
}

// Await names the capture step that should receive the next inbound message.
// Setting a new await replaces any previous one, so at most one capture is
// ever interested in the next message.
func (c *Ctx) Await(key string) {
	c.awaitKey = key
}

// Goto transfers control to another flow. The target's steps run within the
// same turn and scratch state carries over unchanged.
func (c *Ctx) Goto(flowName string) {
	c.gotoFlow = flowName
}
