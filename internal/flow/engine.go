package flow

import (
	"context"
	"fmt"
	"log"

	"github.com/zoi-aqua/aquabot-backend/internal/storage"
)

// maxTransfers bounds flow-to-flow transfers within a single turn so a
// misconfigured pair of flows cannot loop forever.
const maxTransfers = 8

// Engine is the conversation state machine. For each inbound event it resumes
// execution at the correct step, auto-runs action steps, suspends at capture
// steps, applies validation with re-prompt and follows mid-flow transfers.
type Engine struct {
	registry *Registry
	store    storage.SessionStore
}

// NewEngine creates an engine over the given registry and session store.
func NewEngine(registry *Registry, store storage.SessionStore) *Engine {
	return &Engine{registry: registry, store: store}
}

// HandleEvent processes one inbound message for a session and returns the
// ordered batch of outbound messages it produced. Events that match neither a
// pending capture nor a trigger are dropped.
func (e *Engine) HandleEvent(ctx context.Context, sessionID, text string) ([]Message, error) {
	c := &Ctx{
		ctx:       ctx,
		SessionID: sessionID,
		Text:      text,
		store:     e.store,
	}

	cur := e.store.Cursor(sessionID)
	if cur.Awaiting() {
		if err := e.resumeCapture(c, cur); err != nil {
			return c.out, err
		}
		return c.out, nil
	}

	hasHistory := len(e.store.History(sessionID)) > 0
	fl := e.registry.Match(text, hasHistory)
	if fl == nil {
		// No trigger and no pending capture: deliberate no-op.
		log.Printf("Dropping unmatched message from %s", sessionID)
		return nil, nil
	}

	if err := e.run(c, fl, 0); err != nil {
		return c.out, err
	}
	return c.out, nil
}

// resumeCapture feeds the inbound message to the pending capture step.
func (e *Engine) resumeCapture(c *Ctx, cur storage.Cursor) error {
	fl := e.registry.Lookup(cur.Flow)
	if fl == nil {
		return fmt.Errorf("cursor references unknown flow %q", cur.Flow)
	}
	idx := fl.captureIndex(cur.Key)
	if idx < 0 {
		return fmt.Errorf("cursor references unknown capture %q in flow %q", cur.Key, cur.Flow)
	}

	st := fl.Steps[idx]
	value := c.Text
	if st.Validate != nil {
		parsed, err := st.Validate(c.Text)
		if err != nil {
			// Pure re-prompt: emit the reason and keep the cursor where it is.
			c.Say(err.Error())
			return nil
		}
		value = parsed
	}

	if err := st.Capture(c, value); err != nil {
		return fmt.Errorf("capture %q in flow %q: %w", cur.Key, cur.Flow, err)
	}
	return e.run(c, fl, idx+1)
}

// run executes steps starting at index i, resolving Goto and Await requests
// left on the context by step bodies, until the flow suspends at a capture or
// the step list ends.
func (e *Engine) run(c *Ctx, fl *Flow, i int) error {
	transfers := 0
	for {
		if c.gotoFlow != "" {
			target := e.registry.Lookup(c.gotoFlow)
			if target == nil {
				return fmt.Errorf("transfer to unknown flow %q", c.gotoFlow)
			}
			c.gotoFlow = ""
			transfers++
			if transfers > maxTransfers {
				return fmt.Errorf("too many flow transfers in one turn (session %s)", c.SessionID)
			}
			fl, i = target, 0
			continue
		}

		if c.awaitKey != "" {
			key := c.awaitKey
			c.awaitKey = ""
			if fl.captureIndex(key) < 0 {
				return fmt.Errorf("await of unknown capture %q in flow %q", key, fl.Name)
			}
			return e.store.SetCursor(c.SessionID, storage.Cursor{Flow: fl.Name, Key: key})
		}

		if i >= len(fl.Steps) {
			// End of the sequence: back to idle, waiting for the next trigger.
			return e.store.SetCursor(c.SessionID, storage.Cursor{})
		}

		st := fl.Steps[i]
		if st.Kind == StepCapture {
			return e.store.SetCursor(c.SessionID, storage.Cursor{Flow: fl.Name, Key: st.Key})
		}

		if err := st.Action(c); err != nil {
			return fmt.Errorf("action %d in flow %q: %w", i, fl.Name, err)
		}
		i++
	}
}
