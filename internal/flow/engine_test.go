package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoi-aqua/aquabot-backend/internal/storage"
)

func testEngine(t *testing.T, flows ...*Flow) (*Engine, *storage.MemoryStore) {
	t.Helper()
	registry := NewRegistry()
	for _, f := range flows {
		registry.Register(f)
	}
	store := storage.NewMemoryStore()
	return NewEngine(registry, store), store
}

func bodies(messages []Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Body
	}
	return out
}

func TestKeywordTriggerRunsActionsToIdle(t *testing.T) {
	greet := New("greet").On("ping").
		AddAction(func(c *Ctx) error {
			c.Say("pong")
			return nil
		}).
		AddAction(func(c *Ctx) error {
			c.Say("again")
			return nil
		})

	engine, store := testEngine(t, greet)

	messages, err := engine.HandleEvent(context.Background(), "s1", "ping")
	require.NoError(t, err)
	assert.Equal(t, []string{"pong", "again"}, bodies(messages))
	assert.False(t, store.Cursor("s1").Awaiting())
}

func TestUnmatchedEventIsDropped(t *testing.T) {
	greet := New("greet").On("ping").
		AddAction(func(c *Ctx) error {
			c.AppendHistory("user", c.Text)
			c.Say("pong")
			return nil
		})

	engine, store := testEngine(t, greet)

	// Seed history so the session is no longer "new".
	_, err := engine.HandleEvent(context.Background(), "s1", "ping")
	require.NoError(t, err)

	messages, err := engine.HandleEvent(context.Background(), "s1", "anything else")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.False(t, store.Cursor("s1").Awaiting())
}

func TestExecutionSuspendsAtCapture(t *testing.T) {
	quiz := New("quiz").On("start").
		AddAction(func(c *Ctx) error {
			c.Say("¿nombre?")
			return nil
		}).
		AddCapture("name", nil, func(c *Ctx, value string) error {
			c.Set(map[string]interface{}{"name": value})
			c.Say("hola " + value)
			return nil
		})

	engine, store := testEngine(t, quiz)

	messages, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.NoError(t, err)
	assert.Equal(t, []string{"¿nombre?"}, bodies(messages))

	cur := store.Cursor("s1")
	assert.True(t, cur.Awaiting())
	assert.Equal(t, "quiz", cur.Flow)
	assert.Equal(t, "name", cur.Key)

	messages, err = engine.HandleEvent(context.Background(), "s1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"hola Ana"}, bodies(messages))
	assert.False(t, store.Cursor("s1").Awaiting())

	name, ok := store.Get("s1", "name")
	require.True(t, ok)
	assert.Equal(t, "Ana", name)
}

func TestInvalidInputRepromptsWithoutAdvancing(t *testing.T) {
	validate := func(raw string) (string, error) {
		if len(strings.TrimSpace(raw)) < 2 {
			return "", errors.New("demasiado corto")
		}
		return strings.TrimSpace(raw), nil
	}

	quiz := New("quiz").On("start").
		AddAction(func(c *Ctx) error {
			c.Say("¿nombre?")
			return nil
		}).
		AddCapture("name", validate, func(c *Ctx, value string) error {
			c.Set(map[string]interface{}{"name": value})
			return nil
		})

	engine, store := testEngine(t, quiz)

	_, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.NoError(t, err)

	// Invalid input N times: cursor stays, scratch untouched.
	for i := 0; i < 3; i++ {
		messages, err := engine.HandleEvent(context.Background(), "s1", "x")
		require.NoError(t, err)
		assert.Equal(t, []string{"demasiado corto"}, bodies(messages))

		cur := store.Cursor("s1")
		assert.Equal(t, "name", cur.Key)
		_, ok := store.Get("s1", "name")
		assert.False(t, ok)
	}

	_, err = engine.HandleEvent(context.Background(), "s1", "Ana")
	require.NoError(t, err)
	name, _ := store.Get("s1", "name")
	assert.Equal(t, "Ana", name)
}

func TestAwaitSelectsCaptureByKey(t *testing.T) {
	// The entry action skips the first capture when the answer is already
	// known, awaiting a later one directly.
	quiz := New("quiz").On("start").
		AddAction(func(c *Ctx) error {
			if c.GetString("name") != "" {
				c.Say("¿color?")
				c.Await("color")
				return nil
			}
			c.Say("¿nombre?")
			return nil
		}).
		AddCapture("name", nil, func(c *Ctx, value string) error {
			c.Set(map[string]interface{}{"name": value})
			return nil
		}).
		AddCapture("color", nil, func(c *Ctx, value string) error {
			c.Say("listo")
			return nil
		})

	engine, store := testEngine(t, quiz)
	require.NoError(t, store.Set("s1", map[string]interface{}{"name": "Ana"}))

	messages, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.NoError(t, err)
	assert.Equal(t, []string{"¿color?"}, bodies(messages))
	assert.Equal(t, "color", store.Cursor("s1").Key)
}

func TestGotoTransfersAndPreservesScratch(t *testing.T) {
	first := New("first").On("start").
		AddAction(func(c *Ctx) error {
			c.Set(map[string]interface{}{"carried": "value"})
			c.Goto("second")
			return nil
		})
	second := New("second").
		AddAction(func(c *Ctx) error {
			c.Say("got " + c.GetString("carried"))
			return nil
		})

	engine, store := testEngine(t, first, second)

	messages, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.NoError(t, err)
	assert.Equal(t, []string{"got value"}, bodies(messages))
	assert.False(t, store.Cursor("s1").Awaiting())

	carried, _ := store.Get("s1", "carried")
	assert.Equal(t, "value", carried)
}

func TestGotoLoopIsBounded(t *testing.T) {
	a := New("a").On("start").AddAction(func(c *Ctx) error {
		c.Goto("b")
		return nil
	})
	b := New("b").AddAction(func(c *Ctx) error {
		c.Goto("a")
		return nil
	})

	engine, _ := testEngine(t, a, b)

	_, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many flow transfers")
}

func TestAtMostOneCaptureActive(t *testing.T) {
	quiz := New("quiz").On("start").
		AddAction(func(c *Ctx) error {
			// A later Await replaces an earlier one within the same turn.
			c.Await("name")
			c.Await("color")
			return nil
		}).
		AddCapture("name", nil, func(c *Ctx, value string) error { return nil }).
		AddCapture("color", nil, func(c *Ctx, value string) error { return nil })

	engine, store := testEngine(t, quiz)

	_, err := engine.HandleEvent(context.Background(), "s1", "start")
	require.NoError(t, err)
	assert.Equal(t, "color", store.Cursor("s1").Key)
}
