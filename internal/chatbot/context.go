// Package chatbot implements the financial assistant: intent detection over
// user messages, conversation context, and reply generation backed by the
// transaction store and the forecasting engine.
package chatbot

import (
	"sync"
	"time"
)

const (
	maxHistory = 10
	contextTTL = time.Hour
)

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
	Intent  string
	At      time.Time
}

// Context holds per-user conversation state. It is session-local and
// expires after an hour of inactivity.
type Context struct {
	mu           sync.Mutex
	messages     []Message
	lastIntent   string
	lastEntities map[string]string
	sessionStart time.Time
}

func newContext(now time.Time) *Context {
	return &Context{
		lastEntities: map[string]string{},
		sessionStart: now,
	}
}

// AddMessage appends a turn, keeping at most maxHistory entries. User turns
// with a detected intent update the last-intent record.
func (c *Context) AddMessage(role, content, intent string, entities map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, Message{
		Role:    role,
		Content: content,
		Intent:  intent,
		At:      time.Now(),
	})
	if len(c.messages) > maxHistory {
		c.messages = c.messages[len(c.messages)-maxHistory:]
	}

	if role == "user" && intent != "" {
		c.lastIntent = intent
		if entities == nil {
			entities = map[string]string{}
		}
		c.lastEntities = entities
	}
}

// LastIntent returns the most recent detected user intent.
func (c *Context) LastIntent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastIntent
}

// LastEntity returns a previously extracted entity, e.g. the category of
// the last recorded transaction for "add 200 to that category" follow-ups.
func (c *Context) LastEntity(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lastEntities[key]
	return v, ok
}

// History returns up to limit most recent turns.
func (c *Context) History(limit int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := c.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (c *Context) reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.lastIntent = ""
	c.lastEntities = map[string]string{}
	c.sessionStart = now
}

// ContextStore hands out per-user conversation contexts, recycling any that
// sat idle past the TTL.
type ContextStore struct {
	mu   sync.Mutex
	byID map[int64]*Context
	now  func() time.Time
}

// NewContextStore returns an empty store. now may be nil for time.Now.
func NewContextStore(now func() time.Time) *ContextStore {
	if now == nil {
		now = time.Now
	}
	return &ContextStore{byID: map[int64]*Context{}, now: now}
}

// Get returns the context for userID, creating or expiring as needed.
func (s *ContextStore) Get(userID int64) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ctx, ok := s.byID[userID]
	if !ok {
		ctx = newContext(now)
		s.byID[userID] = ctx
		return ctx
	}

	ctx.mu.Lock()
	expired := now.Sub(ctx.sessionStart) > contextTTL
	ctx.mu.Unlock()
	if expired {
		ctx.reset(now)
	}
	return ctx
}

// Clear drops the context for userID.
func (s *ContextStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, userID)
}
