// Package bus is a small in-process publish/subscribe channel used to signal
// data changes between otherwise unrelated views, e.g. "a transaction was
// recorded through chat, refresh the alerts panel".
package bus

import (
	"sync"
	"time"
)

// Event kinds.
const (
	KindTransactionsChanged = "transactions_changed"
	KindBudgetsChanged      = "budgets_changed"
)

// Event is one broadcast notification.
type Event struct {
	Kind string
	At   time.Time
}

// Bus fans events out to subscribers. Sends never block: a subscriber whose
// buffer is full misses the event.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber with the given channel buffer size
// and returns its id plus the receive channel.
func (b *Bus) Subscribe(buf int) (int, <-chan Event) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

// Unsubscribe removes a subscriber. Its channel is not closed; pending
// events may still be drained.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish delivers ev to every subscriber that has buffer space.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
