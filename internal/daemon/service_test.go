package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"spendlens/internal/alerts"
	"spendlens/internal/bus"
	"spendlens/internal/model"
)

func snapshotWith(list []model.Alert) alerts.Snapshot {
	return alerts.Snapshot{Alerts: list}
}

func TestDiffAlerts(t *testing.T) {
	prev := []model.Alert{
		{ID: 1, Level: model.SeverityWarning},
		{ID: 2, Level: model.SeverityInfo},
		{ID: 3, Level: model.SeverityDanger},
	}
	curr := []model.Alert{
		{ID: 1, Level: model.SeverityDanger}, // escalated
		{ID: 3, Level: model.SeverityDanger}, // unchanged
		{ID: 4, Level: model.SeverityInfo},   // added
	}

	delta := diffAlerts(prev, curr)
	if delta.Added != 1 {
		t.Fatalf("Added = %d, want 1", delta.Added)
	}
	if delta.Removed != 1 {
		t.Fatalf("Removed = %d, want 1", delta.Removed)
	}
	if delta.Escalated != 1 {
		t.Fatalf("Escalated = %d, want 1", delta.Escalated)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestDiffAlertsDeescalationIsNotAChange(t *testing.T) {
	prev := []model.Alert{{ID: 1, Level: model.SeverityDanger}}
	curr := []model.Alert{{ID: 1, Level: model.SeverityWarning}}

	if delta := diffAlerts(prev, curr); !delta.isZero() {
		t.Fatalf("delta = %+v, want zero for de-escalation", delta)
	}
}

func TestObserveEmitsInitialSnapshotThenOnlyChanges(t *testing.T) {
	s := New(Config{BaseURL: "http://127.0.0.1:0", Interval: 10 * time.Second}, zerolog.Nop())

	s.observe(snapshotWith([]model.Alert{{ID: 1, Level: model.SeverityWarning}}))
	s.observe(snapshotWith([]model.Alert{{ID: 1, Level: model.SeverityWarning}}))
	s.observe(snapshotWith([]model.Alert{{ID: 1, Level: model.SeverityDanger}}))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events = %d, want 2 (snapshot + escalation)", len(s.events))
	}
	if s.events[0].Type != "snapshot" {
		t.Fatalf("first event type = %q", s.events[0].Type)
	}
	if s.events[1].Type != "alerts_changed" || s.events[1].Delta.Escalated != 1 {
		t.Fatalf("second event = %+v", s.events[1])
	}
}

func TestBusEventPokesImmediateFetch(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alerts": []}`))
	}))
	defer backend.Close()

	changes := bus.New()
	s := New(Config{
		BaseURL:  backend.URL,
		Interval: 10 * time.Minute,
		Addr:     "127.0.0.1:0",
		Bus:      changes,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, func() bool { return hits.Load() >= 1 })
	changes.Publish(bus.Event{Kind: bus.KindTransactionsChanged})
	waitFor(t, func() bool { return hits.Load() >= 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		BaseURL:      "http://127.0.0.1:0",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}
