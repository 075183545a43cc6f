// Package daemon provides the long-running background alert watcher. It
// polls the backend through the shared poller, tracks how the alert set
// evolves, and exposes the state over a small local HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spendlens/internal/alerts"
	"spendlens/internal/api"
	"spendlens/internal/bus"
	"spendlens/internal/model"
)

// Config controls the daemon runtime behavior.
type Config struct {
	BaseURL      string
	Token        string
	Interval     time.Duration
	Addr         string
	EventsBuffer int

	// Bus, when set, delivers in-process data-change notifications; each one
	// pokes the poller for an immediate off-schedule fetch.
	Bus *bus.Bus
}

// Delta captures how the alert set changed between polls.
type Delta struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Escalated int `json:"escalated"`
}

func (d Delta) isZero() bool {
	return d.Added == 0 && d.Removed == 0 && d.Escalated == 0
}

// Event is emitted whenever the alert set changes.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Alerts    []model.Alert `json:"alerts"`
	Delta     Delta         `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time     `json:"started_at"`
	LastPollAt      time.Time     `json:"last_poll_at"`
	PollIntervalSec int           `json:"poll_interval_sec"`
	PollCount       int64         `json:"poll_count"`
	BaseURL         string        `json:"base_url"`
	Alerts          []model.Alert `json:"alerts"`
	LastError       string        `json:"last_error,omitempty"`
	EventCount      int           `json:"event_count"`
	SubscriberCount int           `json:"subscriber_count"`
}

// Service runs the poller and the local HTTP API.
type Service struct {
	cfg    Config
	poller *alerts.Poller
	log    zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	hasPrev     bool
	prev        []model.Alert
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service watching the configured backend.
func New(cfg Config, log zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = alerts.DefaultInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8991"
	}

	client := api.NewClient(cfg.BaseURL, api.StaticToken(cfg.Token))
	return &Service{
		cfg:       cfg,
		poller:    alerts.NewPoller(client, cfg.Interval, log),
		log:       log.With().Str("component", "daemon").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts the HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	snapshots := make(chan alerts.Snapshot, 16)
	subID := s.poller.Subscribe(snapshots)
	defer s.poller.Unsubscribe(subID)

	var changes <-chan bus.Event
	if s.cfg.Bus != nil {
		busID, ch := s.cfg.Bus.Subscribe(8)
		defer s.cfg.Bus.Unsubscribe(busID)
		changes = ch
	}

	pollerDone := make(chan error, 1)
	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()
	go func() { pollerDone <- s.poller.Run(pollCtx) }()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case ev := <-changes:
			s.log.Debug().Str("kind", ev.Kind).Msg("data changed, refreshing alerts")
			s.poller.Poke()
		case snap := <-snapshots:
			s.observe(snap)
		case err := <-pollerDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("daemon poller: %w", err)
			}
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// observe compares the new alert set against the previous one and emits an
// event when it changed. The first snapshot always produces one.
func (s *Service) observe(snap alerts.Snapshot) {
	now := time.Now()

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	if !s.hasPrev {
		s.hasPrev = true
		s.prev = snap.Alerts
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Alerts:    snap.Alerts,
		}
		publish = true
	} else {
		delta := diffAlerts(s.prev, snap.Alerts)
		s.prev = snap.Alerts
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "alerts_changed",
				Timestamp: now,
				Alerts:    snap.Alerts,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

// diffAlerts counts additions, removals, and severity escalations between
// two alert sets keyed by id.
func diffAlerts(prev, curr []model.Alert) Delta {
	prevByID := make(map[int64]model.Severity, len(prev))
	for _, a := range prev {
		prevByID[a.ID] = a.Level
	}

	var d Delta
	seen := make(map[int64]bool, len(curr))
	for _, a := range curr {
		seen[a.ID] = true
		prevLevel, ok := prevByID[a.ID]
		switch {
		case !ok:
			d.Added++
		case prevLevel != a.Level && severityRank(a.Level) > severityRank(prevLevel):
			d.Escalated++
		}
	}
	for id := range prevByID {
		if !seen[id] {
			d.Removed++
		}
	}
	return d
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityDanger:
		return 3
	case model.SeverityWarning:
		return 2
	case model.SeverityInfo:
		return 1
	default:
		return 0
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	snap := s.poller.Snapshot()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      snap.LastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       snap.PollCount,
		BaseURL:         s.cfg.BaseURL,
		Alerts:          snap.Alerts,
		LastError:       snap.LastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current alert set immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Alerts:    s.poller.Snapshot().Alerts,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
