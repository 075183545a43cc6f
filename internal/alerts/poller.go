package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spendlens/internal/model"
)

// DefaultInterval is the fixed alert polling cadence.
const DefaultInterval = 5 * time.Minute

// Fetcher retrieves the current alert list for the authenticated user.
type Fetcher interface {
	FetchAlerts(ctx context.Context) ([]model.Alert, error)
}

// Snapshot is the poller's observable state at one point in time.
type Snapshot struct {
	Alerts     []model.Alert
	Loading    bool
	LastPollAt time.Time
	PollCount  int64
	LastError  string
}

// Poller fetches alerts once at startup and then on a fixed interval until
// its context is cancelled. A failed fetch leaves the previous alert list in
// place; the loading flag clears after the first attempt either way. There
// is no overlap guard: if a slow response races a newer tick, the last write
// wins.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   zerolog.Logger
	poke     chan struct{}

	mu         sync.RWMutex
	loading    bool
	alerts     []model.Alert
	lastPollAt time.Time
	pollCount  int64
	lastError  string

	nextSubID int
	subs      map[int]chan Snapshot
}

// NewPoller returns a poller for the given fetcher. A non-positive interval
// falls back to DefaultInterval.
func NewPoller(f Fetcher, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  f,
		interval: interval,
		logger:   logger.With().Str("component", "alert_poller").Logger(),
		poke:     make(chan struct{}, 1),
		loading:  true,
		subs:     make(map[int]chan Snapshot),
	}
}

// Run blocks, polling until ctx is cancelled. The interval timer is stopped
// on return; no further fetches are issued after cancellation.
func (p *Poller) Run(ctx context.Context) error {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-p.poke:
			p.pollOnce(ctx)
		}
	}
}

// Poke requests one immediate off-schedule fetch, used when another part of
// the app knows the underlying data just changed. Non-blocking; a pending
// poke absorbs further ones.
func (p *Poller) Poke() {
	select {
	case p.poke <- struct{}{}:
	default:
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	fetched, err := p.fetcher.FetchAlerts(ctx)
	now := time.Now()

	p.mu.Lock()
	p.pollCount++
	p.lastPollAt = now
	p.loading = false

	if err != nil {
		p.lastError = err.Error()
		p.mu.Unlock()
		p.logger.Warn().Err(err).Msg("alert fetch failed; keeping previous list")
		return
	}

	p.lastError = ""
	p.alerts = fetched
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)
}

// Snapshot returns a copy of the current poller state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	alerts := make([]model.Alert, len(p.alerts))
	copy(alerts, p.alerts)
	return Snapshot{
		Alerts:     alerts,
		Loading:    p.loading,
		LastPollAt: p.lastPollAt,
		PollCount:  p.pollCount,
		LastError:  p.lastError,
	}
}

// Subscribe registers a channel that receives a snapshot after every
// successful poll. Slow subscribers miss snapshots rather than stalling the
// loop.
func (p *Poller) Subscribe(ch chan Snapshot) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSubID++
	id := p.nextSubID
	p.subs[id] = ch
	return id
}

// Unsubscribe removes a previously registered subscriber.
func (p *Poller) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subs, id)
}

func (p *Poller) publish(snap Snapshot) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
