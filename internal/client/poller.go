package client

import (
	"context"
	"log"
	"sync"
	"time"

	"meedi8/backend/internal/config"
	"meedi8/backend/internal/phase"
)

// LobbyFetcher is the poller's only dependency on the API client.
type LobbyFetcher interface {
	GetLobby(ctx context.Context, roomID string) (phase.Phase, error)
}

// Poller keeps a local view of one room's phase fresh while a waiting
// screen is showing. It polls at a fixed cadence, skips failed fetches
// silently, and emits on Updates only when the observed value changes.
//
// The loop must be stopped when the owning view goes away; Stop cancels
// the loop and any in-flight request, after which no further fetches occur.
type Poller struct {
	fetcher  LobbyFetcher
	roomID   string
	interval time.Duration

	mu      sync.Mutex
	current phase.Phase
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
	updates chan phase.Phase
}

// NewPoller creates a poller for roomID. interval <= 0 falls back to
// config.LobbyPollInterval.
func NewPoller(f LobbyFetcher, roomID string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = config.LobbyPollInterval
	}
	return &Poller{
		fetcher:  f,
		roomID:   roomID,
		interval: interval,
		updates:  make(chan phase.Phase, 8),
	}
}

// Start launches the polling goroutine. The first poll fires immediately,
// then every interval. Calling Start twice is a no-op, and a stopped
// poller stays inert: Updates is already closed, so restarting would close
// it again. Each waiting screen creates its own poller.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil || p.stopped {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	defer close(p.updates)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches once and records the result. A failed fetch is logged and
// skipped; the next tick retries. No backoff, no retry budget.
func (p *Poller) poll(ctx context.Context) {
	observed, err := p.fetcher.GetLobby(ctx, p.roomID)
	if err != nil {
		if ctx.Err() != nil {
			return // stopped mid-flight, stale result is not recorded
		}
		log.Printf("WARNING: Lobby poll failed for room %s: %v", p.roomID, err)
		return
	}

	p.mu.Lock()
	changed := observed != p.current
	p.current = observed
	p.mu.Unlock()

	if !changed {
		return
	}
	select {
	case p.updates <- observed:
	default:
		// Consumer is behind; it will catch up through Current.
	}
}

// Current returns the last observed phase, empty before the first
// successful poll.
func (p *Poller) Current() phase.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Updates emits each observed phase change exactly once, in order. The
// channel is closed when the poller stops.
func (p *Poller) Updates() <-chan phase.Phase { return p.updates }

// Stop cancels the loop and waits for it to exit. Safe to call more than
// once, and terminal: a stopped poller cannot be restarted. Stopping a
// poller that was never started only marks it inert.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.stopped = true
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
