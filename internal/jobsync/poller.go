package jobsync

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller runs a tick function at a fixed interval. At most one timer is
// outstanding at any time: Start on an active poller and Stop on a stopped one
// are no-ops.
type Poller struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context, live func() bool)

	mu         sync.Mutex
	done       chan struct{}
	generation uint64
	created    int
}

// NewPoller creates a stopped poller. tick receives the context passed to
// Start and a live function that reports whether this activation is still
// current; a tick must check it before acting on results.
func NewPoller(name string, interval time.Duration, tick func(ctx context.Context, live func() bool)) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		tick:     tick,
	}
}

// Start activates the poller. It returns true when a new timer was created.
// Ticks use ctx for their requests, so stopping the poller never cancels a
// request that is already in flight.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return false
	}

	p.done = make(chan struct{})
	p.generation++
	p.created++

	slog.Debug("Poller started", "poller", p.name, "interval", p.interval, "generation", p.generation)

	go p.loop(ctx, p.done, p.generation)
	return true
}

// Stop deactivates the poller. It returns true when an active timer was cleared.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return false
	}

	close(p.done)
	p.done = nil

	slog.Debug("Poller stopped", "poller", p.name, "generation", p.generation)
	return true
}

// Active reports whether the poller currently holds a timer.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// Created returns how many timers the poller has created over its lifetime.
func (p *Poller) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

func (p *Poller) isLive(generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil && p.generation == generation
}

func (p *Poller) loop(ctx context.Context, done <-chan struct{}, generation uint64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	live := func() bool { return p.isLive(generation) }

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.generation == generation && p.done != nil {
				close(p.done)
				p.done = nil
			}
			p.mu.Unlock()
			return
		case <-done:
			return
		case <-ticker.C:
			// A tick that fires after Stop does nothing
			if !live() {
				return
			}
			p.tick(ctx, live)
		}
	}
}
