package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
)

// Advancer moves a session's real-time clock forward
type Advancer interface {
	Advance(ctx context.Context, sessionID string, in engine.Input, dt time.Duration) (*engine.Snapshot, error)
}

// Driver plays every session that has a connected client in real time. On
// each frame it advances the session by the wall-clock time since the
// previous frame with the input its clients last sent, then broadcasts the
// resulting snapshot.
type Driver struct {
	advancer Advancer
	hub      *Hub
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	inputs map[string]engine.Input
	last   map[string]time.Time
}

// NewDriver creates a driver ticking every interval and registers it as the
// hub's input handler
func NewDriver(advancer Advancer, hub *Hub, interval time.Duration, logger zerolog.Logger) *Driver {
	if interval <= 0 {
		interval = engine.StepDuration
	}
	d := &Driver{
		advancer: advancer,
		hub:      hub,
		interval: interval,
		logger:   logger,
		inputs:   make(map[string]engine.Input),
		last:     make(map[string]time.Time),
	}
	hub.SetInputHandler(d.SetInput)
	return d
}

// SetInput replaces the held keys of a session. Presses not yet delivered
// to a frame are kept.
func (d *Driver) SetInput(sessionID string, in engine.Input) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.inputs[sessionID]
	in.Handbrake = in.Handbrake || prev.Handbrake
	in.ToggleJobs = in.ToggleJobs || prev.ToggleJobs
	d.inputs[sessionID] = in
}

// Run drives sessions until ctx is done
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Frame(ctx, now)
		}
	}
}

// Frame advances every watched session once
func (d *Driver) Frame(ctx context.Context, now time.Time) {
	active := d.hub.Sessions()
	for _, id := range active {
		in, dt := d.take(id, now)
		snap, err := d.advancer.Advance(ctx, id, in, dt)
		if err != nil {
			d.logger.Debug().Err(err).Str("session", id).Msg("advance failed")
			continue
		}
		d.hub.BroadcastToSession(id, snap)
	}
	d.prune(active)
}

// take returns the input for this frame and the time since the last one.
// A session's first frame has dt 0.
func (d *Driver) take(id string, now time.Time) (engine.Input, time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	in := d.inputs[id]
	d.inputs[id] = in.Levels()

	last, seen := d.last[id]
	d.last[id] = now
	if !seen {
		return in, 0
	}
	return in, now.Sub(last)
}

// prune forgets sessions nobody watches, so held keys are released and a
// returning client does not trigger a catch-up burst
func (d *Driver) prune(active []string) {
	keep := make(map[string]bool, len(active))
	for _, id := range active {
		keep[id] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for id := range d.last {
		if !keep[id] {
			delete(d.last, id)
			delete(d.inputs, id)
		}
	}
}
