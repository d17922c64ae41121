package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
)

type advanceCall struct {
	id string
	in engine.Input
	dt time.Duration
}

type fakeAdvancer struct {
	mu    sync.Mutex
	calls []advanceCall
	fail  map[string]bool
	tick  uint64
}

func (f *fakeAdvancer) Advance(ctx context.Context, id string, in engine.Input, dt time.Duration) (*engine.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, advanceCall{id: id, in: in, dt: dt})
	if f.fail[id] {
		return nil, errors.New("session not found")
	}
	f.tick++
	return &engine.Snapshot{Tick: f.tick}, nil
}

func (f *fakeAdvancer) Calls() []advanceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]advanceCall(nil), f.calls...)
}

func TestDriver_Frame(t *testing.T) {
	hub := newTestHub()
	adv := &fakeAdvancer{}
	d := NewDriver(adv, hub, time.Millisecond, zerolog.Nop())

	client := newTestClient(hub, "s1")
	hub.registerClient(client)

	d.SetInput("s1", engine.Input{Accelerate: true, Handbrake: true})

	start := time.Now()
	d.Frame(context.Background(), start)
	d.Frame(context.Background(), start.Add(50*time.Millisecond))

	calls := adv.Calls()
	if len(calls) != 2 {
		t.Fatalf("Expected 2 advance calls, got %d", len(calls))
	}

	if calls[0].dt != 0 {
		t.Errorf("Expected the first frame to have dt 0, got %v", calls[0].dt)
	}
	if !calls[0].in.Handbrake || !calls[0].in.Accelerate {
		t.Errorf("Expected first frame to carry the press and held keys, got %+v", calls[0].in)
	}

	if calls[1].dt != 50*time.Millisecond {
		t.Errorf("Expected dt 50ms, got %v", calls[1].dt)
	}
	if calls[1].in.Handbrake {
		t.Error("Expected the handbrake press to be delivered once")
	}
	if !calls[1].in.Accelerate {
		t.Error("Expected held keys to persist")
	}

	for i := 0; i < 2; i++ {
		select {
		case <-client.send:
		default:
			t.Fatalf("Expected snapshot %d to be broadcast", i+1)
		}
	}
}

func TestDriver_PressesAccumulate(t *testing.T) {
	hub := newTestHub()
	adv := &fakeAdvancer{}
	d := NewDriver(adv, hub, time.Millisecond, zerolog.Nop())
	hub.registerClient(newTestClient(hub, "s1"))

	d.SetInput("s1", engine.Input{ToggleJobs: true})
	d.SetInput("s1", engine.Input{Brake: true})
	d.Frame(context.Background(), time.Now())

	calls := adv.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 advance call, got %d", len(calls))
	}
	if !calls[0].in.ToggleJobs || !calls[0].in.Brake {
		t.Errorf("Expected the earlier press to survive a level update, got %+v", calls[0].in)
	}
}

func TestDriver_OnlyWatchedSessions(t *testing.T) {
	hub := newTestHub()
	adv := &fakeAdvancer{fail: map[string]bool{"gone": true}}
	d := NewDriver(adv, hub, time.Millisecond, zerolog.Nop())

	watcher := newTestClient(hub, "s1")
	hub.registerClient(watcher)
	hub.registerClient(newTestClient(hub, "gone"))
	d.SetInput("idle", engine.Input{Accelerate: true})

	now := time.Now()
	d.Frame(context.Background(), now)

	ids := map[string]bool{}
	for _, c := range adv.Calls() {
		ids[c.id] = true
	}
	if ids["idle"] {
		t.Error("Sessions without clients should not be advanced")
	}
	if !ids["s1"] || !ids["gone"] {
		t.Errorf("Expected watched sessions to be advanced, got %v", ids)
	}

	// Leaving resets the clock and the held keys
	d.SetInput("s1", engine.Input{Accelerate: true})
	hub.unregisterClient(watcher)
	d.Frame(context.Background(), now.Add(time.Second))

	hub.registerClient(newTestClient(hub, "s1"))
	d.Frame(context.Background(), now.Add(2*time.Second))

	calls := adv.Calls()
	last := calls[len(calls)-1]
	if last.id != "s1" {
		t.Fatalf("Expected last call for s1, got %s", last.id)
	}
	if last.dt != 0 {
		t.Errorf("Expected a returning client to start with dt 0, got %v", last.dt)
	}
	if last.in.Accelerate {
		t.Error("Expected held keys to be released when the last client left")
	}
}

func TestDriver_Run(t *testing.T) {
	hub := newTestHub()
	adv := &fakeAdvancer{}
	d := NewDriver(adv, hub, 2*time.Millisecond, zerolog.Nop())
	hub.registerClient(newTestClient(hub, "s1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	waitFor(t, "frames", func() bool { return len(adv.Calls()) >= 3 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
