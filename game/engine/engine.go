package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Simulation
	Step(in Input) Snapshot
	Tick(in Input, dt time.Duration) Snapshot
	Snapshot() Snapshot
	ToggleJobs() Snapshot

	// Game state management
	GetState() *State
	SetState(state *State) error
	Reset() Snapshot

	// Configuration and map
	GetConfig() *GameConfig
	Grid() *tilemap.Grid
	DescribeTile(tx, ty int) TileInfo
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialise access.
type GameEngine struct {
	config *GameConfig
	grid   *tilemap.Grid
	state  *State

	pcg *rand.PCG
	rng *rand.Rand

	// Tick bookkeeping, not persisted
	accumulated time.Duration
	pending     Input
	last        Snapshot
}

// NewEngine creates a new game engine with the provided configuration. The
// map is loaded once here; a missing or malformed map fails construction.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	grid, err := config.LoadGrid()
	if err != nil {
		return nil, err
	}

	tx, ty := grid.WorldToTile(config.Spawn.X, config.Spawn.Y)
	if !grid.InBounds(tx, ty) {
		return nil, fmt.Errorf("spawn (%.1f, %.1f) is outside the %dx%d map", config.Spawn.X, config.Spawn.Y, grid.Width(), grid.Height())
	}

	e := &GameEngine{
		config: config,
		grid:   grid,
	}
	e.state = e.initialState()
	e.last = e.snapshot(nil)
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in city
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) initialState() *State {
	e.pcg = rand.NewPCG(e.config.Seed, e.config.Seed)
	e.rng = rand.New(e.pcg)
	e.accumulated = 0
	e.pending = Input{}

	s := &State{
		ConfigName: e.config.Name,
		Vehicle:    NewVehicle(e.config.Spawn, e.config.SpawnHeading, e.config.Vehicle),
		Jobs:       NewJobController(),
		Economy:    NewEconomy(e.config.StartingMoney, e.config.Economy),
		Message:    e.config.Messages.Welcome,
	}
	if e.config.AcceptJobs {
		events := s.Jobs.SetAccepting(true, e.grid, e.rng)
		e.stamp(s, events)
	}
	s.Stranded = s.Vehicle.Fuel <= 0
	return s
}

// Step runs exactly one simulation tick. The order is load-bearing: the
// vehicle moves first so job arrival and pump/diner checks see this tick's
// position and speed.
func (e *GameEngine) Step(in Input) Snapshot {
	e.last = e.snapshot(e.step(in))
	return e.last
}

// Tick advances the simulation by wall-clock time in whole StepDuration
// steps. Edge inputs are delivered to the next step that runs, once.
func (e *GameEngine) Tick(in Input, dt time.Duration) Snapshot {
	e.pending.Handbrake = e.pending.Handbrake || in.Handbrake
	e.pending.ToggleJobs = e.pending.ToggleJobs || in.ToggleJobs

	if dt <= 0 {
		return e.snapshot(nil)
	}

	e.accumulated += dt
	steps := int(e.accumulated / StepDuration)
	if steps > MaxStepsPerTick {
		steps = MaxStepsPerTick
		e.accumulated = 0
	} else {
		e.accumulated -= time.Duration(steps) * StepDuration
	}
	if steps == 0 {
		return e.snapshot(nil)
	}

	var events []Event
	for i := 0; i < steps; i++ {
		stepIn := in.Levels()
		stepIn.Handbrake = e.pending.Handbrake
		stepIn.ToggleJobs = e.pending.ToggleJobs
		e.pending = Input{}
		events = append(events, e.step(stepIn)...)
	}

	e.last = e.snapshot(events)
	return e.last
}

func (e *GameEngine) step(in Input) []Event {
	s := e.state
	cfg := e.config
	s.Tick++

	// A starving driver can park and buy food but cannot drive
	if s.Starved {
		in.Accelerate = false
		in.Reverse = false
		if s.Vehicle.HandbrakeEngaged {
			in.Handbrake = false
		}
	}

	var events []Event

	s.Blocked = s.Vehicle.Update(in, e.grid, cfg.Vehicle)
	s.Braking = in.Brake && !s.Vehicle.HandbrakeEngaged

	if in.ToggleJobs {
		events = append(events, s.Jobs.SetAccepting(!s.Jobs.AcceptingJobs, e.grid, e.rng)...)
	}
	jobEvents := s.Jobs.Tick(&s.Vehicle, e.grid, &s.Economy, cfg.Vehicle, cfg.Jobs, e.rng)
	for _, ev := range jobEvents {
		if ev.Type == EventJobCompleted {
			s.TotalServed++
			s.TotalEarned += int(ev.Amount)
		}
	}
	events = append(events, jobEvents...)

	s.Economy.TickDepletion(&s.Vehicle, cfg.Vehicle, cfg.Economy)
	events = append(events, s.Economy.TryRefuel(e.grid, &s.Vehicle, s.Jobs.Phase, in, cfg.Vehicle, cfg.Economy)...)
	events = append(events, s.Economy.TryEat(e.grid, &s.Vehicle, s.Jobs.Phase, in, cfg.Vehicle, cfg.Economy)...)

	events = append(events, e.updateStatus(s)...)

	e.stamp(s, events)
	return events
}

// updateStatus applies starvation and reports status transitions
func (e *GameEngine) updateStatus(s *State) []Event {
	var events []Event

	starved := s.Economy.Hunger <= 0
	if starved {
		s.Vehicle.Speed = 0
	}
	switch {
	case starved && !s.Starved:
		events = append(events, Event{Type: EventStarved})
	case !starved && s.Starved:
		events = append(events, Event{Type: EventRecovered})
	}
	s.Starved = starved

	// Stays latched on an empty tank until fuel comes back
	stranded := s.Vehicle.Fuel <= 0 && (s.Vehicle.Speed == 0 || s.Stranded)
	switch {
	case stranded && !s.Stranded:
		events = append(events, Event{Type: EventStranded})
	case !stranded && s.Stranded && s.Vehicle.Fuel > 0:
		events = append(events, Event{Type: EventRecovered})
	}
	s.Stranded = stranded

	return events
}

// stamp fills tick and message on freshly produced events
func (e *GameEngine) stamp(s *State, events []Event) {
	for i := range events {
		events[i].Tick = s.Tick
		events[i].Message = e.message(events[i])
		if events[i].Message != "" {
			s.Message = events[i].Message
		}
	}
}

func (e *GameEngine) message(ev Event) string {
	m := e.config.Messages
	switch ev.Type {
	case EventJobOffered:
		if ev.Job != nil {
			return fmt.Sprintf(m.JobOffered, ev.Job.Pickup.X, ev.Job.Pickup.Y)
		}
	case EventPassengerBoarded:
		if ev.Job != nil {
			return fmt.Sprintf(m.PassengerBoarded, ev.Job.Delivery.X, ev.Job.Delivery.Y)
		}
	case EventJobCompleted:
		return fmt.Sprintf(m.JobCompleted, int(ev.Amount))
	case EventFuelPurchased:
		return fmt.Sprintf(m.FuelPurchased, ev.Amount, ev.Cost)
	case EventFoodPurchased:
		return fmt.Sprintf(m.FoodPurchased, ev.Cost)
	case EventNoJobs:
		return m.NoJobs
	case EventJobsPaused:
		return m.JobsPaused
	case EventStranded:
		return m.Stranded
	case EventStarved:
		return m.Starved
	case EventRecovered:
		return m.Recovered
	}
	return ""
}

// ToggleJobs flips job acceptance outside the tick loop
func (e *GameEngine) ToggleJobs() Snapshot {
	events := e.state.Jobs.SetAccepting(!e.state.Jobs.AcceptingJobs, e.grid, e.rng)
	e.stamp(e.state, events)
	e.last = e.snapshot(events)
	return e.last
}

// Snapshot returns the view produced by the last step
func (e *GameEngine) Snapshot() Snapshot {
	return e.last
}

func (e *GameEngine) snapshot(events []Event) Snapshot {
	s := e.state
	v := s.Vehicle
	cfg := e.config

	tx, ty := e.grid.WorldToTile(v.Position.X, v.Position.Y)
	kind, _ := e.grid.KindAt(tx, ty)

	var job *Job
	if s.Jobs.Current != nil {
		job = s.Jobs.Current.clone()
	}

	return Snapshot{
		Tick:          s.Tick,
		Position:      v.Position,
		Tile:          tilemap.Point{X: tx, Y: ty},
		TileKind:      kind,
		Heading:       v.Heading,
		Speed:         v.Speed,
		SteeringAngle: v.SteeringAngle,
		Handbrake:     v.HandbrakeEngaged,
		Fuel:          v.Fuel,
		MaxFuel:       cfg.Vehicle.MaxFuel,
		Hunger:        s.Economy.Hunger,
		MaxHunger:     cfg.Economy.MaxHunger,
		Money:         s.Economy.Money,
		Served:        s.Jobs.Served,
		Phase:         s.Jobs.Phase,
		Target:        s.Jobs.Target(),
		Job:           job,
		AcceptingJobs: s.Jobs.AcceptingJobs,
		Refueling:     s.Economy.Refuel != nil,
		Starved:       s.Starved,
		Stranded:      s.Stranded,
		Blocked:       s.Blocked,
		Message:       s.Message,
		Events:        events,
		SpeedGauge:    math.Min(math.Abs(v.Speed)*SpeedGaugeScale, SpeedGaugeMax),
		FuelFraction:  v.Fuel / cfg.Vehicle.MaxFuel,
		Braking:       s.Braking,
	}
}

// GetState returns a copy of the current game state
func (e *GameEngine) GetState() *State {
	s := e.state.Clone()
	if rng, err := e.pcg.MarshalBinary(); err == nil {
		s.RNG = rng
	}
	return s
}

// SetState replaces the game state (used for persistence loading)
func (e *GameEngine) SetState(state *State) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	next := state.Clone()
	if err := e.validateState(next); err != nil {
		return err
	}
	if len(next.RNG) > 0 {
		pcg := &rand.PCG{}
		if err := pcg.UnmarshalBinary(next.RNG); err != nil {
			return fmt.Errorf("invalid rng state: %w", err)
		}
		e.pcg = pcg
		e.rng = rand.New(pcg)
	}

	e.state = next
	e.accumulated = 0
	e.pending = Input{}
	e.last = e.snapshot(nil)
	return nil
}

func (e *GameEngine) validateState(s *State) error {
	v := s.Vehicle
	if v.Fuel < 0 || v.Fuel > e.config.Vehicle.MaxFuel {
		return fmt.Errorf("fuel %g outside [0, %g]", v.Fuel, e.config.Vehicle.MaxFuel)
	}
	if s.Economy.Hunger < 0 || s.Economy.Hunger > e.config.Economy.MaxHunger {
		return fmt.Errorf("hunger %g outside [0, %g]", s.Economy.Hunger, e.config.Economy.MaxHunger)
	}
	if math.Abs(v.Speed) > e.config.Vehicle.MaxSpeed {
		return fmt.Errorf("speed %g exceeds max speed %g", v.Speed, e.config.Vehicle.MaxSpeed)
	}
	switch s.Jobs.Phase {
	case "", PhaseNone, PhasePickup, PhaseDropoff:
	default:
		return fmt.Errorf("unknown job phase %q", s.Jobs.Phase)
	}
	if (s.Jobs.Current == nil) != (s.Jobs.Phase == PhaseNone || s.Jobs.Phase == "") {
		return fmt.Errorf("job phase %q inconsistent with current job", s.Jobs.Phase)
	}
	if s.Jobs.Phase == "" {
		s.Jobs.Phase = PhaseNone
	}
	return nil
}

// Reset restarts the run from the spawn point. Cumulative totals survive.
func (e *GameEngine) Reset() Snapshot {
	prev := e.state
	e.state = e.initialState()
	e.state.Runs = prev.Runs + 1
	e.state.TotalServed = prev.TotalServed
	e.state.TotalEarned = prev.TotalEarned

	e.last = e.snapshot(nil)
	return e.last
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Grid returns the immutable map
func (e *GameEngine) Grid() *tilemap.Grid {
	return e.grid
}

// DescribeTile reports what sits at tile (tx, ty)
func (e *GameEngine) DescribeTile(tx, ty int) TileInfo {
	info := TileInfo{
		X:        tx,
		Y:        ty,
		Center:   e.grid.TileCenter(tilemap.Point{X: tx, Y: ty}),
		InBounds: e.grid.InBounds(tx, ty),
	}
	if id, ok := e.grid.TileID(tx, ty); ok {
		info.ID = id
		info.Kind, _ = e.grid.KindAt(tx, ty)
		info.Walkable = e.grid.IsWalkableTile(tx, ty)
	}
	return info
}
