package engine

import (
	"time"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

const (
	// StepDuration is the wall-clock length of one simulation tick
	StepDuration = time.Second / 60

	// MaxStepsPerTick caps the catch-up work done by a single Tick call
	MaxStepsPerTick = 15

	// MaxDriveTicks bounds a single remote drive request
	MaxDriveTicks = 600

	// SpeedGaugeScale and SpeedGaugeMax map vehicle speed onto the dashboard dial
	SpeedGaugeScale = 10
	SpeedGaugeMax   = 60

	WebSocketBufferSize = 256
)

// Input is the player's control state for one tick. Accelerate, Reverse,
// Brake, SteerLeft, SteerRight and Interact are levels (held keys).
// Handbrake and ToggleJobs are edges (a single press).
type Input struct {
	Accelerate bool `json:"accelerate,omitempty"`
	Reverse    bool `json:"reverse,omitempty"`
	Brake      bool `json:"brake,omitempty"`
	SteerLeft  bool `json:"steer_left,omitempty"`
	SteerRight bool `json:"steer_right,omitempty"`
	Handbrake  bool `json:"handbrake,omitempty"`
	Interact   bool `json:"interact,omitempty"`
	ToggleJobs bool `json:"toggle_jobs,omitempty"`
}

// Levels returns the input with edge fields cleared
func (in Input) Levels() Input {
	in.Handbrake = false
	in.ToggleJobs = false
	return in
}

// Phase is the lifecycle stage of the current job
type Phase string

const (
	PhaseNone    Phase = "none"
	PhasePickup  Phase = "pickup"
	PhaseDropoff Phase = "dropoff"
)

// EventType identifies something that happened during a tick
type EventType string

const (
	EventJobOffered       EventType = "job_offered"
	EventNoJobs           EventType = "no_jobs"
	EventJobsPaused       EventType = "jobs_paused"
	EventPassengerBoarded EventType = "passenger_boarded"
	EventJobCompleted     EventType = "job_completed"
	EventMoneyEarned      EventType = "money_earned"
	EventFuelPurchased    EventType = "fuel_purchased"
	EventFoodPurchased    EventType = "food_purchased"
	EventStranded         EventType = "stranded"
	EventStarved          EventType = "starved"
	EventRecovered        EventType = "recovered"
)

// EventTypes lists every event a tick can emit
var EventTypes = []EventType{
	EventJobOffered, EventNoJobs, EventJobsPaused, EventPassengerBoarded,
	EventJobCompleted, EventMoneyEarned, EventFuelPurchased, EventFoodPurchased,
	EventStranded, EventStarved, EventRecovered,
}

// IsEventType reports whether t names a known event
func IsEventType(t EventType) bool {
	for _, known := range EventTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Event is emitted by a tick for presentation and logging
type Event struct {
	Type    EventType `json:"type"`
	Tick    uint64    `json:"tick"`
	Message string    `json:"message,omitempty"`
	Amount  float64   `json:"amount,omitempty"`
	Cost    float64   `json:"cost,omitempty"`
	Job     *Job      `json:"job,omitempty"`
}

// State is the complete mutable game state. It is what gets persisted.
type State struct {
	ConfigName string        `json:"config_name"`
	Tick       uint64        `json:"tick"`
	Vehicle    Vehicle       `json:"vehicle"`
	Jobs       JobController `json:"jobs"`
	Economy    Economy       `json:"economy"`
	Blocked    bool          `json:"blocked"`
	Braking    bool          `json:"braking"`
	Starved    bool          `json:"starved"`
	Stranded   bool          `json:"stranded"`
	Message    string        `json:"message"`
	RNG        []byte        `json:"rng,omitempty"`

	// Cumulative across resets
	Runs        int `json:"runs"`
	TotalServed int `json:"total_served"`
	TotalEarned int `json:"total_earned"`
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	c := *s
	c.Jobs = s.Jobs.clone()
	c.Economy = s.Economy.clone()
	if s.RNG != nil {
		c.RNG = append([]byte(nil), s.RNG...)
	}
	return &c
}

// Snapshot is the read-only view of one tick handed to presentation
type Snapshot struct {
	Tick          uint64         `json:"tick"`
	Position      tilemap.Vec2   `json:"position"`
	Tile          tilemap.Point  `json:"tile"`
	TileKind      tilemap.Kind   `json:"tile_kind,omitempty"`
	Heading       float64        `json:"heading"`
	Speed         float64        `json:"speed"`
	SteeringAngle float64        `json:"steering_angle"`
	Handbrake     bool           `json:"handbrake"`
	Fuel          float64        `json:"fuel"`
	MaxFuel       float64        `json:"max_fuel"`
	Hunger        float64        `json:"hunger"`
	MaxHunger     float64        `json:"max_hunger"`
	Money         float64        `json:"money"`
	Served        int            `json:"served"`
	Phase         Phase          `json:"phase"`
	Target        *tilemap.Point `json:"target,omitempty"`
	Job           *Job           `json:"job,omitempty"`
	AcceptingJobs bool           `json:"accepting_jobs"`
	Refueling     bool           `json:"refueling"`
	Starved       bool           `json:"starved"`
	Stranded      bool           `json:"stranded"`
	Blocked       bool           `json:"blocked"`
	Message       string         `json:"message,omitempty"`
	Events        []Event        `json:"events,omitempty"`

	// Dashboard gauges
	SpeedGauge   float64 `json:"speed_gauge"`
	FuelFraction float64 `json:"fuel_fraction"`
	Braking      bool    `json:"braking"`
}

// TileInfo describes one tile of the map
type TileInfo struct {
	X        int          `json:"x"`
	Y        int          `json:"y"`
	ID       int          `json:"id"`
	Kind     tilemap.Kind `json:"kind,omitempty"`
	Walkable bool         `json:"walkable"`
	InBounds bool         `json:"in_bounds"`
	Center   tilemap.Vec2 `json:"center"`
}
