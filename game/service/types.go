package service

import (
	"time"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"` // config_id to pass back to CreateSession
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Snapshot       engine.Snapshot    `json:"snapshot"`
	Totals         Totals             `json:"totals"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// Totals are the cumulative counters that survive resets
type Totals struct {
	Runs        int `json:"runs"`
	TotalServed int `json:"total_served"`
	TotalEarned int `json:"total_earned"`
}

// DriveRequest holds one control input to apply for a number of ticks.
// Edge inputs (handbrake, toggle_jobs) fire on the first tick only.
type DriveRequest struct {
	Input         engine.Input       `json:"input"`
	Ticks         int                `json:"ticks"`
	Reset         bool               `json:"reset,omitempty"`
	StopOn        []engine.EventType `json:"stop_on,omitempty"`
	StopOnBlocked bool               `json:"stop_on_blocked,omitempty"`
}

// Stop reason codes reported by Drive
const (
	StopCompleted = "completed"
	StopEvent     = "event"
	StopStarved   = "starved"
	StopStranded  = "stranded"
	StopBlocked   = "blocked"
)

// DriveResult contains the result of a drive request
type DriveResult struct {
	// Summary
	TicksRequested int            `json:"ticks_requested"`
	TicksRun       int            `json:"ticks_run"`
	Truncated      bool           `json:"truncated,omitempty"`
	Limit          int            `json:"limit,omitempty"`
	StopReason     string         `json:"stop_reason"`
	StopEvent      *engine.Event  `json:"stop_event,omitempty"`
	Events         []engine.Event `json:"events"`

	// Start/end snapshot
	StartPos   tilemap.Vec2    `json:"start_pos"`
	EndPos     tilemap.Vec2    `json:"end_pos"`
	StartFuel  float64         `json:"start_fuel"`
	EndFuel    float64         `json:"end_fuel"`
	MoneyDelta float64         `json:"money_delta"`
	Snapshot   engine.Snapshot `json:"snapshot"`

	// Decision aids
	FuelRisk     string         `json:"fuel_risk,omitempty"`
	HungerRisk   string         `json:"hunger_risk,omitempty"`
	NearestPump  *tilemap.Point `json:"nearest_pump,omitempty"`
	NearestDiner *tilemap.Point `json:"nearest_diner,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string  `json:"filename"`
	ConfigID      string  `json:"config_id"` // The identifier to use for session creation
	Name          string  `json:"name"`      // Display name
	Description   string  `json:"description"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TileSize      int     `json:"tile_size"`
	Pickups       int     `json:"pickups"`
	FuelPumps     int     `json:"fuel_pumps"`
	Diners        int     `json:"diners"`
	StartingMoney float64 `json:"starting_money"`
	MaxFuel       float64 `json:"max_fuel"`
}

// ScoreEntry is one finished run in the high-score table
type ScoreEntry struct {
	RunID      string    `json:"run_id"`
	SessionID  string    `json:"session_id"`
	ConfigID   string    `json:"config_id"`
	Run        int       `json:"run"`
	Served     int       `json:"served"`
	Earned     int       `json:"earned"`
	Money      float64   `json:"money"`
	Ticks      uint64    `json:"ticks"`
	Reason     string    `json:"reason"` // starved|reset|retired
	RecordedAt time.Time `json:"recorded_at"`
}
