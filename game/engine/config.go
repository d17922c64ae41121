package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// Tuning holds the vehicle constants. Every rate is a per-tick delta.
type Tuning struct {
	MaxSpeed        float64 `json:"max_speed"`
	MaxReverseSpeed float64 `json:"max_reverse_speed"`
	Acceleration    float64 `json:"acceleration"`
	BrakeStrength   float64 `json:"brake_strength"`
	Friction        float64 `json:"friction"`
	SteeringSpeed   float64 `json:"steering_speed"`
	MaxSteering     float64 `json:"max_steering"`
	SteeringReturn  float64 `json:"steering_return"`
	TurnFactor      float64 `json:"turn_factor"`
	HandbrakeBoost  float64 `json:"handbrake_boost"`
	MaxFuel         float64 `json:"max_fuel"`
	StartingFuel    float64 `json:"starting_fuel"`
	FuelDrain       float64 `json:"fuel_drain"`
	MotionThreshold float64 `json:"motion_threshold"`
	StillSpeed      float64 `json:"still_speed"`
}

// EconomyTuning holds the wallet, pump and food constants
type EconomyTuning struct {
	MaxHunger        float64 `json:"max_hunger"`
	StartingHunger   float64 `json:"starting_hunger"`
	HungerDrainRatio float64 `json:"hunger_drain_ratio"`
	FuelPerDollar    float64 `json:"fuel_per_dollar"`
	RefuelStep       float64 `json:"refuel_step"`
	MinRefuelCost    float64 `json:"min_refuel_cost"`
	FoodPrice        float64 `json:"food_price"`
}

// HungerDrain is the per-tick hunger loss while moving
func (t EconomyTuning) HungerDrain(v Tuning) float64 {
	return v.FuelDrain * t.HungerDrainRatio
}

// JobTuning holds the fare constants
type JobTuning struct {
	ArrivalRadius float64 `json:"arrival_radius"`
	BaseRate      float64 `json:"base_rate"`
	DistanceUnit  float64 `json:"distance_unit"`
}

// Messages are the player-facing texts attached to events
type Messages struct {
	Welcome          string `json:"welcome"`
	JobOffered       string `json:"job_offered"`
	NoJobs           string `json:"no_jobs"`
	JobsPaused       string `json:"jobs_paused"`
	PassengerBoarded string `json:"passenger_boarded"`
	JobCompleted     string `json:"job_completed"`
	FuelPurchased    string `json:"fuel_purchased"`
	FoodPurchased    string `json:"food_purchased"`
	Stranded         string `json:"stranded"`
	Starved          string `json:"starved"`
	Recovered        string `json:"recovered"`
}

// GameConfig is a playable game definition loaded from JSON. The map comes
// either inline (Map) or from MapFile, resolved against the config directory.
type GameConfig struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	MapFile       string                 `json:"map_file,omitempty"`
	Map           []string               `json:"map,omitempty"`
	Tiles         tilemap.Classification `json:"tiles"`
	Spawn         tilemap.Vec2           `json:"spawn"`
	SpawnHeading  float64                `json:"spawn_heading"`
	StartingMoney float64                `json:"starting_money"`
	AcceptJobs    bool                   `json:"accept_jobs"`
	Seed          uint64                 `json:"seed"`
	Vehicle       Tuning                 `json:"vehicle"`
	Economy       EconomyTuning          `json:"economy"`
	Jobs          JobTuning              `json:"jobs"`
	Messages      Messages               `json:"messages"`

	baseDir string
}

// DefaultTuning returns the stock taxi handling
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:        5,
		MaxReverseSpeed: -2,
		Acceleration:    0.1,
		BrakeStrength:   0.3,
		Friction:        0.5,
		SteeringSpeed:   0.8,
		MaxSteering:     5,
		SteeringReturn:  0.5,
		TurnFactor:      0.5,
		HandbrakeBoost:  1.5,
		MaxFuel:         100,
		StartingFuel:    100,
		FuelDrain:       0.012,
		MotionThreshold: 0.1,
		StillSpeed:      0.2,
	}
}

// DefaultEconomyTuning returns the stock prices
func DefaultEconomyTuning() EconomyTuning {
	return EconomyTuning{
		MaxHunger:        100,
		StartingHunger:   100,
		HungerDrainRatio: 0.25,
		FuelPerDollar:    2,
		RefuelStep:       0.5,
		MinRefuelCost:    0.01,
		FoodPrice:        10,
	}
}

// DefaultJobTuning returns the stock fare rules
func DefaultJobTuning() JobTuning {
	return JobTuning{
		ArrivalRadius: 50,
		BaseRate:      0.5,
		DistanceUnit:  100,
	}
}

// DefaultMessages returns the stock event texts
func DefaultMessages() Messages {
	return Messages{
		Welcome:          "Welcome to Ruber Taxi! Toggle jobs to start taking fares.",
		JobOffered:       "New fare waiting at (%d, %d)",
		NoJobs:           "No fares available on this map",
		JobsPaused:       "Off duty",
		PassengerBoarded: "Passenger aboard! Drop off at (%d, %d)",
		JobCompleted:     "Fare complete! Earned $%d",
		FuelPurchased:    "Bought %.1f fuel for $%.2f",
		FoodPurchased:    "Ate a meal for $%.2f",
		Stranded:         "Out of fuel! You're stranded.",
		Starved:          "You're starving and can't drive!",
		Recovered:        "Back on the road",
	}
}

// baseConfig is the template JSON is decoded over, so omitted tuning fields
// keep their stock values.
func baseConfig() GameConfig {
	return GameConfig{
		StartingMoney: 50,
		SpawnHeading:  90,
		Vehicle:       DefaultTuning(),
		Economy:       DefaultEconomyTuning(),
		Jobs:          DefaultJobTuning(),
		Messages:      DefaultMessages(),
	}
}

// DefaultGameConfig returns a small built-in city used when no config
// directory is available.
func DefaultGameConfig() *GameConfig {
	cfg := baseConfig()
	cfg.Name = "Default City"
	cfg.Description = "Built-in downtown loop with two fuel stops and a diner"
	cfg.Map = []string{
		"2,2,2,2,2,2,2,2,2,2,2,2,2,2,2,2",
		"2,3,1,1,1,1,1,1,1,1,1,1,1,1,3,2",
		"2,1,2,2,1,2,2,2,2,2,1,2,2,2,1,2",
		"2,1,2,2,1,2,0,0,0,2,1,2,2,2,1,2",
		"2,4,1,1,1,1,1,3,1,1,1,1,5,1,1,2",
		"2,1,2,2,1,2,0,0,0,2,1,2,2,2,1,2",
		"2,1,2,2,1,2,2,2,2,2,1,2,2,2,6,2",
		"2,3,1,1,1,1,1,1,1,1,1,1,1,1,3,2",
		"2,2,2,2,2,2,2,2,2,2,2,2,2,2,2,2",
	}
	cfg.Tiles = DefaultClassification()
	cfg.Spawn = tilemap.TileCenterWorld(7, 1, tilemap.DefaultTileSize)
	cfg.AcceptJobs = true
	cfg.Seed = 1
	return &cfg
}

// DefaultClassification is the tile table shared by the bundled maps:
// 0 grass, 1 road, 2 building, 3 taxi stand, 4 fuel pump, 5 diner, 6 garage.
func DefaultClassification() tilemap.Classification {
	return tilemap.Classification{
		TileSize: tilemap.DefaultTileSize,
		Walkable: []int{1, 3, 4, 5, 6},
		Pickup:   []int{3},
		FuelPump: []int{4},
		Food:     []int{5},
		Service:  []int{6},
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.MapFile == "" && len(config.Map) == 0 {
		return fmt.Errorf("config validation: map_file or map is required")
	}
	if config.MapFile != "" && len(config.Map) > 0 {
		return fmt.Errorf("config validation: map_file and map are mutually exclusive")
	}
	if err := config.Tiles.Validate(); err != nil {
		return fmt.Errorf("config validation: tiles: %w", err)
	}
	if len(config.Tiles.Walkable) == 0 {
		return fmt.Errorf("config validation: tiles.walkable must list at least one tile id")
	}
	if config.StartingMoney < 0 {
		return fmt.Errorf("config validation: starting_money must not be negative, got %g", config.StartingMoney)
	}

	v := config.Vehicle
	if v.MaxSpeed <= 0 {
		return fmt.Errorf("config validation: vehicle.max_speed must be positive, got %g", v.MaxSpeed)
	}
	if v.MaxReverseSpeed > 0 {
		return fmt.Errorf("config validation: vehicle.max_reverse_speed must not be positive, got %g", v.MaxReverseSpeed)
	}
	if err := requireNonNegative("vehicle", map[string]float64{
		"acceleration":     v.Acceleration,
		"brake_strength":   v.BrakeStrength,
		"friction":         v.Friction,
		"steering_speed":   v.SteeringSpeed,
		"max_steering":     v.MaxSteering,
		"steering_return":  v.SteeringReturn,
		"turn_factor":      v.TurnFactor,
		"handbrake_boost":  v.HandbrakeBoost,
		"fuel_drain":       v.FuelDrain,
		"motion_threshold": v.MotionThreshold,
		"still_speed":      v.StillSpeed,
	}); err != nil {
		return err
	}
	if v.MaxFuel <= 0 {
		return fmt.Errorf("config validation: vehicle.max_fuel must be positive, got %g", v.MaxFuel)
	}
	if v.StartingFuel < 0 || v.StartingFuel > v.MaxFuel {
		return fmt.Errorf("config validation: vehicle.starting_fuel must be between 0 and max_fuel (%g), got %g",
			v.MaxFuel, v.StartingFuel)
	}

	e := config.Economy
	if e.MaxHunger <= 0 {
		return fmt.Errorf("config validation: economy.max_hunger must be positive, got %g", e.MaxHunger)
	}
	if e.StartingHunger <= 0 || e.StartingHunger > e.MaxHunger {
		return fmt.Errorf("config validation: economy.starting_hunger must be in (0, max_hunger (%g)], got %g",
			e.MaxHunger, e.StartingHunger)
	}
	if e.FuelPerDollar <= 0 {
		return fmt.Errorf("config validation: economy.fuel_per_dollar must be positive, got %g", e.FuelPerDollar)
	}
	if e.RefuelStep <= 0 {
		return fmt.Errorf("config validation: economy.refuel_step must be positive, got %g", e.RefuelStep)
	}
	if err := requireNonNegative("economy", map[string]float64{
		"hunger_drain_ratio": e.HungerDrainRatio,
		"min_refuel_cost":    e.MinRefuelCost,
		"food_price":         e.FoodPrice,
	}); err != nil {
		return err
	}

	j := config.Jobs
	if j.ArrivalRadius <= 0 {
		return fmt.Errorf("config validation: jobs.arrival_radius must be positive, got %g", j.ArrivalRadius)
	}
	if j.DistanceUnit <= 0 {
		return fmt.Errorf("config validation: jobs.distance_unit must be positive, got %g", j.DistanceUnit)
	}
	if j.BaseRate < 0 {
		return fmt.Errorf("config validation: jobs.base_rate must not be negative, got %g", j.BaseRate)
	}

	for name, format := range map[string]string{
		"job_offered":       config.Messages.JobOffered,
		"passenger_boarded": config.Messages.PassengerBoarded,
		"job_completed":     config.Messages.JobCompleted,
	} {
		if format != "" && !strings.Contains(format, "%d") {
			return fmt.Errorf("config validation: messages.%s must contain %%d", name)
		}
	}

	return nil
}

func requireNonNegative(section string, values map[string]float64) error {
	for name, value := range values {
		if value < 0 {
			return fmt.Errorf("config validation: %s.%s must not be negative, got %g", section, name, value)
		}
	}
	return nil
}

// SetBaseDir sets the directory MapFile is resolved against
func (c *GameConfig) SetBaseDir(dir string) {
	c.baseDir = dir
}

// BaseDir returns the directory MapFile is resolved against
func (c *GameConfig) BaseDir() string {
	return c.baseDir
}

// MapPath returns the resolved map file path, or "" for inline maps
func (c *GameConfig) MapPath() string {
	if c.MapFile == "" {
		return ""
	}
	if filepath.IsAbs(c.MapFile) || c.baseDir == "" {
		return c.MapFile
	}
	return filepath.Join(c.baseDir, c.MapFile)
}

// LoadGrid loads and classifies the configured map
func (c *GameConfig) LoadGrid() (*tilemap.Grid, error) {
	if len(c.Map) > 0 {
		grid, err := tilemap.Parse(strings.NewReader(strings.Join(c.Map, "\n")), c.Tiles)
		if err != nil {
			return nil, &tilemap.MapLoadError{Path: "inline map of " + c.Name, Err: err}
		}
		return grid, nil
	}
	return tilemap.LoadFile(c.MapPath(), c.Tiles)
}

// ParseGameConfig decodes a config over the stock tuning and validates it
func ParseGameConfig(data []byte) (*GameConfig, error) {
	config := baseConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file. Relative map
// paths resolve against the file's directory.
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}
	config.SetBaseDir(filepath.Dir(filename))

	return config, nil
}
