package engine

import (
	"testing"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// createTestConfig returns a one-row street: stands at x=1 and x=8, taxi in
// the middle facing left.
func createTestConfig() *GameConfig {
	cfg := baseConfig()
	cfg.Name = "Engine Test Config"
	cfg.Description = "Configuration for engine integration tests"
	cfg.Map = []string{"2,3,1,1,1,1,1,1,3,2"}
	cfg.Tiles = DefaultClassification()
	cfg.Spawn = tilemap.TileCenterWorld(5, 0, tilemap.DefaultTileSize)
	cfg.SpawnHeading = 90
	cfg.AcceptJobs = true
	cfg.Seed = 7
	return &cfg
}

// createStationConfig returns a short street with a pump at x=1 and a diner at x=3
func createStationConfig() *GameConfig {
	cfg := baseConfig()
	cfg.Name = "Station Test Config"
	cfg.Description = "Pump and diner"
	cfg.Map = []string{"1,4,1,5,1"}
	cfg.Tiles = DefaultClassification()
	cfg.Spawn = tilemap.TileCenterWorld(1, 0, tilemap.DefaultTileSize)
	return &cfg
}

func newTestEngine(t *testing.T, cfg *GameConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// park puts the taxi at rest with the handbrake on at the center of a tile
func park(e *GameEngine, tile tilemap.Point) {
	v := &e.state.Vehicle
	v.Position = e.grid.TileCenter(tile)
	v.Speed = 0
	v.StoredMomentum = 0
	v.HandbrakeEngaged = true
}

// driveTo drives along the one-row street until the taxi is near target,
// then pulls the handbrake.
func driveTo(t *testing.T, e *GameEngine, target tilemap.Point) Snapshot {
	t.Helper()

	v := &e.state.Vehicle
	center := e.grid.TileCenter(target)
	v.HandbrakeEngaged = false
	v.StoredMomentum = 0
	v.Speed = 0
	v.SteeringAngle = 0
	if center.X < v.Position.X {
		v.Heading = 90
	} else {
		v.Heading = 270
	}

	for i := 0; i < 1000; i++ {
		if e.state.Vehicle.Position.DistanceTo(center) <= 30 {
			return e.Step(Input{Handbrake: true})
		}
		snap := e.Step(Input{Accelerate: true})
		if snap.Blocked {
			t.Fatalf("Taxi blocked at %+v while driving to %+v", snap.Position, target)
		}
	}
	t.Fatalf("Taxi never reached %+v, stopped at %+v", target, e.state.Vehicle.Position)
	return Snapshot{}
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
