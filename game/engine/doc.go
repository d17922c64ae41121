// Package engine provides the core simulation for Ruber Taxi.
//
// The engine package implements the game mechanics including:
//   - Arcade vehicle physics with steering, braking and a burnout handbrake
//   - Single-point collision against the tile map
//   - The fare lifecycle: offered, passenger aboard, delivered and paid
//   - Fuel and hunger depletion with metered refuelling and diner meals
//   - Game state management and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract, implemented by GameEngine.
// A GameEngine owns one immutable tilemap.Grid, one Vehicle, one
// JobController and one Economy. State bundles the mutable parts for
// persistence, and Snapshot is the read-only view handed to presentation
// after every step.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// One tick with the accelerator held
//	snap := gameEngine.Step(engine.Input{Accelerate: true})
//
//	// Or advance by wall-clock time at a fixed 60 steps per second
//	snap = gameEngine.Tick(engine.Input{Accelerate: true}, 33*time.Millisecond)
//
// Tick Model:
//
// All tuning values are per-tick deltas. Step runs exactly one tick in a
// fixed order: vehicle update, job arrival, hunger depletion, pump and diner
// purchases, then starvation. Tick converts elapsed time into whole steps of
// StepDuration so speed, fuel and hunger keep their relative rates at any
// frame rate.
//
// Game Rules:
//
// Park with the handbrake on near the taxi stand to pick up a passenger, then
// do the same at the destination to get paid by distance. Driving burns fuel
// and makes the driver hungry. Fuel is bought by holding Interact while parked
// on a pump; food at a diner. An empty tank strands the taxi and an empty
// stomach stops it until the driver eats.
package engine
