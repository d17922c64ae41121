// Command validate checks the game configuration files in a configs
// directory (../configs by default, or the first argument). For each file it
// checks:
//   - JSON structure and tuning ranges
//   - The map loads, is rectangular and uses classified tile ids
//   - At least two taxi stands, so jobs can be offered
//   - The spawn point is on a drivable tile
//   - Connectivity: every stand, pump and diner is reachable from the spawn
//     tile over drivable tiles
//
// A map without a pump or a diner is valid but gets a warning.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make a config invalid; Warnings and Info never do.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadGameConfig(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	grid, err := config.LoadGrid()
	if err != nil {
		result.fail("Map: %v", err)
		return result
	}

	pickups := grid.TilesOfKind(tilemap.KindPickup)
	pumps := grid.TilesOfKind(tilemap.KindFuelPump)
	diners := grid.TilesOfKind(tilemap.KindFood)

	if len(pickups) < 2 {
		result.fail("Must have at least 2 taxi stands, found %d", len(pickups))
	}
	if len(pumps) == 0 {
		result.Warnings = append(result.Warnings, "No fuel pump: the taxi cannot refuel")
	}
	if len(diners) == 0 {
		result.Warnings = append(result.Warnings, "No diner: the driver cannot eat")
	}

	sx, sy := grid.WorldToTile(config.Spawn.X, config.Spawn.Y)
	if !grid.IsWalkableTile(sx, sy) {
		result.fail("Spawn (%.0f,%.0f) is on tile (%d,%d), which is not drivable", config.Spawn.X, config.Spawn.Y, sx, sy)
	}

	if result.Valid {
		reachable := reachableFrom(grid, tilemap.Point{X: sx, Y: sy})
		checkReachable(&result, reachable, "Stand", pickups)
		checkReachable(&result, reachable, "Pump", pumps)
		checkReachable(&result, reachable, "Diner", diners)
	}

	if result.Valid {
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Name: %s", config.Name),
			fmt.Sprintf("✓ Map: %dx%d tiles of %dpx", grid.Width(), grid.Height(), grid.TileSize()),
			fmt.Sprintf("✓ Stands: %d, Pumps: %d, Diners: %d", len(pickups), len(pumps), len(diners)),
			fmt.Sprintf("✓ Fuel: %g/%g, Money: $%g", config.Vehicle.StartingFuel, config.Vehicle.MaxFuel, config.StartingMoney),
		)
	}

	return result
}

// reachableFrom flood fills drivable tiles 4-directionally from start
func reachableFrom(grid *tilemap.Grid, start tilemap.Point) map[tilemap.Point]bool {
	visited := map[tilemap.Point]bool{}
	if !grid.IsWalkableTile(start.X, start.Y) {
		return visited
	}

	queue := []tilemap.Point{start}
	visited[start] = true
	directions := []tilemap.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			next := tilemap.Point{X: current.X + d.X, Y: current.Y + d.Y}
			if !visited[next] && grid.IsWalkableTile(next.X, next.Y) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

func checkReachable(result *ValidationResult, reachable map[tilemap.Point]bool, label string, tiles []tilemap.Point) {
	var unreachable []string
	for _, p := range tiles {
		if !reachable[p] {
			unreachable = append(unreachable, fmt.Sprintf("(%d,%d)", p.X, p.Y))
		}
	}
	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d %s tiles unreachable from spawn: %s",
			len(unreachable), len(tiles), strings.ToLower(label), strings.Join(unreachable, " "))
		return
	}
	if len(tiles) > 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Connectivity: all %d %s tiles reachable", len(tiles), strings.ToLower(label)))
	}
}

// main validates every *.json in the configs directory, printing a concise
// report and exiting with non-zero status if any are invalid
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠️  " + w)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
