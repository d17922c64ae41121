// Command analyze prints quick, human-readable heuristics about the
// configuration files in a configs directory: map size, special tile counts,
// fare statistics over every stand pair and how far a full tank or a full
// stomach gets the taxi, highlighting tiles too far from any pump.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// Analysis summarizes one configuration
type Analysis struct {
	Name          string
	Width, Height int
	TileSize      int
	Stands        int
	Pumps         int
	Diners        int
	Garages       int

	// Over every ordered pair of distinct stands
	Pairs       int
	MinFare     int
	MaxFare     int
	AvgFare     float64
	ZeroFares   int
	AvgDistance float64

	// Straight-line reach at full speed, in pixels
	FuelRange   float64
	HungerRange float64

	// Drivable tiles further (Manhattan, in pixels) from every pump than a
	// full tank reaches
	Stranding []tilemap.Point
}

func analyze(config *engine.GameConfig, grid *tilemap.Grid) Analysis {
	a := Analysis{
		Name:     config.Name,
		Width:    grid.Width(),
		Height:   grid.Height(),
		TileSize: grid.TileSize(),
		Stands:   grid.CountKind(tilemap.KindPickup),
		Pumps:    grid.CountKind(tilemap.KindFuelPump),
		Diners:   grid.CountKind(tilemap.KindFood),
		Garages:  grid.CountKind(tilemap.KindService),
	}

	stands := grid.TilesOfKind(tilemap.KindPickup)
	a.MinFare = math.MaxInt
	var fareSum, distSum float64
	for _, from := range stands {
		for _, to := range stands {
			if from == to {
				continue
			}
			job := engine.Job{Pickup: from, Delivery: to}
			fare := job.Fare(a.TileSize, config.Jobs)
			a.Pairs++
			fareSum += float64(fare)
			distSum += job.Distance(a.TileSize)
			if fare < a.MinFare {
				a.MinFare = fare
			}
			if fare > a.MaxFare {
				a.MaxFare = fare
			}
			if fare == 0 {
				a.ZeroFares++
			}
		}
	}
	if a.Pairs > 0 {
		a.AvgFare = fareSum / float64(a.Pairs)
		a.AvgDistance = distSum / float64(a.Pairs)
	} else {
		a.MinFare = 0
	}

	v := config.Vehicle
	if v.FuelDrain > 0 {
		a.FuelRange = v.MaxFuel / v.FuelDrain * v.MaxSpeed
	} else {
		a.FuelRange = math.Inf(1)
	}
	if hunger := config.Economy.HungerDrain(v); hunger > 0 {
		a.HungerRange = config.Economy.MaxHunger / hunger * v.MaxSpeed
	} else {
		a.HungerRange = math.Inf(1)
	}

	pumps := grid.TilesOfKind(tilemap.KindFuelPump)
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if !grid.IsWalkableTile(x, y) {
				continue
			}
			nearest := math.Inf(1)
			for _, p := range pumps {
				d := float64((abs(x-p.X) + abs(y-p.Y)) * a.TileSize)
				nearest = math.Min(nearest, d)
			}
			if nearest > a.FuelRange {
				a.Stranding = append(a.Stranding, tilemap.Point{X: x, Y: y})
			}
		}
	}

	return a
}

func report(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Map: %d x %d tiles (%dpx)\n", a.Width, a.Height, a.TileSize)
	fmt.Fprintf(w, "Stands: %d, Pumps: %d, Diners: %d, Garages: %d\n", a.Stands, a.Pumps, a.Diners, a.Garages)

	if a.Pairs == 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: fewer than 2 stands, no job can be offered\n")
	} else {
		fmt.Fprintf(w, "Jobs: %d routes, avg distance %.0fpx, fare min $%d / avg $%.2f / max $%d\n",
			a.Pairs, a.AvgDistance, a.MinFare, a.AvgFare, a.MaxFare)
		if a.ZeroFares > 0 {
			fmt.Fprintf(w, "⚠️  WARNING: %d routes pay nothing\n", a.ZeroFares)
		}
	}

	fmt.Fprintf(w, "Full tank: %.0fpx at top speed, full stomach: %.0fpx\n", a.FuelRange, a.HungerRange)

	if a.Pumps == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: no fuel pump, every run ends stranded\n")
		return
	}
	if len(a.Stranding) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d tiles are further from every pump than a full tank reaches\n", len(a.Stranding))
		for i, p := range a.Stranding {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(a.Stranding)-5)
				break
			}
			fmt.Fprintf(w, "   Too far: (%d, %d)\n", p.X, p.Y)
		}
	} else {
		fmt.Fprintf(w, "✅ Every drivable tile is within a tank of a pump\n")
	}
}

func analyzeConfig(w io.Writer, path string) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}
	grid, err := config.LoadGrid()
	if err != nil {
		return err
	}
	report(w, analyze(config, grid))
	return nil
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
