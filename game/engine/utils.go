package engine

import (
	"math"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// approach moves value toward target by at most step, never overshooting
func approach(value, target, step float64) float64 {
	if value > target {
		return math.Max(value-step, target)
	}
	if value < target {
		return math.Min(value+step, target)
	}
	return value
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(value, hi))
}

// normalizeDegrees maps any angle into [0, 360)
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FindNearestOfKind finds the closest tile of a kind to a world position and
// returns it with the pixel distance to its center.
func FindNearestOfKind(grid *tilemap.Grid, from tilemap.Vec2, kind tilemap.Kind) (tilemap.Point, float64, bool) {
	minDistance := -1.0
	var nearest tilemap.Point
	found := false

	for _, p := range grid.TilesOfKind(kind) {
		distance := from.DistanceTo(grid.TileCenter(p))
		if minDistance < 0 || distance < minDistance {
			minDistance = distance
			nearest = p
			found = true
		}
	}

	return nearest, minDistance, found
}

// FuelToCover estimates the fuel burned covering distance pixels at top speed
func FuelToCover(distance float64, t Tuning) float64 {
	if t.MaxSpeed <= 0 {
		return math.Inf(1)
	}
	return distance / t.MaxSpeed * t.FuelDrain
}

// AnalyzeFuelRisk assesses fuel danger based on the distance to the nearest pump
func AnalyzeFuelRisk(grid *tilemap.Grid, v Vehicle, t Tuning) string {
	if v.Fuel <= 0 {
		return "CRITICAL: Fuel tank empty!"
	}

	_, distance, found := FindNearestOfKind(grid, v.Position, tilemap.KindFuelPump)
	if !found {
		return "WARNING: No fuel pumps on this map!"
	}

	needed := FuelToCover(distance, t)
	switch {
	case v.Fuel <= needed:
		return "DANGER: Not enough fuel to reach the nearest pump!"
	case v.Fuel <= needed*2:
		return "CAUTION: Low fuel, head to a pump"
	case v.Fuel <= t.MaxFuel/4:
		return "LOW: Consider refueling soon"
	}
	return "SAFE: Fuel sufficient"
}

// AnalyzeHungerRisk assesses how close the driver is to starving
func AnalyzeHungerRisk(hunger float64, et EconomyTuning) string {
	switch {
	case hunger <= 0:
		return "CRITICAL: Starving!"
	case hunger <= et.MaxHunger/10:
		return "DANGER: Eat immediately"
	case hunger <= et.MaxHunger/4:
		return "LOW: Find a diner soon"
	}
	return "SAFE: Well fed"
}
