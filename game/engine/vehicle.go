package engine

import (
	"math"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// Vehicle is the taxi's kinematic and fuel state. Heading is in degrees,
// 0 points up the screen and the forward vector is (-sin h, -cos h).
type Vehicle struct {
	Position         tilemap.Vec2 `json:"position"`
	Heading          float64      `json:"heading"`
	Speed            float64      `json:"speed"`
	SteeringAngle    float64      `json:"steering_angle"`
	HandbrakeEngaged bool         `json:"handbrake_engaged"`
	StoredMomentum   float64      `json:"stored_momentum"`
	Fuel             float64      `json:"fuel"`
}

// NewVehicle places a taxi at spawn with a starting tank
func NewVehicle(spawn tilemap.Vec2, heading float64, t Tuning) Vehicle {
	return Vehicle{
		Position: spawn,
		Heading:  normalizeDegrees(heading),
		Fuel:     t.StartingFuel,
	}
}

// Update advances the vehicle by one tick and reports whether the attempted
// move was rejected by the map.
func (v *Vehicle) Update(in Input, grid *tilemap.Grid, t Tuning) bool {
	if in.Handbrake {
		v.ToggleHandbrake(t)
	}

	v.steer(in, t)

	if !v.HandbrakeEngaged {
		v.throttle(in, t)
	}

	blocked := false
	if v.Speed != 0 {
		blocked = !v.move(grid, t)
	}

	v.burnFuel(t)
	return blocked
}

// ToggleHandbrake engages or releases the handbrake. Engaging banks the
// current speed; releasing converts it into a boost whose sign follows the
// heading.
func (v *Vehicle) ToggleHandbrake(t Tuning) {
	if !v.HandbrakeEngaged {
		v.StoredMomentum = math.Abs(v.Speed)
		v.Speed = 0
		v.HandbrakeEngaged = true
		return
	}

	direction := 1.0
	if normalizeDegrees(v.Heading) >= 180 {
		direction = -1
	}
	v.Speed = math.Min(v.StoredMomentum+t.HandbrakeBoost, t.MaxSpeed) * direction
	v.HandbrakeEngaged = false
	v.StoredMomentum = 0
}

func (v *Vehicle) steer(in Input, t Tuning) {
	switch {
	case in.SteerLeft:
		v.SteeringAngle = math.Min(v.SteeringAngle+t.SteeringSpeed, t.MaxSteering)
	case in.SteerRight:
		v.SteeringAngle = math.Max(v.SteeringAngle-t.SteeringSpeed, -t.MaxSteering)
	default:
		v.SteeringAngle = approach(v.SteeringAngle, 0, t.SteeringReturn)
	}
}

func (v *Vehicle) throttle(in Input, t Tuning) {
	switch {
	case in.Brake:
		v.Speed = approach(v.Speed, 0, t.BrakeStrength)
	case in.Accelerate && v.Fuel > 0:
		v.Speed = approach(v.Speed, t.MaxSpeed, t.Acceleration)
	case in.Reverse && v.Fuel > 0:
		v.Speed = approach(v.Speed, t.MaxReverseSpeed, t.Acceleration)
	default:
		v.Speed = approach(v.Speed, 0, t.Friction)
	}
}

// move turns and integrates position, committing only walkable candidates
func (v *Vehicle) move(grid *tilemap.Grid, t Tuning) bool {
	v.Heading = normalizeDegrees(v.Heading + v.SteeringAngle*(v.Speed/t.MaxSpeed)*t.TurnFactor)

	candidate := v.Position.Add(forward(v.Heading, v.Speed))
	if grid == nil || !grid.IsWalkable(candidate.X, candidate.Y) {
		return false
	}
	v.Position = candidate
	return true
}

func (v *Vehicle) burnFuel(t Tuning) {
	if math.Abs(v.Speed) > t.MotionThreshold && v.Fuel > 0 {
		v.Fuel = math.Max(v.Fuel-t.FuelDrain, 0)
	}
}

// Parked reports whether the taxi counts as stopped for boarding and buying
func (v *Vehicle) Parked(t Tuning) bool {
	return v.HandbrakeEngaged && math.Abs(v.Speed) < t.StillSpeed
}

// Moving reports whether the taxi is burning fuel and food
func (v *Vehicle) Moving(t Tuning) bool {
	return math.Abs(v.Speed) > t.MotionThreshold
}

// forward returns the displacement for one tick at the given heading and speed
func forward(heading, speed float64) tilemap.Vec2 {
	rad := heading * math.Pi / 180
	return tilemap.Vec2{X: -math.Sin(rad) * speed, Y: -math.Cos(rad) * speed}
}
