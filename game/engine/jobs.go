package engine

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// Job is one fare between two pickup tiles
type Job struct {
	ID       string        `json:"id"`
	Pickup   tilemap.Point `json:"pickup"`
	Delivery tilemap.Point `json:"delivery"`
}

// Distance is the pixel distance between the centers of the two tiles
func (j Job) Distance(tileSize int) float64 {
	from := tilemap.TileCenterWorld(j.Pickup.X, j.Pickup.Y, tileSize)
	to := tilemap.TileCenterWorld(j.Delivery.X, j.Delivery.Y, tileSize)
	return from.DistanceTo(to)
}

// Fare is the whole-dollar payment for completing the job
func (j Job) Fare(tileSize int, t JobTuning) int {
	return int(math.Floor(t.BaseRate * j.Distance(tileSize) / t.DistanceUnit))
}

// JobController runs the fare lifecycle: none -> pickup -> dropoff -> none.
// Current is nil exactly when Phase is PhaseNone.
type JobController struct {
	Current       *Job  `json:"current,omitempty"`
	Phase         Phase `json:"phase"`
	AcceptingJobs bool  `json:"accepting_jobs"`
	Served        int   `json:"served"`
	Earned        int   `json:"earned"`
}

// NewJobController returns an idle controller
func NewJobController() JobController {
	return JobController{Phase: PhaseNone}
}

// Generate offers a new job between two distinct pickup tiles. A map with
// fewer than two pickup tiles leaves the controller idle without error.
func (c *JobController) Generate(grid *tilemap.Grid, rng *rand.Rand) []Event {
	stands := grid.TilesOfKind(tilemap.KindPickup)
	if len(stands) < 2 {
		c.Current = nil
		c.Phase = PhaseNone
		return []Event{{Type: EventNoJobs}}
	}

	i := rng.IntN(len(stands))
	j := rng.IntN(len(stands) - 1)
	if j >= i {
		j++
	}

	c.Current = &Job{
		ID:       uuid.NewString(),
		Pickup:   stands[i],
		Delivery: stands[j],
	}
	c.Phase = PhasePickup
	return []Event{{Type: EventJobOffered, Job: c.Current.clone()}}
}

// SetAccepting switches auto-dispatch. Going on duty with no job generates one.
func (c *JobController) SetAccepting(on bool, grid *tilemap.Grid, rng *rand.Rand) []Event {
	c.AcceptingJobs = on
	if !on {
		return []Event{{Type: EventJobsPaused}}
	}
	if c.Current == nil {
		return c.Generate(grid, rng)
	}
	return nil
}

// Tick checks arrival at the current target and settles completed fares
// into the economy.
func (c *JobController) Tick(v *Vehicle, grid *tilemap.Grid, econ *Economy, vt Tuning, jt JobTuning, rng *rand.Rand) []Event {
	if c.Current == nil || !v.Parked(vt) {
		return nil
	}

	switch c.Phase {
	case PhasePickup:
		if !c.arrived(v, c.Current.Pickup, grid, jt) {
			return nil
		}
		c.Phase = PhaseDropoff
		return []Event{{Type: EventPassengerBoarded, Job: c.Current.clone()}}

	case PhaseDropoff:
		if !c.arrived(v, c.Current.Delivery, grid, jt) {
			return nil
		}
		job := c.Current
		fare := job.Fare(grid.TileSize(), jt)
		econ.Credit(float64(fare))
		c.Served++
		c.Earned += fare
		c.Current = nil
		c.Phase = PhaseNone

		events := []Event{
			{Type: EventJobCompleted, Amount: float64(fare), Job: job},
			{Type: EventMoneyEarned, Amount: float64(fare)},
		}
		if c.AcceptingJobs {
			events = append(events, c.Generate(grid, rng)...)
		}
		return events
	}
	return nil
}

// Target returns the tile the taxi should head for, if any
func (c *JobController) Target() *tilemap.Point {
	if c.Current == nil {
		return nil
	}
	var p tilemap.Point
	switch c.Phase {
	case PhasePickup:
		p = c.Current.Pickup
	case PhaseDropoff:
		p = c.Current.Delivery
	default:
		return nil
	}
	return &p
}

func (c *JobController) arrived(v *Vehicle, tile tilemap.Point, grid *tilemap.Grid, jt JobTuning) bool {
	return v.Position.DistanceTo(grid.TileCenter(tile)) <= jt.ArrivalRadius
}

func (c JobController) clone() JobController {
	c.Current = c.Current.clone()
	return c
}

func (j *Job) clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	return &cp
}
