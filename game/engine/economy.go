package engine

import (
	"math"

	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

// RefuelSession accumulates one continuous stay at the pump
type RefuelSession struct {
	FuelAdded float64 `json:"fuel_added"`
	Cost      float64 `json:"cost"`
	Ticks     int     `json:"ticks"`
}

// Economy is the wallet and the driver's hunger
type Economy struct {
	Money  float64        `json:"money"`
	Hunger float64        `json:"hunger"`
	Refuel *RefuelSession `json:"refuel,omitempty"`
}

// NewEconomy returns a wallet with the starting balance and a full stomach
func NewEconomy(money float64, t EconomyTuning) Economy {
	return Economy{Money: money, Hunger: t.StartingHunger}
}

// Credit adds earnings to the wallet
func (e *Economy) Credit(amount float64) {
	e.Money += amount
}

// TickDepletion drains hunger while the taxi is moving
func (e *Economy) TickDepletion(v *Vehicle, vt Tuning, et EconomyTuning) {
	if !v.Moving(vt) {
		return
	}
	e.Hunger = clamp(e.Hunger-et.HungerDrain(vt), 0, et.MaxHunger)
}

// TryRefuel meters fuel into a parked taxi on a pump tile while Interact is
// held. Fuel and money move every tick; a single fuel_purchased event is
// emitted when the session closes.
func (e *Economy) TryRefuel(grid *tilemap.Grid, v *Vehicle, phase Phase, in Input, vt Tuning, et EconomyTuning) []Event {
	if !in.Interact || phase == PhaseDropoff || !v.Parked(vt) || !onKind(grid, v, tilemap.KindFuelPump) {
		return e.closeRefuel()
	}
	if e.Money < et.MinRefuelCost {
		return e.closeRefuel()
	}

	needed := vt.MaxFuel - v.Fuel
	affordable := e.Money * et.FuelPerDollar
	fuel := math.Min(et.RefuelStep, math.Min(needed, affordable))
	if fuel <= 0 {
		return e.closeRefuel()
	}

	cost := fuel / et.FuelPerDollar
	if cost > e.Money {
		return e.closeRefuel()
	}

	v.Fuel = math.Min(v.Fuel+fuel, vt.MaxFuel)
	e.Money = math.Max(e.Money-cost, 0)

	if e.Refuel == nil {
		e.Refuel = &RefuelSession{}
	}
	e.Refuel.FuelAdded += fuel
	e.Refuel.Cost += cost
	e.Refuel.Ticks++

	if v.Fuel >= vt.MaxFuel || e.Money <= 0 || e.Money < et.MinRefuelCost {
		return e.closeRefuel()
	}
	return nil
}

// closeRefuel flushes an open session into its aggregated event
func (e *Economy) closeRefuel() []Event {
	session := e.Refuel
	e.Refuel = nil
	if session == nil || session.FuelAdded <= 0 {
		return nil
	}
	return []Event{{Type: EventFuelPurchased, Amount: session.FuelAdded, Cost: session.Cost}}
}

// TryEat restores hunger in one go at a food tile
func (e *Economy) TryEat(grid *tilemap.Grid, v *Vehicle, phase Phase, in Input, vt Tuning, et EconomyTuning) []Event {
	if !in.Interact || phase == PhaseDropoff || !v.Parked(vt) {
		return nil
	}
	if e.Money < et.FoodPrice || e.Hunger >= et.MaxHunger {
		return nil
	}
	if !onKind(grid, v, tilemap.KindFood) {
		return nil
	}

	e.Hunger = et.MaxHunger
	e.Money -= et.FoodPrice
	return []Event{{Type: EventFoodPurchased, Cost: et.FoodPrice}}
}

func (e Economy) clone() Economy {
	if e.Refuel != nil {
		r := *e.Refuel
		e.Refuel = &r
	}
	return e
}

func onKind(grid *tilemap.Grid, v *Vehicle, kind tilemap.Kind) bool {
	k, ok := grid.KindAtWorld(v.Position.X, v.Position.Y)
	return ok && k == kind
}
