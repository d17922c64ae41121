package main

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

const (
	hudHeight  = 120
	lineHeight = 18
	carLength  = 40
	carWidth   = 24
)

var (
	colorGrass    = color.RGBA{70, 140, 60, 255}
	colorRoad     = color.RGBA{90, 90, 95, 255}
	colorBuilding = color.RGBA{120, 85, 60, 255}
	colorStand    = color.RGBA{240, 200, 40, 255}
	colorPump     = color.RGBA{210, 50, 50, 255}
	colorDiner    = color.RGBA{240, 140, 40, 255}
	colorGarage   = color.RGBA{60, 110, 200, 255}
	colorTarget   = color.RGBA{255, 255, 255, 90}
	colorTaxi     = color.RGBA{255, 215, 0, 255}
	colorBrake    = color.RGBA{255, 30, 30, 255}
	colorHUD      = color.RGBA{25, 25, 35, 255}
	colorText     = color.RGBA{220, 220, 220, 255}
	colorWarning  = color.RGBA{255, 90, 90, 255}
	colorGaugeBg  = color.RGBA{60, 60, 70, 255}
)

var (
	pixelOnce sync.Once
	pixel     *ebiten.Image
	face      text.Face
)

func initDrawing() {
	pixelOnce.Do(func() {
		pixel = ebiten.NewImage(1, 1)
		pixel.Fill(color.White)
		face = text.NewGoXFace(bitmapfont.Face)
	})
}

// tileColor picks the fill of a tile from its kind, falling back to grass
// for empty ground and building colour for anything else blocked
func tileColor(id int, kind tilemap.Kind, walkable bool) color.RGBA {
	switch kind {
	case tilemap.KindPickup:
		return colorStand
	case tilemap.KindFuelPump:
		return colorPump
	case tilemap.KindFood:
		return colorDiner
	case tilemap.KindService:
		return colorGarage
	}
	if walkable {
		return colorRoad
	}
	if id == tilemap.EmptyTile {
		return colorGrass
	}
	return colorBuilding
}

func fillRect(dst *ebiten.Image, x, y, w, h float64, clr color.Color) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	dst.DrawImage(pixel, op)
}

func drawText(dst *ebiten.Image, str string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, str, face, op)
}

func drawMap(dst *ebiten.Image, grid *tilemap.Grid) {
	size := float64(grid.TileSize())
	for ty, row := range grid.Rows() {
		for tx, id := range row {
			kind, _ := grid.KindAt(tx, ty)
			clr := tileColor(id, kind, grid.IsWalkableTile(tx, ty))
			fillRect(dst, float64(tx)*size, float64(ty)*size, size-1, size-1, clr)
		}
	}
}

func drawTarget(dst *ebiten.Image, grid *tilemap.Grid, target *tilemap.Point) {
	if target == nil {
		return
	}
	size := float64(grid.TileSize())
	fillRect(dst, float64(target.X)*size, float64(target.Y)*size, size, size, colorTarget)
}

// drawTaxi draws the car body centred on its position. Heading 0 faces up
// the screen and grows counter-clockwise.
func drawTaxi(dst *ebiten.Image, snap engine.Snapshot) {
	rad := -snap.Heading * math.Pi / 180

	body := &ebiten.DrawImageOptions{}
	body.GeoM.Scale(carWidth, carLength)
	body.GeoM.Translate(-carWidth/2, -carLength/2)
	body.GeoM.Rotate(rad)
	body.GeoM.Translate(snap.Position.X, snap.Position.Y)
	body.ColorScale.ScaleWithColor(colorTaxi)
	dst.DrawImage(pixel, body)

	if !snap.Braking {
		return
	}
	lights := &ebiten.DrawImageOptions{}
	lights.GeoM.Scale(carWidth, 5)
	lights.GeoM.Translate(-carWidth/2, carLength/2-5)
	lights.GeoM.Rotate(rad)
	lights.GeoM.Translate(snap.Position.X, snap.Position.Y)
	lights.ColorScale.ScaleWithColor(colorBrake)
	dst.DrawImage(pixel, lights)
}

func drawGauge(dst *ebiten.Image, label string, x, y, w, fraction float64, clr color.Color) {
	drawText(dst, label, x, y, colorText)
	fraction = math.Max(0, math.Min(fraction, 1))
	fillRect(dst, x+64, y+3, w, 10, colorGaugeBg)
	fillRect(dst, x+64, y+3, w*fraction, 10, clr)
}

func drawHUD(dst *ebiten.Image, top, width float64, title, status string, snap engine.Snapshot) {
	fillRect(dst, 0, top, width, hudHeight, colorHUD)

	y := top + 6
	for _, line := range hudLines(title, snap) {
		drawText(dst, line, 8, y, colorText)
		y += lineHeight
	}
	if status != "" {
		drawText(dst, status, 8, y, colorWarning)
	}

	gx := width - 240
	drawGauge(dst, "Fuel", gx, top+6, 160, snap.FuelFraction, colorPump)
	hunger := 0.0
	if snap.MaxHunger > 0 {
		hunger = snap.Hunger / snap.MaxHunger
	}
	drawGauge(dst, "Food", gx, top+6+lineHeight, 160, hunger, colorDiner)
	drawGauge(dst, "Speed", gx, top+6+2*lineHeight, 160, snap.SpeedGauge/engine.SpeedGaugeMax, colorStand)
}

// hudLines renders the dashboard text for a snapshot
func hudLines(title string, snap engine.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("%s  tick %d  $%.2f  served %d", title, snap.Tick, snap.Money, snap.Served),
		fmt.Sprintf("fuel %.1f/%.0f  food %.1f/%.0f  speed %.0f", snap.Fuel, snap.MaxFuel, snap.Hunger, snap.MaxHunger, snap.SpeedGauge),
		jobLine(snap),
	}

	switch {
	case snap.Starved:
		lines = append(lines, "STARVED. Press R to start a new shift.")
	case snap.Stranded:
		lines = append(lines, "Out of fuel. Coast to a pump or press R.")
	case snap.Message != "":
		lines = append(lines, snap.Message)
	}

	return append(lines, "W/S drive  A/D steer  X brake  SPACE handbrake  E buy  J jobs  R reset  ESC quit")
}

func jobLine(snap engine.Snapshot) string {
	switch {
	case snap.Job != nil && snap.Phase == engine.PhasePickup:
		return fmt.Sprintf("Pick up at (%d,%d), deliver to (%d,%d)",
			snap.Job.Pickup.X, snap.Job.Pickup.Y, snap.Job.Delivery.X, snap.Job.Delivery.Y)
	case snap.Job != nil && snap.Phase == engine.PhaseDropoff:
		return fmt.Sprintf("Passenger on board, deliver to (%d,%d)", snap.Job.Delivery.X, snap.Job.Delivery.Y)
	case !snap.AcceptingJobs:
		return "Off duty. Press J to take fares."
	}
	return "Waiting for a fare"
}
