package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
)

// keyboard reports held keys and fresh presses
type keyboard interface {
	Pressed(key ebiten.Key) bool
	JustPressed(key ebiten.Key) bool
}

type ebitenKeyboard struct{}

func (ebitenKeyboard) Pressed(key ebiten.Key) bool     { return ebiten.IsKeyPressed(key) }
func (ebitenKeyboard) JustPressed(key ebiten.Key) bool { return inpututil.IsKeyJustPressed(key) }

// readInput maps the keyboard onto one tick of controls. Handbrake and the
// jobs toggle are presses; everything else is held.
func readInput(kb keyboard) engine.Input {
	return engine.Input{
		Accelerate: kb.Pressed(ebiten.KeyW) || kb.Pressed(ebiten.KeyArrowUp),
		Reverse:    kb.Pressed(ebiten.KeyS) || kb.Pressed(ebiten.KeyArrowDown),
		Brake:      kb.Pressed(ebiten.KeyX),
		SteerLeft:  kb.Pressed(ebiten.KeyA) || kb.Pressed(ebiten.KeyArrowLeft),
		SteerRight: kb.Pressed(ebiten.KeyD) || kb.Pressed(ebiten.KeyArrowRight),
		Handbrake:  kb.JustPressed(ebiten.KeySpace),
		Interact:   kb.Pressed(ebiten.KeyE),
		ToggleJobs: kb.JustPressed(ebiten.KeyJ),
	}
}

// Game is the ebiten front end over a Source
type Game struct {
	source Source
	keys   keyboard
	snap   engine.Snapshot
	status string
}

// NewGame wraps a source for ebiten
func NewGame(source Source, keys keyboard) *Game {
	return &Game{source: source, keys: keys}
}

// Update advances one frame
func (g *Game) Update() error {
	if g.keys.JustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.keys.JustPressed(ebiten.KeyR) {
		g.status = ""
		if err := g.source.Reset(); err != nil {
			g.status = "Reset failed: " + err.Error()
		}
	}

	g.snap = g.source.Update(readInput(g.keys))
	return nil
}

// Draw renders the map, the taxi and the dashboard
func (g *Game) Draw(screen *ebiten.Image) {
	initDrawing()

	grid := g.source.Grid()
	drawMap(screen, grid)
	drawTarget(screen, grid, g.snap.Target)
	drawTaxi(screen, g.snap)

	w, h := g.mapSize()
	drawHUD(screen, float64(h), float64(w), g.source.Title(), g.status, g.snap)
}

// Layout keeps the logical screen the size of the map plus the dashboard
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.mapSize()
	return w, h + hudHeight
}

func (g *Game) mapSize() (int, int) {
	grid := g.source.Grid()
	return grid.Width() * grid.TileSize(), grid.Height() * grid.TileSize()
}
