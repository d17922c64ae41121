package tilemap

import (
	"fmt"
	"math"
)

// DefaultTileSize is the tile edge length in world pixels used when a
// Classification leaves TileSize unset.
const DefaultTileSize = 64

// Kind tags special tiles
type Kind string

const (
	KindNone     Kind = ""
	KindPickup   Kind = "pickup"
	KindFuelPump Kind = "fuel_pump"
	KindFood     Kind = "food"
	KindService  Kind = "service"
)

// Point is a tile coordinate (column, row)
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec2 is a continuous world coordinate in pixels
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// DistanceTo returns the Euclidean distance between v and o
func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Classification is the gameplay meaning of tile IDs. It lives in the game
// configuration, never in the map file.
type Classification struct {
	TileSize int   `json:"tile_size"`
	Walkable []int `json:"walkable"`
	Pickup   []int `json:"pickup"`
	FuelPump []int `json:"fuel_pump"`
	Food     []int `json:"food"`
	Service  []int `json:"service"`
}

// Validate checks that no tile ID is claimed by two special kinds
func (c Classification) Validate() error {
	if c.TileSize < 0 {
		return fmt.Errorf("tile_size must not be negative, got %d", c.TileSize)
	}

	owner := make(map[int]Kind)
	for _, group := range c.kindGroups() {
		for _, id := range group.ids {
			if id < 0 {
				return fmt.Errorf("%s tile id must not be negative, got %d", group.kind, id)
			}
			if prev, ok := owner[id]; ok && prev != group.kind {
				return fmt.Errorf("tile id %d is both %s and %s", id, prev, group.kind)
			}
			owner[id] = group.kind
		}
	}
	for _, id := range c.Walkable {
		if id < 0 {
			return fmt.Errorf("walkable tile id must not be negative, got %d", id)
		}
	}
	return nil
}

type kindGroup struct {
	kind Kind
	ids  []int
}

func (c Classification) kindGroups() []kindGroup {
	return []kindGroup{
		{KindPickup, c.Pickup},
		{KindFuelPump, c.FuelPump},
		{KindFood, c.Food},
		{KindService, c.Service},
	}
}

// Grid is an immutable, rectangular tile map together with its classification
type Grid struct {
	width    int
	height   int
	tileSize int
	cells    [][]int
	walkable map[int]bool
	kinds    map[int]Kind
}

// NewGrid builds a Grid from rows of tile IDs. The rows are copied.
func NewGrid(rows [][]int, cls Classification) (*Grid, error) {
	if len(rows) == 0 {
		return nil, emptyMapError()
	}
	if err := cls.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classification: %w", err)
	}

	width := len(rows[0])
	cells := make([][]int, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, &MalformedMapError{
				Row:    y + 1,
				Reason: fmt.Sprintf("expected %d columns, got %d", width, len(row)),
			}
		}
		for x, id := range row {
			if id < 0 {
				return nil, &MalformedMapError{Row: y + 1, Column: x + 1, Reason: fmt.Sprintf("negative tile id %d", id)}
			}
		}
		cells[y] = append([]int(nil), row...)
	}
	if width == 0 {
		return nil, &MalformedMapError{Row: 1, Reason: "row has no columns"}
	}

	tileSize := cls.TileSize
	if tileSize == 0 {
		tileSize = DefaultTileSize
	}

	g := &Grid{
		width:    width,
		height:   len(cells),
		tileSize: tileSize,
		cells:    cells,
		walkable: make(map[int]bool, len(cls.Walkable)),
		kinds:    make(map[int]Kind),
	}
	for _, id := range cls.Walkable {
		g.walkable[id] = true
	}
	for _, group := range cls.kindGroups() {
		for _, id := range group.ids {
			g.kinds[id] = group.kind
		}
	}
	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// TileSize returns the tile edge length in world pixels
func (g *Grid) TileSize() int { return g.tileSize }

// InBounds reports whether (tx, ty) is a tile of the grid
func (g *Grid) InBounds(tx, ty int) bool {
	return tx >= 0 && ty >= 0 && tx < g.width && ty < g.height
}

// TileID returns the tile ID at (tx, ty), or false when out of bounds
func (g *Grid) TileID(tx, ty int) (int, bool) {
	if !g.InBounds(tx, ty) {
		return 0, false
	}
	return g.cells[ty][tx], true
}

// WorldToTile converts a world coordinate to the tile containing it
func (g *Grid) WorldToTile(x, y float64) (int, int) {
	size := float64(g.tileSize)
	return int(math.Floor(x / size)), int(math.Floor(y / size))
}

// IsWalkable reports whether a vehicle may occupy the world point (x, y).
// Points outside the map are never walkable.
func (g *Grid) IsWalkable(x, y float64) bool {
	tx, ty := g.WorldToTile(x, y)
	id, ok := g.TileID(tx, ty)
	if !ok {
		return false
	}
	return g.walkable[id]
}

// IsWalkableTile reports whether the tile (tx, ty) is walkable
func (g *Grid) IsWalkableTile(tx, ty int) bool {
	id, ok := g.TileID(tx, ty)
	return ok && g.walkable[id]
}

// KindAt returns the special kind of tile (tx, ty). The second result is
// false for ordinary and out-of-bounds tiles.
func (g *Grid) KindAt(tx, ty int) (Kind, bool) {
	id, ok := g.TileID(tx, ty)
	if !ok {
		return KindNone, false
	}
	kind, ok := g.kinds[id]
	return kind, ok
}

// KindAtWorld is KindAt for a world coordinate
func (g *Grid) KindAtWorld(x, y float64) (Kind, bool) {
	tx, ty := g.WorldToTile(x, y)
	return g.KindAt(tx, ty)
}

// TilesOfKind lists every tile of the given kind in row-major order
func (g *Grid) TilesOfKind(kind Kind) []Point {
	var points []Point
	for y, row := range g.cells {
		for x, id := range row {
			if k, ok := g.kinds[id]; ok && k == kind {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// CountKind returns the number of tiles of the given kind
func (g *Grid) CountKind(kind Kind) int {
	return len(g.TilesOfKind(kind))
}

// TileCenter returns the world coordinate of the center of tile p
func (g *Grid) TileCenter(p Point) Vec2 {
	return TileCenterWorld(p.X, p.Y, g.tileSize)
}

// Rows returns a copy of the tile IDs
func (g *Grid) Rows() [][]int {
	rows := make([][]int, len(g.cells))
	for y, row := range g.cells {
		rows[y] = append([]int(nil), row...)
	}
	return rows
}

// TileCenterWorld is the canonical tile-to-world conversion used for
// distances and arrival checks: index * size + size/2 on both axes.
func TileCenterWorld(tx, ty, tileSize int) Vec2 {
	half := tileSize / 2
	return Vec2{
		X: float64(tx*tileSize + half),
		Y: float64(ty*tileSize + half),
	}
}
