package tilemap

import (
	"fmt"
	"os"
)

// EmptyTile is the ID painted by Erase
const EmptyTile = 0

// Canvas is the mutable grid the editor paints on. It is never shared with a
// running game; the game loads its own Grid from the saved file.
type Canvas struct {
	cells [][]int
}

// NewCanvas creates a width x height canvas filled with EmptyTile
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", width, height)
	}
	cells := make([][]int, height)
	for y := range cells {
		cells[y] = make([]int, width)
	}
	return &Canvas{cells: cells}, nil
}

// LoadCanvas reads a map file into a canvas. A missing file is returned as
// a *MapLoadError wrapping os.ErrNotExist.
func LoadCanvas(path string) (*Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MapLoadError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, &MapLoadError{Path: path, Err: err}
	}
	return &Canvas{cells: rows}, nil
}

// Width returns the number of columns
func (c *Canvas) Width() int {
	if len(c.cells) == 0 {
		return 0
	}
	return len(c.cells[0])
}

// Height returns the number of rows
func (c *Canvas) Height() int { return len(c.cells) }

// Get returns the tile at (x, y)
func (c *Canvas) Get(x, y int) (int, bool) {
	if !c.inBounds(x, y) {
		return 0, false
	}
	return c.cells[y][x], true
}

// Paint sets tile (x, y) to id. Out-of-bounds clicks are ignored and
// reported as false, the way the editor ignores clicks off the map.
func (c *Canvas) Paint(x, y, id int) bool {
	if id < 0 || !c.inBounds(x, y) {
		return false
	}
	c.cells[y][x] = id
	return true
}

// Erase resets tile (x, y) to EmptyTile
func (c *Canvas) Erase(x, y int) bool {
	return c.Paint(x, y, EmptyTile)
}

// Fill paints the inclusive rectangle (x0,y0)-(x1,y1), clipped to the canvas,
// and returns the number of tiles changed.
func (c *Canvas) Fill(x0, y0, x1, y1, id int) int {
	if id < 0 {
		return 0
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}

	changed := 0
	for y := max(y0, 0); y <= min(y1, c.Height()-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.Width()-1); x++ {
			if c.cells[y][x] != id {
				c.cells[y][x] = id
				changed++
			}
		}
	}
	return changed
}

// Histogram counts tiles per ID
func (c *Canvas) Histogram() map[int]int {
	counts := make(map[int]int)
	for _, row := range c.cells {
		for _, id := range row {
			counts[id]++
		}
	}
	return counts
}

// Rows returns a copy of the painted tiles
func (c *Canvas) Rows() [][]int {
	rows := make([][]int, len(c.cells))
	for y, row := range c.cells {
		rows[y] = append([]int(nil), row...)
	}
	return rows
}

// Save writes the canvas in the map text format
func (c *Canvas) Save(path string) error {
	return SaveFile(path, c.cells)
}

// Grid classifies the canvas into an immutable Grid
func (c *Canvas) Grid(cls Classification) (*Grid, error) {
	return NewGrid(c.cells, cls)
}

func (c *Canvas) inBounds(x, y int) bool {
	return y >= 0 && y < len(c.cells) && x >= 0 && x < len(c.cells[y])
}
