// Command mapedit edits Ruber Taxi map files from the terminal.
//
// Usage:
//
//	mapedit new --width 20 --height 14 --tile 2 maps/city.txt
//	mapedit paint maps/city.txt 3 4 1
//	mapedit erase maps/city.txt 3 4
//	mapedit fill maps/city.txt 1 1 18 1 1
//	mapedit show maps/city.txt
//	mapedit stats maps/city.txt
//
// Maps are saved in the plain text map format read by the game. Tile IDs mean
// nothing to the editor; show and stats classify them with the bundled tile
// table (0 grass, 1 road, 2 building, 3 stand, 4 pump, 5 diner, 6 garage).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mapedit: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "mapedit",
		Usage:     "paint tile IDs onto Ruber Taxi map files",
		ArgsUsage: "<command> <map file> [args]",
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "create a blank map",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Value: 20, Usage: "columns"},
					&cli.IntFlag{Name: "height", Value: 14, Usage: "rows"},
					&cli.IntFlag{Name: "tile", Value: tilemap.EmptyTile, Usage: "tile ID to fill with"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: runNew,
			},
			{
				Name:      "paint",
				Usage:     "set one tile",
				ArgsUsage: "<file> <x> <y> <id>",
				Action:    runPaint,
			},
			{
				Name:      "erase",
				Usage:     "reset one tile to the empty tile",
				ArgsUsage: "<file> <x> <y>",
				Action:    runErase,
			},
			{
				Name:      "fill",
				Usage:     "paint a rectangle, corners inclusive",
				ArgsUsage: "<file> <x0> <y0> <x1> <y1> <id>",
				Action:    runFill,
			},
			{
				Name:      "show",
				Usage:     "print the map",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ids", Usage: "print raw tile IDs instead of glyphs"},
				},
				Action: runShow,
			},
			{
				Name:      "stats",
				Usage:     "count tiles per ID and kind",
				ArgsUsage: "<file>",
				Action:    runStats,
			},
		},
	}
}

var errUsage = errors.New("wrong number of arguments")

// intArgs parses the positional arguments after the file name
func intArgs(cmd *cli.Command, want int) (string, []int, error) {
	args := cmd.Args().Slice()
	if len(args) != want+1 {
		return "", nil, fmt.Errorf("%w: %s %s", errUsage, cmd.Name, cmd.ArgsUsage)
	}

	values := make([]int, want)
	for i, raw := range args[1:] {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return "", nil, fmt.Errorf("argument %d: %q is not an integer", i+2, raw)
		}
		values[i] = v
	}
	return args[0], values, nil
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	path, _, err := intArgs(cmd, 0)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	canvas, err := tilemap.NewCanvas(int(cmd.Int("width")), int(cmd.Int("height")))
	if err != nil {
		return err
	}
	tile := int(cmd.Int("tile"))
	if tile != tilemap.EmptyTile {
		canvas.Fill(0, 0, canvas.Width()-1, canvas.Height()-1, tile)
	}
	if err := canvas.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Created %s (%dx%d)\n", path, canvas.Width(), canvas.Height())
	return nil
}

// edit loads the canvas, applies fn and saves it when fn changed something
func edit(cmd *cli.Command, path string, fn func(c *tilemap.Canvas) (int, error)) error {
	canvas, err := tilemap.LoadCanvas(path)
	if err != nil {
		return err
	}

	changed, err := fn(canvas)
	if err != nil {
		return err
	}
	if changed > 0 {
		if err := canvas.Save(path); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.Root().Writer, "%d tile(s) changed\n", changed)
	return nil
}

func runPaint(ctx context.Context, cmd *cli.Command) error {
	path, v, err := intArgs(cmd, 3)
	if err != nil {
		return err
	}
	return edit(cmd, path, func(c *tilemap.Canvas) (int, error) {
		return paintOne(c, v[0], v[1], v[2])
	})
}

func runErase(ctx context.Context, cmd *cli.Command) error {
	path, v, err := intArgs(cmd, 2)
	if err != nil {
		return err
	}
	return edit(cmd, path, func(c *tilemap.Canvas) (int, error) {
		return paintOne(c, v[0], v[1], tilemap.EmptyTile)
	})
}

func paintOne(c *tilemap.Canvas, x, y, id int) (int, error) {
	if id < 0 {
		return 0, fmt.Errorf("tile id must not be negative, got %d", id)
	}
	before, ok := c.Get(x, y)
	if !ok {
		return 0, fmt.Errorf("tile (%d,%d) is outside the %dx%d map", x, y, c.Width(), c.Height())
	}
	if before == id {
		return 0, nil
	}
	c.Paint(x, y, id)
	return 1, nil
}

func runFill(ctx context.Context, cmd *cli.Command) error {
	path, v, err := intArgs(cmd, 5)
	if err != nil {
		return err
	}
	if v[4] < 0 {
		return fmt.Errorf("tile id must not be negative, got %d", v[4])
	}
	return edit(cmd, path, func(c *tilemap.Canvas) (int, error) {
		return c.Fill(v[0], v[1], v[2], v[3], v[4]), nil
	})
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	path, _, err := intArgs(cmd, 0)
	if err != nil {
		return err
	}
	canvas, err := tilemap.LoadCanvas(path)
	if err != nil {
		return err
	}

	if cmd.Bool("ids") {
		return tilemap.Format(cmd.Root().Writer, canvas.Rows())
	}
	render(cmd.Root().Writer, canvas, engine.DefaultClassification())
	return nil
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	path, _, err := intArgs(cmd, 0)
	if err != nil {
		return err
	}
	canvas, err := tilemap.LoadCanvas(path)
	if err != nil {
		return err
	}
	stats(cmd.Root().Writer, canvas, engine.DefaultClassification())
	return nil
}

// glyph is the one-character rendering of a tile ID
func glyph(id int, cls tilemap.Classification) byte {
	switch {
	case contains(cls.Pickup, id):
		return 'T'
	case contains(cls.FuelPump, id):
		return 'F'
	case contains(cls.Food, id):
		return 'D'
	case contains(cls.Service, id):
		return 'G'
	case contains(cls.Walkable, id):
		return '='
	case id == tilemap.EmptyTile:
		return '.'
	}
	return '#'
}

func render(w io.Writer, c *tilemap.Canvas, cls tilemap.Classification) {
	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < c.Width(); x++ {
		b.WriteByte('0' + byte(x%10))
	}
	b.WriteByte('\n')

	for y, row := range c.Rows() {
		fmt.Fprintf(&b, "%2d ", y)
		for _, id := range row {
			b.WriteByte(glyph(id, cls))
		}
		b.WriteByte('\n')
	}
	b.WriteString("T stand  F pump  D diner  G garage  = road  . empty  # blocked\n")
	io.WriteString(w, b.String())
}

func stats(w io.Writer, c *tilemap.Canvas, cls tilemap.Classification) {
	fmt.Fprintf(w, "Size: %dx%d (%d tiles)\n", c.Width(), c.Height(), c.Width()*c.Height())

	hist := c.Histogram()
	ids := make([]int, 0, len(hist))
	for id := range hist {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %3d %c %d\n", id, glyph(id, cls), hist[id])
	}

	grid, err := c.Grid(cls)
	if err != nil {
		fmt.Fprintf(w, "Not playable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Stands: %d, Pumps: %d, Diners: %d, Garages: %d\n",
		grid.CountKind(tilemap.KindPickup), grid.CountKind(tilemap.KindFuelPump),
		grid.CountKind(tilemap.KindFood), grid.CountKind(tilemap.KindService))
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
