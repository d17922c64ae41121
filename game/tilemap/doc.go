// Package tilemap provides the tile grid the taxi drives on.
//
// The tilemap package implements:
//   - Parsing and formatting of the plain-text map format
//   - Walkability queries in world (pixel) coordinates
//   - Special tile lookups (pickup, fuel pump, food, service)
//   - A mutable Canvas used by the map editor
//
// Map Format:
//
// A map file holds one row per line, each row a comma-separated list of
// non-negative tile IDs with no trailing delimiter. All rows must have the
// same number of columns. Tile 0 is the empty tile.
//
//	0,0,0,0
//	0,12,12,0
//	0,12,40,0
//
// Which IDs are walkable or special is not stored in the file. It is supplied
// by the game configuration as a Classification.
//
// Usage:
//
//	grid, err := tilemap.LoadFile("configs/maps/downtown.txt", cls)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if grid.IsWalkable(car.X, car.Y) {
//		// commit the move
//	}
//
// A Grid is never mutated after loading, so it may be read from several
// goroutines at once.
package tilemap
