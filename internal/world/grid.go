package world

import (
	"github.com/udisondev/overworld/internal/model"
)

// Tile is a single map cell.
type Tile struct {
	Category model.Category
	Passable bool
}

// Common tiles.
var (
	TileGround = Tile{Category: model.CategoryOther, Passable: true}
	TileGrass  = Tile{Category: model.CategoryGrass, Passable: true}
	TileWater  = Tile{Category: model.CategoryWater, Passable: false}
	TileCave   = Tile{Category: model.CategoryCave, Passable: true}
	TileRock   = Tile{Category: model.CategoryRock, Passable: false}
	TileWall   = Tile{Category: model.CategoryOther, Passable: false}
)

// GridMap is a rectangular tile map. Row-major storage.
type GridMap struct {
	ID     model.MapID
	Name   string
	Width  int32
	Height int32
	tiles  []Tile
}

// NewGridMap creates a map filled with fill.
func NewGridMap(id model.MapID, width, height int32, fill Tile) *GridMap {
	tiles := make([]Tile, int(width)*int(height))
	for i := range tiles {
		tiles[i] = fill
	}
	return &GridMap{ID: id, Width: width, Height: height, tiles: tiles}
}

// InBounds reports whether pos lies on the map.
func (m *GridMap) InBounds(pos model.Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < m.Width && pos.Y < m.Height
}

// At returns the tile at pos.
func (m *GridMap) At(pos model.Position) (Tile, bool) {
	if !m.InBounds(pos) {
		return Tile{}, false
	}
	return m.tiles[int(pos.Y)*int(m.Width)+int(pos.X)], true
}

// Set replaces the tile at pos. Out-of-bounds writes are ignored.
func (m *GridMap) Set(pos model.Position, t Tile) {
	if !m.InBounds(pos) {
		return
	}
	m.tiles[int(pos.Y)*int(m.Width)+int(pos.X)] = t
}

// Fill sets every tile of the rectangle [x0,x1]x[y0,y1].
func (m *GridMap) Fill(x0, y0, x1, y1 int32, t Tile) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			m.Set(model.NewPosition(x, y), t)
		}
	}
}

// Count returns the number of tiles of category cat.
func (m *GridMap) Count(cat model.Category) int {
	n := 0
	for _, t := range m.tiles {
		if t.Category == cat {
			n++
		}
	}
	return n
}
