package dungeongraph

import (
	"image"
)

// TileGrid is a PartReader over an in memory grid of tiles, useful for
// parts built in code.
type TileGrid struct {
	size  image.Point
	tiles []*Tile
}

// NewTileGrid returns an empty grid of the given size
func NewTileGrid(width, height int) *TileGrid {
	return &TileGrid{
		size:  image.Pt(width, height),
		tiles: make([]*Tile, width*height),
	}
}

// Set the tile at x,y (y grows upward). Out of bounds positions are ignored.
func (g *TileGrid) Set(x, y int, t *Tile) {
	if !g.inBounds(x, y) {
		return
	}
	g.tiles[y*g.size.X+x] = t
}

// Fill sets every tile in the rectangle r
func (g *TileGrid) Fill(r image.Rectangle, t *Tile) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.Set(x, y, t)
		}
	}
}

// Size of the grid
func (g *TileGrid) Size() image.Point {
	return g.size
}

// ForEachTile calls fn for every set tile, bottom row first
func (g *TileGrid) ForEachTile(fn func(pos image.Point, t *Tile) bool) {
	for y := 0; y < g.size.Y; y++ {
		for x := 0; x < g.size.X; x++ {
			t := g.tiles[y*g.size.X+x]
			if t == nil {
				continue
			}
			if fn(image.Pt(x, y), t) {
				return
			}
		}
	}
}

// ForEachTileAt calls fn with the tile at pos, if one is set
func (g *TileGrid) ForEachTileAt(pos image.Point, fn func(t *Tile) bool) {
	if !g.inBounds(pos.X, pos.Y) {
		return
	}
	t := g.tiles[pos.Y*g.size.X+pos.X]
	if t != nil {
		fn(t)
	}
}

// inBounds returns if x,y lies within the grid
func (g *TileGrid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.size.X && y < g.size.Y
}
