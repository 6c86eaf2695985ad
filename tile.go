package dungeongraph

import (
	"image"
)

// TileConnector marks a tile as a connector. A Direction of Unknown means
// the direction is inferred when the part is built.
type TileConnector struct {
	Value       string
	Direction   Direction
	ForwardOnly bool
}

// Tile is a single cell of a part
type Tile struct {
	Brushes   []*Brush
	Rules     []*Rule
	Connector *TileConnector
}

// CanPlace returns if the tile may be placed at pos: no other dungeon owns
// the position & every rule passes.
func (t *Tile) CanPlace(pos image.Point, w *Writer) bool {
	if w.OtherDungeonPresent(pos) {
		return false
	}
	for _, r := range t.Rules {
		if !r.CheckTileCanPlace(pos, w) {
			return false
		}
	}
	return true
}

// Place paints every brush of the tile for the given phase
func (t *Tile) Place(pos image.Point, phase Phase, w *Writer) {
	for i, b := range t.Brushes {
		b.paint(pos, phase, w, uint64(i))
	}
}

// UsesPlaces returns if the tile claims its position, stopping later parts
// from placing over it.
func (t *Tile) UsesPlaces() bool {
	if len(t.Brushes) == 0 {
		return false
	}
	for _, r := range t.Rules {
		if r.Overdrawable() {
			return false
		}
	}
	return true
}

// ModifiesPlaces returns if the tile paints anything
func (t *Tile) ModifiesPlaces() bool {
	return len(t.Brushes) > 0
}

// CollidesWithPlaces returns if the tile cannot sit on a position claimed by another part
func (t *Tile) CollidesWithPlaces() bool {
	return t.UsesPlaces()
}

// RequiresOpen returns if any rule needs the tile to be in open air
func (t *Tile) RequiresOpen() bool {
	for _, r := range t.Rules {
		if r.RequiresOpen() {
			return true
		}
	}
	return false
}

// RequiresSolid returns if any rule needs the tile to be in solid ground
func (t *Tile) RequiresSolid() bool {
	for _, r := range t.Rules {
		if r.RequiresSolid() {
			return true
		}
	}
	return false
}

// RequiresLiquid returns if any rule needs the tile to be in liquid
func (t *Tile) RequiresLiquid() bool {
	for _, r := range t.Rules {
		if r.RequiresLiquid() {
			return true
		}
	}
	return false
}
