package dungeongraph

import (
	"encoding/json"
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/voidshard/dungeongraph/internal/hull"
)

// DungeonID tags world tiles as belonging to a given dungeon.
type DungeonID uint16

const (
	// NoDungeonID marks tiles that belong to no dungeon at all
	NoDungeonID DungeonID = 65535
)

const (
	// EmptyMaterial is "no material" ie. air
	EmptyMaterial = "empty"

	// NoMod indicates a tile has no material mod
	NoMod = "none"

	// BiomeMod is replaced by the world with the biome's surface mod (grass etc)
	BiomeMod = "biome"
)

// biomeMaterials are placeholders the world resolves to the biome's own
// materials; the index is the surface "variant"
var biomeMaterials = []string{"biome", "biome1", "biome2", "biome3", "biome4", "biome5"}

// BiomeMaterial returns the placeholder material name for the given variant (0-5)
func BiomeMaterial(variant int) string {
	if variant < 0 || variant >= len(biomeMaterials) {
		variant = 0
	}
	return biomeMaterials[variant]
}

// IsBiomeMaterial returns if the material is a biome placeholder
func IsBiomeMaterial(name string) bool {
	for _, m := range biomeMaterials {
		if m == name {
			return true
		}
	}
	return false
}

// Material is a tile material with it's render tweaks
type Material struct {
	Name         string
	HueShift     uint8 `json:",omitempty"`
	ColorVariant uint8 `json:",omitempty"`
}

// Mod is a material modifier (grass, ore, moss ..)
type Mod struct {
	Name     string
	HueShift uint8 `json:",omitempty"`
}

// LiquidStore is the liquid held by a single tile
type LiquidStore struct {
	Liquid   string
	Level    float64
	Pressure float64
	Source   bool `json:",omitempty"`
}

// ItemDescriptor names an item to drop into the world
type ItemDescriptor struct {
	Name       string          `json:"name"`
	Count      int             `json:"count,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// ObjectPlacement is an object to place with the direction it faces
type ObjectPlacement struct {
	Name       string
	Direction  Direction
	Parameters json.RawMessage `json:",omitempty"`
}

// VehiclePlacement is a vehicle to spawn
type VehiclePlacement struct {
	Name       string
	Parameters json.RawMessage `json:",omitempty"`
}

// WorldGeometry describes the size of the world. Worlds wrap horizontally,
// a Width of 0 or less disables wrapping.
type WorldGeometry struct {
	Width  int
	Height int
}

// XWrap wraps the x co-ord of p into [0, Width)
func (g WorldGeometry) XWrap(p image.Point) image.Point {
	if g.Width <= 0 {
		return p
	}
	x := p.X % g.Width
	if x < 0 {
		x += g.Width
	}
	return image.Pt(x, p.Y)
}

// XWrapF wraps the x co-ord of p into [0, Width)
func (g WorldGeometry) XWrapF(p r2.Point) r2.Point {
	if g.Width <= 0 {
		return p
	}
	x := math.Mod(p.X, float64(g.Width))
	if x < 0 {
		x += float64(g.Width)
	}
	return r2.Point{X: x, Y: p.Y}
}

// Polygon is a closed convex region of the world, vertices in counter
// clockwise order.
type Polygon []r2.Point

// Contains returns if the point is inside (or on the edge of) the polygon
func (p Polygon) Contains(pt r2.Point) bool {
	return hull.Contains(p, pt)
}

// Bounds returns the tile rectangle covering the polygon
func (p Polygon) Bounds() image.Rectangle {
	return hull.Bounds(p)
}

// Result is what a successful generation placed.
type Result struct {
	// one bounding box per placed part, in placement order
	BoundingBoxes []image.Rectangle

	// every tile position a part painted (sorted by y then x)
	Modified []image.Point

	// parts in the order they were placed
	Parts []*PlacedPart

	Stats *DungeonStats
}

// PlacedPart records where a part was placed (bottom left tile of the part)
type PlacedPart struct {
	Name     string
	Position image.Point
}

// DungeonStats holds generic stats about a generated dungeon
type DungeonStats struct {
	// Count of the number of parts placed by part name
	PartsByName map[string]int
}

// newDungeonStats returns blank DungeonStats
func newDungeonStats() *DungeonStats {
	return &DungeonStats{PartsByName: map[string]int{}}
}

// increment PartsByName by 1
func (d *DungeonStats) increment(name string) {
	count, _ := d.PartsByName[name]
	d.PartsByName[name] = count + 1
}

// count returns number of parts placed with the given name
func (d *DungeonStats) count(name string) int {
	count, _ := d.PartsByName[name]
	return count
}

// sortPoints orders tile positions by y, then x
func sortPoints(in []image.Point) {
	sort.Slice(in, func(a, b int) bool {
		if in[a].Y != in[b].Y {
			return in[a].Y < in[b].Y
		}
		return in[a].X < in[b].X
	})
}
