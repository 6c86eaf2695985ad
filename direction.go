package dungeongraph

import (
	"fmt"
	"image"
	"strings"
)

// Direction is the side of a part a Connector faces.
type Direction int

const (
	Any Direction = iota
	Left
	Right
	Up
	Down
	Unknown
)

var (
	directionNames = map[Direction]string{
		Any:     "any",
		Left:    "left",
		Right:   "right",
		Up:      "up",
		Down:    "down",
		Unknown: "unknown",
	}

	invDirectionNames = map[string]Direction{}
)

func init() {
	for k, v := range directionNames {
		invDirectionNames[v] = k
	}
}

// ParseDirection returns the Direction for the given name, Unknown if the
// name isn't recognised.
func ParseDirection(name string) Direction {
	d, ok := invDirectionNames[strings.ToLower(name)]
	if !ok {
		return Unknown
	}
	return d
}

// String returns the lower case name of the direction
func (d Direction) String() string {
	name, ok := directionNames[d]
	if !ok {
		return "unknown"
	}
	return name
}

// Offset returns a unit vector pointing in this direction (y grows upward).
// Any & Unknown have no offset.
func (d Direction) Offset() image.Point {
	switch d {
	case Left:
		return image.Pt(-1, 0)
	case Right:
		return image.Pt(1, 0)
	case Up:
		return image.Pt(0, 1)
	case Down:
		return image.Pt(0, -1)
	}
	return image.Point{}
}

// FlipDirection returns the opposite direction.
// Flipping Unknown is an error.
func FlipDirection(d Direction) (Direction, error) {
	switch d {
	case Any:
		return Any, nil
	case Left:
		return Right, nil
	case Right:
		return Left, nil
	case Up:
		return Down, nil
	case Down:
		return Up, nil
	}
	return Unknown, fmt.Errorf("cannot flip direction %s", d)
}

// Phase is one pass over a part's tiles. Brushes only paint in their own phase(s).
type Phase int

const (
	ClearPhase Phase = iota
	WallPhase
	ModsPhase
	ObjectPhase
	BiomeTreesPhase
	BiomeItemsPhase
	WirePhase
	ItemPhase
	NpcPhase
	DungeonIDPhase
)

var allPhases = []Phase{
	ClearPhase, WallPhase, ModsPhase, ObjectPhase, BiomeTreesPhase,
	BiomeItemsPhase, WirePhase, ItemPhase, NpcPhase, DungeonIDPhase,
}

// AllPhases returns every Phase in the order parts are painted
func AllPhases() []Phase {
	return allPhases
}

// TileLayer is either the foreground or background tile layer
type TileLayer int

const (
	Foreground TileLayer = iota
	Background
)

// ParseTileLayer turns "foreground" / "background" into a TileLayer
func ParseTileLayer(name string) (TileLayer, error) {
	switch strings.ToLower(name) {
	case "foreground", "front", "":
		return Foreground, nil
	case "background", "back":
		return Background, nil
	}
	return Foreground, fmt.Errorf("unknown tile layer %q", name)
}

// String returns the name of the layer
func (l TileLayer) String() string {
	if l == Background {
		return "background"
	}
	return "foreground"
}
