package memworld

import (
	"encoding/json"
	"image"

	dg "github.com/voidshard/dungeongraph"
)

// TileState is everything stored for a single tile
type TileState struct {
	Pos        image.Point
	Foreground string
	Background string
	DungeonID  dg.DungeonID
	ForeMod    *dg.Mod             `json:",omitempty"`
	BackMod    *dg.Mod             `json:",omitempty"`
	Liquid     *dg.LiquidStore     `json:",omitempty"`
	Object     *dg.ObjectPlacement `json:",omitempty"`
	Region     bool                `json:",omitempty"`
	Terrain    bool                `json:",omitempty"`
	Space      bool                `json:",omitempty"`
}

// Snapshot is the state of a world, with every tile that differs from empty
// air listed in y, x order.
type Snapshot struct {
	Tiles       []*TileState
	Vehicles    []*Vehicle
	BiomeTrees  []image.Point
	BiomeItems  []image.Point
	Drops       []*Drop
	Npcs        []*Spawn
	Stagehands  []*Spawn
	PlayerStart *image.Point `json:",omitempty"`
	Wires       [][]image.Point
	Clears      []image.Rectangle
}

// Snapshot captures the world state. Two worlds that had the same things
// done to them give identical snapshots.
func (w *World) Snapshot() *Snapshot {
	s := &Snapshot{
		Tiles:      []*TileState{},
		Vehicles:   w.vehicles,
		BiomeTrees: w.biomeTrees,
		BiomeItems: w.biomeItems,
		Drops:      w.drops,
		Npcs:       w.npcs,
		Stagehands: w.stagehands,
		Wires:      w.wires,
		Clears:     w.clears,
	}
	if w.playerStart != nil {
		p := image.Pt(int(w.playerStart.X), int(w.playerStart.Y))
		s.PlayerStart = &p
	}

	bnds := w.tiles.im.Bounds()
	for y := bnds.Min.Y; y < bnds.Max.Y; y++ {
		for x := bnds.Min.X; x < bnds.Max.X; x++ {
			t := w.tileState(image.Pt(x, y))
			if t != nil {
				s.Tiles = append(s.Tiles, t)
			}
		}
	}

	return s
}

// JSON returns the snapshot as json
func (s *Snapshot) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// tileState returns the state of p, or nil if p is untouched air
func (w *World) tileState(p image.Point) *TileState {
	region, terrain, space := w.IsMarked(p)
	t := &TileState{
		Pos:        p,
		Foreground: w.ForegroundMaterial(p),
		Background: w.BackgroundMaterial(p),
		DungeonID:  w.DungeonIDAt(p),
		Region:     region,
		Terrain:    terrain,
		Space:      space,
	}
	changed := region || terrain || space ||
		t.Foreground != dg.EmptyMaterial ||
		t.Background != dg.EmptyMaterial ||
		t.DungeonID != dg.NoDungeonID

	if m, ok := w.fgMods[p]; ok {
		t.ForeMod = &m
		changed = true
	}
	if m, ok := w.bgMods[p]; ok {
		t.BackMod = &m
		changed = true
	}
	if l, ok := w.liquidStore[p]; ok {
		t.Liquid = &l
		changed = true
	}
	if o, ok := w.objects[p]; ok {
		t.Object = &o
		changed = true
	}

	if !changed {
		return nil
	}
	return t
}
