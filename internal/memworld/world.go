// Package memworld is an in memory world that dungeons can be generated
// into. It holds just enough state to check what a dungeon did.
package memworld

import (
	"encoding/json"
	"image"

	"github.com/golang/geo/r2"

	dg "github.com/voidshard/dungeongraph"
)

// Vehicle is a spawned vehicle
type Vehicle struct {
	Pos       r2.Point
	Placement dg.VehiclePlacement
}

// Drop is a dropped item
type Drop struct {
	Pos  r2.Point
	Item dg.ItemDescriptor
}

// Spawn is a spawned npc, monster or stagehand
type Spawn struct {
	Pos        r2.Point
	Definition json.RawMessage
}

// World implements dungeongraph.WorldFacade in memory.
// The world wraps horizontally; tiles below y=0 are solid, tiles at or above
// the world height are open.
type World struct {
	geom  dg.WorldGeometry
	tiles *tiles

	materials *palette
	liquids   *palette

	fgMods      map[image.Point]dg.Mod
	bgMods      map[image.Point]dg.Mod
	liquidStore map[image.Point]dg.LiquidStore
	objects     map[image.Point]dg.ObjectPlacement

	vehicles    []*Vehicle
	biomeTrees  []image.Point
	biomeItems  []image.Point
	drops       []*Drop
	npcs        []*Spawn
	stagehands  []*Spawn
	playerStart *r2.Point
	wires       [][]image.Point

	regions []image.Rectangle
	terrain []dg.Polygon
	space   []dg.Polygon
	clears  []image.Rectangle

	protected  map[dg.DungeonID]bool
	gravity    map[dg.DungeonID]float64
	breathable map[dg.DungeonID]bool
}

// New returns an empty (all air) world of the given size
func New(width, height int) *World {
	return &World{
		geom:        dg.WorldGeometry{Width: width, Height: height},
		tiles:       newTiles(width, height, uint16(dg.NoDungeonID)),
		materials:   newPalette(dg.EmptyMaterial),
		liquids:     newPalette(""),
		fgMods:      map[image.Point]dg.Mod{},
		bgMods:      map[image.Point]dg.Mod{},
		liquidStore: map[image.Point]dg.LiquidStore{},
		objects:     map[image.Point]dg.ObjectPlacement{},
		vehicles:    []*Vehicle{},
		biomeTrees:  []image.Point{},
		biomeItems:  []image.Point{},
		drops:       []*Drop{},
		npcs:        []*Spawn{},
		stagehands:  []*Spawn{},
		wires:       [][]image.Point{},
		regions:     []image.Rectangle{},
		terrain:     []dg.Polygon{},
		space:       []dg.Polygon{},
		clears:      []image.Rectangle{},
		protected:   map[dg.DungeonID]bool{},
		gravity:     map[dg.DungeonID]float64{},
		breathable:  map[dg.DungeonID]bool{},
	}
}

// FillGround sets every tile below y (in both layers) to the given material
func (w *World) FillGround(y int, material string) {
	w.Fill(image.Rect(0, 0, w.geom.Width, y), material)
}

// Fill sets every tile in r (in both layers) to the given material
func (w *World) Fill(r image.Rectangle, material string) {
	idx := w.materials.index(material)
	for dy := r.Min.Y; dy < r.Max.Y; dy++ {
		for dx := r.Min.X; dx < r.Max.X; dx++ {
			p, ok := w.at(image.Pt(dx, dy))
			if !ok {
				continue
			}
			w.tiles.setForeground(p.X, p.Y, idx)
			w.tiles.setBackground(p.X, p.Y, idx)
		}
	}
}

// FillOcean fills every open tile in r with the given liquid & marks it as ocean
func (w *World) FillOcean(r image.Rectangle, liquid string) {
	for dy := r.Min.Y; dy < r.Max.Y; dy++ {
		for dx := r.Min.X; dx < r.Max.X; dx++ {
			p, ok := w.at(image.Pt(dx, dy))
			if !ok {
				continue
			}
			w.tiles.setFlag(p.X, p.Y, bitOcean)
			if w.tiles.foreground(p.X, p.Y) == 0 {
				w.SetLiquid(p, dg.LiquidStore{Liquid: liquid, Level: 1, Pressure: 1})
			}
		}
	}
}

// at wraps pos around the world, returning false if pos is above or below it
func (w *World) at(pos image.Point) (image.Point, bool) {
	p := w.geom.XWrap(pos)
	return p, w.tiles.inBounds(p.X, p.Y)
}

// WorldGeometry implements WorldFacade
func (w *World) WorldGeometry() dg.WorldGeometry {
	return w.geom
}

// MarkRegion implements WorldFacade
func (w *World) MarkRegion(region image.Rectangle) {
	w.regions = append(w.regions, region)
	for dy := region.Min.Y; dy < region.Max.Y; dy++ {
		for dx := region.Min.X; dx < region.Max.X; dx++ {
			if p, ok := w.at(image.Pt(dx, dy)); ok {
				w.tiles.setFlag(p.X, p.Y, bitRegion)
			}
		}
	}
}

// MarkTerrain implements WorldFacade
func (w *World) MarkTerrain(region dg.Polygon) {
	w.terrain = append(w.terrain, region)
	w.markPolygon(region, bitTerrain)
}

// MarkSpace implements WorldFacade
func (w *World) MarkSpace(region dg.Polygon) {
	w.space = append(w.space, region)
	w.markPolygon(region, bitSpace)
}

// markPolygon sets bit on every tile whose centre is within the polygon
func (w *World) markPolygon(region dg.Polygon, bit int) {
	bnds := region.Bounds()
	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			centre := r2.Point{X: float64(dx) + 0.5, Y: float64(dy) + 0.5}
			if !region.Contains(centre) {
				continue
			}
			if p, ok := w.at(image.Pt(dx, dy)); ok {
				w.tiles.setFlag(p.X, p.Y, bit)
			}
		}
	}
}

// SetForegroundMaterial implements WorldFacade
func (w *World) SetForegroundMaterial(pos image.Point, m dg.Material) {
	if p, ok := w.at(pos); ok {
		w.tiles.setForeground(p.X, p.Y, w.materials.index(m.Name))
	}
}

// SetBackgroundMaterial implements WorldFacade
func (w *World) SetBackgroundMaterial(pos image.Point, m dg.Material) {
	if p, ok := w.at(pos); ok {
		w.tiles.setBackground(p.X, p.Y, w.materials.index(m.Name))
	}
}

// SetForegroundMod implements WorldFacade
func (w *World) SetForegroundMod(pos image.Point, m dg.Mod) {
	setMod(w, w.fgMods, pos, m)
}

// SetBackgroundMod implements WorldFacade
func (w *World) SetBackgroundMod(pos image.Point, m dg.Mod) {
	setMod(w, w.bgMods, pos, m)
}

// setMod sets (or for NoMod, removes) a mod
func setMod(w *World, mods map[image.Point]dg.Mod, pos image.Point, m dg.Mod) {
	p, ok := w.at(pos)
	if !ok {
		return
	}
	if m.Name == dg.NoMod || m.Name == "" {
		delete(mods, p)
		return
	}
	mods[p] = m
}

// PlaceObject implements WorldFacade
func (w *World) PlaceObject(pos image.Point, o dg.ObjectPlacement) {
	if p, ok := w.at(pos); ok {
		w.objects[p] = o
	}
}

// PlaceVehicle implements WorldFacade
func (w *World) PlaceVehicle(pos r2.Point, v dg.VehiclePlacement) {
	w.vehicles = append(w.vehicles, &Vehicle{Pos: pos, Placement: v})
}

// PlaceSurfaceBiomeItems implements WorldFacade
func (w *World) PlaceSurfaceBiomeItems(pos image.Point) {
	w.biomeItems = append(w.biomeItems, pos)
}

// PlaceBiomeTree implements WorldFacade
func (w *World) PlaceBiomeTree(pos image.Point) {
	w.biomeTrees = append(w.biomeTrees, pos)
}

// AddDrop implements WorldFacade
func (w *World) AddDrop(pos r2.Point, item dg.ItemDescriptor) {
	w.drops = append(w.drops, &Drop{Pos: pos, Item: item})
}

// SpawnNpc implements WorldFacade
func (w *World) SpawnNpc(pos r2.Point, parameters json.RawMessage) {
	w.npcs = append(w.npcs, &Spawn{Pos: pos, Definition: parameters})
}

// SpawnStagehand implements WorldFacade
func (w *World) SpawnStagehand(pos r2.Point, definition json.RawMessage) {
	w.stagehands = append(w.stagehands, &Spawn{Pos: pos, Definition: definition})
}

// SetPlayerStart implements WorldFacade
func (w *World) SetPlayerStart(pos r2.Point) {
	w.playerStart = &pos
}

// SetLiquid implements WorldFacade. An empty liquid name removes any liquid.
func (w *World) SetLiquid(pos image.Point, l dg.LiquidStore) {
	p, ok := w.at(pos)
	if !ok {
		return
	}
	if l.Liquid == "" {
		delete(w.liquidStore, p)
		w.tiles.setLiquid(p.X, p.Y, 0)
		return
	}
	w.liquidStore[p] = l
	w.tiles.setLiquid(p.X, p.Y, uint8(w.liquids.index(l.Liquid)))
}

// ConnectWireGroup implements WorldFacade
func (w *World) ConnectWireGroup(group []image.Point) {
	w.wires = append(w.wires, group)
}

// SetTileProtection implements WorldFacade
func (w *World) SetTileProtection(id dg.DungeonID, protected bool) {
	w.protected[id] = protected
}

// SetDungeonGravity implements WorldFacade
func (w *World) SetDungeonGravity(id dg.DungeonID, gravity float64) {
	w.gravity[id] = gravity
}

// SetDungeonBreathable implements WorldFacade
func (w *World) SetDungeonBreathable(id dg.DungeonID, breathable bool) {
	w.breathable[id] = breathable
}

// CheckSolid implements WorldFacade
func (w *World) CheckSolid(pos image.Point, layer dg.TileLayer) bool {
	p, ok := w.at(pos)
	if !ok {
		return pos.Y < 0
	}
	if layer == dg.Background {
		return w.tiles.background(p.X, p.Y) != 0
	}
	return w.tiles.foreground(p.X, p.Y) != 0
}

// CheckOpen implements WorldFacade
func (w *World) CheckOpen(pos image.Point, layer dg.TileLayer) bool {
	p, ok := w.at(pos)
	if !ok {
		return pos.Y >= w.geom.Height
	}
	if layer == dg.Background {
		return w.tiles.background(p.X, p.Y) == 0
	}
	return w.tiles.foreground(p.X, p.Y) == 0
}

// CheckOceanLiquid implements WorldFacade
func (w *World) CheckOceanLiquid(pos image.Point) bool {
	p, ok := w.at(pos)
	if !ok {
		return false
	}
	return w.tiles.flag(p.X, p.Y, bitOcean) && w.tiles.liquid(p.X, p.Y) != 0
}

// DungeonIDAt implements WorldFacade
func (w *World) DungeonIDAt(pos image.Point) dg.DungeonID {
	p, ok := w.at(pos)
	if !ok {
		return dg.NoDungeonID
	}
	return dg.DungeonID(w.tiles.dungeonID(p.X, p.Y))
}

// SetDungeonIDAt implements WorldFacade
func (w *World) SetDungeonIDAt(pos image.Point, id dg.DungeonID) {
	if p, ok := w.at(pos); ok {
		w.tiles.setDungeonID(p.X, p.Y, uint16(id))
	}
}

// ClearTileEntities implements WorldFacade. Objects sitting on one of
// positions are always removed, other objects within bounds only if
// clearAnchored is set. Drops, npcs, stagehands & vehicles within bounds are
// always removed.
func (w *World) ClearTileEntities(bounds image.Rectangle, positions []image.Point, clearAnchored bool) {
	w.clears = append(w.clears, bounds)

	onPositions := map[image.Point]bool{}
	for _, p := range positions {
		onPositions[w.geom.XWrap(p)] = true
	}

	for p := range w.objects {
		if onPositions[p] || (clearAnchored && w.inBounds(bounds, p)) {
			delete(w.objects, p)
		}
	}

	keepDrops := []*Drop{}
	for _, d := range w.drops {
		if !w.inBoundsF(bounds, d.Pos) {
			keepDrops = append(keepDrops, d)
		}
	}
	w.drops = keepDrops

	w.npcs = w.keepSpawns(bounds, w.npcs)
	w.stagehands = w.keepSpawns(bounds, w.stagehands)

	keepVehicles := []*Vehicle{}
	for _, v := range w.vehicles {
		if !w.inBoundsF(bounds, v.Pos) {
			keepVehicles = append(keepVehicles, v)
		}
	}
	w.vehicles = keepVehicles
}

// keepSpawns returns the spawns outside of bounds
func (w *World) keepSpawns(bounds image.Rectangle, in []*Spawn) []*Spawn {
	out := []*Spawn{}
	for _, s := range in {
		if !w.inBoundsF(bounds, s.Pos) {
			out = append(out, s)
		}
	}
	return out
}

// inBounds returns if the (wrapped) tile p is within the (unwrapped) rect r
func (w *World) inBounds(r image.Rectangle, p image.Point) bool {
	for _, shift := range w.wrapShifts() {
		if p.Add(image.Pt(shift, 0)).In(r) {
			return true
		}
	}
	return false
}

// inBoundsF is inBounds for world positions
func (w *World) inBoundsF(r image.Rectangle, p r2.Point) bool {
	return w.inBounds(r, image.Pt(int(p.X), int(p.Y)))
}

// wrapShifts are the x shifts that map a wrapped position back into
// rectangles that hang off either side of the world
func (w *World) wrapShifts() []int {
	if w.geom.Width <= 0 {
		return []int{0}
	}
	return []int{0, -w.geom.Width, w.geom.Width}
}

// ForegroundMaterial returns the name of the foreground material at pos
func (w *World) ForegroundMaterial(pos image.Point) string {
	p, ok := w.at(pos)
	if !ok {
		return dg.EmptyMaterial
	}
	return w.materials.name(w.tiles.foreground(p.X, p.Y))
}

// BackgroundMaterial returns the name of the background material at pos
func (w *World) BackgroundMaterial(pos image.Point) string {
	p, ok := w.at(pos)
	if !ok {
		return dg.EmptyMaterial
	}
	return w.materials.name(w.tiles.background(p.X, p.Y))
}

// ForegroundMod returns the foreground mod at pos, if any
func (w *World) ForegroundMod(pos image.Point) (dg.Mod, bool) {
	m, ok := w.fgMods[w.geom.XWrap(pos)]
	return m, ok
}

// BackgroundMod returns the background mod at pos, if any
func (w *World) BackgroundMod(pos image.Point) (dg.Mod, bool) {
	m, ok := w.bgMods[w.geom.XWrap(pos)]
	return m, ok
}

// Liquid returns the liquid at pos, if any
func (w *World) Liquid(pos image.Point) (dg.LiquidStore, bool) {
	l, ok := w.liquidStore[w.geom.XWrap(pos)]
	return l, ok
}

// Object returns the object at pos, if any
func (w *World) Object(pos image.Point) (dg.ObjectPlacement, bool) {
	o, ok := w.objects[w.geom.XWrap(pos)]
	return o, ok
}

// IsMarked returns if pos was marked as part of a dungeon region,
// terrain & space respectively
func (w *World) IsMarked(pos image.Point) (region, terrain, space bool) {
	p, ok := w.at(pos)
	if !ok {
		return false, false, false
	}
	return w.tiles.flag(p.X, p.Y, bitRegion), w.tiles.flag(p.X, p.Y, bitTerrain), w.tiles.flag(p.X, p.Y, bitSpace)
}

// Regions returns every region marked
func (w *World) Regions() []image.Rectangle {
	return w.regions
}

// Vehicles spawned
func (w *World) Vehicles() []*Vehicle {
	return w.vehicles
}

// BiomeTrees returns where biome trees were requested, in order
func (w *World) BiomeTrees() []image.Point {
	return w.biomeTrees
}

// BiomeItems returns where biome items were requested, in order
func (w *World) BiomeItems() []image.Point {
	return w.biomeItems
}

// Drops returns every item dropped, in order
func (w *World) Drops() []*Drop {
	return w.drops
}

// Npcs returns every npc spawned, in order
func (w *World) Npcs() []*Spawn {
	return w.npcs
}

// Stagehands returns every stagehand spawned, in order
func (w *World) Stagehands() []*Spawn {
	return w.stagehands
}

// PlayerStart returns the player start, if set
func (w *World) PlayerStart() (r2.Point, bool) {
	if w.playerStart == nil {
		return r2.Point{}, false
	}
	return *w.playerStart, true
}

// Wires returns every connected wire group, in order
func (w *World) Wires() [][]image.Point {
	return w.wires
}

// Protected returns if tiles of the given dungeon are protected
func (w *World) Protected(id dg.DungeonID) bool {
	return w.protected[id]
}

// Gravity returns the gravity set for a dungeon, if any
func (w *World) Gravity(id dg.DungeonID) (float64, bool) {
	g, ok := w.gravity[id]
	return g, ok
}

// Breathable returns the breathable setting for a dungeon, if any
func (w *World) Breathable(id dg.DungeonID) (bool, bool) {
	b, ok := w.breathable[id]
	return b, ok
}
