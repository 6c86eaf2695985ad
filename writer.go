package dungeongraph

import (
	"encoding/json"
	"image"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/zyedidia/generic/mapset"

	"github.com/voidshard/dungeongraph/internal/hull"
)

// SurfaceStrategy decides how the writer answers solid / open queries.
type SurfaceStrategy struct {
	synthetic bool
	level     int
}

// RealWorldSurface asks the world facade about solid & open tiles
func RealWorldSurface() SurfaceStrategy {
	return SurfaceStrategy{}
}

// SyntheticSurface treats everything below y as solid & everything at or
// above it as open, regardless of the world. Used for dungeons that blend
// into terrain generated around them.
func SyntheticSurface(y int) SurfaceStrategy {
	return SurfaceStrategy{synthetic: true, level: y}
}

// Level returns the synthetic surface level, if one is set
func (s SurfaceStrategy) Level() (int, bool) {
	return s.level, s.synthetic
}

// WriterConfig configures a Writer
type WriterConfig struct {
	Surface SurfaceStrategy

	// seed for per tile random choices (random brushes, npc species)
	Seed uint64

	// the id of the dungeon being written, NoDungeonID if none
	DungeonID DungeonID

	// how far the marked free space extends above synthetic surface level
	ExtendSurfaceFreeSpace int
}

type entityClear struct {
	bounds        image.Rectangle
	positions     []image.Point
	clearAnchored bool
}

type vehicleAt struct {
	pos     r2.Point
	vehicle VehiclePlacement
}

type spawnAt struct {
	pos        r2.Point
	definition json.RawMessage
}

type dropAt struct {
	pos  r2.Point
	item ItemDescriptor
}

// Writer stages every change a dungeon makes so that nothing touches the
// world until Flush. Not safe for concurrent use.
type Writer struct {
	facade WorldFacade
	cfg    WriterConfig

	// set while placing a part that tags it's tiles with an id
	markDungeonID *DungeonID

	currentBounds image.Rectangle
	hasBounds     bool
	boundingBoxes []image.Rectangle

	clears []*entityClear

	foregroundMaterial map[image.Point]Material
	backgroundMaterial map[image.Point]Material
	foregroundMod      map[image.Point]Mod
	backgroundMod      map[image.Point]Mod

	objects    map[image.Point]ObjectPlacement
	vehicles   []*vehicleAt
	biomeTrees mapset.Set[image.Point]
	biomeItems mapset.Set[image.Point]
	drops      []*dropAt
	npcs       []*spawnAt
	stagehands []*spawnAt

	playerStart *r2.Point

	pendingLiquids map[image.Point]LiquidStore
	liquids        map[image.Point]LiquidStore

	dungeonIDs map[image.Point]DungeonID

	globalWires map[string][]image.Point
	localWires  map[string][]image.Point
	partWires   [][]image.Point
}

// NewWriter returns a writer staging changes for the given world
func NewWriter(facade WorldFacade, cfg WriterConfig) *Writer {
	w := &Writer{facade: facade, cfg: cfg}
	w.Reset()
	return w
}

// Reset drops everything staged so the writer can be reused
func (w *Writer) Reset() {
	w.markDungeonID = nil
	w.currentBounds = image.Rectangle{}
	w.hasBounds = false
	w.boundingBoxes = []image.Rectangle{}
	w.clears = []*entityClear{}
	w.foregroundMaterial = map[image.Point]Material{}
	w.backgroundMaterial = map[image.Point]Material{}
	w.foregroundMod = map[image.Point]Mod{}
	w.backgroundMod = map[image.Point]Mod{}
	w.objects = map[image.Point]ObjectPlacement{}
	w.vehicles = []*vehicleAt{}
	w.biomeTrees = mapset.New[image.Point]()
	w.biomeItems = mapset.New[image.Point]()
	w.drops = []*dropAt{}
	w.npcs = []*spawnAt{}
	w.stagehands = []*spawnAt{}
	w.playerStart = nil
	w.pendingLiquids = map[image.Point]LiquidStore{}
	w.liquids = map[image.Point]LiquidStore{}
	w.dungeonIDs = map[image.Point]DungeonID{}
	w.globalWires = map[string][]image.Point{}
	w.localWires = map[string][]image.Point{}
	w.partWires = [][]image.Point{}
}

// Seed used for per tile random choices
func (w *Writer) Seed() uint64 {
	return w.cfg.Seed
}

// Surface returns the writer's surface strategy
func (w *Writer) Surface() SurfaceStrategy {
	return w.cfg.Surface
}

// SetMarkDungeonID sets the id every marked position is tagged with.
// nil stops tagging.
func (w *Writer) SetMarkDungeonID(id *DungeonID) {
	w.markDungeonID = id
}

// MarkPosition records pos as part of the current part
func (w *Writer) MarkPosition(pos image.Point) {
	cell := image.Rect(pos.X, pos.Y, pos.X+1, pos.Y+1)
	if w.hasBounds {
		w.currentBounds = w.currentBounds.Union(cell)
	} else {
		w.currentBounds = cell
		w.hasBounds = true
	}

	if w.markDungeonID != nil {
		w.dungeonIDs[pos] = *w.markDungeonID
	}
}

// MarkBounds marks every position within r
func (w *Writer) MarkBounds(r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			w.MarkPosition(image.Pt(x, y))
		}
	}
}

// FinishPart closes the bounding box of the current part & turns it's
// local wire groups into groups of their own
func (w *Writer) FinishPart() {
	if w.hasBounds {
		w.boundingBoxes = append(w.boundingBoxes, w.currentBounds)
	}
	w.currentBounds = image.Rectangle{}
	w.hasBounds = false

	for _, name := range sortedKeys(w.localWires) {
		w.partWires = append(w.partWires, w.localWires[name])
	}
	w.localWires = map[string][]image.Point{}
}

// BoundingBoxes of every finished part, in order
func (w *Writer) BoundingBoxes() []image.Rectangle {
	return w.boundingBoxes
}

// ClearTileEntities stages removal of entities in the given area
func (w *Writer) ClearTileEntities(bounds image.Rectangle, positions []image.Point, clearAnchored bool) {
	w.clears = append(w.clears, &entityClear{bounds: bounds, positions: positions, clearAnchored: clearAnchored})
}

// SetForegroundMaterial stages a foreground material
func (w *Writer) SetForegroundMaterial(pos image.Point, m Material) {
	w.MarkPosition(pos)
	w.foregroundMaterial[pos] = m
}

// SetBackgroundMaterial stages a background material
func (w *Writer) SetBackgroundMaterial(pos image.Point, m Material) {
	w.MarkPosition(pos)
	w.backgroundMaterial[pos] = m
}

// SetForegroundMod stages a foreground mod
func (w *Writer) SetForegroundMod(pos image.Point, m Mod) {
	w.MarkPosition(pos)
	w.foregroundMod[pos] = m
}

// SetBackgroundMod stages a background mod
func (w *Writer) SetBackgroundMod(pos image.Point, m Mod) {
	w.MarkPosition(pos)
	w.backgroundMod[pos] = m
}

// NeedsForegroundBiomeMod returns if pos holds a biome material with
// nothing solid staged above it
func (w *Writer) NeedsForegroundBiomeMod(pos image.Point) bool {
	m, ok := w.foregroundMaterial[pos]
	if !ok || !IsBiomeMaterial(m.Name) {
		return false
	}
	return w.stagedEmpty(w.foregroundMaterial, pos.Add(Up.Offset()))
}

// NeedsBackgroundBiomeMod returns if pos holds a biome background material
// with nothing staged above it in either layer
func (w *Writer) NeedsBackgroundBiomeMod(pos image.Point) bool {
	m, ok := w.backgroundMaterial[pos]
	if !ok || !IsBiomeMaterial(m.Name) {
		return false
	}
	above := pos.Add(Up.Offset())
	return w.stagedEmpty(w.foregroundMaterial, above) && w.stagedEmpty(w.backgroundMaterial, above)
}

// stagedEmpty returns true if nothing, or the empty material, is staged at pos
func (w *Writer) stagedEmpty(layer map[image.Point]Material, pos image.Point) bool {
	m, ok := layer[pos]
	return !ok || m.Name == EmptyMaterial
}

// PlaceObject stages an object
func (w *Writer) PlaceObject(pos image.Point, o ObjectPlacement) {
	w.MarkPosition(pos)
	w.objects[pos] = o
}

// PlaceVehicle stages a vehicle spawn
func (w *Writer) PlaceVehicle(pos r2.Point, v VehiclePlacement) {
	w.vehicles = append(w.vehicles, &vehicleAt{pos: pos, vehicle: v})
}

// PlaceBiomeTree stages a biome tree
func (w *Writer) PlaceBiomeTree(pos image.Point) {
	w.MarkPosition(pos)
	w.biomeTrees.Put(pos)
}

// PlaceSurfaceBiomeItems stages biome surface items
func (w *Writer) PlaceSurfaceBiomeItems(pos image.Point) {
	w.MarkPosition(pos)
	w.biomeItems.Put(pos)
}

// AddDrop stages an item drop
func (w *Writer) AddDrop(pos r2.Point, item ItemDescriptor) {
	w.drops = append(w.drops, &dropAt{pos: pos, item: item})
}

// SpawnNpc stages an npc (or monster) spawn
func (w *Writer) SpawnNpc(pos r2.Point, parameters json.RawMessage) {
	w.npcs = append(w.npcs, &spawnAt{pos: pos, definition: parameters})
}

// SpawnStagehand stages a stagehand spawn
func (w *Writer) SpawnStagehand(pos r2.Point, definition json.RawMessage) {
	w.stagehands = append(w.stagehands, &spawnAt{pos: pos, definition: definition})
}

// SetPlayerStart stages the player start position
func (w *Writer) SetPlayerStart(pos r2.Point) {
	w.playerStart = &pos
}

// RequestLiquid stages liquid at pos. Pressure is worked out by FlushLiquid.
func (w *Writer) RequestLiquid(pos image.Point, l LiquidStore) {
	w.MarkPosition(pos)
	w.pendingLiquids[pos] = l
}

// ClearLiquid stages the removal of any liquid at pos
func (w *Writer) ClearLiquid(pos image.Point) {
	w.MarkPosition(pos)
	delete(w.pendingLiquids, pos)
	w.liquids[pos] = LiquidStore{}
}

// RequestWire adds pos to the named wire group. Local groups only join up
// tiles within the current part.
func (w *Writer) RequestWire(pos image.Point, group string, local bool) {
	if local {
		w.localWires[group] = append(w.localWires[group], pos)
	} else {
		w.globalWires[group] = append(w.globalWires[group], pos)
	}
}

// SetDungeonID stages the dungeon id of pos
func (w *Writer) SetDungeonID(pos image.Point, id DungeonID) {
	w.MarkPosition(pos)
	w.dungeonIDs[pos] = id
}

// CheckSolid returns if pos is solid in the given layer
func (w *Writer) CheckSolid(pos image.Point, layer TileLayer) bool {
	if level, ok := w.cfg.Surface.Level(); ok {
		return pos.Y < level
	}
	return w.facade.CheckSolid(w.wrap(pos), layer)
}

// CheckOpen returns if pos is open in the given layer
func (w *Writer) CheckOpen(pos image.Point, layer TileLayer) bool {
	if level, ok := w.cfg.Surface.Level(); ok {
		return pos.Y >= level
	}
	return w.facade.CheckOpen(w.wrap(pos), layer)
}

// CheckOceanLiquid returns if pos is in an ocean
func (w *Writer) CheckOceanLiquid(pos image.Point) bool {
	return w.facade.CheckOceanLiquid(w.wrap(pos))
}

// OtherDungeonPresent returns if pos belongs to a dungeon other than ours
func (w *Writer) OtherDungeonPresent(pos image.Point) bool {
	if _, ok := w.dungeonIDs[pos]; ok {
		return false
	}
	id := w.facade.DungeonIDAt(w.wrap(pos))
	return id != NoDungeonID && id != w.cfg.DungeonID
}

// Geometry of the world being written, zero (unbounded) without a world
func (w *Writer) Geometry() WorldGeometry {
	if w.facade == nil {
		return WorldGeometry{}
	}
	return w.facade.WorldGeometry()
}

// wrap returns pos wrapped horizontally around the world
func (w *Writer) wrap(pos image.Point) image.Point {
	return w.Geometry().XWrap(pos)
}

// Flush writes everything staged to the world, in a fixed order.
func (w *Writer) Flush() {
	geom := w.facade.WorldGeometry()
	wrap := geom.XWrap

	for _, c := range w.clears {
		positions := make([]image.Point, len(c.positions))
		for i, p := range c.positions {
			positions[i] = wrap(p)
		}
		w.facade.ClearTileEntities(c.bounds, positions, c.clearAnchored)
	}

	w.flushMarks()

	for _, p := range sortedPositions(w.backgroundMaterial) {
		w.facade.SetBackgroundMaterial(wrap(p), w.backgroundMaterial[p])
	}
	for _, p := range sortedPositions(w.foregroundMaterial) {
		w.facade.SetForegroundMaterial(wrap(p), w.foregroundMaterial[p])
	}
	for _, p := range sortedPositions(w.foregroundMod) {
		w.facade.SetForegroundMod(wrap(p), w.foregroundMod[p])
	}
	for _, p := range sortedPositions(w.backgroundMod) {
		w.facade.SetBackgroundMod(wrap(p), w.backgroundMod[p])
	}

	objects := sortedPositions(w.objects)
	sortByPlacementOrder(objects)
	for _, p := range objects {
		w.facade.PlaceObject(wrap(p), w.objects[p])
	}
	for _, v := range w.vehicles {
		w.facade.PlaceVehicle(geom.XWrapF(v.pos), v.vehicle)
	}

	for _, p := range setPlacementOrder(w.biomeTrees) {
		w.facade.PlaceBiomeTree(wrap(p))
	}
	for _, p := range setPlacementOrder(w.biomeItems) {
		w.facade.PlaceSurfaceBiomeItems(wrap(p))
	}

	for _, name := range sortedKeys(w.globalWires) {
		w.connectWires(w.globalWires[name], wrap)
	}
	for _, group := range w.partWires {
		w.connectWires(group, wrap)
	}

	drops := make([]*dropAt, len(w.drops))
	copy(drops, w.drops)
	sort.SliceStable(drops, func(a, b int) bool {
		return placementKey(drops[a].pos) < placementKey(drops[b].pos)
	})
	for _, d := range drops {
		w.facade.AddDrop(geom.XWrapF(d.pos), d.item)
	}

	for _, n := range w.npcs {
		w.facade.SpawnNpc(geom.XWrapF(n.pos), n.definition)
	}
	for _, s := range w.stagehands {
		w.facade.SpawnStagehand(geom.XWrapF(s.pos), s.definition)
	}
	if w.playerStart != nil {
		w.facade.SetPlayerStart(geom.XWrapF(*w.playerStart))
	}

	for _, p := range sortedPositions(w.liquids) {
		w.facade.SetLiquid(wrap(p), w.liquids[p])
	}
	for _, p := range sortedPositions(w.dungeonIDs) {
		w.facade.SetDungeonIDAt(wrap(p), w.dungeonIDs[p])
	}
}

// flushMarks marks each part's region. With a synthetic surface the parts are
// also split into terrain (below the surface) & space (above it), each
// marked as the convex hull of their corners.
func (w *Writer) flushMarks() {
	terrain := []r2.Point{}
	space := []r2.Point{}

	level, synthetic := w.cfg.Surface.Level()
	for _, box := range w.boundingBoxes {
		w.facade.MarkRegion(box)
		if !synthetic {
			continue
		}
		below, above := splitAtLevel(box, level)
		if !below.Empty() {
			terrain = append(terrain, hull.RectVertices(below)...)
		}
		if !above.Empty() {
			above.Max.Y += w.cfg.ExtendSurfaceFreeSpace
			space = append(space, hull.RectVertices(above)...)
		}
	}

	if len(terrain) > 0 {
		w.facade.MarkTerrain(Polygon(hull.Convex(terrain)))
	}
	if len(space) > 0 {
		w.facade.MarkSpace(Polygon(hull.Convex(space)))
	}
}

// connectWires wires up a group, wrapping every position
func (w *Writer) connectWires(group []image.Point, wrap func(image.Point) image.Point) {
	wrapped := make([]image.Point, len(group))
	for i, p := range group {
		wrapped[i] = wrap(p)
	}
	w.facade.ConnectWireGroup(wrapped)
}

// placementKey orders placements row by row, left to right
func placementKey(p r2.Point) float64 {
	return p.Y + p.X/1000
}

// sortByPlacementOrder sorts (sorted) positions by placementKey
func sortByPlacementOrder(in []image.Point) {
	sort.SliceStable(in, func(a, b int) bool {
		return placementKey(tileOrigin(in[a])) < placementKey(tileOrigin(in[b]))
	})
}

// setPlacementOrder returns the set in placement order
func setPlacementOrder(set mapset.Set[image.Point]) []image.Point {
	out := make([]image.Point, 0, set.Size())
	set.Each(func(p image.Point) {
		out = append(out, p)
	})
	sortPoints(out)
	sortByPlacementOrder(out)
	return out
}

// sortedPositions returns the keys of m sorted by y, then x
func sortedPositions[V any](m map[image.Point]V) []image.Point {
	out := make([]image.Point, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortPoints(out)
	return out
}

// sortedKeys returns the keys of m in order
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
