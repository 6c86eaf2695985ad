package dungeongraph

import (
	"encoding/json"
	"image"
	"io/fs"

	"github.com/golang/geo/r2"
)

// WorldFacade is the live world a dungeon is generated into.
// The generator only reads from it while placing parts; every write happens
// when the Writer is flushed.
type WorldFacade interface {
	// mark areas the dungeon occupies (for world generation blending)
	MarkRegion(region image.Rectangle)
	MarkTerrain(region Polygon)
	MarkSpace(region Polygon)

	SetForegroundMaterial(pos image.Point, m Material)
	SetBackgroundMaterial(pos image.Point, m Material)
	SetForegroundMod(pos image.Point, m Mod)
	SetBackgroundMod(pos image.Point, m Mod)

	PlaceObject(pos image.Point, o ObjectPlacement)
	PlaceVehicle(pos r2.Point, v VehiclePlacement)
	PlaceSurfaceBiomeItems(pos image.Point)
	PlaceBiomeTree(pos image.Point)
	AddDrop(pos r2.Point, item ItemDescriptor)
	SpawnNpc(pos r2.Point, parameters json.RawMessage)
	SpawnStagehand(pos r2.Point, definition json.RawMessage)
	SetPlayerStart(pos r2.Point)

	SetLiquid(pos image.Point, l LiquidStore)
	ConnectWireGroup(group []image.Point)

	SetTileProtection(id DungeonID, protected bool)
	SetDungeonGravity(id DungeonID, gravity float64)
	SetDungeonBreathable(id DungeonID, breathable bool)

	// true if the tile at pos in the given layer holds a solid material
	CheckSolid(pos image.Point, layer TileLayer) bool

	// true if the tile at pos in the given layer is empty
	CheckOpen(pos image.Point, layer TileLayer) bool

	// true if the tile at pos is below the world's ocean level & holds liquid
	CheckOceanLiquid(pos image.Point) bool

	DungeonIDAt(pos image.Point) DungeonID
	SetDungeonIDAt(pos image.Point, id DungeonID)

	// removes objects / entities from the given area, objects anchored to
	// positions are only removed if clearAnchored is set
	ClearTileEntities(bounds image.Rectangle, positions []image.Point, clearAnchored bool)

	WorldGeometry() WorldGeometry
}

// PartReader supplies the tile grid of a Part.
// Positions are relative to the bottom left of the part, y grows upward.
// Callbacks return true to stop iterating.
type PartReader interface {
	Size() image.Point
	ForEachTile(fn func(pos image.Point, t *Tile) bool)
	ForEachTileAt(pos image.Point, fn func(t *Tile) bool)
}

// ReaderFunc builds a PartReader for one "def" kind (ie. "image", "tmx") given
// the asset path(s) named in the part definition. Paths are relative to the
// directory holding the dungeon file.
type ReaderFunc func(fsys fs.FS, dir string, assets []string, tileset *Tileset) (PartReader, error)
