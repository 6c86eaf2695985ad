package dungeongraph

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"
)

// minChance stops parts from having zero weight when picking between options
const minChance = 0.0001

// Part is a prefabricated block of tiles. Parts are immutable once built.
type Part struct {
	name   string
	reader PartReader
	rules  []*Rule

	connectors []*Connector

	chance               float64
	markDungeonID        bool
	overrideAllowAlways  bool
	clearAnchoredObjects bool
	minThreat            *float64
	maxThreat            *float64

	// x: centre of tiles using places, y: placement level
	anchor image.Point
}

// NewPart builds a part from it's config & tile reader, detecting connectors
// and working out the anchor point.
func NewPart(cfg *PartConfig, reader PartReader) (*Part, error) {
	rules, err := parseRules(cfg.Rules)
	if err != nil {
		return nil, errors.Wrapf(err, "part %s", cfg.Name)
	}

	p := &Part{
		name:                 cfg.Name,
		reader:               reader,
		rules:                rules,
		chance:               cfg.chance(),
		markDungeonID:        cfg.MarkDungeonID,
		overrideAllowAlways:  cfg.OverrideAllowAlways,
		clearAnchoredObjects: cfg.clearAnchoredObjects(),
		minThreat:            cfg.MinimumThreatLevel,
		maxThreat:            cfg.MaximumThreatLevel,
	}

	p.scanConnectors()

	err = p.scanAnchor()
	if err != nil {
		return nil, errors.Wrapf(err, "part %s", cfg.Name)
	}

	return p, nil
}

// scanConnectors finds every connector tile, inferring directions where
// the tile doesn't give one.
func (p *Part) scanConnectors() {
	p.connectors = []*Connector{}
	p.reader.ForEachTile(func(pos image.Point, t *Tile) bool {
		if t.Connector == nil {
			return false
		}

		d := t.Connector.Direction
		if d == Unknown {
			d = p.pickByNeighbours(pos)
		}
		if d == Unknown {
			d = p.pickByEdge(pos)
		}

		p.connectors = append(p.connectors, &Connector{
			Part:        p.name,
			Value:       t.Connector.Value,
			Direction:   d,
			ForwardOnly: t.Connector.ForwardOnly,
			Offset:      pos,
		})
		return false
	})
}

// pickByNeighbours looks for used tiles on one side of pos only, the
// connector faces away from them.
func (p *Part) pickByNeighbours(pos image.Point) Direction {
	left := p.tileUsesPlaces(pos.Add(Left.Offset()))
	right := p.tileUsesPlaces(pos.Add(Right.Offset()))
	up := p.tileUsesPlaces(pos.Add(Up.Offset()))
	down := p.tileUsesPlaces(pos.Add(Down.Offset()))

	switch {
	case right && !left:
		return Left
	case left && !right:
		return Right
	case up && !down:
		return Down
	case down && !up:
		return Up
	}
	return Unknown
}

// pickByEdge faces the connector toward the nearest edge of the part
func (p *Part) pickByEdge(pos image.Point) Direction {
	size := p.reader.Size()

	best := Left
	dist := pos.X
	if d := size.X - 1 - pos.X; d < dist {
		best, dist = Right, d
	}
	if d := pos.Y; d < dist {
		best, dist = Down, d
	}
	if d := size.Y - 1 - pos.Y; d < dist {
		best = Up
	}
	return best
}

// tileUsesPlaces returns if any tile at pos (part relative) uses places
func (p *Part) tileUsesPlaces(pos image.Point) bool {
	uses := false
	p.reader.ForEachTileAt(pos, func(t *Tile) bool {
		uses = t.UsesPlaces()
		return uses
	})
	return uses
}

// scanAnchor works out the anchor point. Tiles that need ground must sit
// below tiles that need air; the anchor y sits just above the ground.
func (p *Part) scanAnchor() error {
	size := p.reader.Size()

	ground := -1
	air := size.Y
	sumX, count := 0, 0

	p.reader.ForEachTile(func(pos image.Point, t *Tile) bool {
		if t.UsesPlaces() {
			sumX += pos.X
			count++
		}
		if t.RequiresSolid() || t.RequiresLiquid() {
			if pos.Y > ground {
				ground = pos.Y
			}
		}
		if t.RequiresOpen() && pos.Y < air {
			air = pos.Y
		}
		return false
	})

	if ground >= air {
		return errors.Errorf("invalid ground vs air constraint, ground required at y=%d but air required at y=%d", ground, air)
	}

	level := 0
	if ground >= 0 {
		level = ground + 1
	} else if air < size.Y {
		level = air
	}

	x := size.X / 2
	if count > 0 {
		x = sumX / count
	}

	p.anchor = image.Pt(x, level)
	return nil
}

// Name of the part (unique within a dungeon)
func (p *Part) Name() string {
	return p.name
}

// Size of the part in tiles
func (p *Part) Size() image.Point {
	return p.reader.Size()
}

// Bounds returns the area the part covers when placed at pos
func (p *Part) Bounds(pos image.Point) image.Rectangle {
	size := p.reader.Size()
	return image.Rect(pos.X, pos.Y, pos.X+size.X, pos.Y+size.Y)
}

// Connectors of this part
func (p *Part) Connectors() []*Connector {
	return p.connectors
}

// Rules of this part (not including tile rules)
func (p *Part) Rules() []*Rule {
	return p.rules
}

// AnchorPoint returns the part relative point that is placed at the
// generation position. The y value is the placement level.
func (p *Part) AnchorPoint() image.Point {
	return p.anchor
}

// PlacementLevel is the part relative y that sits at world surface level
func (p *Part) PlacementLevel() int {
	return p.anchor.Y
}

// Chance is the weight of this part when picking between options
func (p *Part) Chance() float64 {
	return math.Max(p.chance, minChance)
}

// MarkDungeonID returns if the tiles of this part are tagged with the dungeon id
func (p *Part) MarkDungeonID() bool {
	return p.markDungeonID
}

// MinimumThreatLevel returns the min threat level, if set
func (p *Part) MinimumThreatLevel() (float64, bool) {
	if p.minThreat == nil {
		return 0, false
	}
	return *p.minThreat, true
}

// MaximumThreatLevel returns the max threat level, if set
func (p *Part) MaximumThreatLevel() (float64, bool) {
	if p.maxThreat == nil {
		return 0, false
	}
	return *p.maxThreat, true
}

// AllowsThreatLevel returns if the part may be placed at the given threat level
func (p *Part) AllowsThreatLevel(level float64) bool {
	if p.minThreat != nil && level < *p.minThreat {
		return false
	}
	if p.maxThreat != nil && level > *p.maxThreat {
		return false
	}
	return true
}

// IgnoresPartMaximum returns if the part doesn't count toward maxParts / maxRadius
func (p *Part) IgnoresPartMaximum() bool {
	for _, r := range p.rules {
		if r.IgnoresPartMaximum() {
			return true
		}
	}
	return false
}

// AllowsPlacement returns if another copy can be placed given `count` already placed
func (p *Part) AllowsPlacement(count int) bool {
	for _, r := range p.rules {
		if !r.AllowsSpawnCount(count) {
			return false
		}
	}
	return true
}

// DoesNotConnectTo returns if either part refuses to connect to the other
func (p *Part) DoesNotConnectTo(other *Part) bool {
	for _, r := range p.rules {
		if r.DoesNotConnectToPart(other.name) {
			return true
		}
	}
	for _, r := range other.rules {
		if r.DoesNotConnectToPart(p.name) {
			return true
		}
	}
	return false
}

// CheckPartCombinationsAllowed returns if the part may be placed given the
// number of each part placed so far
func (p *Part) CheckPartCombinationsAllowed(counts map[string]int) bool {
	for _, r := range p.rules {
		if !r.CheckPartCombinationsAllowed(counts) {
			return false
		}
	}
	return true
}

// CollidesWithPlaces returns if any tile of the part placed at pos lands on
// a position already claimed. Claimed positions are wrapped around geom.
func (p *Part) CollidesWithPlaces(pos image.Point, places mapset.Set[image.Point], geom WorldGeometry) bool {
	collides := false
	p.reader.ForEachTile(func(tp image.Point, t *Tile) bool {
		if t.CollidesWithPlaces() && places.Has(geom.XWrap(pos.Add(tp))) {
			collides = true
		}
		return collides
	})
	return collides
}

// CanPlace returns if every tile of the part can be placed at pos
func (p *Part) CanPlace(pos image.Point, w *Writer) bool {
	if p.overrideAllowAlways {
		return true
	}

	if !p.InsideWorld(pos, w.Geometry()) {
		return false
	}

	ok := true
	p.reader.ForEachTile(func(tp image.Point, t *Tile) bool {
		if !t.CanPlace(pos.Add(tp), w) {
			ok = false
		}
		return !ok
	})
	return ok
}

// InsideWorld returns if the part placed at pos lies between the bottom and
// top of the world. A world with no height only has a bottom.
func (p *Part) InsideWorld(pos image.Point, geom WorldGeometry) bool {
	bounds := p.Bounds(pos)
	if bounds.Min.Y < 0 {
		return false
	}
	return geom.Height <= 0 || bounds.Max.Y <= geom.Height
}

// Place stages the part at pos, running every phase in order. Positions
// in `places` (wrapped around the world) were claimed by earlier parts & are
// not painted over.
func (p *Part) Place(pos image.Point, places mapset.Set[image.Point], w *Writer) {
	positions := []image.Point{}
	p.reader.ForEachTile(func(tp image.Point, t *Tile) bool {
		if t.ModifiesPlaces() {
			positions = append(positions, pos.Add(tp))
		}
		return false
	})

	bounds := p.Bounds(pos)
	w.MarkBounds(bounds)
	w.ClearTileEntities(bounds, positions, p.clearAnchoredObjects)

	for _, phase := range AllPhases() {
		p.placePhase(pos, phase, places, w)
	}
}

// placePhase paints every tile for one phase
func (p *Part) placePhase(pos image.Point, phase Phase, places mapset.Set[image.Point], w *Writer) {
	geom := w.Geometry()
	p.reader.ForEachTile(func(tp image.Point, t *Tile) bool {
		world := pos.Add(tp)
		if places.Has(geom.XWrap(world)) {
			return false
		}
		t.Place(world, phase, w)
		return false
	})
}

// ForEachTile calls fn for every tile of the part (part relative positions)
func (p *Part) ForEachTile(fn func(pos image.Point, t *Tile) bool) {
	p.reader.ForEachTile(fn)
}
