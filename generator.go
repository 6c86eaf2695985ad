package dungeongraph

import (
	"image"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/voidshard/dungeongraph/internal/hash"
)

// placement is a part placed at a position (bottom left of the part)
type placement struct {
	part *Part
	pos  image.Point
}

// connectorKey identifies a connector of a placed part
type connectorKey struct {
	pos image.Point
	dir Direction
}

// Generator builds one dungeon from a definition. A Generator is cheap;
// make one per call to Generate.
type Generator struct {
	def *Definition

	seed        uint64
	rng         *rand.Rand
	threatLevel float64
	dungeonID   DungeonID
}

// SeedFor derives the seed for a dungeon generated at pos in a world with
// the given seed.
func SeedFor(worldSeed uint64, pos image.Point) uint64 {
	return hash.Hash64(worldSeed, pos.X, pos.Y)
}

// NewGenerator returns a generator for def. dungeonID is the id tiles are
// tagged with (where parts ask for it), NoDungeonID for none.
func NewGenerator(def *Definition, seed uint64, threatLevel float64, dungeonID DungeonID) *Generator {
	return &Generator{
		def:         def,
		seed:        seed,
		rng:         rand.New(rand.NewSource(int64(seed))),
		threatLevel: threatLevel,
		dungeonID:   dungeonID,
	}
}

// Generate places the dungeon into the world with the anchor part's
// placement level at position.
//
// If markSurfaceAndTerrain is set the world surface is taken to be at
// position.Y and the areas above & below it are marked for the world to
// blend terrain around. With forcePlacement parts are placed even where their
// tile rules fail.
//
// Failing to find or place an anchor returns an error where IsSoftFailure is
// true; the caller may try elsewhere. Any other error is a *DungeonError.
func (g *Generator) Generate(facade WorldFacade, position image.Point, markSurfaceAndTerrain, forcePlacement bool) (*Result, error) {
	anchor := g.pickAnchor()
	if anchor == nil {
		logger.Printf("dungeon %s: no anchor part for threat level %v", g.def.Name(), g.threatLevel)
		return nil, errors.Wrapf(ErrNoAnchor, "dungeon %s", g.def.Name())
	}

	surface := RealWorldSurface()
	if markSurfaceAndTerrain {
		surface = SyntheticSurface(position.Y)
	}

	w := NewWriter(facade, WriterConfig{
		Surface:                surface,
		Seed:                   g.seed,
		DungeonID:              g.dungeonID,
		ExtendSurfaceFreeSpace: g.def.ExtendSurfaceFreeSpace(),
	})

	origin := position.Sub(image.Pt(0, anchor.PlacementLevel()))
	if !forcePlacement && !anchor.CanPlace(origin, w) {
		logger.Printf("dungeon %s: anchor %s cannot be placed at %v", g.def.Name(), anchor.Name(), position)
		return nil, errors.Wrapf(ErrAnchorBlocked, "dungeon %s: anchor %s at %v", g.def.Name(), anchor.Name(), position)
	}

	result := g.buildDungeon(anchor, origin, w, forcePlacement)

	w.FlushLiquid()
	w.Flush()

	if g.dungeonID != NoDungeonID {
		if g.def.Protected() {
			facade.SetTileProtection(g.dungeonID, true)
		}
		if gravity, ok := g.def.Gravity(); ok {
			facade.SetDungeonGravity(g.dungeonID, gravity)
		}
		if breathable, ok := g.def.Breathable(); ok {
			facade.SetDungeonBreathable(g.dungeonID, breathable)
		}
	}

	return result, nil
}

// pickAnchor chooses at random from the anchors that allow our threat level
func (g *Generator) pickAnchor() *Part {
	valid := []*Part{}
	for _, p := range g.def.Anchors() {
		if p.AllowsThreatLevel(g.threatLevel) {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return valid[g.rng.Intn(len(valid))]
}

// buildDungeon places the anchor, then works outward breadth first trying
// to attach a part to every connector of every placed part.
func (g *Generator) buildDungeon(anchor *Part, origin image.Point, w *Writer, forcePlacement bool) *Result {
	result := &Result{
		Parts: []*PlacedPart{},
		Stats: newDungeonStats(),
	}

	// positions & connectors are kept wrapped so a dungeon that reaches
	// around the world runs into itself
	geom := w.Geometry()
	bounded := geom.Width > 0 && geom.Height > 0

	// positions claimed by placed parts
	preserved := mapset.New[image.Point]()
	modified := mapset.New[image.Point]()
	closed := mapset.New[connectorKey]()

	open := queue.New[*placement]()
	counted := 0

	place := func(p *Part, pos image.Point) {
		if p.MarkDungeonID() && g.dungeonID != NoDungeonID {
			id := g.dungeonID
			w.SetMarkDungeonID(&id)
		} else {
			w.SetMarkDungeonID(nil)
		}

		p.Place(pos, preserved, w)
		w.FinishPart()

		p.ForEachTile(func(tp image.Point, t *Tile) bool {
			world := geom.XWrap(pos.Add(tp))
			if t.UsesPlaces() {
				preserved.Put(world)
			}
			if t.ModifiesPlaces() {
				modified.Put(world)
			}
			return false
		})

		result.Stats.increment(p.Name())
		result.Parts = append(result.Parts, &PlacedPart{Name: p.Name(), Position: pos})
		if !p.IgnoresPartMaximum() {
			counted++
		}
		open.Enqueue(&placement{part: p, pos: pos})
	}

	place(anchor, origin)

	for !open.Empty() {
		current := open.Dequeue()

		for _, c := range current.part.Connectors() {
			connPos := current.pos.Add(c.Offset)
			key := connectorKey{pos: geom.XWrap(connPos), dir: c.Direction}
			if closed.Has(key) {
				continue
			}

			options := g.def.FindConnectablePart(c)
			for len(options) > 0 {
				i := g.chooseOption(options)
				option := options[i]
				essentials.UnorderedDelete(&options, i)

				part, ok := g.def.Part(option.Part)
				if !ok {
					continue
				}

				optionPos := connPos.Add(option.PositionAdjustment())
				partPos := optionPos.Sub(option.Offset)

				if !part.IgnoresPartMaximum() {
					if counted >= g.def.MaxParts() {
						continue
					}
					if tileDistance(partPos, origin) > g.def.MaxRadius() {
						continue
					}
				} else if !bounded && tileDistance(partPos, origin) > g.def.MaxRadius() {
					// nothing else limits exempt parts in an endless world
					continue
				}
				if !part.InsideWorld(partPos, geom) {
					continue
				}
				if !part.AllowsPlacement(result.Stats.count(part.Name())) {
					continue
				}
				if !part.CheckPartCombinationsAllowed(result.Stats.PartsByName) {
					continue
				}
				if part.CollidesWithPlaces(partPos, preserved, geom) {
					continue
				}
				if !part.AllowsThreatLevel(g.threatLevel) {
					continue
				}
				if !forcePlacement && !part.CanPlace(partPos, w) {
					continue
				}

				place(part, partPos)
				closed.Put(key)
				closed.Put(connectorKey{pos: geom.XWrap(optionPos), dir: option.Direction})
				break
			}
		}
	}

	result.BoundingBoxes = w.BoundingBoxes()
	result.Modified = make([]image.Point, 0, modified.Size())
	modified.Each(func(p image.Point) {
		result.Modified = append(result.Modified, p)
	})
	sortPoints(result.Modified)

	return result
}

// chooseOption returns the index of a connector at random, weighted by the
// chance of the part it belongs to
func (g *Generator) chooseOption(options []*Connector) int {
	total := 0.0
	weights := make([]float64, len(options))
	for i, o := range options {
		if p, ok := g.def.Part(o.Part); ok {
			weights[i] = p.Chance()
		}
		total += weights[i]
	}

	rv := g.rng.Float64()
	sofar := 0.0
	for i, w := range weights {
		sofar += w / total // normalised
		if rv < sofar {
			return i
		}
	}
	return len(options) - 1
}
