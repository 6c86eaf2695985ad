package dungeongraph

import (
	"encoding/json"
	"image"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/voidshard/dungeongraph/internal/hash"
)

// BrushKind is the variant of a Brush
type BrushKind int

const (
	BrushClear BrushKind = iota
	BrushFront
	BrushBack
	BrushSurface
	BrushSurfaceBackground
	BrushLiquid
	BrushObject
	BrushVehicle
	BrushBiomeTree
	BrushBiomeItems
	BrushWire
	BrushItem
	BrushNpc
	BrushStagehand
	BrushPlayerStart
	BrushDungeonID
	BrushRandom
	BrushInvalid
)

// Brush is a single paint operation applied to a tile during one phase.
// Only the fields relevant to Kind are set.
type Brush struct {
	Kind BrushKind

	// Front, Back
	Material Material

	// Front, Back, Surface, SurfaceBackground; Name is empty if no mod is set
	Mod Mod

	// Surface, SurfaceBackground (0-5)
	Variant int

	// Liquid
	Liquid LiquidStore

	// Object, Vehicle
	Name      string
	Direction Direction

	// Object, Vehicle, Npc, Stagehand
	Parameters json.RawMessage

	// Item
	Item ItemDescriptor

	// Wire
	WireGroup string
	WireLocal bool

	// DungeonID
	DungeonID DungeonID

	// Random; each choice is one or more brushes painted together
	Choices [][]*Brush
}

// frontOptions are the optional settings for "front" & "back" brushes
type frontOptions struct {
	Mod          string `json:"mod"`
	HueShift     uint8  `json:"hueshift"`
	ModHueShift  uint8  `json:"modhueshift"`
	ColorVariant uint8  `json:"colorVariant"`
}

// surfaceOptions are the optional settings for "surface" brushes
type surfaceOptions struct {
	Variant int    `json:"variant"`
	Mod     string `json:"mod"`
}

// objectOptions are the optional settings for "object" & "vehicle" brushes
type objectOptions struct {
	Direction  string          `json:"direction"`
	Parameters json.RawMessage `json:"parameters"`
}

// wireOptions are the settings for "wire" brushes
type wireOptions struct {
	Group string `json:"group"`
	Local bool   `json:"local"`
}

// ParseBrush parses a brush in the form [key, args...].
// Unlike rules, an unknown key is an error.
func ParseBrush(raw json.RawMessage) (*Brush, error) {
	var args []json.RawMessage
	err := json.Unmarshal(raw, &args)
	if err != nil {
		return nil, errors.Wrap(err, "brush must be a json array")
	}
	if len(args) == 0 {
		return nil, errors.New("brush is empty")
	}

	var key string
	err = json.Unmarshal(args[0], &key)
	if err != nil {
		return nil, errors.Wrap(err, "brush key must be a string")
	}

	b, err := parseBrushArgs(key, args[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "brush %s", key)
	}
	return b, nil
}

// parseBrushArgs builds the brush variant for key
func parseBrushArgs(key string, args []json.RawMessage) (*Brush, error) {
	switch key {
	case "clear":
		return &Brush{Kind: BrushClear}, nil
	case "front", "back":
		kind := BrushFront
		if key == "back" {
			kind = BrushBack
		}
		return parseMaterialBrush(kind, args)
	case "surface", "surfacebackground":
		kind := BrushSurface
		if key == "surfacebackground" {
			kind = BrushSurfaceBackground
		}
		b := &Brush{Kind: kind}
		if len(args) > 0 {
			opts := surfaceOptions{}
			if err := json.Unmarshal(args[0], &opts); err != nil {
				return nil, err
			}
			if opts.Variant < 0 || opts.Variant > 5 {
				return nil, errors.Errorf("surface variant %d out of range 0-5", opts.Variant)
			}
			b.Variant = opts.Variant
			b.Mod = Mod{Name: opts.Mod}
		}
		return b, nil
	case "liquid":
		return parseLiquidBrush(args)
	case "object", "vehicle":
		kind := BrushObject
		if key == "vehicle" {
			kind = BrushVehicle
		}
		if len(args) == 0 {
			return nil, errors.New("missing name")
		}
		b := &Brush{Kind: kind, Direction: Left}
		if err := json.Unmarshal(args[0], &b.Name); err != nil {
			return nil, err
		}
		if len(args) > 1 {
			opts := objectOptions{}
			if err := json.Unmarshal(args[1], &opts); err != nil {
				return nil, err
			}
			if opts.Direction != "" {
				b.Direction = ParseDirection(opts.Direction)
			}
			b.Parameters = opts.Parameters
		}
		return b, nil
	case "biometree":
		return &Brush{Kind: BrushBiomeTree}, nil
	case "biomeitems":
		return &Brush{Kind: BrushBiomeItems}, nil
	case "wire":
		if len(args) == 0 {
			return nil, errors.New("missing wire settings")
		}
		opts := wireOptions{}
		if err := json.Unmarshal(args[0], &opts); err != nil {
			return nil, err
		}
		return &Brush{Kind: BrushWire, WireGroup: opts.Group, WireLocal: opts.Local}, nil
	case "item":
		if len(args) == 0 {
			return nil, errors.New("missing item")
		}
		item := ItemDescriptor{Count: 1}
		var name string
		if err := json.Unmarshal(args[0], &name); err == nil {
			item.Name = name
		} else if err := json.Unmarshal(args[0], &item); err != nil {
			return nil, err
		}
		return &Brush{Kind: BrushItem, Item: item}, nil
	case "npc", "stagehand":
		if len(args) == 0 {
			return nil, errors.New("missing spawn definition")
		}
		def := map[string]interface{}{}
		if err := json.Unmarshal(args[0], &def); err != nil {
			return nil, err
		}
		kind := BrushNpc
		if key == "stagehand" {
			kind = BrushStagehand
		}
		return &Brush{Kind: kind, Parameters: args[0]}, nil
	case "playerstart":
		return &Brush{Kind: BrushPlayerStart}, nil
	case "dungeonid":
		if len(args) == 0 {
			return nil, errors.New("missing dungeon id")
		}
		var id DungeonID
		if err := json.Unmarshal(args[0], &id); err != nil {
			return nil, err
		}
		return &Brush{Kind: BrushDungeonID, DungeonID: id}, nil
	case "random":
		return parseRandomBrush(args)
	case "invalid":
		return &Brush{Kind: BrushInvalid}, nil
	}

	return nil, ErrUnknownBrush
}

// parseMaterialBrush handles "front" & "back"
func parseMaterialBrush(kind BrushKind, args []json.RawMessage) (*Brush, error) {
	if len(args) == 0 {
		return nil, errors.New("missing material")
	}

	b := &Brush{Kind: kind}
	if err := json.Unmarshal(args[0], &b.Material.Name); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return b, nil
	}

	var mod string
	if err := json.Unmarshal(args[1], &mod); err == nil {
		b.Mod = Mod{Name: mod}
		return b, nil
	}

	opts := frontOptions{}
	if err := json.Unmarshal(args[1], &opts); err != nil {
		return nil, err
	}
	b.Material.HueShift = opts.HueShift
	b.Material.ColorVariant = opts.ColorVariant
	b.Mod = Mod{Name: opts.Mod, HueShift: opts.ModHueShift}
	return b, nil
}

// parseLiquidBrush handles ["liquid", name, quantity?, source?]
func parseLiquidBrush(args []json.RawMessage) (*Brush, error) {
	if len(args) == 0 {
		return nil, errors.New("missing liquid name")
	}

	b := &Brush{Kind: BrushLiquid, Liquid: LiquidStore{Level: 1}}
	if err := json.Unmarshal(args[0], &b.Liquid.Liquid); err != nil {
		return nil, err
	}
	if len(args) > 1 {
		if err := json.Unmarshal(args[1], &b.Liquid.Level); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if err := json.Unmarshal(args[2], &b.Liquid.Source); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// parseRandomBrush handles ["random", [option, ...]] where each option
// is a single brush or a list of brushes.
func parseRandomBrush(args []json.RawMessage) (*Brush, error) {
	if len(args) == 0 {
		return nil, errors.New("missing options")
	}

	options := []json.RawMessage{}
	if err := json.Unmarshal(args[0], &options); err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, errors.New("no options given")
	}

	b := &Brush{Kind: BrushRandom, Choices: make([][]*Brush, 0, len(options))}
	for _, opt := range options {
		elements := []json.RawMessage{}
		if err := json.Unmarshal(opt, &elements); err != nil {
			return nil, err
		}

		var key string
		if len(elements) > 0 && json.Unmarshal(elements[0], &key) == nil {
			// a single brush
			sub, err := ParseBrush(opt)
			if err != nil {
				return nil, err
			}
			b.Choices = append(b.Choices, []*Brush{sub})
			continue
		}

		group, err := parseBrushes(elements)
		if err != nil {
			return nil, err
		}
		b.Choices = append(b.Choices, group)
	}

	return b, nil
}

// parseBrushes parses a list of brushes
func parseBrushes(raw []json.RawMessage) ([]*Brush, error) {
	brushes := make([]*Brush, 0, len(raw))
	for _, r := range raw {
		b, err := ParseBrush(r)
		if err != nil {
			return nil, err
		}
		brushes = append(brushes, b)
	}
	return brushes, nil
}

// salts keep per tile random choices of different brushes apart
const (
	randomSalt  = 0x52414e44
	speciesSalt = 0x53504543
)

// Paint applies the brush at pos if the brush acts in the given phase.
func (b *Brush) Paint(pos image.Point, phase Phase, w *Writer) {
	b.paint(pos, phase, w, 0)
}

// paint applies the brush, salt being the brush's place within it's tile
// (index & nesting) so that random choices made by sibling or nested brushes
// are independent of each other.
func (b *Brush) paint(pos image.Point, phase Phase, w *Writer, salt uint64) {
	switch b.Kind {
	case BrushClear:
		if phase == ClearPhase {
			w.SetForegroundMaterial(pos, Material{Name: EmptyMaterial})
			w.SetForegroundMod(pos, Mod{Name: NoMod})
			w.ClearLiquid(pos)
		}
	case BrushFront, BrushBack:
		b.paintMaterial(pos, phase, w)
	case BrushSurface, BrushSurfaceBackground:
		b.paintSurface(pos, phase, w)
	case BrushLiquid:
		if phase == WallPhase {
			w.RequestLiquid(pos, b.Liquid)
		}
	case BrushObject:
		if phase == ObjectPhase {
			w.PlaceObject(pos, ObjectPlacement{Name: b.Name, Direction: b.Direction, Parameters: b.Parameters})
		}
	case BrushVehicle:
		if phase == ObjectPhase {
			w.PlaceVehicle(tileOrigin(pos), VehiclePlacement{Name: b.Name, Parameters: b.Parameters})
		}
	case BrushBiomeTree:
		if phase == BiomeTreesPhase {
			w.PlaceBiomeTree(pos)
		}
	case BrushBiomeItems:
		if phase == BiomeItemsPhase {
			w.PlaceSurfaceBiomeItems(pos)
		}
	case BrushWire:
		if phase == WirePhase {
			w.RequestWire(pos, b.WireGroup, b.WireLocal)
		}
	case BrushItem:
		if phase == ItemPhase {
			w.AddDrop(tileCentre(pos), b.Item)
		}
	case BrushNpc:
		if phase == NpcPhase {
			w.SpawnNpc(tileOrigin(pos), b.npcParameters(pos, w.Seed(), salt))
		}
	case BrushStagehand:
		if phase == NpcPhase {
			w.SpawnStagehand(tileOrigin(pos), b.Parameters)
		}
	case BrushPlayerStart:
		if phase == NpcPhase {
			w.SetPlayerStart(tileOrigin(pos))
		}
	case BrushDungeonID:
		if phase == DungeonIDPhase {
			w.SetDungeonID(pos, b.DungeonID)
		}
	case BrushRandom:
		choice := b.Choices[hash.Intn(hash.Salt(w.Seed(), salt+randomSalt), pos.X, pos.Y, len(b.Choices))]
		for i, sub := range choice {
			sub.paint(pos, phase, w, hash.Salt(salt, uint64(i)+1))
		}
	case BrushInvalid:
		if phase == ClearPhase {
			logger.Printf("invalid tile at %v, removed tile kinds are ignored", pos)
		}
	}
}

// paintMaterial handles front & back
func (b *Brush) paintMaterial(pos image.Point, phase Phase, w *Writer) {
	switch phase {
	case WallPhase:
		if b.Kind == BrushFront {
			w.SetForegroundMaterial(pos, b.Material)
		} else {
			w.SetBackgroundMaterial(pos, b.Material)
		}
	case ModsPhase:
		if b.Mod.Name == "" {
			return
		}
		if b.Kind == BrushFront {
			w.SetForegroundMod(pos, b.Mod)
		} else {
			w.SetBackgroundMod(pos, b.Mod)
		}
	}
}

// paintSurface handles surface & surfacebackground
func (b *Brush) paintSurface(pos image.Point, phase Phase, w *Writer) {
	fg := b.Kind == BrushSurface

	switch phase {
	case WallPhase:
		m := Material{Name: BiomeMaterial(b.Variant)}
		if fg {
			w.SetForegroundMaterial(pos, m)
		} else {
			w.SetBackgroundMaterial(pos, m)
		}
	case ModsPhase:
		if b.Mod.Name != "" {
			if fg {
				w.SetForegroundMod(pos, b.Mod)
			} else {
				w.SetBackgroundMod(pos, b.Mod)
			}
			return
		}
		if fg && w.NeedsForegroundBiomeMod(pos) {
			w.SetForegroundMod(pos, Mod{Name: BiomeMod})
		} else if !fg && w.NeedsBackgroundBiomeMod(pos) {
			w.SetBackgroundMod(pos, Mod{Name: BiomeMod})
		}
	}
}

// npcParameters resolves species lists & "stable" seeds for the given position.
// This is a pure function of seed & position so repainting gives the same npc.
func (b *Brush) npcParameters(pos image.Point, seed, salt uint64) json.RawMessage {
	params := map[string]interface{}{}
	if err := json.Unmarshal(b.Parameters, &params); err != nil {
		return b.Parameters
	}

	changed := false
	if species, ok := params["species"].(string); ok && strings.Contains(species, ",") {
		options := strings.Split(species, ",")
		params["species"] = strings.TrimSpace(options[hash.Intn(hash.Salt(seed, salt+speciesSalt), pos.X, pos.Y, len(options))])
		changed = true
	}
	if s, ok := params["seed"].(string); ok && s == "stable" {
		params["seed"] = hash.Hash64(seed, pos.X, pos.Y)
		changed = true
	}
	if !changed {
		return b.Parameters
	}

	data, err := json.Marshal(params)
	if err != nil {
		return b.Parameters
	}
	return data
}

// tileOrigin is the world position of the bottom left of a tile
func tileOrigin(pos image.Point) r2.Point {
	return r2.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

// tileCentre is the world position of the centre of a tile
func tileCentre(pos image.Point) r2.Point {
	return r2.Point{X: float64(pos.X) + 0.5, Y: float64(pos.Y) + 0.5}
}
