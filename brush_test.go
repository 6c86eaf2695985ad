package dungeongraph

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/pkg/errors"

	"github.com/voidshard/dungeongraph/internal/hash"
)

func TestParseBrush(t *testing.T) {
	cases := []struct {
		raw  string
		kind BrushKind
		fn   func(t *testing.T, b *Brush)
	}{
		{raw: `["clear"]`, kind: BrushClear},
		{
			raw:  `["front", "brick"]`,
			kind: BrushFront,
			fn: func(t *testing.T, b *Brush) {
				if b.Material.Name != "brick" || b.Mod.Name != "" {
					t.Errorf("unexpected material %v mod %v", b.Material, b.Mod)
				}
			},
		},
		{
			raw:  `["back", "dirt", "grass"]`,
			kind: BrushBack,
			fn: func(t *testing.T, b *Brush) {
				if b.Material.Name != "dirt" || b.Mod.Name != "grass" {
					t.Errorf("unexpected material %v mod %v", b.Material, b.Mod)
				}
			},
		},
		{
			raw:  `["front", "stone", {"mod": "moss", "hueshift": 12, "modhueshift": 3, "colorVariant": 2}]`,
			kind: BrushFront,
			fn: func(t *testing.T, b *Brush) {
				expect := Material{Name: "stone", HueShift: 12, ColorVariant: 2}
				if b.Material != expect {
					t.Errorf("expected %v got %v", expect, b.Material)
				}
				if b.Mod != (Mod{Name: "moss", HueShift: 3}) {
					t.Errorf("unexpected mod %v", b.Mod)
				}
			},
		},
		{
			raw:  `["surface", {"variant": 3}]`,
			kind: BrushSurface,
			fn: func(t *testing.T, b *Brush) {
				if b.Variant != 3 {
					t.Errorf("expected variant 3 got %d", b.Variant)
				}
			},
		},
		{raw: `["surfacebackground"]`, kind: BrushSurfaceBackground},
		{
			raw:  `["liquid", "water"]`,
			kind: BrushLiquid,
			fn: func(t *testing.T, b *Brush) {
				if b.Liquid.Liquid != "water" || b.Liquid.Level != 1 || b.Liquid.Source {
					t.Errorf("unexpected liquid %v", b.Liquid)
				}
			},
		},
		{
			raw:  `["liquid", "lava", 0.5, true]`,
			kind: BrushLiquid,
			fn: func(t *testing.T, b *Brush) {
				if b.Liquid.Liquid != "lava" || b.Liquid.Level != 0.5 || !b.Liquid.Source {
					t.Errorf("unexpected liquid %v", b.Liquid)
				}
			},
		},
		{
			raw:  `["object", "lantern"]`,
			kind: BrushObject,
			fn: func(t *testing.T, b *Brush) {
				if b.Name != "lantern" || b.Direction != Left {
					t.Errorf("unexpected object %s facing %s", b.Name, b.Direction)
				}
			},
		},
		{
			raw:  `["object", "chest", {"direction": "right", "parameters": {"treasure": "gold"}}]`,
			kind: BrushObject,
			fn: func(t *testing.T, b *Brush) {
				if b.Direction != Right || len(b.Parameters) == 0 {
					t.Errorf("unexpected object %s facing %s params %s", b.Name, b.Direction, b.Parameters)
				}
			},
		},
		{raw: `["vehicle", "hoverbike"]`, kind: BrushVehicle},
		{raw: `["biometree"]`, kind: BrushBiomeTree},
		{raw: `["biomeitems"]`, kind: BrushBiomeItems},
		{
			raw:  `["wire", {"group": "door", "local": true}]`,
			kind: BrushWire,
			fn: func(t *testing.T, b *Brush) {
				if b.WireGroup != "door" || !b.WireLocal {
					t.Errorf("unexpected wire %s local %v", b.WireGroup, b.WireLocal)
				}
			},
		},
		{
			raw:  `["item", "coin"]`,
			kind: BrushItem,
			fn: func(t *testing.T, b *Brush) {
				if b.Item.Name != "coin" || b.Item.Count != 1 {
					t.Errorf("unexpected item %v", b.Item)
				}
			},
		},
		{
			raw:  `["item", {"name": "arrow", "count": 20}]`,
			kind: BrushItem,
			fn: func(t *testing.T, b *Brush) {
				if b.Item.Name != "arrow" || b.Item.Count != 20 {
					t.Errorf("unexpected item %v", b.Item)
				}
			},
		},
		{raw: `["npc", {"species": "human"}]`, kind: BrushNpc},
		{raw: `["stagehand", {"type": "boss"}]`, kind: BrushStagehand},
		{raw: `["playerstart"]`, kind: BrushPlayerStart},
		{
			raw:  `["dungeonid", 7]`,
			kind: BrushDungeonID,
			fn: func(t *testing.T, b *Brush) {
				if b.DungeonID != 7 {
					t.Errorf("expected id 7 got %d", b.DungeonID)
				}
			},
		},
		{
			raw:  `["random", [["front", "a"], [["front", "b"], ["back", "c"]]]]`,
			kind: BrushRandom,
			fn: func(t *testing.T, b *Brush) {
				if len(b.Choices) != 2 {
					t.Fatalf("expected 2 choices got %d", len(b.Choices))
				}
				if len(b.Choices[0]) != 1 || len(b.Choices[1]) != 2 {
					t.Errorf("unexpected choice sizes %d %d", len(b.Choices[0]), len(b.Choices[1]))
				}
			},
		},
		{raw: `["invalid"]`, kind: BrushInvalid},
	}

	for _, tt := range cases {
		t.Run(tt.raw, func(t *testing.T) {
			b, err := ParseBrush(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %d", tt.kind, b.Kind)
			}
			if tt.fn != nil {
				tt.fn(t, b)
			}
		})
	}
}

func TestParseBrush_Errors(t *testing.T) {
	cases := []string{
		`"front"`,
		`[]`,
		`["front"]`,
		`["surface", {"variant": 6}]`,
		`["object"]`,
		`["wire"]`,
		`["npc", "bob"]`,
		`["random", []]`,
		`["random", [["nonsense"]]]`,
	}
	for _, raw := range cases {
		_, err := ParseBrush(json.RawMessage(raw))
		if err == nil {
			t.Errorf("%s: expected error", raw)
		}
	}
}

func TestParseBrush_Unknown(t *testing.T) {
	_, err := ParseBrush(json.RawMessage(`["paint", "red"]`))
	if !errors.Is(err, ErrUnknownBrush) {
		t.Fatalf("expected ErrUnknownBrush, got %v", err)
	}
}

func TestBrush_PaintPhases(t *testing.T) {
	b, err := ParseBrush(json.RawMessage(`["front", "brick", "moss"]`))
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(nil, WriterConfig{Seed: 1})
	pos := image.Pt(3, 4)

	b.Paint(pos, ObjectPhase, w)
	if len(w.foregroundMaterial) != 0 || len(w.foregroundMod) != 0 {
		t.Fatal("expected nothing painted outside the brush's phases")
	}

	b.Paint(pos, WallPhase, w)
	if w.foregroundMaterial[pos].Name != "brick" {
		t.Fatalf("expected brick, got %v", w.foregroundMaterial[pos])
	}
	if len(w.foregroundMod) != 0 {
		t.Fatal("expected mod to wait for the mods phase")
	}

	b.Paint(pos, ModsPhase, w)
	if w.foregroundMod[pos].Name != "moss" {
		t.Fatalf("expected moss, got %v", w.foregroundMod[pos])
	}
}

func TestBrush_PaintClear(t *testing.T) {
	w := NewWriter(nil, WriterConfig{})
	pos := image.Pt(1, 1)
	w.RequestLiquid(pos, LiquidStore{Liquid: "water", Level: 1})

	b := &Brush{Kind: BrushClear}
	b.Paint(pos, ClearPhase, w)

	if w.foregroundMaterial[pos].Name != EmptyMaterial {
		t.Errorf("expected fg cleared, got %v", w.foregroundMaterial[pos])
	}
	if w.foregroundMod[pos].Name != NoMod {
		t.Errorf("expected fg mod cleared, got %v", w.foregroundMod[pos])
	}
	if _, ok := w.pendingLiquids[pos]; ok {
		t.Error("expected pending liquid to be dropped")
	}
	if l, ok := w.liquids[pos]; !ok || l.Liquid != "" {
		t.Errorf("expected liquid cleared, got %v", l)
	}
}

func TestBrush_RandomIsStable(t *testing.T) {
	b, err := ParseBrush(json.RawMessage(`["random", [["front", "a"], ["front", "b"], ["front", "c"]]]`))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		pos := image.Pt(i, i*3)

		w1 := NewWriter(nil, WriterConfig{Seed: 99})
		w2 := NewWriter(nil, WriterConfig{Seed: 99})
		b.Paint(pos, WallPhase, w1)
		b.Paint(pos, WallPhase, w2)

		got := w1.foregroundMaterial[pos].Name
		if got != w2.foregroundMaterial[pos].Name {
			t.Fatalf("%v: random brush not stable", pos)
		}

		expect := []string{"a", "b", "c"}[hash.Intn(hash.Salt(99, randomSalt), pos.X, pos.Y, 3)]
		if got != expect {
			t.Fatalf("%v: expected %s, got %s", pos, expect, got)
		}
	}
}

func TestBrush_NpcParameters(t *testing.T) {
	b, err := ParseBrush(json.RawMessage(`["npc", {"species": "human, avian", "seed": "stable", "typeName": "guard"}]`))
	if err != nil {
		t.Fatal(err)
	}

	pos := image.Pt(5, 6)
	w := NewWriter(nil, WriterConfig{Seed: 1234})
	b.Paint(pos, NpcPhase, w)

	if len(w.npcs) != 1 {
		t.Fatalf("expected 1 npc, got %d", len(w.npcs))
	}
	if w.npcs[0].pos.X != 5 || w.npcs[0].pos.Y != 6 {
		t.Errorf("expected npc at tile origin, got %v", w.npcs[0].pos)
	}

	params := struct {
		Species  string `json:"species"`
		Seed     uint64 `json:"seed"`
		TypeName string `json:"typeName"`
	}{}
	err = json.Unmarshal(w.npcs[0].definition, &params)
	if err != nil {
		t.Fatal(err)
	}

	species := []string{"human", "avian"}[hash.Intn(hash.Salt(1234, speciesSalt), pos.X, pos.Y, 2)]
	if params.Species != species {
		t.Errorf("expected species %s, got %s", species, params.Species)
	}
	if params.Seed != hash.Hash64(1234, pos.X, pos.Y) {
		t.Errorf("expected stable seed, got %d", params.Seed)
	}
	if params.TypeName != "guard" {
		t.Errorf("expected other parameters kept, got %s", params.TypeName)
	}
}

func TestBrush_SurfaceBiomeMod(t *testing.T) {
	b := &Brush{Kind: BrushSurface, Variant: 2}

	cases := []struct {
		name   string
		above  *Material
		expect bool
	}{
		{name: "open above", expect: true},
		{name: "empty above", above: &Material{Name: EmptyMaterial}, expect: true},
		{name: "solid above", above: &Material{Name: "brick"}, expect: false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(nil, WriterConfig{})
			pos := image.Pt(2, 2)
			if tt.above != nil {
				w.SetForegroundMaterial(pos.Add(image.Pt(0, 1)), *tt.above)
			}

			b.Paint(pos, WallPhase, w)
			if w.foregroundMaterial[pos].Name != "biome2" {
				t.Fatalf("expected biome2, got %v", w.foregroundMaterial[pos])
			}

			b.Paint(pos, ModsPhase, w)
			_, ok := w.foregroundMod[pos]
			if ok != tt.expect {
				t.Fatalf("expected biome mod %v, got %v", tt.expect, ok)
			}
			if ok && w.foregroundMod[pos].Name != BiomeMod {
				t.Fatalf("expected biome mod, got %v", w.foregroundMod[pos])
			}
		})
	}
}

func TestBrush_EntityPositions(t *testing.T) {
	w := NewWriter(nil, WriterConfig{})
	pos := image.Pt(4, 7)

	(&Brush{Kind: BrushItem, Item: ItemDescriptor{Name: "coin", Count: 1}}).Paint(pos, ItemPhase, w)
	(&Brush{Kind: BrushPlayerStart}).Paint(pos, NpcPhase, w)

	if len(w.drops) != 1 || w.drops[0].pos.X != 4.5 || w.drops[0].pos.Y != 7.5 {
		t.Fatalf("expected drop at tile centre, got %v", w.drops)
	}
	if w.playerStart == nil || w.playerStart.X != 4 || w.playerStart.Y != 7 {
		t.Fatalf("expected player start at tile origin, got %v", w.playerStart)
	}
}

func TestBrush_RandomChoicesIndependent(t *testing.T) {
	parse := func(raw string) *Brush {
		b, err := ParseBrush(json.RawMessage(raw))
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	t.Run("siblings", func(t *testing.T) {
		tile := &Tile{Brushes: []*Brush{
			parse(`["random", [["front", "a"], ["front", "b"]]]`),
			parse(`["random", [["back", "a"], ["back", "b"]]]`),
		}}
		w := NewWriter(nil, WriterConfig{Seed: 5})

		differ := 0
		for x := 0; x < 200; x++ {
			pos := image.Pt(x, 3)
			tile.Place(pos, WallPhase, w)
			if w.foregroundMaterial[pos].Name != w.backgroundMaterial[pos].Name {
				differ++
			}
		}
		if differ == 0 || differ == 200 {
			t.Fatalf("expected sibling choices to be independent, %d of 200 differ", differ)
		}
	})

	t.Run("nested", func(t *testing.T) {
		// picking the same index at both levels would always give "a"
		b := parse(`["random", [
			["random", [["front", "a"], ["front", "b"]]],
			["random", [["front", "b"], ["front", "a"]]]
		]]`)
		w := NewWriter(nil, WriterConfig{Seed: 5})

		seen := map[string]int{}
		for x := 0; x < 200; x++ {
			pos := image.Pt(x, 3)
			b.Paint(pos, WallPhase, w)
			seen[w.foregroundMaterial[pos].Name]++
		}
		if seen["a"] == 0 || seen["b"] == 0 {
			t.Fatalf("expected nested choices to be independent, got %v", seen)
		}
	})

	t.Run("npc species", func(t *testing.T) {
		tile := &Tile{Brushes: []*Brush{
			parse(`["random", [["front", "human"], ["front", "avian"]]]`),
			parse(`["npc", {"species": "human, avian"}]`),
		}}
		w := NewWriter(nil, WriterConfig{Seed: 5})

		differ := 0
		for x := 0; x < 200; x++ {
			pos := image.Pt(x, 3)
			tile.Place(pos, WallPhase, w)
			tile.Place(pos, NpcPhase, w)

			params := struct {
				Species string `json:"species"`
			}{}
			if err := json.Unmarshal(w.npcs[x].definition, &params); err != nil {
				t.Fatal(err)
			}
			if params.Species != w.foregroundMaterial[pos].Name {
				differ++
			}
		}
		if differ == 0 || differ == 200 {
			t.Fatalf("expected species & material choices to be independent, %d of 200 differ", differ)
		}
	})
}
