package dungeongraph

import (
	"image"
	"testing"

	"github.com/zyedidia/generic/mapset"
)

func brickTile() *Tile {
	return &Tile{Brushes: []*Brush{{Kind: BrushFront, Material: Material{Name: "brick"}}}}
}

func connectorTile(d Direction) *Tile {
	return &Tile{Connector: &TileConnector{Value: "door", Direction: d}}
}

func TestNewPart_ConnectorByNeighbours(t *testing.T) {
	cases := []struct {
		name   string
		at     image.Point
		expect Direction
	}{
		{name: "used tile to the left", at: image.Pt(2, 1), expect: Right},
		{name: "used tile to the right", at: image.Pt(0, 1), expect: Left},
		{name: "used tile below", at: image.Pt(1, 2), expect: Up},
		{name: "used tile above", at: image.Pt(1, 0), expect: Down},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewTileGrid(3, 3)
			grid.Set(1, 1, brickTile())
			grid.Set(tt.at.X, tt.at.Y, connectorTile(Unknown))

			p, err := NewPart(&PartConfig{Name: "room"}, grid)
			if err != nil {
				t.Fatal(err)
			}

			conns := p.Connectors()
			if len(conns) != 1 {
				t.Fatalf("expected 1 connector, got %d", len(conns))
			}
			if conns[0].Direction != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, conns[0].Direction)
			}
			if conns[0].Offset != tt.at || conns[0].Part != "room" || conns[0].Value != "door" {
				t.Fatalf("unexpected connector %+v", conns[0])
			}
		})
	}
}

func TestNewPart_ConnectorByEdge(t *testing.T) {
	cases := []struct {
		at     image.Point
		expect Direction
	}{
		{at: image.Pt(0, 2), expect: Left},
		{at: image.Pt(4, 2), expect: Right},
		{at: image.Pt(2, 0), expect: Down},
		{at: image.Pt(2, 4), expect: Up},
	}

	for _, tt := range cases {
		grid := NewTileGrid(5, 5)
		grid.Set(tt.at.X, tt.at.Y, connectorTile(Unknown))

		p, err := NewPart(&PartConfig{Name: "room"}, grid)
		if err != nil {
			t.Fatal(err)
		}
		got := p.Connectors()[0].Direction
		if got != tt.expect {
			t.Errorf("%v: expected %s, got %s", tt.at, tt.expect, got)
		}
	}
}

func TestNewPart_ConnectorExplicit(t *testing.T) {
	grid := NewTileGrid(3, 3)
	grid.Set(1, 1, brickTile())
	grid.Set(2, 1, connectorTile(Up))

	p, err := NewPart(&PartConfig{Name: "room"}, grid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Connectors()[0].Direction != Up {
		t.Fatalf("expected explicit direction kept, got %s", p.Connectors()[0].Direction)
	}
}

func TestNewPart_Anchor(t *testing.T) {
	solid := &Rule{Kind: RuleMustContainSolid, Layer: Foreground}
	open := &Rule{Kind: RuleMustContainAir, Layer: Foreground}

	cases := []struct {
		name   string
		build  func(g *TileGrid)
		expect image.Point
	}{
		{
			name:   "no constraints",
			build:  func(g *TileGrid) { g.Fill(image.Rect(0, 0, 4, 3), brickTile()) },
			expect: image.Pt(1, 0),
		},
		{
			name: "solid foundation",
			build: func(g *TileGrid) {
				g.Fill(image.Rect(0, 0, 4, 1), &Tile{Brushes: brickTile().Brushes, Rules: []*Rule{solid}})
				g.Fill(image.Rect(0, 1, 4, 3), brickTile())
			},
			expect: image.Pt(1, 1),
		},
		{
			name: "open above",
			build: func(g *TileGrid) {
				g.Fill(image.Rect(0, 0, 4, 2), brickTile())
				g.Fill(image.Rect(0, 2, 4, 3), &Tile{Brushes: brickTile().Brushes, Rules: []*Rule{open}})
			},
			expect: image.Pt(1, 2),
		},
		{
			name:   "empty part",
			build:  func(g *TileGrid) {},
			expect: image.Pt(2, 0),
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			grid := NewTileGrid(4, 3)
			tt.build(grid)

			p, err := NewPart(&PartConfig{Name: "room"}, grid)
			if err != nil {
				t.Fatal(err)
			}
			if p.AnchorPoint() != tt.expect {
				t.Fatalf("expected anchor %v, got %v", tt.expect, p.AnchorPoint())
			}
			if p.PlacementLevel() != tt.expect.Y {
				t.Fatalf("expected level %d, got %d", tt.expect.Y, p.PlacementLevel())
			}
		})
	}
}

func TestNewPart_GroundAboveAir(t *testing.T) {
	grid := NewTileGrid(2, 2)
	grid.Set(0, 0, &Tile{Rules: []*Rule{{Kind: RuleMustContainAir}}})
	grid.Set(0, 1, &Tile{Rules: []*Rule{{Kind: RuleMustContainSolid}}})

	_, err := NewPart(&PartConfig{Name: "broken"}, grid)
	if err == nil {
		t.Fatal("expected error when ground is required above air")
	}
}

func TestNewPart_Config(t *testing.T) {
	chance := 0.25
	lo, hi := 1.0, 3.0

	p, err := NewPart(&PartConfig{
		Name:               "room",
		Chance:             &chance,
		MarkDungeonID:      true,
		MinimumThreatLevel: &lo,
		MaximumThreatLevel: &hi,
	}, NewTileGrid(1, 1))
	if err != nil {
		t.Fatal(err)
	}

	if p.Chance() != 0.25 || !p.MarkDungeonID() {
		t.Fatalf("unexpected chance %v mark %v", p.Chance(), p.MarkDungeonID())
	}
	for level, expect := range map[float64]bool{0: false, 1: true, 2.5: true, 3: true, 3.5: false} {
		if p.AllowsThreatLevel(level) != expect {
			t.Errorf("threat %v: expected %v", level, expect)
		}
	}

	def, err := NewPart(&PartConfig{Name: "plain"}, NewTileGrid(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if def.Chance() != 1 || !def.AllowsThreatLevel(100) {
		t.Fatal("expected defaults of chance 1 & any threat level")
	}
}

func TestPart_Rules(t *testing.T) {
	p := &Part{name: "a", rules: []*Rule{
		{Kind: RuleMaxSpawnCount, MaxCount: 1},
		{Kind: RuleDoNotConnectToPart, Parts: []string{"b"}},
		{Kind: RuleDoNotCombineWith, Parts: []string{"c"}},
		{Kind: RuleIgnorePartMaximum},
	}}
	b := &Part{name: "b"}
	c := &Part{name: "c", rules: []*Rule{{Kind: RuleDoNotConnectToPart, Parts: []string{"a"}}}}
	d := &Part{name: "d"}

	if !p.AllowsPlacement(0) || p.AllowsPlacement(1) {
		t.Error("expected max spawn count of 1")
	}
	if !p.DoesNotConnectTo(b) || !b.DoesNotConnectTo(p) {
		t.Error("expected a & b to refuse each other")
	}
	if !p.DoesNotConnectTo(c) {
		t.Error("expected c's rule to refuse a")
	}
	if p.DoesNotConnectTo(d) {
		t.Error("expected a & d to connect")
	}
	if p.CheckPartCombinationsAllowed(map[string]int{"c": 1}) {
		t.Error("expected a blocked once c is placed")
	}
	if !p.IgnoresPartMaximum() || d.IgnoresPartMaximum() {
		t.Error("unexpected IgnoresPartMaximum")
	}
}

func TestPart_CollidesWithPlaces(t *testing.T) {
	grid := NewTileGrid(2, 2)
	grid.Set(0, 0, brickTile())
	grid.Set(1, 1, &Tile{Brushes: brickTile().Brushes, Rules: []*Rule{{Kind: RuleAllowOverdrawing}}})

	p, err := NewPart(&PartConfig{Name: "room"}, grid)
	if err != nil {
		t.Fatal(err)
	}

	places := mapset.New[image.Point]()
	places.Put(image.Pt(11, 11))
	if p.CollidesWithPlaces(image.Pt(10, 10), places, WorldGeometry{}) {
		t.Fatal("expected overdrawable tile not to collide")
	}

	places.Put(image.Pt(10, 10))
	if !p.CollidesWithPlaces(image.Pt(10, 10), places, WorldGeometry{}) {
		t.Fatal("expected collision")
	}

	// claimed positions are wrapped, the part is not until checked
	if !p.CollidesWithPlaces(image.Pt(30, 10), places, WorldGeometry{Width: 20, Height: 20}) {
		t.Fatal("expected collision around the world")
	}
	if p.CollidesWithPlaces(image.Pt(30, 10), places, WorldGeometry{Width: 25, Height: 20}) {
		t.Fatal("expected no collision in a wider world")
	}
}

func TestPart_InsideWorld(t *testing.T) {
	grid := NewTileGrid(2, 3)
	grid.Fill(image.Rect(0, 0, 2, 3), brickTile())

	p, err := NewPart(&PartConfig{Name: "room"}, grid)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		pos    image.Point
		geom   WorldGeometry
		expect bool
	}{
		{name: "inside", pos: image.Pt(5, 5), geom: WorldGeometry{Width: 10, Height: 10}, expect: true},
		{name: "touching top", pos: image.Pt(5, 7), geom: WorldGeometry{Width: 10, Height: 10}, expect: true},
		{name: "above top", pos: image.Pt(5, 8), geom: WorldGeometry{Width: 10, Height: 10}},
		{name: "below bottom", pos: image.Pt(5, -1), geom: WorldGeometry{Width: 10, Height: 10}},
		{name: "past the edge", pos: image.Pt(25, 0), geom: WorldGeometry{Width: 10, Height: 10}, expect: true},
		{name: "no height", pos: image.Pt(5, 500), expect: true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if p.InsideWorld(tt.pos, tt.geom) != tt.expect {
				t.Fatalf("expected %v", tt.expect)
			}
		})
	}
}

func TestPart_PlaceSkipsClaimed(t *testing.T) {
	grid := NewTileGrid(2, 1)
	grid.Fill(image.Rect(0, 0, 2, 1), brickTile())

	p, err := NewPart(&PartConfig{Name: "room"}, grid)
	if err != nil {
		t.Fatal(err)
	}

	places := mapset.New[image.Point]()
	places.Put(image.Pt(5, 5))

	w := NewWriter(nil, WriterConfig{})
	p.Place(image.Pt(5, 5), places, w)
	w.FinishPart()

	if _, ok := w.foregroundMaterial[image.Pt(5, 5)]; ok {
		t.Error("expected claimed position to be skipped")
	}
	if w.foregroundMaterial[image.Pt(6, 5)].Name != "brick" {
		t.Error("expected unclaimed position to be painted")
	}
	boxes := w.BoundingBoxes()
	if len(boxes) != 1 || boxes[0] != image.Rect(5, 5, 7, 6) {
		t.Errorf("expected part bounds, got %v", boxes)
	}
}
