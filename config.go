package dungeongraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefinitionConfig is the on disk (json) form of a dungeon.
type DefinitionConfig struct {
	Metadata *MetadataConfig `json:"metadata"`

	// Tiles is the tileset used by "image" parts; colour -> tile
	Tiles []*TileConfig `json:"tiles,omitempty"`

	Parts []*PartConfig `json:"parts"`
}

// MetadataConfig holds dungeon wide settings.
type MetadataConfig struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Species     string `json:"species,omitempty"`

	// if set, tiles tagged with the dungeon id are protected from players
	Protected bool `json:"protected,omitempty"`

	// max distance (in tiles) of any part from the anchor
	MaxRadius float64 `json:"maxRadius"`

	// max number of parts, parts with the "ignorePartMaximumRule" rule don't count
	MaxParts int `json:"maxParts"`

	// how far above the surface the "space" region extends for surface dungeons
	ExtendSurfaceFreeSpace int `json:"extendSurfaceFreeSpace,omitempty"`

	// names of parts the dungeon may start from
	Anchor []string `json:"anchor"`

	// rules applied to every part
	Rules []json.RawMessage `json:"rules,omitempty"`

	// optional dungeon environment overrides
	Gravity    *float64 `json:"gravity,omitempty"`
	Breathable *bool    `json:"breathable,omitempty"`
}

// PartConfig is a single part within a dungeon definition.
type PartConfig struct {
	Name  string            `json:"name"`
	Rules []json.RawMessage `json:"rules,omitempty"`

	// relative weight when picking between parts, defaults to 1
	Chance *float64 `json:"chance,omitempty"`

	MarkDungeonID       bool `json:"markDungeonId,omitempty"`
	OverrideAllowAlways bool `json:"overrideAllowAlways,omitempty"`

	MinimumThreatLevel *float64 `json:"minimumThreatLevel,omitempty"`
	MaximumThreatLevel *float64 `json:"maximumThreatLevel,omitempty"`

	// defaults to true
	ClearAnchoredObjects *bool `json:"clearAnchoredObjects,omitempty"`

	// [kind, asset] or [kind, [assets...]]
	Def []json.RawMessage `json:"def"`
}

// chance returns the configured chance, defaulting to 1
func (p *PartConfig) chance() float64 {
	if p.Chance == nil {
		return 1
	}
	return *p.Chance
}

// clearAnchoredObjects returns the configured setting, defaulting to true
func (p *PartConfig) clearAnchoredObjects() bool {
	if p.ClearAnchoredObjects == nil {
		return true
	}
	return *p.ClearAnchoredObjects
}

// reader returns the "def" kind & asset path(s)
func (p *PartConfig) reader() (string, []string, error) {
	if len(p.Def) < 2 {
		return "", nil, errors.New("def must be [kind, asset(s)]")
	}

	var kind string
	err := json.Unmarshal(p.Def[0], &kind)
	if err != nil {
		return "", nil, errors.Wrap(err, "def kind must be a string")
	}

	var asset string
	if err := json.Unmarshal(p.Def[1], &asset); err == nil {
		return kind, []string{asset}, nil
	}

	assets := []string{}
	err = json.Unmarshal(p.Def[1], &assets)
	if err != nil {
		return "", nil, errors.Wrap(err, "def assets must be a string or list of strings")
	}
	if len(assets) == 0 {
		return "", nil, errors.New("def names no assets")
	}
	return kind, assets, nil
}

// TileConfig maps an image colour to a tile.
type TileConfig struct {
	// [r, g, b, a]
	Value   [4]uint8          `json:"value"`
	Comment string            `json:"comment,omitempty"`
	Brush   []json.RawMessage `json:"brush,omitempty"`
	Rules   []json.RawMessage `json:"rules,omitempty"`

	// either `true` (the colour is the connector value) or
	// {"value": "...", "direction": "left", "forwardOnly": false}
	Connector json.RawMessage `json:"connector,omitempty"`

	// direction for `"connector": true`, inferred if not set
	Direction string `json:"direction,omitempty"`
}

// connectorConfig is the object form of TileConfig.Connector
type connectorConfig struct {
	Value       string `json:"value"`
	Direction   string `json:"direction"`
	ForwardOnly bool   `json:"forwardOnly"`
}

// Tileset is a parsed set of TileConfig keyed by colour
type Tileset struct {
	tiles map[[4]uint8]*Tile
}

// newTileset parses every tile in the config
func newTileset(cfgs []*TileConfig) (*Tileset, error) {
	ts := &Tileset{tiles: map[[4]uint8]*Tile{}}
	for _, cfg := range cfgs {
		t, err := cfg.tile()
		if err != nil {
			return nil, errors.Wrapf(err, "tile %v", cfg.Value)
		}
		ts.tiles[cfg.Value] = t
	}
	return ts, nil
}

// Tile returns the tile for the given colour, if any
func (t *Tileset) Tile(rgba [4]uint8) (*Tile, bool) {
	if t == nil {
		return nil, false
	}
	tile, ok := t.tiles[rgba]
	return tile, ok
}

// tile parses the brushes, rules & connector of the tile
func (c *TileConfig) tile() (*Tile, error) {
	brushes, err := parseBrushes(c.Brush)
	if err != nil {
		return nil, err
	}

	rules, err := parseRules(c.Rules)
	if err != nil {
		return nil, err
	}

	t := &Tile{Brushes: brushes, Rules: rules}
	if len(c.Connector) == 0 {
		return t, nil
	}

	var flag bool
	if err := json.Unmarshal(c.Connector, &flag); err == nil {
		if flag {
			t.Connector = &TileConnector{
				Value:     colourValue(c.Value),
				Direction: directionOrUnknown(c.Direction),
			}
		}
		return t, nil
	}

	cc := connectorConfig{}
	err = json.Unmarshal(c.Connector, &cc)
	if err != nil {
		return nil, errors.Wrap(err, "connector must be a bool or object")
	}
	if cc.Value == "" {
		cc.Value = colourValue(c.Value)
	}
	if cc.Direction == "" {
		cc.Direction = c.Direction
	}
	t.Connector = &TileConnector{
		Value:       cc.Value,
		Direction:   directionOrUnknown(cc.Direction),
		ForwardOnly: cc.ForwardOnly,
	}
	return t, nil
}

// directionOrUnknown parses a direction, where an empty string is Unknown
func directionOrUnknown(s string) Direction {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return ParseDirection(s)
}

// colourValue formats a colour as a connector value
func colourValue(c [4]uint8) string {
	return fmt.Sprintf("%d,%d,%d,%d", c[0], c[1], c[2], c[3])
}
