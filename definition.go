package dungeongraph

import (
	"encoding/json"
	"io/fs"
	"path"

	"github.com/pkg/errors"
)

const (
	// used when the metadata doesn't set maxRadius / maxParts
	defaultMaxRadius = 100
	defaultMaxParts  = 100
)

// DefaultReaders returns the part readers that are always available.
// "tmx" is not built in; callers may register their own.
func DefaultReaders() map[string]ReaderFunc {
	return map[string]ReaderFunc{
		"image": ImageReader,
	}
}

// Definition is a named collection of parts plus dungeon wide settings.
// A Definition is immutable once built & safe to share between generators.
type Definition struct {
	name        string
	displayName string
	species     string
	protected   bool

	maxRadius              float64
	maxParts               int
	extendSurfaceFreeSpace int

	anchors []string
	rules   []*Rule

	gravity    *float64
	breathable *bool

	// parts in declaration order, and by name
	parts       []*Part
	partsByName map[string]*Part
}

// NewDefinition builds a definition from it's metadata & parts.
// Global rules from the metadata are applied to every part, the parts should
// not be shared with another definition.
func NewDefinition(meta *MetadataConfig, parts []*Part) (*Definition, error) {
	if meta == nil || meta.Name == "" {
		return nil, newDungeonError("", errors.New("metadata missing name"))
	}

	rules, err := parseRules(meta.Rules)
	if err != nil {
		return nil, newDungeonError(meta.Name, errors.Wrap(err, "metadata rules"))
	}

	d := &Definition{
		name:                   meta.Name,
		displayName:            meta.DisplayName,
		species:                meta.Species,
		protected:              meta.Protected,
		maxRadius:              meta.MaxRadius,
		maxParts:               meta.MaxParts,
		extendSurfaceFreeSpace: meta.ExtendSurfaceFreeSpace,
		anchors:                meta.Anchor,
		rules:                  rules,
		gravity:                meta.Gravity,
		breathable:             meta.Breathable,
		parts:                  []*Part{},
		partsByName:            map[string]*Part{},
	}
	if d.maxRadius <= 0 {
		d.maxRadius = defaultMaxRadius
	}
	if d.maxParts <= 0 {
		d.maxParts = defaultMaxParts
	}

	for _, p := range parts {
		_, ok := d.partsByName[p.Name()]
		if ok {
			return nil, newDungeonError(d.name, errors.Errorf("duplicate part name %s", p.Name()))
		}
		d.parts = append(d.parts, p)
		d.partsByName[p.Name()] = p
	}

	if len(d.anchors) == 0 {
		return nil, newDungeonError(d.name, errors.New("no anchor parts given"))
	}
	for _, name := range d.anchors {
		_, ok := d.partsByName[name]
		if !ok {
			return nil, newDungeonError(d.name, errors.Errorf("anchor names unknown part %s", name))
		}
	}

	// parts are only touched once the definition is known to be good
	if len(rules) > 0 {
		for _, p := range d.parts {
			combined := make([]*Rule, 0, len(p.rules)+len(rules))
			combined = append(combined, p.rules...)
			p.rules = append(combined, rules...)
		}
	}

	return d, nil
}

// ParseDefinition reads a dungeon definition (json) that came from the file
// fpath. Part assets are read from fsys relative to the file's directory using
// the reader registered for each part's kind.
// Every failure is a *DungeonError.
func ParseDefinition(data []byte, fsys fs.FS, fpath string, readers map[string]ReaderFunc) (*Definition, error) {
	dir := path.Dir(fpath)

	cfg := &DefinitionConfig{}
	err := json.Unmarshal(data, cfg)
	if err != nil {
		return nil, newDungeonError(path.Base(fpath), errors.Wrap(err, "malformed dungeon json"))
	}
	if cfg.Metadata == nil || cfg.Metadata.Name == "" {
		return nil, newDungeonError(path.Base(fpath), errors.New("metadata missing name"))
	}
	name := cfg.Metadata.Name

	if readers == nil {
		readers = DefaultReaders()
	}

	tileset, err := newTileset(cfg.Tiles)
	if err != nil {
		return nil, newDungeonError(name, err)
	}

	parts := make([]*Part, 0, len(cfg.Parts))
	for _, pcfg := range cfg.Parts {
		kind, assets, err := pcfg.reader()
		if err != nil {
			return nil, newDungeonError(name, errors.Wrapf(err, "part %s", pcfg.Name))
		}

		fn, ok := readers[kind]
		if !ok {
			return nil, newDungeonError(name, errors.Wrapf(ErrUnsupportedReader, "part %s: %s", pcfg.Name, kind))
		}

		reader, err := fn(fsys, dir, assets, tileset)
		if err != nil {
			return nil, newDungeonError(name, errors.Wrapf(err, "part %s", pcfg.Name))
		}

		p, err := NewPart(pcfg, reader)
		if err != nil {
			return nil, newDungeonError(name, err)
		}
		parts = append(parts, p)
	}

	return NewDefinition(cfg.Metadata, parts)
}

// LoadDefinition reads the dungeon file at fpath from fsys
func LoadDefinition(fsys fs.FS, fpath string, readers map[string]ReaderFunc) (*Definition, error) {
	data, err := fs.ReadFile(fsys, fpath)
	if err != nil {
		return nil, newDungeonError(path.Base(fpath), errors.Wrapf(err, "reading %s", fpath))
	}
	return ParseDefinition(data, fsys, fpath, readers)
}

// Name of the dungeon
func (d *Definition) Name() string {
	return d.name
}

// DisplayName is the human facing name of the dungeon
func (d *Definition) DisplayName() string {
	return d.displayName
}

// Species associated with the dungeon, if any
func (d *Definition) Species() string {
	return d.species
}

// Protected returns if tiles of the dungeon should be protected from players
func (d *Definition) Protected() bool {
	return d.protected
}

// MaxRadius is the max distance (in tiles) of a part from the anchor
func (d *Definition) MaxRadius() float64 {
	return d.maxRadius
}

// MaxParts is the max number of parts (not counting exempt parts)
func (d *Definition) MaxParts() int {
	return d.maxParts
}

// ExtendSurfaceFreeSpace is how far above the surface the free space extends
func (d *Definition) ExtendSurfaceFreeSpace() int {
	return d.extendSurfaceFreeSpace
}

// Rules applied to every part
func (d *Definition) Rules() []*Rule {
	return d.rules
}

// Gravity override for the dungeon, if set
func (d *Definition) Gravity() (float64, bool) {
	if d.gravity == nil {
		return 0, false
	}
	return *d.gravity, true
}

// Breathable override for the dungeon, if set
func (d *Definition) Breathable() (bool, bool) {
	if d.breathable == nil {
		return false, false
	}
	return *d.breathable, true
}

// Part returns the named part
func (d *Definition) Part(name string) (*Part, bool) {
	p, ok := d.partsByName[name]
	return p, ok
}

// Parts in declaration order
func (d *Definition) Parts() []*Part {
	return d.parts
}

// Anchors returns the parts a dungeon may start from, in the order given
func (d *Definition) Anchors() []*Part {
	anchors := make([]*Part, 0, len(d.anchors))
	for _, name := range d.anchors {
		anchors = append(anchors, d.partsByName[name])
	}
	return anchors
}

// FindConnectablePart returns every connector (of any part) that can attach to c,
// skipping parts that refuse to connect to c's part (or vice versa).
// Connectors are returned in part declaration order.
func (d *Definition) FindConnectablePart(c *Connector) []*Connector {
	owner := d.partsByName[c.Part]

	found := []*Connector{}
	for _, p := range d.parts {
		if owner != nil && p.DoesNotConnectTo(owner) {
			continue
		}
		for _, other := range p.Connectors() {
			if other.ConnectsTo(c) {
				found = append(found, other)
			}
		}
	}
	return found
}
