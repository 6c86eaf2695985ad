package dungeongraph

import (
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/cache"
)

const (
	// DefinitionFileExt is the extension of dungeon definition files
	DefinitionFileExt = ".dungeon"

	defaultCacheSize = 20
)

// DefinitionsConfig configures a Definitions store
type DefinitionsConfig struct {
	// readers by "def" kind, defaults to DefaultReaders()
	Readers map[string]ReaderFunc

	// number of loaded definitions to keep, defaults to 20
	CacheSize int
}

// Definitions finds dungeon files within a filesystem and loads them on
// demand, keeping recently used definitions in memory.
// Safe for concurrent use.
type Definitions struct {
	fsys    fs.FS
	readers map[string]ReaderFunc

	// dungeon name -> file path
	index map[string]string

	lock   sync.Mutex
	loaded *cache.Cache[string, *Definition]
}

// metadataOnly is enough of a dungeon file to index it
type metadataOnly struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
}

// NewDefinitions indexes every dungeon file in fsys by name.
// Two files naming the same dungeon is an error.
func NewDefinitions(fsys fs.FS, cfg *DefinitionsConfig) (*Definitions, error) {
	if cfg == nil {
		cfg = &DefinitionsConfig{}
	}
	readers := cfg.Readers
	if readers == nil {
		readers = DefaultReaders()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	d := &Definitions{
		fsys:    fsys,
		readers: readers,
		index:   map[string]string{},
		loaded:  cache.New[string, *Definition](size),
	}

	err := fs.WalkDir(fsys, ".", func(fpath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(fpath, DefinitionFileExt) {
			return nil
		}

		data, err := fs.ReadFile(fsys, fpath)
		if err != nil {
			return errors.Wrapf(err, "reading %s", fpath)
		}
		meta := metadataOnly{}
		err = json.Unmarshal(data, &meta)
		if err != nil {
			return newDungeonError(path.Base(fpath), errors.Wrap(err, "malformed dungeon json"))
		}
		name := meta.Metadata.Name
		if name == "" {
			return newDungeonError(path.Base(fpath), errors.New("metadata missing name"))
		}

		existing, ok := d.index[name]
		if ok {
			return newDungeonError(name, errors.Errorf("defined in both %s and %s", existing, fpath))
		}
		d.index[name] = fpath
		return nil
	})

	return d, err
}

// Names returns the name of every known dungeon, sorted
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.index))
	for name := range d.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has returns if a dungeon with the given name exists
func (d *Definitions) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Get returns the named dungeon, loading it if it's not in memory.
// Unknown names return ErrNotFound, broken dungeons a *DungeonError.
func (d *Definitions) Get(name string) (*Definition, error) {
	fpath, ok := d.index[name]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, name)
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	def, ok := d.loaded.Get(name)
	if ok {
		return def, nil
	}

	def, err := LoadDefinition(d.fsys, fpath, d.readers)
	if err != nil {
		return nil, err
	}
	if def.Name() != name {
		return nil, newDungeonError(name, errors.Errorf("%s now names dungeon %s", fpath, def.Name()))
	}

	d.loaded.Put(name, def)
	return def, nil
}

// Loaded returns the number of definitions currently held in memory
func (d *Definitions) Loaded() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.loaded.Size()
}
