package dungeongraph

import (
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"path"

	"github.com/pkg/errors"
)

// imageReader reads parts drawn as one or more png layers, where each
// pixel colour maps to a tile in the dungeon's tileset.
type imageReader struct {
	grids []*TileGrid
}

// ImageReader is the ReaderFunc for "image" parts.
// Fully transparent pixels that aren't in the tileset are left empty, any
// other unknown colour is an error.
func ImageReader(fsys fs.FS, dir string, assets []string, tileset *Tileset) (PartReader, error) {
	r := &imageReader{grids: []*TileGrid{}}

	var size image.Point
	for i, asset := range assets {
		grid, err := readImageLayer(fsys, path.Join(dir, asset), tileset)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			size = grid.Size()
		} else if grid.Size() != size {
			return nil, errors.Errorf("image %s is %v, expected %v to match first layer", asset, grid.Size(), size)
		}
		r.grids = append(r.grids, grid)
	}

	if len(r.grids) == 0 {
		return nil, errors.New("no image layers given")
	}
	return r, nil
}

// readImageLayer decodes a png into a TileGrid. Image rows run top to bottom
// where part rows run bottom to top.
func readImageLayer(fsys fs.FS, fpath string, tileset *Tileset) (*TileGrid, error) {
	f, err := fsys.Open(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", fpath)
	}
	defer f.Close()

	im, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", fpath)
	}

	bnds := im.Bounds()
	w, h := bnds.Dx(), bnds.Dy()
	grid := NewTileGrid(w, h)

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			c := color.NRGBAModel.Convert(im.At(dx, dy)).(color.NRGBA)
			key := [4]uint8{c.R, c.G, c.B, c.A}

			t, ok := tileset.Tile(key)
			if !ok {
				if c.A == 0 {
					continue
				}
				return nil, errors.Errorf("%s: unknown tile colour %v at (%d,%d)", fpath, key, dx, dy)
			}

			grid.Set(dx-bnds.Min.X, h-1-(dy-bnds.Min.Y), t)
		}
	}

	return grid, nil
}

// Size of the part
func (r *imageReader) Size() image.Point {
	return r.grids[0].Size()
}

// ForEachTile calls fn for every tile of every layer, in layer order
func (r *imageReader) ForEachTile(fn func(pos image.Point, t *Tile) bool) {
	stop := false
	for _, g := range r.grids {
		g.ForEachTile(func(pos image.Point, t *Tile) bool {
			stop = fn(pos, t)
			return stop
		})
		if stop {
			return
		}
	}
}

// ForEachTileAt calls fn for the tile at pos in every layer
func (r *imageReader) ForEachTileAt(pos image.Point, fn func(t *Tile) bool) {
	stop := false
	for _, g := range r.grids {
		g.ForEachTileAt(pos, func(t *Tile) bool {
			stop = fn(t)
			return stop
		})
		if stop {
			return
		}
	}
}
