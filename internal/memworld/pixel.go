package memworld

import (
	"image"
	"image/color"

	"github.com/boljen/go-bitmap"
)

const (
	// bit numbers for our per tile bitmap
	bitRegion  = 0
	bitTerrain = 1
	bitSpace   = 2
	bitOcean   = 3
)

// tiles stores per tile state in an RGBA64 where each 64 bit pixel is
//
//	R [16 bits] -> dungeon id
//	G [16 bits] -> foreground material (palette index, 0 is empty)
//	B [16 bits] -> background material (palette index, 0 is empty)
//	A [16 bits]
//	  16-9 [8 bits] -> liquid (palette index, 0 is none)
//	   8-1 [8 bits] -> bitmap
//	     bit 0 -> marked region
//	     bit 1 -> marked terrain
//	     bit 2 -> marked space
//	     bit 3 -> ocean
//	     bit 4-7 -> unused
//
// Rows are stored with y=0 at the bottom of the world.
type tiles struct {
	im *image.RGBA64
}

// newTiles returns tiles for a world of the given size where every tile
// belongs to the given dungeon id
func newTiles(width, height int, id uint16) *tiles {
	t := &tiles{im: image.NewRGBA64(image.Rect(0, 0, width, height))}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t.im.SetRGBA64(x, y, color.RGBA64{R: id})
		}
	}
	return t
}

// inBounds returns if x,y is within the stored area
func (t *tiles) inBounds(x, y int) bool {
	return image.Pt(x, y).In(t.im.Bounds())
}

func (t *tiles) dungeonID(x, y int) uint16 {
	return t.im.RGBA64At(x, y).R
}

func (t *tiles) setDungeonID(x, y int, id uint16) {
	v := t.im.RGBA64At(x, y)
	v.R = id
	t.im.SetRGBA64(x, y, v)
}

func (t *tiles) foreground(x, y int) uint16 {
	return t.im.RGBA64At(x, y).G
}

func (t *tiles) setForeground(x, y int, idx uint16) {
	v := t.im.RGBA64At(x, y)
	v.G = idx
	t.im.SetRGBA64(x, y, v)
}

func (t *tiles) background(x, y int) uint16 {
	return t.im.RGBA64At(x, y).B
}

func (t *tiles) setBackground(x, y int, idx uint16) {
	v := t.im.RGBA64At(x, y)
	v.B = idx
	t.im.SetRGBA64(x, y, v)
}

func (t *tiles) liquid(x, y int) uint8 {
	liquid, _ := splitAlpha(t.im.RGBA64At(x, y).A)
	return liquid
}

func (t *tiles) setLiquid(x, y int, idx uint8) {
	v := t.im.RGBA64At(x, y)
	_, flags := splitAlpha(v.A)
	v.A = joinAlpha(idx, flags)
	t.im.SetRGBA64(x, y, v)
}

// flag returns if the given bit is set at x,y
func (t *tiles) flag(x, y, bit int) bool {
	return t.getBM(x, y).Get(bit)
}

// setFlag sets the given bit at x,y
func (t *tiles) setFlag(x, y, bit int) {
	bm := t.getBM(x, y)
	bm.Set(bit, true)
	t.setBM(x, y, bm)
}

// getBM gets the 8 bit bitmap at x,y
func (t *tiles) getBM(x, y int) bitmap.Bitmap {
	_, flags := splitAlpha(t.im.RGBA64At(x, y).A)
	return bitmap.Bitmap([]byte{flags})
}

// setBM sets the 8 bit bitmap at x,y
func (t *tiles) setBM(x, y int, bm bitmap.Bitmap) {
	data := bm.Data(true)

	v := t.im.RGBA64At(x, y)
	liquid, _ := splitAlpha(v.A)
	v.A = joinAlpha(liquid, data[0])
	t.im.SetRGBA64(x, y, v)
}

// splitAlpha splits the alpha channel into liquid index & flag bits
func splitAlpha(a uint16) (uint8, uint8) {
	return uint8(a >> 8), uint8(a)
}

// joinAlpha is the inverse of splitAlpha
func joinAlpha(liquid, flags uint8) uint16 {
	return (uint16(liquid) << 8) + uint16(flags)
}
