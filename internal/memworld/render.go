package memworld

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// ColourScheme defines how a world is coloured when rendered.
type ColourScheme struct {
	Air        color.Color
	Unknown    color.Color
	Background color.Color
	Liquid     color.Color
	Region     color.Color
	Objects    color.Color
	Npcs       color.Color
	Drops      color.Color
	Materials  map[string]color.Color
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Air:        colornames.Skyblue,
		Unknown:    colornames.Dimgray,
		Background: colornames.Darkslategray,
		Liquid:     colornames.Royalblue,
		Region:     colornames.Gold,
		Objects:    colornames.Crimson,
		Npcs:       colornames.Fuchsia,
		Drops:      colornames.Yellow,
		Materials: map[string]color.Color{
			"biome":  colornames.Sienna,
			"biome1": colornames.Saddlebrown,
			"biome2": colornames.Peru,
			"biome3": colornames.Chocolate,
			"biome4": colornames.Burlywood,
			"biome5": colornames.Tan,
			"dirt":   colornames.Brown,
			"stone":  colornames.Gray,
			"brick":  colornames.Firebrick,
			"wood":   colornames.Burlywood,
			"metal":  colornames.Silver,
		},
	}
}

// CustomImage returns the world coloured with the given scheme.
// The image is the right way up, ie. y=0 is the bottom row.
func (w *World) CustomImage(scheme *ColourScheme) *image.RGBA {
	bnds := w.tiles.im.Bounds()
	im := image.NewRGBA(bnds)
	h := bnds.Dy()

	for y := bnds.Min.Y; y < bnds.Max.Y; y++ {
		for x := bnds.Min.X; x < bnds.Max.X; x++ {
			im.Set(x, h-1-y, w.tileColour(scheme, x, y))
		}
	}

	ctx := gg.NewContextForRGBA(im)

	// outline regions the dungeon marked
	ctx.SetColor(scheme.Region)
	ctx.SetLineWidth(1)
	for _, r := range w.regions {
		ctx.DrawRectangle(float64(r.Min.X), float64(h-r.Max.Y), float64(r.Dx()), float64(r.Dy()))
		ctx.Stroke()
	}

	ctx.SetColor(scheme.Objects)
	for p := range w.objects {
		ctx.DrawRectangle(float64(p.X), float64(h-1-p.Y), 1, 1)
		ctx.Fill()
	}

	ctx.SetColor(scheme.Npcs)
	for _, group := range [][]*Spawn{w.npcs, w.stagehands} {
		for _, s := range group {
			ctx.DrawCircle(s.Pos.X, float64(h)-s.Pos.Y, 1)
			ctx.Fill()
		}
	}

	ctx.SetColor(scheme.Drops)
	for _, d := range w.drops {
		ctx.DrawPoint(d.Pos.X, float64(h)-d.Pos.Y, 0.5)
		ctx.Fill()
	}

	return im
}

// tileColour returns the colour of the tile at x,y
func (w *World) tileColour(scheme *ColourScheme, x, y int) color.Color {
	if fg := w.tiles.foreground(x, y); fg != 0 {
		col, ok := scheme.Materials[w.materials.name(fg)]
		if ok {
			return col
		}
		return scheme.Unknown
	}
	if w.tiles.liquid(x, y) != 0 {
		return scheme.Liquid
	}
	if w.tiles.background(x, y) != 0 {
		return scheme.Background
	}
	return scheme.Air
}

// SavePNG renders the world with the default scheme & writes it to fpath
func (w *World) SavePNG(fpath string) error {
	return w.SaveAdv(fpath, DefaultScheme())
}

// SaveAdv renders the world with the given scheme & writes it to fpath
func (w *World) SaveAdv(fpath string, scheme *ColourScheme) error {
	ctx := gg.NewContextForRGBA(w.CustomImage(scheme))
	return ctx.SavePNG(fpath)
}
