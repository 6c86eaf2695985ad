package dungeongraph

import (
	"image"

	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
)

// neighbours4 are the offsets of the tiles sharing an edge with a tile
var neighbours4 = []image.Point{Left.Offset(), Right.Offset(), Up.Offset(), Down.Offset()}

// FlushLiquid settles every requested liquid. Each connected body of the same
// liquid is pressurised from it's highest tile: pressure = 1 + (top - y).
func (w *Writer) FlushLiquid() {
	byLiquid := map[string][]image.Point{}
	for _, p := range sortedPositions(w.pendingLiquids) {
		name := w.pendingLiquids[p].Liquid
		byLiquid[name] = append(byLiquid[name], p)
	}

	for _, name := range sortedKeys(byLiquid) {
		seen := mapset.New[image.Point]()
		for _, start := range byLiquid[name] {
			if seen.Has(start) {
				continue
			}

			region := w.liquidRegion(start, name, seen)

			top := region[0].Y
			for _, p := range region {
				if p.Y > top {
					top = p.Y
				}
			}

			for _, p := range region {
				l := w.pendingLiquids[p]
				l.Pressure = float64(1 + top - p.Y)
				w.liquids[p] = l
			}
		}
	}

	w.pendingLiquids = map[image.Point]LiquidStore{}
}

// liquidRegion flood fills from start over tiles requesting the same liquid
func (w *Writer) liquidRegion(start image.Point, name string, seen mapset.Set[image.Point]) []image.Point {
	region := []image.Point{}

	q := queue.New[image.Point]()
	q.Enqueue(start)
	seen.Put(start)

	for !q.Empty() {
		p := q.Dequeue()
		region = append(region, p)

		for _, d := range neighbours4 {
			n := p.Add(d)
			if seen.Has(n) {
				continue
			}
			l, ok := w.pendingLiquids[n]
			if !ok || l.Liquid != name {
				continue
			}
			seen.Put(n)
			q.Enqueue(n)
		}
	}

	return region
}

// StagedLiquid returns the settled liquid at pos, if any
func (w *Writer) StagedLiquid(pos image.Point) (LiquidStore, bool) {
	l, ok := w.liquids[pos]
	return l, ok
}
