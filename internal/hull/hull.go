// Package hull computes convex hulls of tile regions & answers containment
// queries on them.
package hull

import (
	"image"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// epsilon allowed when testing points that sit on a hull edge
const epsilon = 1e-9

// Convex returns the convex hull of the given points in counter clockwise
// order, starting from the lowest-leftmost point. Collinear points along
// the hull are dropped.
// Nb. for fewer than 3 distinct points the distinct points are returned as is.
func Convex(in []r2.Point) []r2.Point {
	pts := make([]r2.Point, len(in))
	copy(pts, in)
	sort.Slice(pts, func(a, b int) bool {
		if pts[a].X != pts[b].X {
			return pts[a].X < pts[b].X
		}
		return pts[a].Y < pts[b].Y
	})

	uniq := pts[:0]
	for i, p := range pts {
		if i > 0 && p == pts[i-1] {
			continue
		}
		uniq = append(uniq, p)
	}
	if len(uniq) < 3 {
		return uniq
	}

	// Andrew's monotone chain
	turn := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	lower := []r2.Point{}
	for _, p := range uniq {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := []r2.Point{}
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// last point of each chain is the first point of the other
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// Polytope turns a counter clockwise convex polygon into a set of linear
// constraints (one per edge).
func Polytope(poly []r2.Point) model2d.ConvexPolytope {
	constraints := model2d.ConvexPolytope{}
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		d := b.Sub(a)
		if d.Norm() == 0 {
			continue
		}
		// outward normal for a counter clockwise winding
		normal := model2d.Coord{X: d.Y, Y: -d.X}.Normalize()
		constraints = append(constraints, &model2d.LinearConstraint{
			Normal: normal,
			Max:    normal.Dot(model2d.Coord{X: a.X, Y: a.Y}) + epsilon,
		})
	}
	return constraints
}

// Contains returns whether the counter clockwise convex polygon contains p
// (points on edges count as inside). Degenerate polygons contain nothing.
func Contains(poly []r2.Point, p r2.Point) bool {
	if len(poly) < 3 {
		return false
	}
	return Polytope(poly).Contains(model2d.Coord{X: p.X, Y: p.Y})
}

// Bounds returns the smallest tile rectangle covering the polygon.
func Bounds(poly []r2.Point) image.Rectangle {
	if len(poly) == 0 {
		return image.Rectangle{}
	}

	rect := r2.RectFromPoints(poly...)
	return image.Rect(
		int(math.Floor(rect.X.Lo)),
		int(math.Floor(rect.Y.Lo)),
		int(math.Ceil(rect.X.Hi)),
		int(math.Ceil(rect.Y.Hi)),
	)
}

// RectVertices returns the four corners of the tile rectangle r.
func RectVertices(r image.Rectangle) []r2.Point {
	return []r2.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
}
