package dungeongraph

import (
	"image"
)

// tileDistance is the straight line distance between two tiles
func tileDistance(a, b image.Point) float64 {
	return tileOrigin(a).Sub(tileOrigin(b)).Norm()
}

// splitAtLevel cuts box into the part below level & the part at or above it.
// Either may be empty.
func splitAtLevel(box image.Rectangle, level int) (below, above image.Rectangle) {
	below = box.Intersect(image.Rect(box.Min.X, box.Min.Y, box.Max.X, minint(box.Max.Y, level)))
	above = box.Intersect(image.Rect(box.Min.X, maxint(box.Min.Y, level), box.Max.X, box.Max.Y))
	return below, above
}

// maxint returns the highest of two ints
func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minint returns the lowest of two ints
func minint(a, b int) int {
	if a < b {
		return a
	}
	return b
}
