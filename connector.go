package dungeongraph

import (
	"image"
)

// Connector is a typed socket on a part's boundary. Two connectors mate if
// they carry the same value and face each other.
type Connector struct {
	// name of the part this connector belongs to
	Part string

	Value       string
	Direction   Direction
	ForwardOnly bool

	// tile offset of the connector within its part
	Offset image.Point
}

// ConnectsTo returns if c can be attached to other.
// A forward only connector may open connections but never accepts them.
func (c *Connector) ConnectsTo(other *Connector) bool {
	if c.ForwardOnly {
		return false
	}
	if c.Value != other.Value {
		return false
	}
	if c.Direction == Any || other.Direction == Any {
		return true
	}
	flipped, err := FlipDirection(other.Direction)
	if err != nil {
		return false
	}
	return c.Direction == flipped
}

// PositionAdjustment is the offset from the socket this connector mates with
// to this connector, so that the two parts abut rather than overlap.
// Ie. a Left connector attaches one tile right of the Right connector it mates with.
func (c *Connector) PositionAdjustment() image.Point {
	flipped, err := FlipDirection(c.Direction)
	if err != nil {
		return image.Point{}
	}
	return flipped.Offset()
}
