package core

import (
	"math"

	"github.com/paulmach/orb"
)

// ExtentOf folds coordinates into their bounding box. The fold only takes
// minima and maxima, so the result does not depend on input order. An empty
// input yields EmptyExtent.
func ExtentOf(coords []Coordinate) Extent {
	ext := EmptyExtent()
	for _, c := range coords {
		ext = ext.Extend(c)
	}
	return ext
}

// Extend returns the extent grown to include c.
func (e Extent) Extend(c Coordinate) Extent {
	return Extent{
		West:  math.Min(e.West, c.Lng),
		South: math.Min(e.South, c.Lat),
		East:  math.Max(e.East, c.Lng),
		North: math.Max(e.North, c.Lat),
	}
}

// Bound converts the extent to an orb.Bound. ok is false for an empty extent.
func (e Extent) Bound() (b orb.Bound, ok bool) {
	if e.IsEmpty() {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{e.West, e.South},
		Max: orb.Point{e.East, e.North},
	}, true
}
