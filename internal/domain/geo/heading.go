package geo

import (
	"math"

	"golang.org/x/exp/constraints"
)

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

// OppositeHeading returns the reciprocal of h.
func OppositeHeading(h float64) float64 {
	return NormalizeHeading(h + 180)
}

// SignedAngle returns the clockwise angle from heading "from" to heading
// "to", in (-180,180]. Positive values are clockwise (right).
func SignedAngle(from, to float64) float64 {
	d := NormalizeHeading(to - from)
	if d > 180 {
		d -= 360
	}
	return d
}

// HeadingDifference returns the minimum difference between two headings,
// always in [0,180].
func HeadingDifference(a, b float64) float64 {
	return math.Abs(SignedAngle(a, b))
}

// Clamp limits v to [lo,hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
