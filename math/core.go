// math/core.go

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const (
	Pi = gomath.Pi
)

// Degrees converts an angle expressed in radians to degrees.
func Degrees(r float64) float64 {
	return r * 180 / Pi
}

// Radians converts an angle expressed in degrees to radians.
func Radians(d float64) float64 {
	return d / 180 * Pi
}

func Sqrt(a float64) float64 {
	return gomath.Sqrt(a)
}

// Abs returns the absolute value of x.
func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

// Clamp restricts x to the range [low, high].
func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Lerp performs linear interpolation between a and b using factor x in [0,1].
func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

// Round rounds v to the nearest integer, ties away from zero.
func Round(v float64) float64 {
	return gomath.Round(v)
}
