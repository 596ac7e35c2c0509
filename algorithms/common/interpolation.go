package common

import "math"

// ParabolicInterpolation refines an integer index into a fractional one by
// fitting a parabola through data[index-1], data[index] and data[index+1] and
// returning the abscissa of its vertex.
//
// The index is returned unchanged when it has no neighbour on either side, or
// when the curvature 2*s1 - s2 - s0 is within Epsilon of zero.
func ParabolicInterpolation(data []float64, index int) float64 {
	if index <= 0 || index >= len(data)-1 {
		return float64(index)
	}

	s0 := data[index-1]
	s1 := data[index]
	s2 := data[index+1]

	denominator := 2.0*s1 - s2 - s0
	if math.Abs(denominator) <= Epsilon {
		return float64(index)
	}

	return float64(index) + (s2-s0)/(2.0*denominator)
}
