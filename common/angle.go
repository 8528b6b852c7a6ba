package common

import "math"

const TwoPi = 2 * math.Pi

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeRadians maps an angle onto [0, 2π).
func NormalizeRadians(rad float64) float64 {
	rad = math.Mod(rad, TwoPi)
	if rad < 0 {
		rad += TwoPi
	}
	// math.Mod can hand back -0 or round 2π-ε up to 2π.
	if rad >= TwoPi {
		rad = 0
	}
	return rad
}

// NormalizeSignedRadians maps an angle onto (−π, π].
func NormalizeSignedRadians(rad float64) float64 {
	rad = NormalizeRadians(rad)
	if rad > math.Pi {
		rad -= TwoPi
	}
	return rad
}

// AngleDifference returns the smallest absolute difference between two angles,
// in [0, π].
func AngleDifference(a, b float64) float64 {
	return math.Abs(NormalizeSignedRadians(a - b))
}

// Float64Ptr returns a pointer to v.
// Derived values are optional throughout, and nil means unknown.
func Float64Ptr(v float64) *float64 {
	return &v
}
