package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// WrapAngDeg maps an angle in degrees into (-180, 180]. Headings and spin commands use this range.
func WrapAngDeg(ang float64) float64 {
	wrapped := math.Mod(ang, 360)
	switch {
	case wrapped > 180:
		wrapped -= 360
	case wrapped <= -180:
		wrapped += 360
	}
	return wrapped
}

// AbsInt returns |n|.
func AbsInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	return max(a, b)
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	return min(a, b)
}

// ClampF64 restricts n to [lower, upper].
func ClampF64(n, lower, upper float64) float64 {
	return math.Max(lower, math.Min(n, upper))
}
