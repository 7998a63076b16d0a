// Package matrix contains sampling helpers used to build descriptor test patterns.
package matrix

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalSpread is the standard deviation of SampleNIntegersNormal relative to the range width.
const normalSpread = 0.4472

// sampleRounded draws n values from draw, rounds them and redraws any that fall outside
// [vMin, vMax].
func sampleRounded(n int, vMin, vMax float64, draw func() float64) []int {
	z := make([]int, n)
	for i := range z {
		v := math.Round(draw())
		for v < vMin || v > vMax {
			v = math.Round(draw())
		}
		z[i] = int(v)
	}
	return z
}

// SampleNIntegersNormal samples n integers in [vMin, vMax] from a normal distribution centered
// on the middle of the range. A nil src uses the global source.
func SampleNIntegersNormal(n int, vMin, vMax float64, src rand.Source) []int {
	dist := distuv.Normal{Mu: (vMin + vMax) / 2, Sigma: (vMax - vMin) * normalSpread, Src: src}
	return sampleRounded(n, vMin, vMax, dist.Rand)
}

// SampleNIntegersUniform samples n integers uniformly in [vMin, vMax]. A nil src uses the global
// source.
func SampleNIntegersUniform(n int, vMin, vMax float64, src rand.Source) []int {
	dist := distuv.Uniform{Min: vMin, Max: vMax, Src: src}
	return sampleRounded(n, vMin, vMax, dist.Rand)
}

// SampleNRegularlySpaced returns n integers evenly spaced from vMin, the last one below vMax.
func SampleNRegularlySpaced(n int, vMin, vMax float64) []int {
	z := make([]int, n)
	if n == 0 {
		return z
	}
	step := (vMax - vMin) / float64(n)
	for i := range z {
		z[i] = int(math.Round(vMin + float64(i)*step))
	}
	return z
}
