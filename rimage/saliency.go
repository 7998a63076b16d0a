package rimage

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
)

// SalientRegion describes the part of an image that stands out from its background.
type SalientRegion struct {
	Bounds   image.Rectangle
	Centroid r2.Point
	Pixels   int
}

// SaliencyConfig tunes LocateSalientRegion.
type SaliencyConfig struct {
	// MinDistance is the Lab distance from the background above which a pixel is salient.
	MinDistance float64
	// MinFraction is the smallest share of sampled pixels a region must cover.
	MinFraction float64
	// Stride samples one pixel out of Stride in each direction.
	Stride int
}

// DefaultSaliencyConfig works for a card held in front of a plain wall.
var DefaultSaliencyConfig = SaliencyConfig{MinDistance: 0.12, MinFraction: 0.01, Stride: 2}

// LocateSalientRegion estimates the background colour from the image border and returns the
// bounding box and centroid of every sampled pixel whose colour differs from it by more than
// cfg.MinDistance in Lab space. It returns false when too few pixels stand out.
func LocateSalientRegion(img image.Image, cfg SaliencyConfig) (SalientRegion, bool) {
	if img == nil {
		return SalientRegion{}, false
	}
	bounds := img.Bounds()
	if bounds.Dx() < 3 || bounds.Dy() < 3 {
		return SalientRegion{}, false
	}
	stride := cfg.Stride
	if stride < 1 {
		stride = 1
	}
	bg, ok := borderColor(img, stride)
	if !ok {
		return SalientRegion{}, false
	}

	var sumX, sumY float64
	var sampled, count int
	region := image.Rectangle{}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			sampled++
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok || c.DistanceLab(bg) <= cfg.MinDistance {
				continue
			}
			count++
			sumX += float64(x)
			sumY += float64(y)
			px := image.Rect(x, y, x+1, y+1)
			if region.Empty() {
				region = px
			} else {
				region = region.Union(px)
			}
		}
	}
	if count == 0 || float64(count) < cfg.MinFraction*float64(sampled) {
		return SalientRegion{}, false
	}
	return SalientRegion{
		Bounds:   region,
		Centroid: r2.Point{X: sumX / float64(count), Y: sumY / float64(count)},
		Pixels:   count,
	}, true
}

// borderColor averages the image border in Lab space.
func borderColor(img image.Image, stride int) (colorful.Color, bool) {
	bounds := img.Bounds()
	var l, a, b float64
	var n int
	add := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return
		}
		cl, ca, cb := c.Lab()
		l += cl
		a += ca
		b += cb
		n++
	}
	for x := bounds.Min.X; x < bounds.Max.X; x += stride {
		add(x, bounds.Min.Y)
		add(x, bounds.Max.Y-1)
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y += stride {
		add(bounds.Min.X, y)
		add(bounds.Max.X-1, y)
	}
	if n == 0 {
		return colorful.Color{}, false
	}
	return colorful.Lab(l/float64(n), a/float64(n), b/float64(n)), true
}
