package transform

import (
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func groundTruth(t *testing.T) *Homography {
	t.Helper()
	h, err := NewHomography([]float64{
		0.9, -0.1, 40,
		0.05, 1.1, 25,
		0.0002, -0.0001, 1,
	})
	test.That(t, err, test.ShouldBeNil)
	return h
}

func gridPoints(n int) []r2.Point {
	pts := make([]r2.Point, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, r2.Point{X: float64(17*i + 3*j), Y: float64(13*j + 2*i*i)})
		}
	}
	return pts
}

func project(t *testing.T, h *Homography, pts []r2.Point) []r2.Point {
	t.Helper()
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		q, ok := h.Apply(p)
		test.That(t, ok, test.ShouldBeTrue)
		out[i] = q
	}
	return out
}

func TestNewHomography(t *testing.T) {
	_, err := NewHomography([]float64{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)

	h, err := NewHomography([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	p, ok := h.Apply(r2.Point{X: 3, Y: 4})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p, test.ShouldResemble, r2.Point{X: 3, Y: 4})

	vals := []float64{1, 0, 0, 0, 1, 0, 1, 0, 0}
	h, err = NewHomography(vals)
	test.That(t, err, test.ShouldBeNil)
	vals[0] = 42
	test.That(t, h.At(0, 0), test.ShouldEqual, 1)
	_, ok = h.Apply(r2.Point{X: 0, Y: 5})
	test.That(t, ok, test.ShouldBeFalse)

	scaled, err := NewHomography([]float64{2, 0, 4, 0, 2, 6, 0, 0, 2})
	test.That(t, err, test.ShouldBeNil)
	scaled.Normalize()
	test.That(t, scaled.RawData(), test.ShouldResemble, []float64{1, 0, 2, 0, 1, 3, 0, 0, 1})
}

func TestHomographyInverse(t *testing.T) {
	h := groundTruth(t)
	inv, err := h.Inverse()
	test.That(t, err, test.ShouldBeNil)
	p := r2.Point{X: 120, Y: 80}
	q, ok := h.Apply(p)
	test.That(t, ok, test.ShouldBeTrue)
	back, ok := inv.Apply(q)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, back.X, test.ShouldAlmostEqual, p.X, 1e-6)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y, 1e-6)

	singular, err := NewHomography([]float64{1, 2, 3, 2, 4, 6, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	_, err = singular.Inverse()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEstimateHomographyDLT(t *testing.T) {
	h := groundTruth(t)
	src := gridPoints(4)
	dst := project(t, h, src)

	est, err := EstimateHomographyDLT(src, dst)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.At(2, 2), test.ShouldAlmostEqual, 1)
	for i, v := range h.RawData() {
		test.That(t, est.RawData()[i], test.ShouldAlmostEqual, v, 1e-6)
	}

	// four points are enough
	quad := []r2.Point{src[0], src[3], src[12], src[15]}
	est, err = EstimateHomographyDLT(quad, project(t, h, quad))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.ReprojectionError(src[10], dst[10]), test.ShouldBeLessThan, 1e-4)

	_, err = EstimateHomographyDLT(src[:3], dst[:3])
	test.That(t, err, test.ShouldNotBeNil)
	_, err = EstimateHomographyDLT(src[:5], dst[:4])
	test.That(t, err, test.ShouldNotBeNil)

	same := []r2.Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	_, err = EstimateHomographyDLT(same, dst[:4])
	test.That(t, err, test.ShouldBeError, ErrDegenerateConfiguration)
}

func TestEstimateHomographyRANSAC(t *testing.T) {
	h := groundTruth(t)
	src := gridPoints(6)
	dst := project(t, h, src)
	// corrupt every third correspondence
	outliers := 0
	for i := range dst {
		if i%3 == 0 {
			dst[i] = dst[i].Add(r2.Point{X: 50 + float64(i), Y: -30 - float64(i)})
			outliers++
		}
	}

	res, err := EstimateHomographyRANSAC(src, dst, DefaultRANSACConfig, rand.New(rand.NewPCG(1, 0)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.InlierCount, test.ShouldEqual, len(src)-outliers)
	for i, in := range res.InlierMask {
		test.That(t, in, test.ShouldEqual, i%3 != 0)
	}
	test.That(t, res.MeanError, test.ShouldBeLessThan, 1e-3)

	again, err := EstimateHomographyRANSAC(src, dst, DefaultRANSACConfig, rand.New(rand.NewPCG(1, 0)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Homography.RawData(), test.ShouldResemble, res.Homography.RawData())
	test.That(t, again.InlierMask, test.ShouldResemble, res.InlierMask)
}

func TestEstimateHomographyRANSACErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	src := gridPoints(2)
	_, err := EstimateHomographyRANSAC(src[:3], src[:3], DefaultRANSACConfig, rng)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = EstimateHomographyRANSAC(src, src, DefaultRANSACConfig, nil)
	test.That(t, err, test.ShouldNotBeNil)

	line := make([]r2.Point, 10)
	for i := range line {
		line[i] = r2.Point{X: float64(i), Y: 2 * float64(i)}
	}
	cfg := DefaultRANSACConfig
	cfg.MaxIterations = 50
	_, err = EstimateHomographyRANSAC(line, line, cfg, rng)
	test.That(t, err, test.ShouldBeError, ErrNoConsensus)
}
