// Package transform contains planar projective transforms and their robust estimation.
package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 matrix used to map points of one plane to their image in another view.
// Indices are [row][column].
type Homography struct {
	matrix *mat.Dense
}

// NewHomography creates a homography from 9 row-major values.
func NewHomography(vals []float64) (*Homography, error) {
	if len(vals) != 9 {
		return nil, errors.Errorf("input to NewHomography must have length of 9. Has length of %d", len(vals))
	}
	data := make([]float64, 9)
	copy(data, vals)
	return &Homography{mat.NewDense(3, 3, data)}, nil
}

// At returns the value of the homography at the given index.
func (h *Homography) At(row, col int) float64 {
	return h.matrix.At(row, col)
}

// RawData returns a copy of the 9 row-major values.
func (h *Homography) RawData() []float64 {
	out := make([]float64, 9)
	copy(out, h.matrix.RawMatrix().Data)
	return out
}

// Apply will transform the given point according to the homography. It returns false when the
// point maps to infinity.
func (h *Homography) Apply(pt r2.Point) (r2.Point, bool) {
	x := h.At(0, 0)*pt.X + h.At(0, 1)*pt.Y + h.At(0, 2)
	y := h.At(1, 0)*pt.X + h.At(1, 1)*pt.Y + h.At(1, 2)
	z := h.At(2, 0)*pt.X + h.At(2, 1)*pt.Y + h.At(2, 2)
	if math.Abs(z) < 1e-12 {
		return r2.Point{}, false
	}
	return r2.Point{X: x / z, Y: y / z}, true
}

// Inverse inverts the homography.
func (h *Homography) Inverse() (*Homography, error) {
	var hInv mat.Dense
	if err := hInv.Inverse(h.matrix); err != nil {
		return nil, errors.Wrap(err, "homography is not invertible")
	}
	return &Homography{&hInv}, nil
}

// Normalize scales the homography so that its bottom-right element is 1 when possible.
func (h *Homography) Normalize() {
	if s := h.At(2, 2); math.Abs(s) > 1e-12 {
		h.matrix.Scale(1/s, h.matrix)
	}
}

// ReprojectionError is the distance between the image of src and dst, +Inf if src maps to infinity.
func (h *Homography) ReprojectionError(src, dst r2.Point) float64 {
	p, ok := h.Apply(src)
	if !ok {
		return math.Inf(1)
	}
	return p.Sub(dst).Norm()
}

// mat.Dense utils.
func transposeDense(m *mat.Dense) *mat.Dense {
	nRows, nCols := m.Dims()
	m2 := mat.NewDense(nCols, nRows, nil)
	m2.Copy(m.T())
	return m2
}
