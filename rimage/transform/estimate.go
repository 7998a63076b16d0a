package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MinHomographyPoints is the number of correspondences needed to determine a homography.
const MinHomographyPoints = 4

// ErrDegenerateConfiguration is returned when the correspondences do not constrain a homography.
var ErrDegenerateConfiguration = errors.New("degenerate point configuration")

// EstimateHomographyDLT computes the homography mapping src onto dst with the normalized direct
// linear transform (Multiple View Geometry, Alg 4.2). Every correspondence is used.
func EstimateHomographyDLT(src, dst []r2.Point) (*Homography, error) {
	if len(src) != len(dst) {
		return nil, errors.New("sets of points src and dst must have the same number of elements")
	}
	if len(src) < MinHomographyPoints {
		return nil, errors.Errorf("sets of points must have at least %d elements", MinHomographyPoints)
	}
	points1, t1, ok1 := normalizePoints(src)
	points2, t2, ok2 := normalizePoints(dst)
	if !ok1 || !ok2 {
		return nil, ErrDegenerateConfiguration
	}

	nRows := 2 * len(points1)
	if nRows < 9 {
		nRows = 9
	}
	m := mat.NewDense(nRows, 9, nil)
	for i := range points1 {
		x, y := points1[i].X, points1[i].Y
		u, v := points2[i].X, points2[i].Y
		m.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		m.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	svd := performSVD(m)
	if svd == nil {
		return nil, errors.New("SVD factorization failed")
	}
	lastColV := svd.V.ColView(8)
	hData := make([]float64, 9)
	for i := range hData {
		hData[i] = lastColV.AtVec(i)
	}
	hn := mat.NewDense(3, 3, hData)

	// denormalize: H = T2^-1 @ Hn @ T1
	var t2Inv mat.Dense
	if err := t2Inv.Inverse(t2); err != nil {
		return nil, ErrDegenerateConfiguration
	}
	var tmp, h mat.Dense
	tmp.Mul(&t2Inv, hn)
	h.Mul(&tmp, t1)

	if math.Abs(h.At(2, 2)) < 1e-12 {
		return nil, ErrDegenerateConfiguration
	}
	out := &Homography{&h}
	out.Normalize()
	return out, nil
}

// normalizePoints normalizes points as described in Multiple View Geometry, Alg 4.2: centroid at the
// origin and mean distance sqrt(2). It returns false when every point coincides.
func normalizePoints(pts []r2.Point) ([]r2.Point, *mat.Dense, bool) {
	nPoints := len(pts)
	// compute centroid of points
	mu := r2.Point{}
	for _, pt := range pts {
		mu = mu.Add(pt)
	}
	mu = mu.Mul(1. / float64(nPoints))
	// compute scale factor
	d := 0.0
	for _, pt := range pts {
		d += pt.Sub(mu).Norm() / float64(nPoints)
	}
	if d < 1e-12 {
		return nil, nil, false
	}
	scale := math.Sqrt(2) / d
	transformData := []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	}
	T := mat.NewDense(3, 3, transformData)
	// apply transform to points
	pointsTransformed := make([]r2.Point, nPoints)
	for i := range pointsTransformed {
		pointsTransformed[i] = pts[i].Sub(mu).Mul(scale)
	}
	return pointsTransformed, T, true
}

// matsSVD stores the matrices from SVD decomposition.
type matsSVD struct {
	U  *mat.Dense
	V  *mat.Dense
	VT *mat.Dense
	S  *mat.Dense
}

// performSVD performs SVD on inputMatrix and returns matrices U, Sigma and V from the decomposition.
func performSVD(inputMatrix *mat.Dense) *matsSVD {
	var svd mat.SVD
	ok := svd.Factorize(inputMatrix, mat.SVDFull)
	if !ok {
		return nil
	}

	u, v, sigma := &mat.Dense{}, &mat.Dense{}, &mat.Dense{}

	svd.UTo(u)
	svd.VTo(v)
	vt := transposeDense(v)

	singularValues := svd.Values(nil)
	sigma.CloneFrom(mat.NewDiagDense(len(singularValues), singularValues))

	return &matsSVD{u, v, vt, sigma}
}
