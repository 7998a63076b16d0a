package keypoints

import (
	"image"
	"sort"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/utils"
)

// FASTConfig holds the parameters necessary to compute the FAST keypoints.
type FASTConfig struct {
	// Threshold is the gray level difference with the center for a circle pixel to count.
	Threshold      int  `json:"threshold"`
	NMatchesCircle int  `json:"n_matches_circle"`
	NMSWinSize     int  `json:"nms_win_size"`
	Oriented       bool `json:"oriented"`
}

// FASTKeypoints stores keypoint locations, their FAST scores and optionally their orientations.
type FASTKeypoints struct {
	Points       KeyPoints
	Scores       []float64
	Orientations []float64
}

type (
	// PixelType stores 0 if a pixel is darker than center pixel, and 1 if brighter.
	PixelType int
	// PixelValues is a slice of pixel values relative to the center pixel.
	PixelValues []float64
)

const (
	darker  PixelType = iota // 0
	brighter                 // 1
)

var (
	// CrossIdx contains the neighbors coordinates in a 3-cross neighborhood.
	CrossIdx = []image.Point{{0, 3}, {3, 0}, {0, -3}, {-3, 0}}
	// CircleIdx contains the neighbors coordinates in a circle of radius 3 neighborhood.
	CircleIdx = []image.Point{
		{0, -3},
		{1, -3},
		{2, -2},
		{3, -1},
		{3, 0},
		{3, 1},
		{2, 2},
		{1, 3},
		{0, 3},
		{-1, 3},
		{-2, 2},
		{-3, 1},
		{-3, 0},
		{-3, -1},
		{-2, -2},
		{-1, -3},
	}
)

// circleRadius is the distance to the image border under which no FAST corner is tested.
const circleRadius = 3

// Validate ensures all parts of the FASTConfig are valid.
func (config *FASTConfig) Validate(path string) error {
	if config.Threshold <= 0 || config.Threshold > 255 {
		return goutils.NewConfigValidationError(path, errors.New("threshold should be in (0, 255]"))
	}
	if config.NMatchesCircle < 1 || config.NMatchesCircle > len(CircleIdx) {
		return goutils.NewConfigValidationError(path, errors.Errorf("n_matches_circle should be in [1, %d]", len(CircleIdx)))
	}
	if config.NMSWinSize < 1 {
		return goutils.NewConfigValidationError(path, errors.New("nms_win_size should be >= 1"))
	}
	return nil
}

// NewFASTKeypointsFromImage returns a pointer to a FASTKeypoints struct containing keypoints and
// their scores, plus their orientations when cfg.Oriented is set.
func NewFASTKeypointsFromImage(img *image.Gray, cfg *FASTConfig) *FASTKeypoints {
	kps, scores := computeFAST(img, cfg)
	var orientations []float64
	if cfg.Oriented {
		orientations = computeKeypointsOrientations(img, kps)
	}
	return &FASTKeypoints{
		Points:       kps,
		Scores:       scores,
		Orientations: orientations,
	}
}

// IsOriented returns true if FASTKeypoints contains orientations.
func (kps *FASTKeypoints) IsOriented() bool {
	return kps.Orientations != nil
}

// GetPointValuesInNeighborhood returns a slice of floats containing the values of neighborhood pixels in image img.
func GetPointValuesInNeighborhood(img *image.Gray, coords image.Point, neighborhood []image.Point) []float64 {
	vals := make([]float64, len(neighborhood))
	for i := 0; i < len(neighborhood); i++ {
		c := img.GrayAt(coords.X+neighborhood[i].X, coords.Y+neighborhood[i].Y).Y
		vals[i] = float64(c)
	}
	return vals
}

// isValidSliceVals reports whether s contains a run of at least n contiguous 1s, the slice being circular.
func isValidSliceVals(s []float64, n int) bool {
	if n <= 0 {
		return true
	}
	if len(s) == 0 || n > len(s) {
		return false
	}
	run := 0
	// walking the slice twice handles runs wrapping around the end
	for i := 0; i < 2*len(s); i++ {
		if s[i%len(s)] > 0 {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// sumOfPositiveValuesSlice returns the sum of the positive values of a slice.
func sumOfPositiveValuesSlice(s []float64) float64 {
	sum := 0.
	for _, v := range s {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

// sumOfNegativeValuesSlice returns the sum of the negative values of a slice.
func sumOfNegativeValuesSlice(s []float64) float64 {
	sum := 0.
	for _, v := range s {
		if v < 0 {
			sum += v
		}
	}
	return sum
}

// getBrighterValues marks with 1 the differences larger than t.
func getBrighterValues(s []float64, t float64) []float64 {
	brighterValues := make([]float64, len(s))
	for i, v := range s {
		if v > t {
			brighterValues[i] = 1
		}
	}
	return brighterValues
}

// getDarkerValues marks with 1 the differences smaller than -t.
func getDarkerValues(s []float64, t float64) []float64 {
	darkerValues := make([]float64, len(s))
	for i, v := range s {
		if v < -t {
			darkerValues[i] = 1
		}
	}
	return darkerValues
}

// classifyCorner tests the pixel at p. It returns whether p is a corner, its type and its score, the
// score being the sum of the absolute differences beyond threshold on the winning side.
func classifyCorner(img *image.Gray, p image.Point, cfg *FASTConfig) (bool, PixelType, float64) {
	center := float64(img.GrayAt(p.X, p.Y).Y)
	t := float64(cfg.Threshold)

	// a run of n circle pixels covers at least n/4 of the cross pixels
	cross := GetPointValuesInNeighborhood(img, p, CrossIdx)
	for i := range cross {
		cross[i] -= center
	}
	minCross := cfg.NMatchesCircle / 4
	nBright := int(sumOfPositiveValuesSlice(getBrighterValues(cross, t)))
	nDark := int(sumOfPositiveValuesSlice(getDarkerValues(cross, t)))
	if nBright < minCross && nDark < minCross {
		return false, darker, 0
	}

	diffs := PixelValues(GetPointValuesInNeighborhood(img, p, CircleIdx))
	for i := range diffs {
		diffs[i] -= center
	}
	isBright := isValidSliceVals(getBrighterValues(diffs, t), cfg.NMatchesCircle)
	isDark := isValidSliceVals(getDarkerValues(diffs, t), cfg.NMatchesCircle)
	if !isBright && !isDark {
		return false, darker, 0
	}
	shifted := make([]float64, len(diffs))
	if isBright {
		for i, d := range diffs {
			shifted[i] = d - t
		}
		return true, brighter, sumOfPositiveValuesSlice(shifted)
	}
	for i, d := range diffs {
		shifted[i] = d + t
	}
	return true, darker, -sumOfNegativeValuesSlice(shifted)
}

// computeFAST returns the FAST keypoints of img after non maximum suppression, sorted by
// decreasing score then by position.
func computeFAST(img *image.Gray, cfg *FASTConfig) (KeyPoints, []float64) {
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	if w <= 2*circleRadius || h <= 2*circleRadius {
		return KeyPoints{}, []float64{}
	}
	scores := make([]float64, w*h)
	utils.ParallelForEachPixel(image.Point{w - 2*circleRadius, h - 2*circleRadius}, func(x, y int) {
		p := image.Point{bnd.Min.X + x + circleRadius, bnd.Min.Y + y + circleRadius}
		if ok, _, score := classifyCorner(img, p, cfg); ok {
			scores[(y+circleRadius)*w+x+circleRadius] = score
		}
	})

	half := cfg.NMSWinSize / 2
	kps := make(KeyPoints, 0)
	kpScores := make([]float64, 0)
	for y := circleRadius; y < h-circleRadius; y++ {
		for x := circleRadius; x < w-circleRadius; x++ {
			s := scores[y*w+x]
			if s <= 0 || !isLocalMaximum(scores, w, h, x, y, half) {
				continue
			}
			kps = append(kps, image.Point{bnd.Min.X + x, bnd.Min.Y + y})
			kpScores = append(kpScores, s)
		}
	}
	order := make([]int, len(kps))
	for i := range order {
		order[i] = i
	}
	// keypoints are already in raster order, a stable sort keeps it among equal scores
	sort.SliceStable(order, func(i, j int) bool { return kpScores[order[i]] > kpScores[order[j]] })
	sortedKps := make(KeyPoints, len(kps))
	sortedScores := make([]float64, len(kps))
	for i, idx := range order {
		sortedKps[i] = kps[idx]
		sortedScores[i] = kpScores[idx]
	}
	return sortedKps, sortedScores
}

// isLocalMaximum reports whether the score at (x, y) is the largest in its window. Ties are won by the
// pixel that comes first in raster order.
func isLocalMaximum(scores []float64, w, h, x, y, half int) bool {
	s := scores[y*w+x]
	for j := utils.MaxInt(0, y-half); j <= utils.MinInt(h-1, y+half); j++ {
		for i := utils.MaxInt(0, x-half); i <= utils.MinInt(w-1, x+half); i++ {
			if i == x && j == y {
				continue
			}
			other := scores[j*w+i]
			if other > s {
				return false
			}
			if other == s && (j < y || (j == y && i < x)) {
				return false
			}
		}
	}
	return true
}

// ComputeFAST computes the location of FAST keypoints.
// The configuration should contain the following parameters
//   - threshold: gray level difference for a circle pixel to count as brighter or darker
//   - nMatchesCircle: Minimum number of contiguous brighter or darker circle pixels for a corner
//   - nmsWin: size of the window for non maximum suppression
func ComputeFAST(img *image.Gray, cfg *FASTConfig) KeyPoints {
	kps, _ := computeFAST(img, cfg)
	return kps
}
