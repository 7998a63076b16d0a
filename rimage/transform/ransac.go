package transform

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrNoConsensus is returned when no sampled model is supported by enough correspondences.
var ErrNoConsensus = errors.New("no homography consensus found")

// RANSACConfig holds the parameters of the robust estimator.
type RANSACConfig struct {
	// ReprojectionThreshold is the largest distance in pixels for a correspondence to be an inlier.
	ReprojectionThreshold float64 `json:"ransac_threshold_px"`
	// MaxIterations bounds the number of minimal samples drawn.
	MaxIterations int `json:"ransac_iterations"`
	// Confidence stops sampling early once the best model is this likely to be correct.
	Confidence float64 `json:"confidence"`
}

// DefaultRANSACConfig mirrors the usual 3 pixel threshold.
var DefaultRANSACConfig = RANSACConfig{ReprojectionThreshold: 3, MaxIterations: 2000, Confidence: 0.995}

// RANSACResult is the refined model and the correspondences that support it.
type RANSACResult struct {
	Homography  *Homography
	InlierMask  []bool
	InlierCount int
	// MeanError is the mean reprojection error of the inliers.
	MeanError float64
}

// EstimateHomographyRANSAC robustly estimates the homography mapping src onto dst. All randomness
// comes from rng so a fixed seed gives a reproducible result.
func EstimateHomographyRANSAC(src, dst []r2.Point, cfg RANSACConfig, rng *rand.Rand) (*RANSACResult, error) {
	if len(src) != len(dst) {
		return nil, errors.New("sets of points src and dst must have the same number of elements")
	}
	n := len(src)
	if n < MinHomographyPoints {
		return nil, errors.Errorf("sets of points must have at least %d elements", MinHomographyPoints)
	}
	if rng == nil {
		return nil, errors.New("a random source is required")
	}
	if cfg.ReprojectionThreshold <= 0 {
		cfg.ReprojectionThreshold = DefaultRANSACConfig.ReprojectionThreshold
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultRANSACConfig.MaxIterations
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		cfg.Confidence = DefaultRANSACConfig.Confidence
	}

	var best *Homography
	bestCount := 0
	maxIter := cfg.MaxIterations
	sampleSrc := make([]r2.Point, MinHomographyPoints)
	sampleDst := make([]r2.Point, MinHomographyPoints)
	for iter := 0; iter < maxIter; iter++ {
		idx := sampleDistinct(rng, n, MinHomographyPoints)
		for i, k := range idx {
			sampleSrc[i] = src[k]
			sampleDst[i] = dst[k]
		}
		if isDegenerate(sampleSrc) || isDegenerate(sampleDst) {
			continue
		}
		h, err := EstimateHomographyDLT(sampleSrc, sampleDst)
		if err != nil {
			continue
		}
		count, _ := countInliers(h, src, dst, cfg.ReprojectionThreshold, nil)
		if count > bestCount {
			best, bestCount = h, count
			maxIter = min(maxIter, adaptiveIterations(bestCount, n, cfg.Confidence, cfg.MaxIterations))
		}
	}
	if best == nil || bestCount < MinHomographyPoints {
		return nil, ErrNoConsensus
	}

	mask := make([]bool, n)
	countInliers(best, src, dst, cfg.ReprojectionThreshold, mask)
	// refit on the consensus set, keep the refit only if it does not lose support
	inSrc, inDst := selectMasked(src, mask), selectMasked(dst, mask)
	if refined, err := EstimateHomographyDLT(inSrc, inDst); err == nil {
		refinedMask := make([]bool, n)
		if c, _ := countInliers(refined, src, dst, cfg.ReprojectionThreshold, refinedMask); c >= bestCount {
			best, bestCount, mask = refined, c, refinedMask
		}
	}
	_, meanErr := countInliers(best, src, dst, cfg.ReprojectionThreshold, nil)
	return &RANSACResult{Homography: best, InlierMask: mask, InlierCount: bestCount, MeanError: meanErr}, nil
}

// countInliers counts the correspondences within threshold and fills mask when it is not nil.
func countInliers(h *Homography, src, dst []r2.Point, threshold float64, mask []bool) (int, float64) {
	count := 0
	sumErr := 0.0
	for i := range src {
		e := h.ReprojectionError(src[i], dst[i])
		in := e <= threshold
		if mask != nil {
			mask[i] = in
		}
		if in {
			count++
			sumErr += e
		}
	}
	if count == 0 {
		return 0, math.Inf(1)
	}
	return count, sumErr / float64(count)
}

// adaptiveIterations is the number of samples needed to draw an all-inlier sample with the given confidence.
func adaptiveIterations(inliers, total int, confidence float64, maxIter int) int {
	w := float64(inliers) / float64(total)
	denom := math.Log(1 - math.Pow(w, MinHomographyPoints))
	if denom >= 0 || math.IsNaN(denom) {
		return maxIter
	}
	if math.IsInf(denom, -1) {
		return 1
	}
	k := math.Log(1-confidence) / denom
	if k > float64(maxIter) {
		return maxIter
	}
	return int(math.Ceil(k))
}

func sampleDistinct(rng *rand.Rand, n, k int) []int {
	out := make([]int, 0, k)
	for len(out) < k {
		c := rng.IntN(n)
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// isDegenerate reports whether any three of the points are (nearly) collinear.
func isDegenerate(pts []r2.Point) bool {
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			for k := j + 1; k < len(pts); k++ {
				area := pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i]))
				if math.Abs(area) < 1e-6 {
					return true
				}
			}
		}
	}
	return false
}

func selectMasked(pts []r2.Point, mask []bool) []r2.Point {
	out := make([]r2.Point, 0, len(pts))
	for i, p := range pts {
		if mask[i] {
			out = append(out, p)
		}
	}
	return out
}
