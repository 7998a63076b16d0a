package keypoints

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/utils/matrix"
	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// SamplingType stores 0 if a sampling of image points for BRIEF is uniform, 1 if gaussian.
type SamplingType int

const (
	uniform SamplingType = iota // 0
	normal                      // 1
	fixed                       // 2
)

// SamplePairs are N pairs of points used to create the BRIEF Descriptors of a patch.
type SamplePairs struct {
	P0 []image.Point
	P1 []image.Point
	N  int
}

// GenerateSamplePairs generates n samples for a patch size with the chosen Sampling Type. The
// random samplings draw from src so the same source state gives the same pairs.
func GenerateSamplePairs(dist SamplingType, n, patchSize int, src rand.Source) *SamplePairs {
	// sample positions
	var xs0, ys0, xs1, ys1 []int
	if dist == fixed {
		xs0 = sampleIntegers(patchSize, n, dist, src)
		ys0 = sampleIntegers(patchSize, n, dist, src)
		xs1 = sampleIntegers(patchSize, n, dist, src)
		for i := 0; i < n; i++ {
			ys1 = append(ys1, -ys0[i])
			if i%2 == 0 {
				xs0[i] = 2 * xs0[i] / 3
				xs1[i] = -2 * xs1[i] / 3
				ys1[i] = ys0[i]
			}
		}
	} else {
		xs0 = sampleIntegers(patchSize, n, dist, src)
		ys0 = sampleIntegers(patchSize, n, dist, src)
		xs1 = sampleIntegers(patchSize, n, dist, src)
		ys1 = sampleIntegers(patchSize, n, dist, src)
	}
	p0 := make([]image.Point, 0, n)
	p1 := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		p0 = append(p0, image.Point{X: xs0[i], Y: ys0[i]})
		p1 = append(p1, image.Point{X: xs1[i], Y: ys1[i]})
	}

	return &SamplePairs{P0: p0, P1: p1, N: n}
}

func sampleIntegers(patchSize, n int, sampling SamplingType, src rand.Source) []int {
	vMin := math.Round(-(float64(patchSize) - 2) / 2.)
	vMax := math.Round(float64(patchSize) / 2.)
	switch sampling {
	case uniform:
		return matrix.SampleNIntegersUniform(n, vMin, vMax, src)
	case normal:
		return matrix.SampleNIntegersNormal(n, vMin, vMax, src)
	case fixed:
		return matrix.SampleNRegularlySpaced(n, vMin, vMax)
	default:
		return matrix.SampleNIntegersUniform(n, vMin, vMax, src)
	}
}

// BRIEFConfig stores the parameters.
type BRIEFConfig struct {
	N              int          `json:"n"` // number of samples taken
	Sampling       SamplingType `json:"sampling"`
	UseOrientation bool         `json:"use_orientation"`
	PatchSize      int          `json:"patch_size"`
}

// Validate ensures all parts of the BRIEFConfig are valid.
func (config *BRIEFConfig) Validate(path string) error {
	if config.N <= 0 || config.N%64 != 0 {
		return goutils.NewConfigValidationError(path, errors.New("n should be a positive multiple of 64"))
	}
	if config.Sampling < uniform || config.Sampling > fixed {
		return goutils.NewConfigValidationError(path, errors.New("sampling should be 0 (uniform), 1 (normal) or 2 (fixed)"))
	}
	if config.PatchSize < 5 {
		return goutils.NewConfigValidationError(path, errors.New("patch_size should be >= 5"))
	}
	return nil
}

// briefBorder is the distance to the image border under which a (possibly rotated) patch and its
// blur support do not fit.
func briefBorder(patchSize int) int {
	return int(math.Ceil(float64(patchSize)/2*math.Sqrt2)) + 3
}

// ComputeBRIEFDescriptors computes BRIEF descriptors on image img at keypoints kps. Keypoints whose
// patch does not fit in the image are dropped: the returned keypoints index the returned descriptors.
func ComputeBRIEFDescriptors(img *image.Gray, sp *SamplePairs, kps *FASTKeypoints, cfg *BRIEFConfig,
) (descriptors.Descriptors, *FASTKeypoints, error) {
	if sp.N%64 != 0 {
		return nil, nil, errors.Errorf("number of sample pairs should be a multiple of 64, got %d", sp.N)
	}
	// blur image
	blurred, err := rimage.GaussianBlurGray(img)
	if err != nil {
		return nil, nil, err
	}
	// compute descriptors
	descs := make(descriptors.Descriptors, 0, len(kps.Points))
	kept := &FASTKeypoints{Points: make(KeyPoints, 0, len(kps.Points))}
	if kps.Scores != nil {
		kept.Scores = make([]float64, 0, len(kps.Points))
	}
	if kps.IsOriented() {
		kept.Orientations = make([]float64, 0, len(kps.Points))
	}
	bnd := blurred.Bounds().Inset(briefBorder(cfg.PatchSize))
	for k, kp := range kps.Points {
		if !kp.In(bnd) {
			continue
		}
		cosTheta := 1.0
		sinTheta := 0.0
		// if use orientation and keypoints are oriented, compute rotation matrix
		if cfg.UseOrientation && kps.IsOriented() {
			angle := kps.Orientations[k]
			cosTheta = math.Cos(angle)
			sinTheta = math.Sin(angle)
		}
		// Divide by 64 since we store a descriptor as a uint64 array.
		descriptor := make(descriptors.Descriptor, sp.N/64)
		for i := 0; i < sp.N; i++ {
			x0, y0 := float64(sp.P0[i].X), float64(sp.P0[i].Y)
			x1, y1 := float64(sp.P1[i].X), float64(sp.P1[i].Y)
			// compute rotated sampled coordinates (Identity matrix if no orientation s)
			outx0 := int(math.Round(cosTheta*x0 - sinTheta*y0))
			outy0 := int(math.Round(sinTheta*x0 + cosTheta*y0))
			outx1 := int(math.Round(cosTheta*x1 - sinTheta*y1))
			outy1 := int(math.Round(sinTheta*x1 + cosTheta*y1))
			// fill BRIEF descriptor
			p0Val := blurred.GrayAt(kp.X+outx0, kp.Y+outy0).Y
			p1Val := blurred.GrayAt(kp.X+outx1, kp.Y+outy1).Y
			if p0Val > p1Val {
				// This flips the bit at i%64 of word i/64 to 1.
				descriptor[i/64] |= 1 << (i % 64)
			}
		}
		descs = append(descs, descriptor)
		kept.Points = append(kept.Points, kp)
		if kept.Scores != nil {
			kept.Scores = append(kept.Scores, kps.Scores[k])
		}
		if kept.Orientations != nil {
			kept.Orientations = append(kept.Orientations, kps.Orientations[k])
		}
	}
	return descs, kept, nil
}
