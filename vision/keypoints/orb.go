package keypoints

import (
	"image"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// ORBConfig contains the parameters / configs needed to compute ORB features.
type ORBConfig struct {
	Layers          int          `json:"n_layers"`
	DownscaleFactor int          `json:"downscale_factor"`
	FastConf        *FASTConfig  `json:"fast"`
	BRIEFConf       *BRIEFConfig `json:"brief"`
}

// Validate ensures all parts of the ORBConfig are valid.
func (config *ORBConfig) Validate(path string) error {
	if config.Layers < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_layers should be >= 1"))
	}
	if config.DownscaleFactor <= 1 {
		return utils.NewConfigValidationError(path, errors.New("downscale_factor should be greater than 1"))
	}
	if config.FastConf == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "fast")
	}
	if config.BRIEFConf == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "brief")
	}
	if err := config.FastConf.Validate(path + ".fast"); err != nil {
		return err
	}
	return config.BRIEFConf.Validate(path + ".brief")
}

// Features are keypoints in image coordinates with the descriptor computed at each of them.
type Features struct {
	Points      KeyPoints
	Descriptors descriptors.Descriptors
	// Scales holds the pyramid scale each keypoint was detected at.
	Scales []int
}

// Len returns the number of features.
func (f *Features) Len() int {
	return len(f.Points)
}

// ORBExtractor computes ORB features with a fixed set of BRIEF sample pairs, so descriptors computed
// by the same extractor on different images are comparable.
type ORBExtractor struct {
	cfg         *ORBConfig
	samples     *SamplePairs
	maxFeatures int
}

// NewORBExtractor validates cfg and draws the BRIEF sample pairs from a source seeded with seed.
// maxFeatures <= 0 keeps every keypoint.
func NewORBExtractor(cfg *ORBConfig, seed uint64, maxFeatures int) (*ORBExtractor, error) {
	if cfg == nil {
		return nil, errors.New("ORB configuration is required")
	}
	if err := cfg.Validate("orb"); err != nil {
		return nil, err
	}
	samples := GenerateSamplePairs(cfg.BRIEFConf.Sampling, cfg.BRIEFConf.N, cfg.BRIEFConf.PatchSize,
		rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &ORBExtractor{cfg: cfg, samples: samples, maxFeatures: maxFeatures}, nil
}

// Extract computes the ORB features of im.
func (e *ORBExtractor) Extract(im *image.Gray) (*Features, error) {
	descs, kps, scores, scales, err := computeORBKeypoints(im, e.samples, e.cfg)
	if err != nil {
		return nil, err
	}
	if e.maxFeatures > 0 && len(kps) > e.maxFeatures {
		order := make([]int, len(kps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })
		order = order[:e.maxFeatures]
		// keep the original ordering among the retained features
		sort.Ints(order)
		keptDescs := make(descriptors.Descriptors, len(order))
		keptKps := make(KeyPoints, len(order))
		keptScales := make([]int, len(order))
		for i, idx := range order {
			keptDescs[i] = descs[idx]
			keptKps[i] = kps[idx]
			keptScales[i] = scales[idx]
		}
		descs, kps, scales = keptDescs, keptKps, keptScales
	}
	return &Features{Points: kps, Descriptors: descs, Scales: scales}, nil
}

func computeORBKeypoints(im *image.Gray, sp *SamplePairs, cfg *ORBConfig,
) (descriptors.Descriptors, KeyPoints, []float64, []int, error) {
	if cfg.Layers <= 0 {
		return nil, nil, nil, nil, errors.New("number of layers should be > 0")
	}
	if cfg.DownscaleFactor <= 1 {
		return nil, nil, nil, nil, errors.New("downscale factor should be >= 2")
	}
	pyramid, err := GetImagePyramid(im, cfg.Layers, cfg.DownscaleFactor)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	orbDescriptors := make(descriptors.Descriptors, 0)
	orbPoints := make(KeyPoints, 0)
	orbScores := make([]float64, 0)
	orbScales := make([]int, 0)
	for i := range pyramid.Images {
		currentImage := pyramid.Images[i]
		currentScale := pyramid.Scales[i]
		fastKps := NewFASTKeypointsFromImage(currentImage, cfg.FastConf)
		// descriptors are computed in the layer's own coordinates, then points are brought back to the
		// full resolution frame
		descs, kept, err := ComputeBRIEFDescriptors(currentImage, sp, fastKps, cfg.BRIEFConf)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		orbDescriptors = append(orbDescriptors, descs...)
		orbPoints = append(orbPoints, RescaleKeypoints(kept.Points, currentScale)...)
		orbScores = append(orbScores, kept.Scores...)
		for range kept.Points {
			orbScales = append(orbScales, currentScale)
		}
	}
	return orbDescriptors, orbPoints, orbScores, orbScales, nil
}
