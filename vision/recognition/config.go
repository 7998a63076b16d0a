// Package recognition identifies which card of a fixed catalog appears in a camera frame, using ORB
// features, approximate nearest neighbor matching and RANSAC homography verification.
package recognition

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/rimage/transform"
	"github.com/robotics-cluedo/cluedo/vision/keypoints"
)

// Matchers accepted by Config.Matcher.
const (
	MatcherLSH        = "lsh"
	MatcherBruteForce = "brute_force"
)

// Config holds the parameters of the recognition engine.
type Config struct {
	// MinMatchCount is both the number of ratio-test matches needed to attempt a homography and the
	// number of inliers needed to accept it.
	MinMatchCount     int                  `json:"min_match_count"`
	Ratio             float64              `json:"ratio"`
	RANSACThresholdPx float64              `json:"ransac_threshold_px"`
	RANSACIterations  int                  `json:"ransac_iterations"`
	Seed              uint64               `json:"seed"`
	MaxFeatures       int                  `json:"max_features"`
	ORB               *keypoints.ORBConfig `json:"orb"`
	LSH               *keypoints.LSHConfig `json:"lsh"`
	// Matcher selects how template descriptors find their frame neighbors: the approximate LSH
	// index or an exact comparison of every pair.
	Matcher string `json:"matcher"`
}

// DefaultConfig returns the settings the catalog cards were tuned with.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every zero field.
func (cfg *Config) ApplyDefaults() {
	if cfg.MinMatchCount == 0 {
		cfg.MinMatchCount = 10
	}
	if cfg.Ratio == 0 {
		cfg.Ratio = 0.75
	}
	if cfg.RANSACThresholdPx == 0 {
		cfg.RANSACThresholdPx = transform.DefaultRANSACConfig.ReprojectionThreshold
	}
	if cfg.RANSACIterations == 0 {
		cfg.RANSACIterations = transform.DefaultRANSACConfig.MaxIterations
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.MaxFeatures == 0 {
		cfg.MaxFeatures = 1000
	}
	if cfg.ORB == nil {
		cfg.ORB = &keypoints.ORBConfig{}
	}
	if cfg.ORB.Layers == 0 {
		cfg.ORB.Layers = 3
	}
	if cfg.ORB.DownscaleFactor == 0 {
		cfg.ORB.DownscaleFactor = 2
	}
	if cfg.ORB.FastConf == nil {
		cfg.ORB.FastConf = &keypoints.FASTConfig{Threshold: 20, NMatchesCircle: 9, NMSWinSize: 7, Oriented: true}
	}
	if cfg.ORB.BRIEFConf == nil {
		cfg.ORB.BRIEFConf = &keypoints.BRIEFConfig{N: 256, UseOrientation: true, PatchSize: 31}
	}
	if cfg.LSH == nil {
		lsh := keypoints.DefaultLSHConfig
		cfg.LSH = &lsh
	}
	if cfg.Matcher == "" {
		cfg.Matcher = MatcherLSH
	}
}

// Validate ensures all parts of the Config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.MinMatchCount < transform.MinHomographyPoints {
		return utils.NewConfigValidationError(path,
			errors.Errorf("min_match_count should be >= %d", transform.MinHomographyPoints))
	}
	if cfg.Ratio <= 0 || cfg.Ratio >= 1 {
		return utils.NewConfigValidationError(path, errors.New("ratio should be in (0, 1)"))
	}
	if cfg.RANSACThresholdPx <= 0 {
		return utils.NewConfigValidationError(path, errors.New("ransac_threshold_px should be > 0"))
	}
	if cfg.RANSACIterations < 1 {
		return utils.NewConfigValidationError(path, errors.New("ransac_iterations should be >= 1"))
	}
	if cfg.MaxFeatures < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_features should be >= 0"))
	}
	if cfg.Matcher != MatcherLSH && cfg.Matcher != MatcherBruteForce {
		return utils.NewConfigValidationError(path,
			errors.Errorf("matcher should be %q or %q, got %q", MatcherLSH, MatcherBruteForce, cfg.Matcher))
	}
	if cfg.ORB == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "orb")
	}
	if err := cfg.ORB.Validate(path + ".orb"); err != nil {
		return err
	}
	if cfg.LSH == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "lsh")
	}
	return cfg.LSH.Validate(path + ".lsh")
}

// NewExtractor returns the ORB extractor templates and frames must share.
func (cfg *Config) NewExtractor() (*keypoints.ORBExtractor, error) {
	return keypoints.NewORBExtractor(cfg.ORB, cfg.Seed, cfg.MaxFeatures)
}

func (cfg *Config) ransacConfig() transform.RANSACConfig {
	return transform.RANSACConfig{
		ReprojectionThreshold: cfg.RANSACThresholdPx,
		MaxIterations:         cfg.RANSACIterations,
		Confidence:            transform.DefaultRANSACConfig.Confidence,
	}
}
