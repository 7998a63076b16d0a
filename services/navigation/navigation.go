// Package navigation explores the room when no marker is in sight.
package navigation

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/components/base"
	"github.com/robotics-cluedo/cluedo/sensorhub"
)

// A Service chooses exploration motions. Both calls return once the single motion they issue
// has completed; malformed range data is never an error.
type Service interface {
	// Navigate drives toward the most open direction of scan, or rotates in place when no
	// direction is safe or the scan is missing.
	Navigate(ctx context.Context, scan *sensorhub.RangeScan) error
	// Rotate spins in place by angleDeg, positive to the left.
	Rotate(ctx context.Context, angleDeg float64) error
}

// Config tunes exploration.
type Config struct {
	ObstacleDistanceM    float64 `json:"obstacle_distance_m"`
	StepMm               int     `json:"step_mm"`
	MmPerSec             float64 `json:"mm_per_sec"`
	DegsPerSec           float64 `json:"degs_per_sec"`
	Sectors              int     `json:"sectors"`
	FallbackRotationDegs float64 `json:"fallback_rotation_degs"`
}

// ApplyDefaults fills every zero field.
func (cfg *Config) ApplyDefaults() {
	if cfg.ObstacleDistanceM == 0 {
		cfg.ObstacleDistanceM = 0.5
	}
	if cfg.StepMm == 0 {
		cfg.StepMm = 300
	}
	if cfg.MmPerSec == 0 {
		cfg.MmPerSec = 200
	}
	if cfg.DegsPerSec == 0 {
		cfg.DegsPerSec = 45
	}
	if cfg.Sectors == 0 {
		cfg.Sectors = 8
	}
	if cfg.FallbackRotationDegs == 0 {
		cfg.FallbackRotationDegs = 45
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch {
	case cfg.ObstacleDistanceM < 0:
		return utils.NewConfigValidationError(path, errors.New("obstacle_distance_m should be >= 0"))
	case cfg.StepMm <= 0:
		return utils.NewConfigValidationError(path, errors.New("step_mm should be > 0"))
	case cfg.MmPerSec <= 0:
		return utils.NewConfigValidationError(path, errors.New("mm_per_sec should be > 0"))
	case cfg.DegsPerSec <= 0:
		return utils.NewConfigValidationError(path, errors.New("degs_per_sec should be > 0"))
	case cfg.Sectors < 1:
		return utils.NewConfigValidationError(path, errors.New("sectors should be >= 1"))
	case cfg.FallbackRotationDegs == 0 || cfg.FallbackRotationDegs > base.MaxSpinDegs ||
		cfg.FallbackRotationDegs < -base.MaxSpinDegs:
		return utils.NewConfigValidationError(path,
			errors.Errorf("fallback_rotation_degs should be non-zero and within ±%.0f", base.MaxSpinDegs))
	}
	return nil
}
