// Package position aligns the robot with a marker and centers the camera on the object next to it.
package position

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/sensorhub"
)

// A Service issues small corrective motions toward a marker and reports convergence through two
// flags. Each call issues at most one motion command. A missing marker or region makes the
// corresponding call report false without moving.
type Service interface {
	// AlignToMarker moves toward the standoff pose in front of the nearest marker.
	AlignToMarker(ctx context.Context, markers *sensorhub.MarkerSet) bool
	// CenterOnFrame turns until the salient region of the frame sits in the middle of the image.
	CenterOnFrame(ctx context.Context, frame *sensorhub.Frame) bool

	Aligned() bool
	Centered() bool
	ResetAlignedFlag()
	ResetCenteredFlag()
}

// Config tunes alignment and centering.
type Config struct {
	StandoffMm           float64 `json:"standoff_mm"`
	DistanceToleranceMm  float64 `json:"distance_tolerance_mm"`
	BearingToleranceDegs float64 `json:"bearing_tolerance_degs"`
	CenterTolerancePx    float64 `json:"center_tolerance_px"`
	HorizontalFOVDegs    float64 `json:"horizontal_fov_degs"`
	DegsPerSec           float64 `json:"degs_per_sec"`
	MmPerSec             float64 `json:"mm_per_sec"`
	MaxStepMm            float64 `json:"max_step_mm"`
}

// ApplyDefaults fills every zero field.
func (cfg *Config) ApplyDefaults() {
	if cfg.StandoffMm == 0 {
		cfg.StandoffMm = 600
	}
	if cfg.DistanceToleranceMm == 0 {
		cfg.DistanceToleranceMm = 80
	}
	if cfg.BearingToleranceDegs == 0 {
		cfg.BearingToleranceDegs = 5
	}
	if cfg.CenterTolerancePx == 0 {
		cfg.CenterTolerancePx = 20
	}
	if cfg.HorizontalFOVDegs == 0 {
		cfg.HorizontalFOVDegs = 60
	}
	if cfg.DegsPerSec == 0 {
		cfg.DegsPerSec = 30
	}
	if cfg.MmPerSec == 0 {
		cfg.MmPerSec = 150
	}
	if cfg.MaxStepMm == 0 {
		cfg.MaxStepMm = 300
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch {
	case cfg.StandoffMm < 0:
		return utils.NewConfigValidationError(path, errors.New("standoff_mm should be >= 0"))
	case cfg.DistanceToleranceMm <= 0:
		return utils.NewConfigValidationError(path, errors.New("distance_tolerance_mm should be > 0"))
	case cfg.BearingToleranceDegs <= 0 || cfg.BearingToleranceDegs >= 90:
		return utils.NewConfigValidationError(path, errors.New("bearing_tolerance_degs should be in (0, 90)"))
	case cfg.CenterTolerancePx <= 0:
		return utils.NewConfigValidationError(path, errors.New("center_tolerance_px should be > 0"))
	case cfg.HorizontalFOVDegs <= 0 || cfg.HorizontalFOVDegs >= 180:
		return utils.NewConfigValidationError(path, errors.New("horizontal_fov_degs should be in (0, 180)"))
	case cfg.DegsPerSec <= 0:
		return utils.NewConfigValidationError(path, errors.New("degs_per_sec should be > 0"))
	case cfg.MmPerSec <= 0:
		return utils.NewConfigValidationError(path, errors.New("mm_per_sec should be > 0"))
	case cfg.MaxStepMm <= 0:
		return utils.NewConfigValidationError(path, errors.New("max_step_mm should be > 0"))
	}
	return nil
}
