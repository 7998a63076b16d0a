package mission

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/components/base"
)

// Config tunes the mission controller.
type Config struct {
	// Quota is the number of distinct cards to identify.
	Quota int
	// ResetRotationDegs is the turn issued after an encounter to lose sight of its marker.
	ResetRotationDegs float64
	// MaxTicksPerEncounter bounds the ticks spent approaching and centering on one marker.
	MaxTicksPerEncounter int
	// MaxEncountersPerMarker bounds the encounters abandoned on one marker ID before the reset
	// rotation turns the robot away from it.
	MaxEncountersPerMarker int
	// MarkerMaxAge is how old a marker set may be and still count as visible.
	MarkerMaxAge time.Duration
	TickInterval time.Duration
	// RecognitionTimeout bounds one Identify call.
	RecognitionTimeout time.Duration
}

// ApplyDefaults fills every zero field.
func (cfg *Config) ApplyDefaults() {
	if cfg.Quota == 0 {
		cfg.Quota = 2
	}
	if cfg.ResetRotationDegs == 0 {
		cfg.ResetRotationDegs = 90
	}
	if cfg.MaxTicksPerEncounter == 0 {
		cfg.MaxTicksPerEncounter = 30
	}
	if cfg.MaxEncountersPerMarker == 0 {
		cfg.MaxEncountersPerMarker = 3
	}
	if cfg.MarkerMaxAge == 0 {
		cfg.MarkerMaxAge = 3 * time.Second
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.RecognitionTimeout == 0 {
		cfg.RecognitionTimeout = 10 * time.Second
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch {
	case cfg.Quota < 1:
		return utils.NewConfigValidationError(path, errors.New("quota should be >= 1"))
	case cfg.ResetRotationDegs == 0 || cfg.ResetRotationDegs > base.MaxSpinDegs || cfg.ResetRotationDegs < -base.MaxSpinDegs:
		return utils.NewConfigValidationError(path,
			errors.Errorf("reset_rotation_degs should be non-zero and within ±%.0f", base.MaxSpinDegs))
	case cfg.MaxTicksPerEncounter < 2:
		return utils.NewConfigValidationError(path, errors.New("max_ticks_per_encounter should be >= 2"))
	case cfg.MaxEncountersPerMarker < 1:
		return utils.NewConfigValidationError(path, errors.New("max_encounters_per_marker should be >= 1"))
	case cfg.MarkerMaxAge <= 0:
		return utils.NewConfigValidationError(path, errors.New("marker_max_age should be > 0"))
	case cfg.TickInterval <= 0:
		return utils.NewConfigValidationError(path, errors.New("tick_interval should be > 0"))
	case cfg.RecognitionTimeout <= 0:
		return utils.NewConfigValidationError(path, errors.New("recognition_timeout should be > 0"))
	}
	return nil
}
