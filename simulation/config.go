package simulation

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"
)

// MarkerConfig places one fiducial with its card on a wall of the room.
type MarkerConfig struct {
	ID int     `json:"id"`
	X  float64 `json:"x_mm"`
	Y  float64 `json:"y_mm"`
	// NormalDeg is the direction the marker faces, counter-clockwise from the room X axis.
	NormalDeg float64 `json:"normal_degs"`
	Card      string  `json:"card"`
}

// Config describes a rectangular room, the robot's starting pose and its camera.
type Config struct {
	RoomWidthMm       float64        `json:"room_width_mm"`
	RoomDepthMm       float64        `json:"room_depth_mm"`
	StartXMm          float64        `json:"start_x_mm"`
	StartYMm          float64        `json:"start_y_mm"`
	StartThetaDegs    float64        `json:"start_theta_degs"`
	CardWidthMm       float64        `json:"card_width_mm"`
	MaxMarkerRangeMm  float64        `json:"max_marker_range_mm"`
	FrameWidth        int            `json:"frame_width"`
	FrameHeight       int            `json:"frame_height"`
	HorizontalFOVDegs float64        `json:"horizontal_fov_degs"`
	RangeReadings     int            `json:"range_readings"`
	Markers           []MarkerConfig `json:"markers"`
}

// ApplyDefaults fills every zero field.
func (cfg *Config) ApplyDefaults() {
	if cfg.RoomWidthMm == 0 {
		cfg.RoomWidthMm = 4000
	}
	if cfg.RoomDepthMm == 0 {
		cfg.RoomDepthMm = 4000
	}
	if cfg.StartXMm == 0 && cfg.StartYMm == 0 {
		cfg.StartXMm = cfg.RoomWidthMm / 2
		cfg.StartYMm = cfg.RoomDepthMm / 2
	}
	if cfg.FrameWidth == 0 {
		cfg.FrameWidth = 320
	}
	if cfg.FrameHeight == 0 {
		cfg.FrameHeight = 240
	}
	if cfg.HorizontalFOVDegs == 0 {
		cfg.HorizontalFOVDegs = 60
	}
	if cfg.CardWidthMm == 0 {
		cfg.CardWidthMm = 350
	}
	if cfg.MaxMarkerRangeMm == 0 {
		cfg.MaxMarkerRangeMm = 3000
	}
	if cfg.RangeReadings == 0 {
		cfg.RangeReadings = 360
	}
}

// FocalPx returns the pinhole focal length in pixels of the simulated camera.
func (cfg *Config) FocalPx() float64 {
	return float64(cfg.FrameWidth) / 2 / math.Tan(cfg.HorizontalFOVDegs*math.Pi/360)
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	switch {
	case cfg.RoomWidthMm <= 0 || cfg.RoomDepthMm <= 0:
		return utils.NewConfigValidationError(path, errors.New("room dimensions should be > 0"))
	case cfg.StartXMm <= 0 || cfg.StartXMm >= cfg.RoomWidthMm || cfg.StartYMm <= 0 || cfg.StartYMm >= cfg.RoomDepthMm:
		return utils.NewConfigValidationError(path, errors.New("start position should be inside the room"))
	case cfg.FrameWidth < 16 || cfg.FrameHeight < 16:
		return utils.NewConfigValidationError(path, errors.New("frame should be at least 16x16"))
	case cfg.HorizontalFOVDegs <= 0 || cfg.HorizontalFOVDegs >= 180:
		return utils.NewConfigValidationError(path, errors.New("horizontal_fov_degs should be in (0, 180)"))
	case cfg.CardWidthMm <= 0:
		return utils.NewConfigValidationError(path, errors.New("card_width_mm should be > 0"))
	case cfg.RangeReadings < 1:
		return utils.NewConfigValidationError(path, errors.New("range_readings should be >= 1"))
	}
	if dups := lo.FindDuplicates(lo.Map(cfg.Markers, func(m MarkerConfig, _ int) int { return m.ID })); len(dups) > 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("duplicate marker ids %v", dups))
	}
	for i, m := range cfg.Markers {
		if m.Card == "" {
			return utils.NewConfigValidationFieldRequiredError(fmt.Sprintf("%s.markers.%d", path, i), "card")
		}
	}
	return nil
}
