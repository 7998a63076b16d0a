// Package builtin implements the position service on top of a mobile base.
package builtin

import (
	"context"
	"math"

	"go.uber.org/atomic"

	"github.com/robotics-cluedo/cluedo/components/base"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/position"
	"github.com/robotics-cluedo/cluedo/utils"
)

var _ position.Service = (*builtIn)(nil)

// Alignment is the error between the robot and the standoff pose in front of a marker.
type Alignment struct {
	MarkerID    int
	BearingDeg  float64
	RangeErrMm  float64
	FacingDeg   float64
	WithinRange bool
	Facing      bool
}

type builtIn struct {
	cfg      position.Config
	base     base.Base
	saliency rimage.SaliencyConfig
	logger   logging.Logger

	aligned  atomic.Bool
	centered atomic.Bool
}

// NewBuiltIn returns a position service driving b. cfg must already be validated.
func NewBuiltIn(cfg position.Config, b base.Base, logger logging.Logger) position.Service {
	return &builtIn{cfg: cfg, base: b, saliency: rimage.DefaultSaliencyConfig, logger: logger}
}

// Assess measures how far the robot is from the standoff pose in front of m. The facing error is
// the marker yaw relative to the reversed robot heading: zero when the marker faces the robot.
func Assess(cfg position.Config, m sensorhub.MarkerPose) Alignment {
	bearing := m.BearingDeg()
	rangeErr := m.Range() - cfg.StandoffMm
	return Alignment{
		MarkerID:    m.ID,
		BearingDeg:  bearing,
		RangeErrMm:  rangeErr,
		FacingDeg:   utils.WrapAngDeg(m.YawDeg() + 180),
		WithinRange: math.Abs(rangeErr) <= cfg.DistanceToleranceMm,
		Facing:      math.Abs(bearing) <= cfg.BearingToleranceDegs,
	}
}

func (svc *builtIn) AlignToMarker(ctx context.Context, markers *sensorhub.MarkerSet) bool {
	marker, ok := markers.Nearest()
	if !ok {
		svc.aligned.Store(false)
		return false
	}
	a := Assess(svc.cfg, marker)
	svc.logger.CDebugw(ctx, "alignment", "marker", a.MarkerID, "bearing_deg", a.BearingDeg,
		"range_err_mm", a.RangeErrMm, "facing_deg", a.FacingDeg)

	var err error
	switch {
	case !a.Facing:
		err = svc.base.Spin(ctx, utils.ClampF64(a.BearingDeg, -base.MaxSpinDegs, base.MaxSpinDegs), svc.cfg.DegsPerSec)
	case !a.WithinRange:
		step := utils.ClampF64(a.RangeErrMm, -svc.cfg.MaxStepMm, svc.cfg.MaxStepMm)
		err = svc.base.MoveStraight(ctx, int(math.Round(step)), svc.cfg.MmPerSec)
	default:
		svc.aligned.Store(true)
		svc.logger.CDebugw(ctx, "aligned with marker", "marker", a.MarkerID)
		return true
	}
	if err != nil {
		svc.logger.CWarnw(ctx, "alignment command failed", "marker", a.MarkerID, "error", err)
	}
	svc.aligned.Store(false)
	return false
}

func (svc *builtIn) CenterOnFrame(ctx context.Context, frame *sensorhub.Frame) bool {
	if frame == nil || frame.Image == nil {
		svc.centered.Store(false)
		return false
	}
	region, ok := rimage.LocateSalientRegion(frame.Image, svc.saliency)
	if !ok {
		svc.logger.CDebugw(ctx, "no salient region in frame")
		svc.centered.Store(false)
		return false
	}
	bounds := frame.Image.Bounds()
	centerX := float64(bounds.Min.X) + float64(bounds.Dx())/2
	offset := region.Centroid.X - centerX
	if math.Abs(offset) <= svc.cfg.CenterTolerancePx {
		svc.centered.Store(true)
		svc.logger.CDebugw(ctx, "frame centered", "offset_px", offset)
		return true
	}
	// a region right of center needs a clockwise (negative) turn
	angle := -offset / float64(bounds.Dx()) * svc.cfg.HorizontalFOVDegs
	svc.logger.CDebugw(ctx, "centering", "offset_px", offset, "spin_deg", angle)
	if err := svc.base.Spin(ctx, angle, svc.cfg.DegsPerSec); err != nil {
		svc.logger.CWarnw(ctx, "centering command failed", "error", err)
	}
	svc.centered.Store(false)
	return false
}

func (svc *builtIn) Aligned() bool {
	return svc.aligned.Load()
}

func (svc *builtIn) Centered() bool {
	return svc.centered.Load()
}

func (svc *builtIn) ResetAlignedFlag() {
	svc.aligned.Store(false)
}

func (svc *builtIn) ResetCenteredFlag() {
	svc.centered.Store(false)
}
