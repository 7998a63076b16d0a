package inject

import (
	"context"

	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/position"
)

// Aligner is an injected position service.
type Aligner struct {
	position.Service
	AlignToMarkerFunc     func(ctx context.Context, markers *sensorhub.MarkerSet) bool
	CenterOnFrameFunc     func(ctx context.Context, frame *sensorhub.Frame) bool
	AlignedFunc           func() bool
	CenteredFunc          func() bool
	ResetAlignedFlagFunc  func()
	ResetCenteredFlagFunc func()
}

// AlignToMarker calls the injected AlignToMarker or the real version.
func (a *Aligner) AlignToMarker(ctx context.Context, markers *sensorhub.MarkerSet) bool {
	if a.AlignToMarkerFunc == nil {
		return a.Service.AlignToMarker(ctx, markers)
	}
	return a.AlignToMarkerFunc(ctx, markers)
}

// CenterOnFrame calls the injected CenterOnFrame or the real version.
func (a *Aligner) CenterOnFrame(ctx context.Context, frame *sensorhub.Frame) bool {
	if a.CenterOnFrameFunc == nil {
		return a.Service.CenterOnFrame(ctx, frame)
	}
	return a.CenterOnFrameFunc(ctx, frame)
}

// Aligned calls the injected Aligned or the real version.
func (a *Aligner) Aligned() bool {
	if a.AlignedFunc == nil {
		return a.Service.Aligned()
	}
	return a.AlignedFunc()
}

// Centered calls the injected Centered or the real version.
func (a *Aligner) Centered() bool {
	if a.CenteredFunc == nil {
		return a.Service.Centered()
	}
	return a.CenteredFunc()
}

// ResetAlignedFlag calls the injected ResetAlignedFlag or the real version.
func (a *Aligner) ResetAlignedFlag() {
	if a.ResetAlignedFlagFunc == nil {
		a.Service.ResetAlignedFlag()
		return
	}
	a.ResetAlignedFlagFunc()
}

// ResetCenteredFlag calls the injected ResetCenteredFlag or the real version.
func (a *Aligner) ResetCenteredFlag() {
	if a.ResetCenteredFlagFunc == nil {
		a.Service.ResetCenteredFlag()
		return
	}
	a.ResetCenteredFlagFunc()
}
