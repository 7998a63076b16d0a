package inject

import (
	"context"

	"github.com/robotics-cluedo/cluedo/components/base"
)

// Base is an injected base.
type Base struct {
	base.Base
	MoveStraightFunc func(ctx context.Context, distanceMm int, mmPerSec float64) error
	SpinFunc         func(ctx context.Context, angleDeg, degsPerSec float64) error
	StopFunc         func(ctx context.Context) error
	CloseFunc        func(ctx context.Context) error
}

// MoveStraight calls the injected MoveStraight or the real version.
func (b *Base) MoveStraight(ctx context.Context, distanceMm int, mmPerSec float64) error {
	if b.MoveStraightFunc == nil {
		return b.Base.MoveStraight(ctx, distanceMm, mmPerSec)
	}
	return b.MoveStraightFunc(ctx, distanceMm, mmPerSec)
}

// Spin calls the injected Spin or the real version.
func (b *Base) Spin(ctx context.Context, angleDeg, degsPerSec float64) error {
	if b.SpinFunc == nil {
		return b.Base.Spin(ctx, angleDeg, degsPerSec)
	}
	return b.SpinFunc(ctx, angleDeg, degsPerSec)
}

// Stop calls the injected Stop or the real version.
func (b *Base) Stop(ctx context.Context) error {
	if b.StopFunc == nil {
		return b.Base.Stop(ctx)
	}
	return b.StopFunc(ctx)
}

// Close calls the injected Close or the real version.
func (b *Base) Close(ctx context.Context) error {
	if b.CloseFunc == nil {
		if b.Base == nil {
			return nil
		}
		return b.Base.Close(ctx)
	}
	return b.CloseFunc(ctx)
}
