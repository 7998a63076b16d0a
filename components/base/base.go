// Package base defines the mobile base the mission drives: in-place spins and straight moves.
package base

import (
	"context"

	"github.com/pkg/errors"
)

// MaxSpinDegs bounds a single Spin command.
const MaxSpinDegs = 360.0

// ErrZeroSpeed is returned when a motion is requested with no speed.
var ErrZeroSpeed = errors.New("speed must be non-zero")

// A Base represents a physical base of a robot.
type Base interface {
	// MoveStraight moves the robot straight a given distance at a given speed.
	// If a distance or speed of zero is given, the base will stop.
	// This method blocks until completed or cancelled.
	MoveStraight(ctx context.Context, distanceMm int, mmPerSec float64) error

	// Spin spins the robot by a given angle in degrees at a given speed.
	// Positive angles turn left (counter-clockwise seen from above).
	// This method blocks until completed or cancelled.
	Spin(ctx context.Context, angleDeg, degsPerSec float64) error

	// Stop stops the base. It is assumed the base stops immediately.
	Stop(ctx context.Context) error

	Close(ctx context.Context) error
}

// ValidateSpin checks a spin request against the single-command bound.
func ValidateSpin(angleDeg, degsPerSec float64) error {
	if angleDeg > MaxSpinDegs || angleDeg < -MaxSpinDegs {
		return errors.Errorf("spin of %.1f degrees exceeds the %.0f degree bound", angleDeg, MaxSpinDegs)
	}
	if degsPerSec == 0 && angleDeg != 0 {
		return ErrZeroSpeed
	}
	return nil
}
