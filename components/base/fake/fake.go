// Package fake implements a fake base that records its commands and integrates its own pose.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/r2"

	"github.com/robotics-cluedo/cluedo/components/base"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/utils"
)

// CommandKind identifies a recorded base command.
type CommandKind string

// The recorded command kinds.
const (
	CommandSpin         CommandKind = "spin"
	CommandMoveStraight CommandKind = "move_straight"
	CommandStop         CommandKind = "stop"
)

// Command is one recorded call. Value is degrees for spins and millimeters for moves.
type Command struct {
	Kind  CommandKind
	Value float64
	Speed float64
}

// Pose is the planar pose of the base in the world: position in millimeters, heading in
// degrees counter-clockwise from the world X axis.
type Pose struct {
	Position r2.Point
	ThetaDeg float64
}

// Base is a fake base that moves instantly and remembers every command.
type Base struct {
	mu         sync.Mutex
	pose       Pose
	commands   []Command
	closeCount int
	logger     logging.Logger
}

// NewBase returns a fake base starting at the given pose.
func NewBase(initial Pose, logger logging.Logger) *Base {
	return &Base{pose: initial, logger: logger}
}

// MoveStraight moves the base along its current heading.
func (b *Base) MoveStraight(ctx context.Context, distanceMm int, mmPerSec float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if distanceMm != 0 && mmPerSec == 0 {
		return base.ErrZeroSpeed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	theta := utils.DegToRad(b.pose.ThetaDeg)
	d := float64(distanceMm)
	b.pose.Position = b.pose.Position.Add(r2.Point{X: d * math.Cos(theta), Y: d * math.Sin(theta)})
	b.commands = append(b.commands, Command{Kind: CommandMoveStraight, Value: d, Speed: mmPerSec})
	b.logger.Debugw("move straight", "distance_mm", distanceMm, "pose", b.pose)
	return nil
}

// Spin turns the base in place.
func (b *Base) Spin(ctx context.Context, angleDeg, degsPerSec float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := base.ValidateSpin(angleDeg, degsPerSec); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pose.ThetaDeg = utils.WrapAngDeg(b.pose.ThetaDeg + angleDeg)
	b.commands = append(b.commands, Command{Kind: CommandSpin, Value: angleDeg, Speed: degsPerSec})
	b.logger.Debugw("spin", "angle_deg", angleDeg, "pose", b.pose)
	return nil
}

// Stop records a stop.
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, Command{Kind: CommandStop})
	return nil
}

// Close counts closes.
func (b *Base) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeCount++
	return nil
}

// Pose returns the current pose.
func (b *Base) Pose() Pose {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pose
}

// SetPose teleports the base.
func (b *Base) SetPose(p Pose) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pose = p
}

// Commands returns a copy of the recorded commands in call order.
func (b *Base) Commands() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Command(nil), b.commands...)
}

// CloseCount returns how many times Close was called.
func (b *Base) CloseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeCount
}
