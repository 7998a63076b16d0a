// Package sensorhub holds the latest value of each sensor stream the mission consumes.
package sensorhub

import (
	"image"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Frame is one camera image.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
}

// RangeScan is one sweep of range readings in meters, ordered by angle. Readings that are not
// finite or not positive are invalid.
type RangeScan struct {
	Ranges         []float64
	AngleMin       float64
	AngleIncrement float64
	Timestamp      time.Time
}

// Angle returns the bearing in radians of reading i.
func (s *RangeScan) Angle(i int) float64 {
	return s.AngleMin + float64(i)*s.AngleIncrement
}

// ValidReading reports whether r is a usable range.
func ValidReading(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// MarkerPose is one detected fiducial in the robot frame: X forward, Y left, Z up, millimeters.
type MarkerPose struct {
	ID          int
	Position    r3.Vector
	Orientation quat.Number
}

// Range returns the planar distance to the marker in millimeters.
func (m MarkerPose) Range() float64 {
	return math.Hypot(m.Position.X, m.Position.Y)
}

// BearingDeg returns the direction of the marker relative to the robot heading, positive to the left.
func (m MarkerPose) BearingDeg() float64 {
	return math.Atan2(m.Position.Y, m.Position.X) * 180 / math.Pi
}

// YawDeg returns the rotation of the marker about the Z axis.
func (m MarkerPose) YawDeg() float64 {
	q := m.Orientation
	siny := 2 * (q.Real*q.Kmag + q.Imag*q.Jmag)
	cosy := 1 - 2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag)
	return math.Atan2(siny, cosy) * 180 / math.Pi
}

// YawQuat returns the unit quaternion of a rotation by yawDeg about Z.
func YawQuat(yawDeg float64) quat.Number {
	half := yawDeg * math.Pi / 360
	return quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
}

// MarkerSet is one update of the marker stream. An empty set means no marker is visible.
type MarkerSet struct {
	Markers   []MarkerPose
	Timestamp time.Time
}

// Visible reports whether at least one marker was detected.
func (ms *MarkerSet) Visible() bool {
	return ms != nil && len(ms.Markers) > 0
}

// Stale reports whether the set is older than maxAge at now.
func (ms *MarkerSet) Stale(now time.Time, maxAge time.Duration) bool {
	return ms != nil && now.Sub(ms.Timestamp) > maxAge
}

// Nearest returns the closest marker, the first one on ties.
func (ms *MarkerSet) Nearest() (MarkerPose, bool) {
	if !ms.Visible() {
		return MarkerPose{}, false
	}
	best := ms.Markers[0]
	for _, m := range ms.Markers[1:] {
		if m.Range() < best.Range() {
			best = m
		}
	}
	return best, true
}

// Snapshot is the latest value of each stream at read time. A nil field means the stream has not
// produced anything yet. The streams are read independently and are not synchronized.
type Snapshot struct {
	Frame   *Frame
	Ranges  *RangeScan
	Markers *MarkerSet
}
