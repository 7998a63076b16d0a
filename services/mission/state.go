package mission

import (
	"fmt"
	"time"
)

// State is the phase the mission controller is in.
type State int

// The mission states. Approaching, centering and recognizing form the per-marker encounter.
const (
	StateScanning State = iota
	StateApproachingMarker
	StateCentering
	StateRecognizing
	StateRotatingReset
	StateDone
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "SCANNING"
	case StateApproachingMarker:
		return "APPROACHING_MARKER"
	case StateCentering:
		return "CENTERING"
	case StateRecognizing:
		return "RECOGNIZING"
	case StateRotatingReset:
		return "ROTATING_RESET"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition is one state change.
type Transition struct {
	From State
	To   State
	Tick int
	At   time.Time
}
