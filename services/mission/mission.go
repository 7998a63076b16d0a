// Package mission sequences the search for a quota of distinct cards: explore until a marker
// shows up, approach it, center the camera, identify the card once, turn away and repeat.
package mission

import (
	"context"
	"image"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/navigation"
	"github.com/robotics-cluedo/cluedo/services/position"
	"github.com/robotics-cluedo/cluedo/utils"
	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

// ErrRecognitionTimeout is reported when Identify does not return within the configured bound.
var ErrRecognitionTimeout = errors.New("recognition timed out")

// Deps are the collaborators of the controller.
type Deps struct {
	Hub        *sensorhub.Hub
	Position   position.Service
	Navigation navigation.Service
	Recognizer recognition.Recognizer
	// Clock drives the tick cadence and the recognition timeout. Nil means the wall clock.
	Clock  clock.Clock
	Logger logging.Logger
}

// Controller is the mission state machine. It is driven by a single goroutine, either Run or a
// caller stepping Tick, and is not safe for concurrent use.
type Controller struct {
	cfg    Config
	deps   Deps
	logger logging.Logger
	runID  string

	state      State
	detections *DetectionSet
	// process is true while the visible marker still owes a recognition attempt.
	process        bool
	encounterTicks  int
	encounterID     string
	encounterMarker int
	// abandoned counts the encounters per marker ID that ran out of ticks.
	abandoned map[int]int
	tick      int
	history        []Transition
}

// NewController returns a controller in SCANNING with an empty detection set.
func NewController(cfg Config, deps Deps) (*Controller, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate("mission"); err != nil {
		return nil, err
	}
	switch {
	case deps.Hub == nil:
		return nil, errors.New("mission needs a sensor hub")
	case deps.Position == nil:
		return nil, errors.New("mission needs a position service")
	case deps.Navigation == nil:
		return nil, errors.New("mission needs a navigation service")
	case deps.Recognizer == nil:
		return nil, errors.New("mission needs a recognizer")
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewBlankLogger("mission")
	}
	return &Controller{
		cfg:        cfg,
		deps:       deps,
		logger:     deps.Logger,
		runID:      uuid.NewString(),
		state:      StateScanning,
		detections: NewDetectionSet(cfg.Quota),
		process:    true,
		abandoned:  map[int]int{},
	}, nil
}

// RunID identifies this mission in logs.
func (c *Controller) RunID() string {
	return c.runID
}

// State returns the state reached by the last tick.
func (c *Controller) State() State {
	return c.state
}

// Process reports whether the next visible marker will get a recognition attempt.
func (c *Controller) Process() bool {
	return c.process
}

// Detections returns a copy of the detection set.
func (c *Controller) Detections() *DetectionSet {
	return c.detections.clone()
}

// History returns the state changes so far, oldest first.
func (c *Controller) History() []Transition {
	return append([]Transition(nil), c.history...)
}

// Run ticks once immediately and then on every tick interval until the quota is reached or ctx is
// done. The detection set is returned in both cases.
func (c *Controller) Run(ctx context.Context) (*DetectionSet, error) {
	c.logger.CInfow(ctx, "mission started", "run_id", c.runID, "quota", c.cfg.Quota,
		"tick_interval", c.cfg.TickInterval)
	ticker := c.deps.Clock.Ticker(c.cfg.TickInterval)
	defer ticker.Stop()
	for {
		state, err := c.Tick(ctx)
		if err != nil {
			c.logger.CInfow(ctx, "mission interrupted", "run_id", c.runID, "found", c.detections.Names())
			return c.Detections(), err
		}
		if state == StateDone {
			return c.Detections(), nil
		}
		select {
		case <-ctx.Done():
			c.logger.CInfow(ctx, "mission interrupted", "run_id", c.runID, "found", c.detections.Names())
			return c.Detections(), ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one control step against the latest sensor values. Once DONE it returns immediately
// without touching any collaborator. The only error is ctx's, in which case no further motion is
// issued for this tick.
func (c *Controller) Tick(ctx context.Context) (State, error) {
	if c.state == StateDone {
		return StateDone, nil
	}
	if err := ctx.Err(); err != nil {
		return c.state, err
	}
	c.tick++
	next := c.step(ctx)
	if err := ctx.Err(); err != nil {
		return c.state, err
	}
	if c.detections.Complete() {
		next = StateDone
	}
	c.transition(next)
	if next == StateDone {
		c.logger.CInfow(ctx, "Mission accomplished", "run_id", c.runID, "found", c.detections.Names(),
			"ticks", c.tick)
	}
	return c.state, nil
}

func (c *Controller) step(ctx context.Context) State {
	markers := c.deps.Hub.Markers()
	if markers.Visible() && markers.Stale(c.deps.Clock.Now(), c.cfg.MarkerMaxAge) {
		c.logger.CDebugw(ctx, "marker set is stale, ignoring it", "timestamp", markers.Timestamp,
			"max_age", c.cfg.MarkerMaxAge)
		markers = nil
	}
	if !markers.Visible() {
		if c.encounterTicks > 0 {
			c.logger.CInfow(ctx, "marker lost, back to scanning", "encounter", c.encounterID)
			c.abandonEncounter()
		}
		if err := c.deps.Navigation.Navigate(ctx, c.deps.Hub.Ranges()); err != nil {
			c.logger.CWarnw(ctx, "navigation failed", "error", err)
		}
		return StateScanning
	}

	if !c.process {
		c.rotateReset(ctx)
		c.process = true
		return StateScanning
	}

	c.encounterTicks++
	if c.encounterTicks == 1 {
		c.encounterID = uuid.NewString()
		marker, _ := markers.Nearest()
		c.encounterMarker = marker.ID
		c.logger.CInfow(ctx, "marker encounter started", "encounter", c.encounterID, "marker", marker.ID)
	}
	if c.encounterTicks > c.cfg.MaxTicksPerEncounter {
		c.logger.CWarnw(ctx, "encounter did not converge, back to scanning", "encounter", c.encounterID,
			"marker", c.encounterMarker, "ticks", c.encounterTicks-1)
		marker := c.encounterMarker
		c.abandonEncounter()
		c.abandoned[marker]++
		if c.abandoned[marker] >= c.cfg.MaxEncountersPerMarker {
			c.logger.CWarnw(ctx, "giving up on marker, turning away", "marker", marker,
				"encounters", c.abandoned[marker])
			delete(c.abandoned, marker)
			c.rotateReset(ctx)
			return StateScanning
		}
		if err := c.deps.Navigation.Navigate(ctx, c.deps.Hub.Ranges()); err != nil {
			c.logger.CWarnw(ctx, "navigation failed", "error", err)
		}
		return StateScanning
	}

	if !c.deps.Position.Aligned() {
		c.deps.Position.AlignToMarker(ctx, markers)
		return StateApproachingMarker
	}
	frame := c.deps.Hub.Frame()
	if !c.deps.Position.Centered() {
		c.deps.Position.CenterOnFrame(ctx, frame)
		return StateCentering
	}
	if frame == nil || frame.Image == nil {
		c.logger.CDebugw(ctx, "no frame to recognize yet", "encounter", c.encounterID)
		c.deps.Position.ResetCenteredFlag()
		return StateCentering
	}

	c.transition(StateRecognizing)
	match, err := c.identify(ctx, frame.Image)
	if ctx.Err() != nil {
		return StateRecognizing
	}
	switch {
	case errors.Is(err, recognition.ErrNoFeatures):
		c.logger.CDebugw(ctx, "frame too plain to recognize", "encounter", c.encounterID)
	case err != nil:
		c.logger.CWarnw(ctx, "recognition failed", "encounter", c.encounterID, "error", err)
	case match == nil:
	case c.detections.Add(match.Name()):
		c.logger.CInfow(ctx, "new card identified", "name", match.Name(), "inliers", match.InlierCount,
			"found", c.detections.Len(), "quota", c.detections.Quota())
	default:
		c.logger.CDebugw(ctx, "card already identified", "name", match.Name())
	}
	c.finishEncounter()
	return StateRecognizing
}

// identify runs the recognizer on its own goroutine so the tick can give up on timeout or
// cancellation. The recognizer's context is cancelled when identify returns.
func (c *Controller) identify(ctx context.Context, frame image.Image) (*recognition.TrackedMatch, error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timeout <-chan time.Time
	if c.cfg.RecognitionTimeout > 0 {
		timer := c.deps.Clock.Timer(c.cfg.RecognitionTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	type result struct {
		match *recognition.TrackedMatch
		err   error
	}
	done := make(chan result, 1)
	stopSlow := utils.SlowLogger(ctx, c.deps.Clock, "recognition still running", c.logger, "encounter", c.encounterID)
	defer stopSlow()
	goutils.PanicCapturingGo(func() {
		match, err := c.deps.Recognizer.Identify(rctx, frame)
		done <- result{match, err}
	})

	select {
	case r := <-done:
		return r.match, r.err
	case <-timeout:
		return nil, ErrRecognitionTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// rotateReset turns the robot away from the marker in view.
func (c *Controller) rotateReset(ctx context.Context) {
	c.transition(StateRotatingReset)
	if err := c.deps.Navigation.Rotate(ctx, c.cfg.ResetRotationDegs); err != nil {
		c.logger.CWarnw(ctx, "reset rotation failed", "error", err)
	}
}

// finishEncounter closes a completed encounter: the marker will not be processed again until the
// reset rotation.
func (c *Controller) finishEncounter() {
	c.deps.Position.ResetAlignedFlag()
	c.deps.Position.ResetCenteredFlag()
	c.process = false
	c.encounterTicks = 0
	delete(c.abandoned, c.encounterMarker)
}

// abandonEncounter drops an encounter that never reached recognition. The marker still owes an
// attempt, so process stays set.
func (c *Controller) abandonEncounter() {
	c.deps.Position.ResetAlignedFlag()
	c.deps.Position.ResetCenteredFlag()
	c.encounterTicks = 0
}

func (c *Controller) transition(to State) {
	if to == c.state {
		return
	}
	c.history = append(c.history, Transition{From: c.state, To: to, Tick: c.tick, At: c.deps.Clock.Now()})
	c.logger.Debugw("state transition", "from", c.state.String(), "to", to.String(), "tick", c.tick)
	c.state = to
}
