package sensorhub

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/utils"
)

// Stream names used in logs and warm-up reports.
const (
	StreamFrame   = "frame"
	StreamRanges  = "ranges"
	StreamMarkers = "markers"
)

const warmupPoll = 50 * time.Millisecond

// FrameSource produces camera frames. NextFrame blocks until a frame is available.
type FrameSource interface {
	NextFrame(ctx context.Context) (*Frame, error)
}

// RangeSource produces range scans.
type RangeSource interface {
	NextRanges(ctx context.Context) (*RangeScan, error)
}

// MarkerSource produces marker detections.
type MarkerSource interface {
	NextMarkers(ctx context.Context) (*MarkerSet, error)
}

// Sources groups the producers pumped by Start. Nil sources are skipped.
type Sources struct {
	Frames  FrameSource
	Ranges  RangeSource
	Markers MarkerSource
}

// Hub keeps one slot per stream. Each slot has a single writer and is swapped atomically, so
// readers never block writers and never see a partially written value.
type Hub struct {
	clock  clock.Clock
	logger logging.Logger

	frame   atomic.Pointer[Frame]
	ranges  atomic.Pointer[RangeScan]
	markers atomic.Pointer[MarkerSet]

	mu      sync.Mutex
	workers utils.StoppableWorkers
}

// NewHub returns an empty hub. A nil clock means the wall clock.
func NewHub(clk clock.Clock, logger logging.Logger) *Hub {
	if clk == nil {
		clk = clock.New()
	}
	return &Hub{clock: clk, logger: logger}
}

// PublishFrame replaces the frame slot. A zero timestamp is stamped with the hub clock.
func (h *Hub) PublishFrame(f Frame) {
	if f.Timestamp.IsZero() {
		f.Timestamp = h.clock.Now()
	}
	h.frame.Store(&f)
}

// PublishRanges replaces the range slot with a copy of s.
func (h *Hub) PublishRanges(s RangeScan) {
	if s.Timestamp.IsZero() {
		s.Timestamp = h.clock.Now()
	}
	s.Ranges = append([]float64(nil), s.Ranges...)
	h.ranges.Store(&s)
}

// PublishMarkers replaces the marker slot with a copy of ms.
func (h *Hub) PublishMarkers(ms MarkerSet) {
	if ms.Timestamp.IsZero() {
		ms.Timestamp = h.clock.Now()
	}
	ms.Markers = append([]MarkerPose(nil), ms.Markers...)
	h.markers.Store(&ms)
}

// Frame returns the latest frame or nil.
func (h *Hub) Frame() *Frame {
	return h.frame.Load()
}

// Ranges returns the latest range scan or nil.
func (h *Hub) Ranges() *RangeScan {
	return h.ranges.Load()
}

// Markers returns the latest marker set or nil.
func (h *Hub) Markers() *MarkerSet {
	return h.markers.Load()
}

// Snapshot reads every slot once.
func (h *Hub) Snapshot() Snapshot {
	return Snapshot{Frame: h.Frame(), Ranges: h.Ranges(), Markers: h.Markers()}
}

// Start pumps every non-nil source on its own goroutine, publishing each value it yields and
// waiting interval between reads. Read errors are logged and retried.
func (h *Hub) Start(sources Sources, interval time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.workers != nil {
		return errors.New("sensor hub already started")
	}
	var funcs []func(context.Context)
	if sources.Frames != nil {
		funcs = append(funcs, pump(h, StreamFrame, interval, sources.Frames.NextFrame, func(f *Frame) {
			h.PublishFrame(*f)
		}))
	}
	if sources.Ranges != nil {
		funcs = append(funcs, pump(h, StreamRanges, interval, sources.Ranges.NextRanges, func(s *RangeScan) {
			h.PublishRanges(*s)
		}))
	}
	if sources.Markers != nil {
		funcs = append(funcs, pump(h, StreamMarkers, interval, sources.Markers.NextMarkers, func(ms *MarkerSet) {
			h.PublishMarkers(*ms)
		}))
	}
	h.workers = utils.NewStoppableWorkers(funcs...)
	return nil
}

func pump[T any](
	h *Hub,
	stream string,
	interval time.Duration,
	next func(context.Context) (*T, error),
	publish func(*T),
) func(context.Context) {
	return func(ctx context.Context) {
		for {
			v, err := next(ctx)
			if ctx.Err() != nil {
				return
			}
			switch {
			case err != nil:
				h.logger.CWarnw(ctx, "sensor read failed", "stream", stream, "error", err)
			case v != nil:
				publish(v)
			}
			select {
			case <-ctx.Done():
				return
			case <-h.clock.After(interval):
			}
		}
	}
}

// Close stops the pumps started by Start and waits for them to return.
func (h *Hub) Close() error {
	h.mu.Lock()
	workers := h.workers
	h.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}
	return nil
}

// silentStreams lists the streams that have not produced a value yet.
func (h *Hub) silentStreams() []string {
	var silent []string
	if h.Frame() == nil {
		silent = append(silent, StreamFrame)
	}
	if h.Ranges() == nil {
		silent = append(silent, StreamRanges)
	}
	if h.Markers() == nil {
		silent = append(silent, StreamMarkers)
	}
	return silent
}

// WaitForWarmup waits until every stream has produced a value, the timeout passes or ctx is
// done, and returns the streams that are still silent. A silent stream is logged, not fatal:
// the mission degrades to scanning until data shows up.
func (h *Hub) WaitForWarmup(ctx context.Context, timeout time.Duration) []string {
	timer := h.clock.Timer(timeout)
	defer timer.Stop()
	ticker := h.clock.Ticker(warmupPoll)
	defer ticker.Stop()
	for {
		silent := h.silentStreams()
		if len(silent) == 0 {
			h.logger.Debug("all sensor streams are live")
			return nil
		}
		select {
		case <-ctx.Done():
			return silent
		case <-timer.C:
			h.logger.Warnw("sensor streams still silent after warm-up", "streams", silent, "timeout", timeout)
			return silent
		case <-ticker.C:
		}
	}
}
