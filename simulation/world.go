// Package simulation is a flat room with fiducial markers and cards on its walls. It drives a fake
// base and produces the camera, range and marker streams the mission consumes.
package simulation

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/robotics-cluedo/cluedo/components/base/fake"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/utils"
)

// WallColor is the color of every wall.
var WallColor = color.NRGBA{R: 40, G: 70, B: 150, A: 255}

// World is the simulated room. It is safe for concurrent use by the sensor pumps and the base.
type World struct {
	cfg    Config
	base   *fake.Base
	cards  map[string]image.Image
	focal  float64
	logger logging.Logger
}

// NewWorld builds a room from cfg. cards maps every card named by a marker to its image.
func NewWorld(cfg Config, cards map[string]image.Image, logger logging.Logger) (*World, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate("simulation"); err != nil {
		return nil, err
	}
	for _, m := range cfg.Markers {
		if _, ok := cards[m.Card]; !ok {
			return nil, errors.Errorf("marker %d shows unknown card %q", m.ID, m.Card)
		}
	}
	start := fake.Pose{Position: r2.Point{X: cfg.StartXMm, Y: cfg.StartYMm}, ThetaDeg: cfg.StartThetaDegs}
	return &World{
		cfg:    cfg,
		base:   fake.NewBase(start, logger.Sublogger("base")),
		cards:  cards,
		focal:  cfg.FocalPx(),
		logger: logger,
	}, nil
}

// Base returns the simulated robot base.
func (w *World) Base() *fake.Base {
	return w.base
}

// Sources returns the world as the three sensor sources of a hub.
func (w *World) Sources() sensorhub.Sources {
	return sensorhub.Sources{Frames: w, Ranges: w, Markers: w}
}

// Publish reads every stream once and publishes it to hub. Tests use it to step the world in
// lockstep with the mission.
func (w *World) Publish(ctx context.Context, hub *sensorhub.Hub) error {
	frame, err := w.NextFrame(ctx)
	if err != nil {
		return err
	}
	scan, err := w.NextRanges(ctx)
	if err != nil {
		return err
	}
	markers, err := w.NextMarkers(ctx)
	if err != nil {
		return err
	}
	hub.PublishFrame(*frame)
	hub.PublishRanges(*scan)
	hub.PublishMarkers(*markers)
	return nil
}

// markerView is a marker seen from the robot: X forward, Y left, millimeters.
type markerView struct {
	marker  MarkerConfig
	rel     r2.Point
	rangeMm float64
}

// toRobotFrame expresses the world point p relative to pose.
func toRobotFrame(pose fake.Pose, p r2.Point) r2.Point {
	d := p.Sub(pose.Position)
	theta := utils.DegToRad(pose.ThetaDeg)
	sin, cos := math.Sincos(theta)
	return r2.Point{X: d.X*cos + d.Y*sin, Y: -d.X*sin + d.Y*cos}
}

// visibleMarkers returns the markers in front of the camera, within range and facing the robot.
func (w *World) visibleMarkers(pose fake.Pose) []markerView {
	var views []markerView
	for _, m := range w.cfg.Markers {
		pos := r2.Point{X: m.X, Y: m.Y}
		rel := toRobotFrame(pose, pos)
		if rel.X <= 0 {
			continue
		}
		if math.Abs(utils.RadToDeg(math.Atan2(rel.Y, rel.X))) > w.cfg.HorizontalFOVDegs/2 {
			continue
		}
		rng := rel.Norm()
		if rng > w.cfg.MaxMarkerRangeMm {
			continue
		}
		normal := r2.Point{X: math.Cos(utils.DegToRad(m.NormalDeg)), Y: math.Sin(utils.DegToRad(m.NormalDeg))}
		if normal.Dot(pos.Sub(pose.Position)) >= 0 {
			continue
		}
		views = append(views, markerView{marker: m, rel: rel, rangeMm: rng})
	}
	return views
}

// NextMarkers reports the markers the robot currently sees.
func (w *World) NextMarkers(ctx context.Context) (*sensorhub.MarkerSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pose := w.base.Pose()
	ms := &sensorhub.MarkerSet{}
	for _, v := range w.visibleMarkers(pose) {
		ms.Markers = append(ms.Markers, sensorhub.MarkerPose{
			ID:          v.marker.ID,
			Position:    r3.Vector{X: v.rel.X, Y: v.rel.Y},
			Orientation: sensorhub.YawQuat(utils.WrapAngDeg(v.marker.NormalDeg - pose.ThetaDeg)),
		})
	}
	return ms, nil
}

// NextFrame renders the visible cards, farthest first, on a plain wall. Cards are drawn facing
// the camera at their apparent size.
func (w *World) NextFrame(ctx context.Context) (*sensorhub.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frame := image.NewNRGBA(image.Rect(0, 0, w.cfg.FrameWidth, w.cfg.FrameHeight))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{WallColor}, image.Point{}, draw.Src)

	views := w.visibleMarkers(w.base.Pose())
	sort.SliceStable(views, func(i, j int) bool { return views[i].rangeMm > views[j].rangeMm })
	for _, v := range views {
		widthPx := int(math.Round(w.focal * w.cfg.CardWidthMm / v.rangeMm))
		if widthPx < 1 {
			continue
		}
		card := imaging.Resize(w.cards[v.marker.Card], widthPx, 0, imaging.Lanczos)
		cx := float64(w.cfg.FrameWidth)/2 - w.focal*v.rel.Y/v.rel.X
		cy := float64(w.cfg.FrameHeight) / 2
		at := image.Pt(
			int(math.Round(cx-float64(card.Bounds().Dx())/2)),
			int(math.Round(cy-float64(card.Bounds().Dy())/2)),
		)
		draw.Draw(frame, card.Bounds().Add(at), card, image.Point{}, draw.Src)
	}
	return &sensorhub.Frame{Image: frame}, nil
}

// NextRanges casts evenly spaced rays around the robot against the room walls.
func (w *World) NextRanges(ctx context.Context) (*sensorhub.RangeScan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pose := w.base.Pose()
	n := w.cfg.RangeReadings
	scan := &sensorhub.RangeScan{
		Ranges:         make([]float64, n),
		AngleMin:       -math.Pi,
		AngleIncrement: 2 * math.Pi / float64(n),
	}
	theta := utils.DegToRad(pose.ThetaDeg)
	for i := range scan.Ranges {
		scan.Ranges[i] = w.distanceToWall(pose.Position, theta+scan.Angle(i)) / 1000
	}
	return scan, nil
}

// distanceToWall returns the distance in millimeters from p to the room boundary along angle.
func (w *World) distanceToWall(p r2.Point, angle float64) float64 {
	sin, cos := math.Sincos(angle)
	dist := math.Inf(1)
	if cos > 1e-12 {
		dist = math.Min(dist, (w.cfg.RoomWidthMm-p.X)/cos)
	} else if cos < -1e-12 {
		dist = math.Min(dist, -p.X/cos)
	}
	if sin > 1e-12 {
		dist = math.Min(dist, (w.cfg.RoomDepthMm-p.Y)/sin)
	} else if sin < -1e-12 {
		dist = math.Min(dist, -p.Y/sin)
	}
	return math.Max(dist, 0)
}
