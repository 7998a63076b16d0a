package builtin

import (
	"context"
	"image"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/robotics-cluedo/cluedo/components/base/fake"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/position"
	"github.com/robotics-cluedo/cluedo/testutils"
	"github.com/robotics-cluedo/cluedo/testutils/inject"
)

func defaultConfig(t *testing.T) position.Config {
	t.Helper()
	var cfg position.Config
	cfg.ApplyDefaults()
	test.That(t, cfg.Validate("position"), test.ShouldBeNil)
	return cfg
}

func markersAt(x, y float64) *sensorhub.MarkerSet {
	return &sensorhub.MarkerSet{Markers: []sensorhub.MarkerPose{
		{ID: 3, Position: r3.Vector{X: x, Y: y}, Orientation: sensorhub.YawQuat(180)},
	}}
}

func TestAlignToMarker(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := fake.NewBase(fake.Pose{}, logger)
	svc := NewBuiltIn(defaultConfig(t), b, logger)

	test.That(t, svc.AlignToMarker(ctx, nil), test.ShouldBeFalse)
	test.That(t, svc.AlignToMarker(ctx, &sensorhub.MarkerSet{}), test.ShouldBeFalse)
	test.That(t, b.Commands(), test.ShouldBeEmpty)

	// off to the left: turn first
	test.That(t, svc.AlignToMarker(ctx, markersAt(866.0254037844386, 500)), test.ShouldBeFalse)
	// too far: one bounded step forward
	test.That(t, svc.AlignToMarker(ctx, markersAt(1000, 0)), test.ShouldBeFalse)
	// too close: back off
	test.That(t, svc.AlignToMarker(ctx, markersAt(550-100, 0)), test.ShouldBeFalse)
	test.That(t, svc.Aligned(), test.ShouldBeFalse)

	cmds := b.Commands()
	test.That(t, cmds, test.ShouldHaveLength, 3)
	test.That(t, cmds[0].Kind, test.ShouldEqual, fake.CommandSpin)
	test.That(t, cmds[0].Value, test.ShouldAlmostEqual, 30, 1e-9)
	test.That(t, cmds[1], test.ShouldResemble, fake.Command{Kind: fake.CommandMoveStraight, Value: 300, Speed: 150})
	test.That(t, cmds[2], test.ShouldResemble, fake.Command{Kind: fake.CommandMoveStraight, Value: -150, Speed: 150})

	test.That(t, svc.AlignToMarker(ctx, markersAt(560, 20)), test.ShouldBeTrue)
	test.That(t, svc.Aligned(), test.ShouldBeTrue)
	test.That(t, b.Commands(), test.ShouldHaveLength, 3)

	svc.ResetAlignedFlag()
	test.That(t, svc.Aligned(), test.ShouldBeFalse)

	test.That(t, svc.AlignToMarker(ctx, markersAt(560, 20)), test.ShouldBeTrue)
	// losing the marker clears the flag
	test.That(t, svc.AlignToMarker(ctx, &sensorhub.MarkerSet{}), test.ShouldBeFalse)
	test.That(t, svc.Aligned(), test.ShouldBeFalse)
}

func TestAlignToNearestMarker(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := fake.NewBase(fake.Pose{}, logger)
	svc := NewBuiltIn(defaultConfig(t), b, logger)

	markers := &sensorhub.MarkerSet{Markers: []sensorhub.MarkerPose{
		{ID: 1, Position: r3.Vector{X: 3000, Y: 0}},
		{ID: 2, Position: r3.Vector{X: 600, Y: 0}},
	}}
	test.That(t, svc.AlignToMarker(ctx, markers), test.ShouldBeTrue)
	test.That(t, b.Commands(), test.ShouldBeEmpty)
}

func TestAssess(t *testing.T) {
	cfg := defaultConfig(t)
	a := Assess(cfg, sensorhub.MarkerPose{ID: 4, Position: r3.Vector{X: 600}, Orientation: sensorhub.YawQuat(180)})
	test.That(t, a.MarkerID, test.ShouldEqual, 4)
	test.That(t, a.FacingDeg, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, a.WithinRange, test.ShouldBeTrue)
	test.That(t, a.Facing, test.ShouldBeTrue)

	a = Assess(cfg, sensorhub.MarkerPose{Position: r3.Vector{X: 900, Y: -100}, Orientation: sensorhub.YawQuat(150)})
	test.That(t, a.FacingDeg, test.ShouldAlmostEqual, -30, 1e-9)
	test.That(t, a.WithinRange, test.ShouldBeFalse)
	test.That(t, a.Facing, test.ShouldBeFalse)
	test.That(t, a.BearingDeg, test.ShouldBeLessThan, 0)
}

func TestCenterOnFrame(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := fake.NewBase(fake.Pose{}, logger)
	svc := NewBuiltIn(defaultConfig(t), b, logger)
	card := testutils.MakeCard(2, 40, 40)

	test.That(t, svc.CenterOnFrame(ctx, nil), test.ShouldBeFalse)
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{}), test.ShouldBeFalse)
	blank := testutils.NewFrame(320, 240, testutils.WallColor)
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{Image: blank}), test.ShouldBeFalse)
	test.That(t, b.Commands(), test.ShouldBeEmpty)

	right := testutils.MakeScene(card, 320, 240, image.Pt(260, 100))
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{Image: right}), test.ShouldBeFalse)
	left := testutils.MakeScene(card, 320, 240, image.Pt(20, 100))
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{Image: left}), test.ShouldBeFalse)
	test.That(t, svc.Centered(), test.ShouldBeFalse)

	cmds := b.Commands()
	test.That(t, cmds, test.ShouldHaveLength, 2)
	test.That(t, cmds[0].Kind, test.ShouldEqual, fake.CommandSpin)
	test.That(t, cmds[0].Value, test.ShouldAlmostEqual, -22.3125, 0.5)
	test.That(t, cmds[1].Value, test.ShouldAlmostEqual, 22.6875, 0.5)

	middle := testutils.MakeScene(card, 320, 240, image.Pt(140, 100))
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{Image: middle}), test.ShouldBeTrue)
	test.That(t, svc.Centered(), test.ShouldBeTrue)
	test.That(t, b.Commands(), test.ShouldHaveLength, 2)

	svc.ResetCenteredFlag()
	test.That(t, svc.Centered(), test.ShouldBeFalse)
}

func TestActuatorFailures(t *testing.T) {
	ctx := context.Background()
	logger, logs := logging.NewObservedTestLogger(t)
	injected := &inject.Base{
		SpinFunc: func(ctx context.Context, angleDeg, degsPerSec float64) error {
			return errors.New("motor stalled")
		},
	}
	svc := NewBuiltIn(defaultConfig(t), injected, logger)

	test.That(t, svc.AlignToMarker(ctx, markersAt(500, 500)), test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("alignment command failed").Len(), test.ShouldEqual, 1)

	right := testutils.MakeScene(testutils.MakeCard(2, 40, 40), 320, 240, image.Pt(260, 100))
	test.That(t, svc.CenterOnFrame(ctx, &sensorhub.Frame{Image: right}), test.ShouldBeFalse)
	test.That(t, logs.FilterMessage("centering command failed").Len(), test.ShouldEqual, 1)
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig(t)
	test.That(t, cfg.StandoffMm, test.ShouldEqual, 600)
	test.That(t, cfg.HorizontalFOVDegs, test.ShouldEqual, 60)

	bad := cfg
	bad.HorizontalFOVDegs = 200
	err := bad.Validate("position")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "horizontal_fov_degs")

	bad = cfg
	bad.StandoffMm = -1
	test.That(t, bad.Validate("position"), test.ShouldNotBeNil)
}
