package recognition

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/testutils"
	"github.com/robotics-cluedo/cluedo/vision/keypoints"
)

const cardSize = 160

var cardNames = []string{"plum", "mustard", "rope"}

func newTestEngine(t *testing.T, logger logging.Logger) *Engine {
	t.Helper()
	return newTestEngineWithConfig(t, DefaultConfig(), logger)
}

func newTestEngineWithConfig(t *testing.T, cfg Config, logger logging.Logger) *Engine {
	t.Helper()
	extractor, err := cfg.NewExtractor()
	test.That(t, err, test.ShouldBeNil)
	templates := make([]*TargetTemplate, 0, len(cardNames))
	for i, name := range cardNames {
		tmpl, err := NewTargetTemplate(name, testutils.MakeCard(uint64(i+1), cardSize, cardSize), image.Rectangle{}, extractor)
		test.That(t, err, test.ShouldBeNil)
		templates = append(templates, tmpl)
	}
	catalog, err := NewCatalog(templates...)
	test.That(t, err, test.ShouldBeNil)
	engine, err := NewEngine(cfg, catalog, extractor, logger)
	test.That(t, err, test.ShouldBeNil)
	return engine
}

func TestIdentifyFindsCard(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	engine := newTestEngine(t, logger)

	at := image.Point{64, 32}
	frame := testutils.MakeScene(testutils.MakeCard(2, cardSize, cardSize), 320, 240, at)
	match, err := engine.Identify(context.Background(), frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, match, test.ShouldNotBeNil)
	test.That(t, match.Name(), test.ShouldEqual, "mustard")
	test.That(t, match.InlierCount, test.ShouldBeGreaterThanOrEqualTo, 10)
	test.That(t, match.Confidence, test.ShouldBeGreaterThan, 0.5)
	test.That(t, match.Confidence, test.ShouldBeLessThanOrEqualTo, 1)
	test.That(t, len(match.FramePoints), test.ShouldEqual, match.InlierCount)
	test.That(t, len(match.TemplatePoints), test.ShouldEqual, match.InlierCount)

	expected := []r2.Point{{X: 64, Y: 32}, {X: 224, Y: 32}, {X: 224, Y: 192}, {X: 64, Y: 192}}
	test.That(t, len(match.Quad), test.ShouldEqual, 4)
	for i, p := range match.Quad {
		test.That(t, p.X, test.ShouldAlmostEqual, expected[i].X, 0.5)
		test.That(t, p.Y, test.ShouldAlmostEqual, expected[i].Y, 0.5)
	}
	test.That(t, logs.FilterMessage("Found mustard").Len(), test.ShouldEqual, 1)

	overlay := DrawTrackedMatch(frame, match)
	test.That(t, overlay.Bounds(), test.ShouldResemble, frame.Bounds())
}

func TestIdentifyBruteForce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matcher = MatcherBruteForce
	engine := newTestEngineWithConfig(t, cfg, logging.NewTestLogger(t))

	frame := testutils.MakeScene(testutils.MakeCard(1, cardSize, cardSize), 320, 240, image.Point{80, 40})
	match, err := engine.Identify(context.Background(), frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, match, test.ShouldNotBeNil)
	test.That(t, match.Name(), test.ShouldEqual, "plum")
	test.That(t, match.InlierCount, test.ShouldBeGreaterThanOrEqualTo, 10)
}

func TestIdentifyIsDeterministic(t *testing.T) {
	engine := newTestEngine(t, logging.NewTestLogger(t))
	frame := testutils.MakeScene(testutils.MakeCard(3, cardSize, cardSize), 320, 240, image.Point{100, 40})

	first, err := engine.Identify(context.Background(), frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first, test.ShouldNotBeNil)
	for i := 0; i < 3; i++ {
		again, err := engine.Identify(context.Background(), frame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again.Name(), test.ShouldEqual, first.Name())
		test.That(t, again.InlierCount, test.ShouldEqual, first.InlierCount)
		test.That(t, again.Homography.RawData(), test.ShouldResemble, first.Homography.RawData())
	}
	test.That(t, first.Name(), test.ShouldEqual, "rope")
}

func TestIdentifyNothingFound(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	engine := newTestEngine(t, logger)

	unknown := testutils.MakeScene(testutils.MakeCard(99, cardSize, cardSize), 320, 240, image.Point{64, 32})
	match, err := engine.Identify(context.Background(), unknown)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, match, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("Nothing Found").Len(), test.ShouldEqual, 1)

	blank := testutils.NewFrame(320, 240, color.NRGBA{128, 128, 128, 255})
	match, err = engine.Identify(context.Background(), blank)
	test.That(t, err, test.ShouldBeError, ErrNoFeatures)
	test.That(t, match, test.ShouldBeNil)

	_, err = engine.Identify(context.Background(), nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIdentifyCancelled(t *testing.T) {
	engine := newTestEngine(t, logging.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frame := testutils.MakeScene(testutils.MakeCard(1, cardSize, cardSize), 320, 240, image.Point{64, 32})
	match, err := engine.Identify(ctx, frame)
	test.That(t, err, test.ShouldBeError, context.Canceled)
	test.That(t, match, test.ShouldBeNil)
}

func TestTemplateRegion(t *testing.T) {
	cfg := DefaultConfig()
	extractor, err := cfg.NewExtractor()
	test.That(t, err, test.ShouldBeNil)

	card := testutils.MakeCard(1, cardSize, cardSize)
	reference := testutils.MakeScene(card, 320, 240, image.Point{64, 32})
	region := image.Rect(64, 32, 64+cardSize, 32+cardSize)
	tmpl, err := NewTargetTemplate("plum", reference, region, extractor)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tmpl.ReferenceRegion(), test.ShouldResemble, region)
	for _, p := range tmpl.points {
		test.That(t, image.Pt(int(p.X), int(p.Y)).In(region), test.ShouldBeTrue)
	}

	catalog, err := NewCatalog(tmpl)
	test.That(t, err, test.ShouldBeNil)
	engine, err := NewEngine(cfg, catalog, extractor, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	frame := testutils.MakeScene(card, 320, 240, image.Point{32, 16})
	match, err := engine.Identify(context.Background(), frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, match, test.ShouldNotBeNil)
	test.That(t, match.Quad[0].X, test.ShouldAlmostEqual, 32, 0.5)
	test.That(t, match.Quad[0].Y, test.ShouldAlmostEqual, 16, 0.5)

	_, err = NewTargetTemplate("plum", reference, image.Rect(300, 200, 400, 300), extractor)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewTargetTemplate("", reference, region, extractor)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewTargetTemplate("blank", testutils.NewFrame(100, 100, color.Black), image.Rectangle{}, extractor)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBetterMatch(t *testing.T) {
	a := &TrackedMatch{InlierCount: 20, Confidence: 0.5}
	b := &TrackedMatch{InlierCount: 15, Confidence: 0.9}
	c := &TrackedMatch{InlierCount: 20, Confidence: 0.7}
	test.That(t, a.better(nil), test.ShouldBeTrue)
	test.That(t, a.better(b), test.ShouldBeTrue)
	test.That(t, b.better(a), test.ShouldBeFalse)
	test.That(t, c.better(a), test.ShouldBeTrue)
	// exact ties keep the earlier catalog entry
	test.That(t, a.better(&TrackedMatch{InlierCount: 20, Confidence: 0.5}), test.ShouldBeFalse)
}

func TestNewEngineErrors(t *testing.T) {
	cfg := DefaultConfig()
	extractor, err := cfg.NewExtractor()
	test.That(t, err, test.ShouldBeNil)
	logger := logging.NewTestLogger(t)

	_, err = NewEngine(cfg, nil, extractor, logger)
	test.That(t, err, test.ShouldNotBeNil)

	bad := cfg
	bad.Ratio = 1.5
	_, err = NewEngine(bad, &Catalog{}, extractor, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ratio")

	tmpl, err := NewTargetTemplate("plum", testutils.MakeCard(1, cardSize, cardSize), image.Rectangle{}, extractor)
	test.That(t, err, test.ShouldBeNil)
	catalog, err := NewCatalog(tmpl)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewEngine(cfg, catalog, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate("recognition"), test.ShouldBeNil)
	test.That(t, cfg.MinMatchCount, test.ShouldEqual, 10)
	test.That(t, cfg.Ratio, test.ShouldEqual, 0.75)
	test.That(t, cfg.LSH, test.ShouldResemble, &keypoints.LSHConfig{TableNumber: 6, KeySize: 12, MultiProbeLevel: 1})

	cfg.MinMatchCount = 3
	test.That(t, cfg.Validate("recognition"), test.ShouldNotBeNil)
	cfg = DefaultConfig()
	cfg.RANSACThresholdPx = -1
	test.That(t, cfg.Validate("recognition"), test.ShouldNotBeNil)
	cfg = DefaultConfig()
	cfg.LSH.KeySize = 64
	test.That(t, cfg.Validate("recognition"), test.ShouldNotBeNil)
	cfg = DefaultConfig()
	test.That(t, cfg.Matcher, test.ShouldEqual, MatcherLSH)
	cfg.Matcher = "flann"
	err := cfg.Validate("recognition")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "flann")
}
