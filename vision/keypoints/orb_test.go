package keypoints

import (
	"image"
	"math/rand/v2"
	"testing"

	"go.viam.com/test"

	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/testutils"
	"github.com/robotics-cluedo/cluedo/utils"
	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

func testORBConfig() *ORBConfig {
	return &ORBConfig{
		Layers:          3,
		DownscaleFactor: 2,
		FastConf:        testFASTConfig(),
		BRIEFConf:       &BRIEFConfig{N: 256, Sampling: uniform, UseOrientation: true, PatchSize: 31},
	}
}

func TestORBConfigValidate(t *testing.T) {
	cfg := testORBConfig()
	test.That(t, cfg.Validate("orb"), test.ShouldBeNil)
	cfg.Layers = 0
	test.That(t, cfg.Validate("orb"), test.ShouldNotBeNil)
	cfg = testORBConfig()
	cfg.DownscaleFactor = 1
	test.That(t, cfg.Validate("orb"), test.ShouldNotBeNil)
	cfg = testORBConfig()
	cfg.BRIEFConf.N = 100
	test.That(t, cfg.Validate("orb"), test.ShouldNotBeNil)
}

func TestGenerateSamplePairs(t *testing.T) {
	sp1 := GenerateSamplePairs(uniform, 256, 31, rand.NewPCG(7, 8))
	sp2 := GenerateSamplePairs(uniform, 256, 31, rand.NewPCG(7, 8))
	test.That(t, sp1, test.ShouldResemble, sp2)
	test.That(t, sp1.N, test.ShouldEqual, 256)
	for _, p := range append(sp1.P0, sp1.P1...) {
		test.That(t, utils.AbsInt(p.X), test.ShouldBeLessThanOrEqualTo, 16)
		test.That(t, utils.AbsInt(p.Y), test.ShouldBeLessThanOrEqualTo, 16)
	}
	fixedPairs := GenerateSamplePairs(fixed, 64, 31, nil)
	test.That(t, len(fixedPairs.P0), test.ShouldEqual, 64)
}

func TestComputeBRIEFDescriptors(t *testing.T) {
	card := testutils.MakeCard(3, 160, 160)
	cfg := testORBConfig()
	sp := GenerateSamplePairs(cfg.BRIEFConf.Sampling, cfg.BRIEFConf.N, cfg.BRIEFConf.PatchSize, rand.NewPCG(1, 1))
	kps := NewFASTKeypointsFromImage(card, cfg.FastConf)
	test.That(t, len(kps.Points), test.ShouldBeGreaterThan, 0)

	descs, kept, err := ComputeBRIEFDescriptors(card, sp, kps, cfg.BRIEFConf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(descs), test.ShouldEqual, len(kept.Points))
	test.That(t, len(kept.Orientations), test.ShouldEqual, len(kept.Points))
	test.That(t, len(kept.Points), test.ShouldBeLessThan, len(kps.Points))
	border := briefBorder(cfg.BRIEFConf.PatchSize)
	for i, kp := range kept.Points {
		test.That(t, kp.In(card.Bounds().Inset(border)), test.ShouldBeTrue)
		test.That(t, len(descs[i]), test.ShouldEqual, 4)
	}

	again, _, err := ComputeBRIEFDescriptors(card, sp, kps, cfg.BRIEFConf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, descs)

	_, _, err = ComputeBRIEFDescriptors(card, &SamplePairs{N: 10}, kps, cfg.BRIEFConf)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGetImagePyramid(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 320, 320))
	pyramid, err := GetImagePyramid(img, 4, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pyramid.Scales, test.ShouldResemble, []int{1, 2, 4, 8})
	test.That(t, pyramid.Images[3].Bounds().Size(), test.ShouldResemble, image.Point{40, 40})

	// 320x240 would need a 40x30 fourth layer
	pyramid, err = GetImagePyramid(image.NewGray(image.Rect(0, 0, 320, 240)), 4, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pyramid.Scales, test.ShouldResemble, []int{1, 2, 4})
	test.That(t, pyramid.Images[2].Bounds().Size(), test.ShouldResemble, image.Point{80, 60})

	// a layer smaller than the minimum size is not built
	pyramid, err = GetImagePyramid(image.NewGray(image.Rect(0, 0, 100, 100)), 5, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pyramid.Scales, test.ShouldResemble, []int{1, 2})

	_, err = GetImagePyramid(image.NewGray(image.Rect(0, 0, 10, 10)), 3, 2)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = GetImagePyramid(img, 0, 2)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = GetImagePyramid(img, 3, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestORBExtractorTranslationInvariance(t *testing.T) {
	extractor, err := NewORBExtractor(testORBConfig(), 1, 0)
	test.That(t, err, test.ShouldBeNil)

	card := testutils.MakeCard(11, 160, 160)
	offset := image.Point{64, 32}
	frame := rimage.MakeGray(testutils.MakeScene(card, 320, 240, offset))

	cardFeatures, err := extractor.Extract(card)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cardFeatures.Len(), test.ShouldBeGreaterThan, 20)
	frameFeatures, err := extractor.Extract(frame)
	test.That(t, err, test.ShouldBeNil)

	type feature struct {
		pt    image.Point
		scale int
	}
	byPoint := make(map[feature]descriptors.Descriptor, frameFeatures.Len())
	for i, p := range frameFeatures.Points {
		byPoint[feature{p, frameFeatures.Scales[i]}] = frameFeatures.Descriptors[i]
	}
	for i, p := range cardFeatures.Points {
		d, ok := byPoint[feature{p.Add(offset), cardFeatures.Scales[i]}]
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, d, test.ShouldResemble, cardFeatures.Descriptors[i])
	}

	again, err := extractor.Extract(card)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, cardFeatures)
}

func TestORBExtractorMaxFeatures(t *testing.T) {
	extractor, err := NewORBExtractor(testORBConfig(), 1, 25)
	test.That(t, err, test.ShouldBeNil)
	features, err := extractor.Extract(testutils.MakeCard(5, 160, 160))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, features.Len(), test.ShouldEqual, 25)
	test.That(t, len(features.Descriptors), test.ShouldEqual, 25)
	test.That(t, len(features.Scales), test.ShouldEqual, 25)

	_, err = NewORBExtractor(nil, 1, 0)
	test.That(t, err, test.ShouldNotBeNil)
}
