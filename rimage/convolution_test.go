package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func makeCountingGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetGray(x, y, color.Gray{uint8(y*3 + x + 1)})
		}
	}
	return img
}

func TestPaddingGray(t *testing.T) {
	img := makeCountingGray()
	size := image.Point{3, 3}
	anchor := image.Point{1, 1}

	padded, err := PaddingGray(img, size, anchor, BorderConstant)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, padded.Bounds().Size(), test.ShouldResemble, image.Point{5, 5})
	test.That(t, padded.GrayAt(0, 0).Y, test.ShouldEqual, 0)
	test.That(t, padded.GrayAt(1, 1).Y, test.ShouldEqual, 1)
	test.That(t, padded.GrayAt(3, 3).Y, test.ShouldEqual, 9)

	padded, err = PaddingGray(img, size, anchor, BorderReplicate)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, padded.GrayAt(0, 0).Y, test.ShouldEqual, 1)
	test.That(t, padded.GrayAt(4, 4).Y, test.ShouldEqual, 9)

	padded, err = PaddingGray(img, size, anchor, BorderReflect)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, padded.GrayAt(0, 0).Y, test.ShouldEqual, 5)
	test.That(t, padded.GrayAt(4, 0).Y, test.ShouldEqual, 5)
	test.That(t, padded.GrayAt(2, 4).Y, test.ShouldEqual, 5)

	_, err = PaddingGray(img, size, image.Point{3, 0}, BorderReflect)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = PaddingGray(img, image.Point{0, 3}, anchor, BorderReflect)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConvolveGray(t *testing.T) {
	img := makeCountingGray()
	identity, err := NewKernel(3, 3)
	test.That(t, err, test.ShouldBeNil)
	identity.Content[1][1] = 1
	convolved, err := ConvolveGray(img, identity, image.Point{1, 1}, BorderConstant)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, convolved.Pix, test.ShouldResemble, img.Pix)

	flat := image.NewGray(image.Rect(0, 0, 20, 10))
	for i := range flat.Pix {
		flat.Pix[i] = 100
	}
	blurred, err := GaussianBlurGray(flat)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, blurred.Bounds(), test.ShouldResemble, flat.Bounds())
	for _, v := range blurred.Pix {
		test.That(t, v, test.ShouldEqual, 100)
	}
}

func TestKernelNormalize(t *testing.T) {
	k := GetGaussian5()
	test.That(t, k.AbSum(), test.ShouldEqual, 256)
	test.That(t, k.Normalize().AbSum(), test.ShouldAlmostEqual, 1)
	test.That(t, k.Size(), test.ShouldResemble, image.Point{5, 5})
	test.That(t, GetGaussian3().Normalize().At(1, 1), test.ShouldAlmostEqual, 0.25)

	_, err := NewKernel(0, 3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCropAndMakeGray(t *testing.T) {
	img := makeCountingGray()
	crop := CropGray(img, image.Rect(1, 1, 3, 3))
	test.That(t, crop.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, crop.GrayAt(0, 0).Y, test.ShouldEqual, 5)
	test.That(t, CropGray(img, image.Rectangle{}).Pix, test.ShouldResemble, img.Pix)

	rgba := image.NewNRGBA(image.Rect(2, 2, 4, 4))
	rgba.Set(2, 2, color.NRGBA{255, 255, 255, 255})
	gray := MakeGray(rgba)
	test.That(t, gray.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, gray.GrayAt(0, 0).Y, test.ShouldEqual, 255)
	test.That(t, gray.Bounds().Size(), test.ShouldResemble, rgba.Bounds().Size())
}
