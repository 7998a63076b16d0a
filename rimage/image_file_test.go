package rimage

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestImageFileRoundTrip(t *testing.T) {
	img := makeCountingGray()
	path := filepath.Join(t.TempDir(), "card.png")
	test.That(t, WriteImageToFile(path, img), test.ShouldBeNil)

	read, err := ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, MakeGray(read).Pix, test.ShouldResemble, img.Pix)

	_, err = ReadImageFromFile(filepath.Join(t.TempDir(), "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.png")
}

func TestReadPPM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.ppm")
	raw := append([]byte("P6\n2 1\n255\n"), 255, 0, 0, 0, 0, 255)
	test.That(t, os.WriteFile(path, raw, 0o600), test.ShouldBeNil)

	img, err := ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Size(), test.ShouldResemble, image.Point{2, 1})
	r, _, b, _ := img.At(0, 0).RGBA()
	test.That(t, r, test.ShouldEqual, 0xffff)
	test.That(t, b, test.ShouldEqual, 0)
	_, _, b, _ = img.At(1, 0).RGBA()
	test.That(t, b, test.ShouldEqual, 0xffff)
}

func TestResizeGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	small := ResizeGray(img, 0.5)
	test.That(t, small.Bounds().Size(), test.ShouldResemble, image.Point{20, 10})
	test.That(t, ResizeGray(img, 0.01).Bounds().Empty(), test.ShouldBeTrue)
}

func TestDrawOverlay(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	out := DrawOverlay(img, Overlay{
		Quad: []r2.Point{{X: 10, Y: 10}, {X: 40, Y: 10}, {X: 40, Y: 40}, {X: 10, Y: 40}},
	})
	test.That(t, out.Bounds(), test.ShouldResemble, img.Bounds())
	_, g, _, _ := out.At(25, 10).RGBA()
	test.That(t, g, test.ShouldBeGreaterThan, 0)
	r, g, b, _ := out.At(25, 25).RGBA()
	test.That(t, r+g+b, test.ShouldEqual, 0)
}
