package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// BorderPad selects how pixels outside an image are synthesized when padding.
type BorderPad int

const (
	// BorderConstant pads with zeros.
	BorderConstant BorderPad = iota
	// BorderReplicate repeats the edge pixel: aaa|abcd|ddd.
	BorderReplicate
	// BorderReflect mirrors around the edge pixel: dcb|abcd|cba.
	BorderReflect
)

func errInvalidKernelSize(rows, cols int) error {
	return errors.Errorf("invalid kernel size %dx%d", rows, cols)
}

// PaddingGray pads img so that a kernel of size kernelSize anchored at anchor can be slid over
// every pixel of the original image. The result has size img + kernelSize - 1 and the original
// pixel (0,0) lands at anchor.
func PaddingGray(img *image.Gray, kernelSize, anchor image.Point, border BorderPad) (*image.Gray, error) {
	if kernelSize.X <= 0 || kernelSize.Y <= 0 {
		return nil, errInvalidKernelSize(kernelSize.Y, kernelSize.X)
	}
	if anchor.X < 0 || anchor.Y < 0 || anchor.X >= kernelSize.X || anchor.Y >= kernelSize.Y {
		return nil, errors.Errorf("anchor %v outside of kernel of size %v", anchor, kernelSize)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("cannot pad an empty image")
	}
	padded := image.NewGray(image.Rect(0, 0, w+kernelSize.X-1, h+kernelSize.Y-1))
	pw, ph := padded.Bounds().Dx(), padded.Bounds().Dy()
	for y := 0; y < ph; y++ {
		sy, okY := borderIndex(y-anchor.Y, h, border)
		for x := 0; x < pw; x++ {
			sx, okX := borderIndex(x-anchor.X, w, border)
			if !okX || !okY {
				padded.SetGray(x, y, color.Gray{0})
				continue
			}
			padded.SetGray(x, y, img.GrayAt(bounds.Min.X+sx, bounds.Min.Y+sy))
		}
	}
	return padded, nil
}

// borderIndex maps an index that may fall outside [0, n) back into it according to border.
// The second return value is false when the pixel should be the constant border value.
func borderIndex(i, n int, border BorderPad) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch border {
	case BorderReplicate:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	case BorderReflect:
		if n == 1 {
			return 0, true
		}
		period := 2 * (n - 1)
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - i
		}
		return i, true
	default:
		return 0, false
	}
}
