package rimage

import (
	"image"

	"github.com/robotics-cluedo/cluedo/utils"
)

// ConvolveGray correlates img with kernel. The anchor is the kernel cell written back to each
// output pixel; pixels beyond the image edge come from border padding. Results are rounded and
// saturated to [0, 255].
func ConvolveGray(img *image.Gray, kernel *Kernel, anchor image.Point, border BorderPad) (*image.Gray, error) {
	ks := kernel.Size()
	padded, err := PaddingGray(img, ks, anchor, border)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Size()
	out := image.NewGray(image.Rect(0, 0, size.X, size.Y))
	utils.ParallelForEachPixel(size, func(x, y int) {
		var acc float64
		for ky := range ks.Y {
			row := padded.Pix[(y+ky)*padded.Stride+x:]
			for kx := range ks.X {
				acc += float64(row[kx]) * kernel.At(kx, ky)
			}
		}
		out.Pix[y*out.Stride+x] = uint8(utils.ClampF64(acc+0.5, 0, 255))
	})
	return out, nil
}

// GaussianBlurGray smooths a gray image with the normalized 5x5 gaussian kernel.
func GaussianBlurGray(img *image.Gray) (*image.Gray, error) {
	return ConvolveGray(img, GetGaussian5().Normalize(), image.Point{2, 2}, BorderReflect)
}
