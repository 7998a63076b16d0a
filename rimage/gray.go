package rimage

import (
	"image"
	"image/draw"
)

// MakeGray converts any image to an image.Gray whose bounds start at the origin.
func MakeGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok && gray.Bounds().Min == (image.Point{}) {
		return gray
	}
	bounds := img.Bounds()
	result := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)
	return result
}

// CropGray returns a copy of the part of img inside r, translated to the origin.
// An empty r returns a copy of the whole image.
func CropGray(img *image.Gray, r image.Rectangle) *image.Gray {
	if r.Empty() {
		r = img.Bounds()
	}
	r = r.Intersect(img.Bounds())
	result := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(result, result.Bounds(), img, r.Min, draw.Src)
	return result
}
