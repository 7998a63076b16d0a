package keypoints

import (
	"image"

	"github.com/pkg/errors"

	"github.com/robotics-cluedo/cluedo/rimage"
)

// minPyramidSize is the smallest side an image pyramid layer may have.
const minPyramidSize = 32

// ImagePyramid contains the successive downscaled versions of an image and their scale relative to it.
type ImagePyramid struct {
	Images []*image.Gray
	Scales []int
}

// GetImagePyramid builds at most maxLayers layers, each downscaleFactor times smaller than the
// previous one, stopping before a layer would get smaller than minPyramidSize.
func GetImagePyramid(img *image.Gray, maxLayers, downscaleFactor int) (*ImagePyramid, error) {
	if maxLayers < 1 {
		return nil, errors.New("number of layers should be > 0")
	}
	if downscaleFactor < 2 {
		return nil, errors.New("downscale factor should be >= 2")
	}
	size := img.Bounds().Size()
	if size.X < minPyramidSize || size.Y < minPyramidSize {
		return nil, errors.Errorf("image of size %v is too small, need at least %dx%d", size, minPyramidSize, minPyramidSize)
	}
	pyramid := &ImagePyramid{
		Images: []*image.Gray{rimage.MakeGray(img)},
		Scales: []int{1},
	}
	current := pyramid.Images[0]
	scale := 1
	for len(pyramid.Images) < maxLayers {
		next := rimage.ResizeGray(current, 1/float64(downscaleFactor))
		nextSize := next.Bounds().Size()
		if nextSize.X < minPyramidSize || nextSize.Y < minPyramidSize {
			break
		}
		scale *= downscaleFactor
		pyramid.Images = append(pyramid.Images, next)
		pyramid.Scales = append(pyramid.Scales, scale)
		current = next
	}
	return pyramid, nil
}
